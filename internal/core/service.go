package core

import (
	"context"

	"go.uber.org/zap"
)

// TriageService runs the classification-and-dispatch flow over a batch of
// unread messages: normalize -> classify -> backend -> dispatch -> send,
// then mark the thread processed whatever happened along the way.
type TriageService struct {
	mailbox    Mailbox
	backend    BackendClient
	classifier *Classifier
	dispatcher *Dispatcher
	sender     *ReplySender
	logger     *zap.Logger
	maxThreads int
}

// NewTriageService creates the triage service
func NewTriageService(
	mailbox Mailbox,
	backend BackendClient,
	classifier *Classifier,
	dispatcher *Dispatcher,
	sender *ReplySender,
	logger *zap.Logger,
	maxThreads int,
) *TriageService {
	return &TriageService{
		mailbox:    mailbox,
		backend:    backend,
		classifier: classifier,
		dispatcher: dispatcher,
		sender:     sender,
		logger:     logger,
		maxThreads: maxThreads,
	}
}

// ProcessBatch handles one run: a bounded batch of unread messages processed
// sequentially, in mailbox order. One message's failure never aborts the
// rest of the batch; only an inability to list the mailbox is returned.
func (s *TriageService) ProcessBatch(ctx context.Context) error {
	messages, err := s.mailbox.ListUnread(ctx, s.maxThreads)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		s.logger.Debug("No unread messages")
		return nil
	}

	s.logger.Info("Processing batch", zap.Int("messages", len(messages)))
	for _, msg := range messages {
		s.processMessage(ctx, msg)
		if err := s.mailbox.MarkProcessed(ctx, msg.Thread); err != nil {
			s.logger.Error("Failed to mark thread processed",
				zap.Error(err),
				zap.String("thread_id", msg.Thread.ThreadID))
		}
	}
	return nil
}

func (s *TriageService) processMessage(ctx context.Context, msg *InboundMessage) {
	decision := s.classifier.Classify(msg)
	if decision.Reason == ReasonNone {
		s.logger.Info("Skipping message",
			zap.String("sender", msg.Sender),
			zap.String("subject", msg.Subject))
		return
	}

	resp, err := s.backend.RequestReplies(ctx, msg)
	if err != nil {
		// No retry: the message still gets marked processed so a
		// permanently malformed one cannot hot-loop across runs.
		s.logger.Error("Backend call failed, message unprocessable this cycle",
			zap.Error(err),
			zap.String("sender", msg.Sender))
		return
	}

	jobs := s.dispatcher.Dispatch(msg, decision, resp)
	if len(jobs) == 0 {
		s.logger.Info("Nothing to send",
			zap.String("sender", msg.Sender),
			zap.String("reason", decision.Reason.String()))
		return
	}

	for _, job := range jobs {
		if err := s.sender.Send(ctx, job); err != nil {
			s.logger.Error("Failed to deliver reply variant",
				zap.Error(err),
				zap.String("recipient", job.Recipient),
				zap.String("variant", job.Variant.Kind.String()))
		}
	}
}
