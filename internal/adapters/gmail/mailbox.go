package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
	"google.golang.org/api/gmail/v1"

	"github.com/mikey/llm-autoresponder/internal/core"
)

const user = "me"

// Mailbox lists unread threads and marks them processed via the Gmail API
type Mailbox struct {
	srv            *gmail.Service
	logger         *zap.Logger
	query          string
	processedLabel string

	mu      sync.Mutex
	labelID string
}

// NewMailbox creates a Gmail mailbox over an authenticated service
func NewMailbox(srv *gmail.Service, query, processedLabel string, logger *zap.Logger) *Mailbox {
	return &Mailbox{
		srv:            srv,
		logger:         logger,
		query:          query,
		processedLabel: processedLabel,
	}
}

// ListUnread returns at most max unread messages, one per thread, in the
// order the mailbox listing returns them. For each thread the newest message
// is the one answered, matching how a human reads the conversation.
func (m *Mailbox) ListUnread(ctx context.Context, max int) ([]*core.InboundMessage, error) {
	list, err := m.srv.Users.Threads.List(user).Q(m.query).MaxResults(int64(max)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}

	var out []*core.InboundMessage
	for _, t := range list.Threads {
		thread, err := m.srv.Users.Threads.Get(user, t.Id).Format("full").Context(ctx).Do()
		if err != nil {
			m.logger.Error("Failed to fetch thread, skipping it",
				zap.Error(err), zap.String("thread_id", t.Id))
			continue
		}
		if len(thread.Messages) == 0 {
			continue
		}
		msg := thread.Messages[len(thread.Messages)-1]
		out = append(out, m.toInbound(t.Id, msg))
	}
	return out, nil
}

func (m *Mailbox) toInbound(threadID string, msg *gmail.Message) *core.InboundMessage {
	inbound := &core.InboundMessage{
		Thread: core.ThreadRef{ThreadID: threadID, MessageID: msg.Id},
	}
	if msg.Payload != nil {
		for _, header := range msg.Payload.Headers {
			switch header.Name {
			case "From":
				inbound.RawFrom = header.Value
			case "Subject":
				inbound.Subject = header.Value
			case "Message-ID", "Message-Id":
				inbound.Thread.RFCMessageID = header.Value
			}
		}
		inbound.Body = norm.NFC.String(plainTextBody(msg.Payload))
	}
	inbound.Sender = core.NormalizeAddress(inbound.RawFrom)
	return inbound
}

// plainTextBody walks the MIME tree for the first text/plain part
func plainTextBody(payload *gmail.MessagePart) string {
	if payload.MimeType == "text/plain" && payload.Body != nil && payload.Body.Data != "" {
		if data, err := decodeBody(payload.Body.Data); err == nil {
			return string(data)
		}
	}
	for _, part := range payload.Parts {
		mimeType := strings.ToLower(part.MimeType)
		if strings.HasPrefix(mimeType, "text/") || strings.HasPrefix(mimeType, "multipart/") {
			if body := plainTextBody(part); body != "" {
				return body
			}
		}
	}
	return ""
}

// decodeBody handles both padded and unpadded URL-safe base64, which the
// API is inconsistent about
func decodeBody(data string) ([]byte, error) {
	if decoded, err := base64.URLEncoding.DecodeString(data); err == nil {
		return decoded, nil
	}
	return base64.RawURLEncoding.DecodeString(data)
}

// MarkProcessed marks the thread read and applies the processed label,
// creating the label on first use
func (m *Mailbox) MarkProcessed(ctx context.Context, ref core.ThreadRef) error {
	labelID, err := m.ensureLabel(ctx)
	if err != nil {
		return err
	}
	_, err = m.srv.Users.Threads.Modify(user, ref.ThreadID, &gmail.ModifyThreadRequest{
		RemoveLabelIds: []string{"UNREAD"},
		AddLabelIds:    []string{labelID},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to modify thread labels: %w", err)
	}
	m.logger.Debug("Marked thread processed", zap.String("thread_id", ref.ThreadID))
	return nil
}

func (m *Mailbox) ensureLabel(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.labelID != "" {
		return m.labelID, nil
	}

	labels, err := m.srv.Users.Labels.List(user).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to list labels: %w", err)
	}
	for _, l := range labels.Labels {
		if l.Name == m.processedLabel {
			m.labelID = l.Id
			return m.labelID, nil
		}
	}

	created, err := m.srv.Users.Labels.Create(user, &gmail.Label{
		Name:                  m.processedLabel,
		LabelListVisibility:   "labelShow",
		MessageListVisibility: "show",
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create label %q: %w", m.processedLabel, err)
	}
	m.labelID = created.Id
	return m.labelID, nil
}
