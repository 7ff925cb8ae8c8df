package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMailbox struct {
	messages []*InboundMessage
	listErr  error
	marked   []ThreadRef
	markErr  error
}

func (f *fakeMailbox) ListUnread(_ context.Context, max int) ([]*InboundMessage, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.messages) > max {
		return f.messages[:max], nil
	}
	return f.messages, nil
}

func (f *fakeMailbox) MarkProcessed(_ context.Context, ref ThreadRef) error {
	f.marked = append(f.marked, ref)
	return f.markErr
}

type fakeBackend struct {
	resp  *BackendResponse
	err   error
	calls int
}

func (f *fakeBackend) RequestReplies(_ context.Context, _ *InboundMessage) (*BackendResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func newTestService(mailbox *fakeMailbox, backend *fakeBackend, transport *fakeTransport) *TriageService {
	logger := zap.NewNop()
	return NewTriageService(
		mailbox,
		backend,
		newTestClassifier(),
		newTestDispatcher(),
		NewReplySender(transport, logger),
		logger,
		5,
	)
}

func inboundFrom(sender, body string) *InboundMessage {
	return &InboundMessage{
		Sender:  sender,
		Subject: "Hi",
		Body:    body,
		Thread:  ThreadRef{ThreadID: "thread-" + sender, MessageID: "msg-" + sender},
	}
}

func bothVariants() *BackendResponse {
	return &BackendResponse{
		Business: &ReplyVariant{Kind: VariantBusiness, HTMLBody: "<p>biz</p>"},
		Personal: &ReplyVariant{Kind: VariantPersonal, HTMLBody: "<p>tyler</p>"},
	}
}

func TestProcessBatchSkipsWithoutBackendCall(t *testing.T) {
	mailbox := &fakeMailbox{messages: []*InboundMessage{
		inboundFrom("stranger@example.com", "no signals here"),
		inboundFrom("biz@firm.com", "   "),
	}}
	backend := &fakeBackend{resp: bothVariants()}
	transport := &fakeTransport{}

	require.NoError(t, newTestService(mailbox, backend, transport).ProcessBatch(context.Background()))
	assert.Zero(t, backend.calls, "skipped messages must not hit the backend")
	assert.Empty(t, transport.replies)
	assert.Len(t, mailbox.marked, 2, "skipped messages are still marked processed")
}

func TestProcessBatchBackendFailure(t *testing.T) {
	mailbox := &fakeMailbox{messages: []*InboundMessage{
		inboundFrom("biz@firm.com", "dzień dobry"),
	}}
	backend := &fakeBackend{err: errors.New("HTTP 500")}
	transport := &fakeTransport{}

	require.NoError(t, newTestService(mailbox, backend, transport).ProcessBatch(context.Background()))
	assert.Equal(t, 1, backend.calls)
	assert.Empty(t, transport.replies)
	assert.Empty(t, transport.sent)
	assert.Len(t, mailbox.marked, 1, "failed message still marked to avoid hot-looping")
}

func TestProcessBatchSendsWantedVariants(t *testing.T) {
	mailbox := &fakeMailbox{messages: []*InboundMessage{
		inboundFrom("jdoe@gmail.com", "hej, co słychać"),
	}}
	backend := &fakeBackend{resp: bothVariants()}
	transport := &fakeTransport{}

	require.NoError(t, newTestService(mailbox, backend, transport).ProcessBatch(context.Background()))
	require.Len(t, transport.replies, 1, "allow-list sender gets personal variant only")
	assert.Equal(t, "<p>tyler</p>", transport.replies[0].HTMLBody)
	assert.Len(t, mailbox.marked, 1)
}

func TestProcessBatchKeywordSendsBothBusinessFirst(t *testing.T) {
	mailbox := &fakeMailbox{messages: []*InboundMessage{
		inboundFrom("stranger@example.com", "pytanie do notariusza"),
	}}
	backend := &fakeBackend{resp: bothVariants()}
	transport := &fakeTransport{}

	require.NoError(t, newTestService(mailbox, backend, transport).ProcessBatch(context.Background()))
	require.Len(t, transport.replies, 2)
	assert.Equal(t, "<p>biz</p>", transport.replies[0].HTMLBody)
	assert.Equal(t, "<p>tyler</p>", transport.replies[1].HTMLBody)
}

func TestProcessBatchOneFailureDoesNotAbortOthers(t *testing.T) {
	mailbox := &fakeMailbox{messages: []*InboundMessage{
		inboundFrom("jdoe@gmail.com", "pierwszy"),
		inboundFrom("jdoe@gmail.com", "drugi"),
	}}
	backend := &fakeBackend{resp: bothVariants()}
	transport := &fakeTransport{
		replyErr: errors.New("thread reply broken"),
		sendErr:  errors.New("fallback broken"),
	}

	require.NoError(t, newTestService(mailbox, backend, transport).ProcessBatch(context.Background()))
	assert.Equal(t, 2, backend.calls)
	assert.Len(t, mailbox.marked, 2, "both messages processed despite send failures")
}

func TestProcessBatchListFailureIsReturned(t *testing.T) {
	mailbox := &fakeMailbox{listErr: errors.New("mailbox down")}
	err := newTestService(mailbox, &fakeBackend{}, &fakeTransport{}).ProcessBatch(context.Background())
	assert.Error(t, err)
}

func TestProcessBatchRespectsCap(t *testing.T) {
	var msgs []*InboundMessage
	for i := 0; i < 8; i++ {
		msgs = append(msgs, inboundFrom("stranger@example.com", "nic"))
	}
	mailbox := &fakeMailbox{messages: msgs}

	require.NoError(t, newTestService(mailbox, &fakeBackend{}, &fakeTransport{}).ProcessBatch(context.Background()))
	assert.Len(t, mailbox.marked, 5)
}
