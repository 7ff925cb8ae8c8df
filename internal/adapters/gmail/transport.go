package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/gmail/v1"

	"github.com/mikey/llm-autoresponder/internal/core"
)

// Transport sends replies via the Gmail API, threaded when possible
type Transport struct {
	srv      *gmail.Service
	logger   *zap.Logger
	fromAddr string
}

// NewTransport creates a Gmail transport. The account address is resolved
// once so outgoing messages can carry a display name in the From header.
func NewTransport(srv *gmail.Service, logger *zap.Logger) (*Transport, error) {
	profile, err := srv.Users.GetProfile(user).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account profile: %w", err)
	}
	return &Transport{srv: srv, logger: logger, fromAddr: profile.EmailAddress}, nil
}

// ReplyInThread sends the reply inside the original conversation, keeping
// the threading headers intact
func (t *Transport) ReplyInThread(ctx context.Context, reply *core.OutgoingReply) error {
	if reply.Thread.ThreadID == "" {
		return fmt.Errorf("no thread reference to reply to")
	}

	threaded := *reply
	if !strings.HasPrefix(strings.ToLower(threaded.Subject), "re:") {
		threaded.Subject = "Re: " + threaded.Subject
	}

	raw := buildRawMessage(&threaded, t.fromAddr, reply.Thread.RFCMessageID)
	_, err := t.srv.Users.Messages.Send(user, &gmail.Message{
		Raw:      base64.URLEncoding.EncodeToString([]byte(raw)),
		ThreadId: reply.Thread.ThreadID,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to send threaded reply: %w", err)
	}

	t.logger.Debug("Threaded reply sent",
		zap.String("to", reply.To),
		zap.String("thread_id", reply.Thread.ThreadID))
	return nil
}

// SendMessage delivers a standalone message with the same body and
// attachments; used as the fallback path when replying fails
func (t *Transport) SendMessage(ctx context.Context, reply *core.OutgoingReply) error {
	raw := buildRawMessage(reply, t.fromAddr, "")
	_, err := t.srv.Users.Messages.Send(user, &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(raw)),
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	t.logger.Debug("Standalone message sent", zap.String("to", reply.To))
	return nil
}
