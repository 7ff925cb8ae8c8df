// Package smtp implements the MailTransport port over plain SMTP, for
// deployments where the mailbox account has no API send scope.
package smtp

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/mikey/llm-autoresponder/internal/core"
)

// Transport sends replies through an SMTP submission endpoint. Threading is
// best-effort: In-Reply-To/References headers are set from the thread ref,
// but the server cannot place the message inside a provider-side thread.
type Transport struct {
	addr       string
	username   string
	password   string
	from       string
	heloDomain string
	logger     *zap.Logger
}

// NewTransport creates an SMTP transport
func NewTransport(addr, username, password, from, heloDomain string, logger *zap.Logger) (*Transport, error) {
	if from == "" {
		return nil, fmt.Errorf("smtp transport requires a from address")
	}
	return &Transport{
		addr:       addr,
		username:   username,
		password:   password,
		from:       from,
		heloDomain: heloDomain,
		logger:     logger,
	}, nil
}

// ReplyInThread sends the reply with threading headers derived from the
// original Message-ID
func (t *Transport) ReplyInThread(ctx context.Context, reply *core.OutgoingReply) error {
	if reply.Thread.RFCMessageID == "" {
		return fmt.Errorf("no message-id to thread the reply onto")
	}
	threaded := *reply
	if !strings.HasPrefix(strings.ToLower(threaded.Subject), "re:") {
		threaded.Subject = "Re: " + threaded.Subject
	}
	return t.submit(ctx, &threaded, reply.Thread.RFCMessageID)
}

// SendMessage delivers a standalone message
func (t *Transport) SendMessage(ctx context.Context, reply *core.OutgoingReply) error {
	return t.submit(ctx, reply, "")
}

func (t *Transport) submit(ctx context.Context, reply *core.OutgoingReply, inReplyTo string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	client, err := smtp.DialStartTLS(t.addr, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to smtp server: %w", err)
	}
	defer client.Close()

	if err := client.Hello(t.heloDomain); err != nil {
		return fmt.Errorf("smtp hello failed: %w", err)
	}
	if t.username != "" {
		if err := client.Auth(sasl.NewPlainClient("", t.username, t.password)); err != nil {
			return fmt.Errorf("smtp auth failed: %w", err)
		}
	}
	if err := client.Mail(t.from, nil); err != nil {
		return fmt.Errorf("smtp mail from failed: %w", err)
	}
	if err := client.Rcpt(reply.To, nil); err != nil {
		return fmt.Errorf("smtp rcpt to failed: %w", err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data failed: %w", err)
	}
	if _, err := wc.Write([]byte(t.buildMessage(reply, inReplyTo))); err != nil {
		wc.Close()
		return fmt.Errorf("smtp write failed: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("smtp submission failed: %w", err)
	}

	t.logger.Debug("Message submitted over SMTP", zap.String("to", reply.To))
	return client.Quit()
}

// buildMessage mirrors the Gmail raw-message shape: multipart/mixed around
// multipart/related around the HTML body
func (t *Transport) buildMessage(reply *core.OutgoingReply, inReplyTo string) string {
	var buf strings.Builder

	if reply.DisplayName != "" {
		buf.WriteString(fmt.Sprintf("From: %s <%s>\r\n",
			mime.QEncoding.Encode("UTF-8", reply.DisplayName), t.from))
	} else {
		buf.WriteString(fmt.Sprintf("From: %s\r\n", t.from))
	}
	buf.WriteString(fmt.Sprintf("To: %s\r\n", reply.To))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", reply.Subject)))
	if inReplyTo != "" {
		buf.WriteString(fmt.Sprintf("In-Reply-To: %s\r\n", inReplyTo))
		buf.WriteString(fmt.Sprintf("References: %s\r\n", inReplyTo))
	}
	buf.WriteString("MIME-Version: 1.0\r\n")

	switch {
	case reply.Attachment != nil:
		boundary := "mixed_autoresponder"
		buf.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=\"%s\"\r\n\r\n", boundary))
		buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		t.writeRelated(&buf, reply)
		att := reply.Attachment
		buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		buf.WriteString(fmt.Sprintf("Content-Type: %s; name=\"%s\"\r\n", att.ContentType, att.Filename))
		buf.WriteString("Content-Transfer-Encoding: base64\r\n")
		buf.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=\"%s\"\r\n\r\n", att.Filename))
		buf.WriteString(base64.StdEncoding.EncodeToString(att.Data))
		buf.WriteString(fmt.Sprintf("\r\n--%s--\r\n", boundary))
	default:
		t.writeRelated(&buf, reply)
	}
	return buf.String()
}

func (t *Transport) writeRelated(buf *strings.Builder, reply *core.OutgoingReply) {
	if reply.Inline == nil {
		buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
		buf.WriteString(reply.HTMLBody)
		buf.WriteString("\r\n")
		return
	}
	boundary := "related_autoresponder"
	buf.WriteString(fmt.Sprintf("Content-Type: multipart/related; boundary=\"%s\"\r\n\r\n", boundary))
	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	buf.WriteString(reply.HTMLBody)
	buf.WriteString("\r\n")
	img := reply.Inline
	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString(fmt.Sprintf("Content-Type: %s; name=\"%s\"\r\n", img.ContentType, img.Filename))
	buf.WriteString("Content-Transfer-Encoding: base64\r\n")
	buf.WriteString(fmt.Sprintf("Content-ID: <%s>\r\n", img.ContentID))
	buf.WriteString(fmt.Sprintf("Content-Disposition: inline; filename=\"%s\"\r\n\r\n", img.Filename))
	buf.WriteString(base64.StdEncoding.EncodeToString(img.Data))
	buf.WriteString(fmt.Sprintf("\r\n--%s--\r\n", boundary))
}
