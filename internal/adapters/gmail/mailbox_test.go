package gmail

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"google.golang.org/api/gmail/v1"
)

func b64url(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func TestToInboundParsesHeadersAndBody(t *testing.T) {
	m := NewMailbox(nil, "is:unread", "processed", zap.NewNop())

	msg := &gmail.Message{
		Id: "m1",
		Payload: &gmail.MessagePart{
			MimeType: "multipart/alternative",
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: "John Doe <J.Doe+promo@Gmail.com>"},
				{Name: "Subject", Value: "Hi"},
				{Name: "Message-ID", Value: "<abc@mail.gmail.com>"},
			},
			Parts: []*gmail.MessagePart{
				{
					MimeType: "text/plain",
					Body:     &gmail.MessagePartBody{Data: b64url("hello plain")},
				},
				{
					MimeType: "text/html",
					Body:     &gmail.MessagePartBody{Data: b64url("<p>hello html</p>")},
				},
			},
		},
	}

	inbound := m.toInbound("t1", msg)
	assert.Equal(t, "jdoe@gmail.com", inbound.Sender)
	assert.Equal(t, "John Doe <J.Doe+promo@Gmail.com>", inbound.RawFrom)
	assert.Equal(t, "Hi", inbound.Subject)
	assert.Equal(t, "hello plain", inbound.Body)
	assert.Equal(t, "t1", inbound.Thread.ThreadID)
	assert.Equal(t, "m1", inbound.Thread.MessageID)
	assert.Equal(t, "<abc@mail.gmail.com>", inbound.Thread.RFCMessageID)
}

func TestPlainTextBodyNestedMultipart(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{
			{MimeType: "application/pdf", Body: &gmail.MessagePartBody{Data: b64url("pdf")}},
			{
				MimeType: "multipart/alternative",
				Parts: []*gmail.MessagePart{
					{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: b64url("nested body")}},
				},
			},
		},
	}
	assert.Equal(t, "nested body", plainTextBody(payload))
}

func TestPlainTextBodyUnpaddedBase64(t *testing.T) {
	// The API sometimes returns unpadded URL-safe base64
	payload := &gmail.MessagePart{
		MimeType: "text/plain",
		Body:     &gmail.MessagePartBody{Data: base64.RawURLEncoding.EncodeToString([]byte("no padding!"))},
	}
	assert.Equal(t, "no padding!", plainTextBody(payload))
}

func TestPlainTextBodyMissing(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{
			{MimeType: "image/png", Body: &gmail.MessagePartBody{Data: b64url("img")}},
		},
	}
	assert.Empty(t, plainTextBody(payload))
}
