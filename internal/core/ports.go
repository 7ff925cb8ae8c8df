package core

import (
	"context"
)

// BackendClient requests reply content for an inbound message from the
// generation backend. Exactly one attempt per message per run; any transport,
// status or parse problem comes back as an error and the caller treats the
// message as unprocessable this cycle.
type BackendClient interface {
	RequestReplies(ctx context.Context, msg *InboundMessage) (*BackendResponse, error)
}

// Mailbox is the inbound-mail collaborator: it lists unread messages and
// marks threads processed so no later run picks them up again.
type Mailbox interface {
	// ListUnread returns at most max unread messages, oldest first, each
	// with a normalized sender and a plain-text body.
	ListUnread(ctx context.Context, max int) ([]*InboundMessage, error)

	// MarkProcessed marks the thread read and labels it. Called exactly once
	// per inspected message, after all send attempts complete, and also on
	// every skip path.
	MarkProcessed(ctx context.Context, ref ThreadRef) error
}

// OutgoingReply is a fully assembled reply ready for a mail transport
type OutgoingReply struct {
	To          string
	Subject     string
	DisplayName string
	HTMLBody    string
	Inline      *DecodedAsset
	Attachment  *DecodedAsset
	Thread      ThreadRef
}

// DecodedAsset is a decoded binary part of an outgoing reply. ContentID is
// set for inline images referenced from the HTML body.
type DecodedAsset struct {
	Data        []byte
	ContentType string
	Filename    string
	ContentID   string
}

// MailTransport is the outbound-mail collaborator. ReplyInThread preserves
// threading; SendMessage delivers a standalone message with the same shape.
type MailTransport interface {
	ReplyInThread(ctx context.Context, reply *OutgoingReply) error
	SendMessage(ctx context.Context, reply *OutgoingReply) error
}
