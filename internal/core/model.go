package core

// Reason records which classification signal triggered the routing decision
type Reason int

const (
	ReasonNone Reason = iota
	ReasonBizList
	ReasonAllowList
	ReasonKeyword
)

// String returns a human-readable name for the reason
func (r Reason) String() string {
	switch r {
	case ReasonBizList:
		return "biz_list"
	case ReasonAllowList:
		return "allow_list"
	case ReasonKeyword:
		return "keyword"
	default:
		return "none"
	}
}

// VariantKind identifies one of the two reply contents the backend may return
type VariantKind int

const (
	VariantBusiness VariantKind = iota
	VariantPersonal
)

// String returns a human-readable name for the variant kind
func (k VariantKind) String() string {
	if k == VariantBusiness {
		return "business"
	}
	return "personal"
}

// ThreadRef identifies the mailbox thread a message belongs to. It carries
// just enough to reply in-thread and to mark the thread processed.
type ThreadRef struct {
	ThreadID string
	// MessageID is the mailbox-internal id of the message being answered
	MessageID string
	// RFCMessageID is the Message-ID header value, used for In-Reply-To
	RFCMessageID string
}

// InboundMessage is one unread message pulled from the mailbox.
// Sender is already normalized; RawFrom keeps the original header.
type InboundMessage struct {
	Sender  string
	RawFrom string
	Subject string
	Body    string
	Thread  ThreadRef
}

// RoutingDecision says which reply variants a message should receive.
// If Reason is ReasonNone both want-flags are false and the message is
// skipped without a backend call.
type RoutingDecision struct {
	WantsBusiness bool
	WantsPersonal bool
	Reason        Reason
}

// InlineImage is an image embedded in the HTML body via a content-id
// reference. The payload stays base64 until send time.
type InlineImage struct {
	Base64      string
	ContentType string
	Filename    string
}

// Attachment is a binary file attached to the reply, base64 until send time
type Attachment struct {
	Base64   string
	Filename string
}

// ReplyVariant is one named reply content parsed from a backend response
type ReplyVariant struct {
	Kind     VariantKind
	HTMLBody string
	Image    *InlineImage
	PDF      *Attachment
}

// BackendResponse holds the variants the backend made available this cycle.
// A nil variant means the backend did not produce that content; that is not
// an error, the backend is authoritative on availability.
type BackendResponse struct {
	Business *ReplyVariant
	Personal *ReplyVariant
}

// SendJob is one outbound reply the dispatcher decided to send
type SendJob struct {
	Variant     *ReplyVariant
	Recipient   string
	Subject     string
	DisplayName string
	Thread      ThreadRef
}
