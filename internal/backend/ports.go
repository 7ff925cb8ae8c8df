// Package backend implements the reply-generation service: it receives the
// triage webhook call, asks a language model for the reply text, and returns
// the business and personal variants with their attachments.
package backend

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned by ReplyCache implementations when no entry
// exists for the sender
var ErrCacheMiss = errors.New("no cached reply for sender")

// TextGenerator produces a completion for a system prompt and user message
type TextGenerator interface {
	Generate(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// ReplyCache stores composed responses per sender so a repeat email within
// the TTL does not trigger another round of model calls
type ReplyCache interface {
	Get(ctx context.Context, sender string) (*Response, error)
	Put(ctx context.Context, sender string, resp *Response) error
	Close() error
}

// Response is the webhook reply body. Field names are part of the wire
// contract with the triage daemon.
type Response struct {
	Business *Section `json:"biznes,omitempty"`
	Personal *Section `json:"zwykly,omitempty"`
}

// Section is one reply variant with its attachments
type Section struct {
	ReplyHTML       string        `json:"reply_html"`
	Emoticon        *ImagePayload `json:"emoticon,omitempty"`
	PDF             *PDFPayload   `json:"pdf,omitempty"`
	DetectedEmotion string        `json:"detected_emotion,omitempty"`
	Topic           string        `json:"topic,omitempty"`
	Notes           string        `json:"notes,omitempty"`
}

// ImagePayload is a base64-encoded inline image
type ImagePayload struct {
	Base64      string `json:"base64"`
	ContentType string `json:"content_type"`
	Filename    string `json:"filename"`
}

// PDFPayload is a base64-encoded document attachment
type PDFPayload struct {
	Base64   string `json:"base64"`
	Filename string `json:"filename"`
}
