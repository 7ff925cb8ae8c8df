// Package webhook implements the BackendClient port against the
// reply-generation webhook protocol.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mikey/llm-autoresponder/internal/core"
	"go.uber.org/zap"
)

// Client calls the reply-generation backend. One POST per message, no retry;
// a still-unread message is picked up again by the next run.
type Client struct {
	endpoint   string
	secret     string
	httpClient *http.Client
	logger     *zap.Logger
}

// requestPayload is the wire request: {"from", "subject", "body"}
type requestPayload struct {
	From    string `json:"from"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// responsePayload is the wire response. Absent keys mean the variant is
// unavailable this cycle.
type responsePayload struct {
	Business *variantPayload `json:"biznes"`
	Personal *variantPayload `json:"zwykly"`
}

type variantPayload struct {
	ReplyHTML string        `json:"reply_html"`
	Emoticon  *imagePayload `json:"emoticon"`
	PDF       *pdfPayload   `json:"pdf"`
}

type imagePayload struct {
	Base64      string `json:"base64"`
	ContentType string `json:"content_type"`
	Filename    string `json:"filename"`
}

type pdfPayload struct {
	Base64   string `json:"base64"`
	Filename string `json:"filename"`
}

// NewClient creates a webhook client. The endpoint is mandatory: without it
// the whole run is aborted before any message is touched.
func NewClient(endpoint, secret string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("webhook endpoint is not configured")
	}
	return &Client{
		endpoint:   endpoint,
		secret:     secret,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// RequestReplies performs the single backend call for one message
func (c *Client) RequestReplies(ctx context.Context, msg *core.InboundMessage) (*core.BackendResponse, error) {
	payload, err := json.Marshal(requestPayload{
		From:    msg.Sender,
		Subject: msg.Subject,
		Body:    msg.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.secret != "" {
		// The secret travels as a header so it stays out of payloads and logs
		req.Header.Set("X-Webhook-Secret", c.secret)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read webhook response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	var parsed responsePayload
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse webhook response: %w", err)
	}

	c.logger.Debug("Webhook response parsed",
		zap.String("sender", msg.Sender),
		zap.Bool("has_business", parsed.Business != nil),
		zap.Bool("has_personal", parsed.Personal != nil))

	return &core.BackendResponse{
		Business: toVariant(parsed.Business, core.VariantBusiness),
		Personal: toVariant(parsed.Personal, core.VariantPersonal),
	}, nil
}

func toVariant(p *variantPayload, kind core.VariantKind) *core.ReplyVariant {
	if p == nil {
		return nil
	}
	variant := &core.ReplyVariant{Kind: kind, HTMLBody: p.ReplyHTML}
	if p.Emoticon != nil && p.Emoticon.Base64 != "" {
		variant.Image = &core.InlineImage{
			Base64:      p.Emoticon.Base64,
			ContentType: p.Emoticon.ContentType,
			Filename:    p.Emoticon.Filename,
		}
	}
	if p.PDF != nil && p.PDF.Base64 != "" {
		variant.PDF = &core.Attachment{
			Base64:   p.PDF.Base64,
			Filename: p.PDF.Filename,
		}
	}
	return variant
}
