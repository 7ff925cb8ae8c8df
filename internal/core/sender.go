package core

import (
	"context"
	"encoding/base64"

	"go.uber.org/zap"
)

// InlineImageCID is the content-id the HTML body references for the inline
// emoticon; the backend emits <img src="cid:emotka_cid"> accordingly.
const InlineImageCID = "emotka_cid"

// ReplySender assembles one outbound reply from a send job and delivers it:
// first as a reply within the original thread, then, if that fails, as a new
// standalone message with a "RE: " subject.
type ReplySender struct {
	transport MailTransport
	logger    *zap.Logger
}

// NewReplySender creates a reply sender over the given transport
func NewReplySender(transport MailTransport, logger *zap.Logger) *ReplySender {
	return &ReplySender{transport: transport, logger: logger}
}

// Send delivers one reply. A base64 decode failure drops that asset and the
// reply proceeds without it. Only a failed fallback send is returned as an
// error; it is terminal for this variant only.
func (s *ReplySender) Send(ctx context.Context, job SendJob) error {
	reply := &OutgoingReply{
		To:          job.Recipient,
		Subject:     job.Subject,
		DisplayName: job.DisplayName,
		HTMLBody:    job.Variant.HTMLBody,
		Inline:      s.decodeImage(job.Variant.Image),
		Attachment:  s.decodeAttachment(job.Variant.PDF),
		Thread:      job.Thread,
	}

	if err := s.transport.ReplyInThread(ctx, reply); err == nil {
		s.logger.Info("Sent threaded reply",
			zap.String("recipient", job.Recipient),
			zap.String("variant", job.Variant.Kind.String()))
		return nil
	} else {
		s.logger.Warn("Threaded reply failed, sending new message",
			zap.Error(err),
			zap.String("recipient", job.Recipient),
			zap.String("variant", job.Variant.Kind.String()))
	}

	fallback := *reply
	fallback.Subject = "RE: " + job.Subject
	if err := s.transport.SendMessage(ctx, &fallback); err != nil {
		return err
	}

	s.logger.Info("Sent fallback message",
		zap.String("recipient", job.Recipient),
		zap.String("variant", job.Variant.Kind.String()))
	return nil
}

func (s *ReplySender) decodeImage(img *InlineImage) *DecodedAsset {
	if img == nil || img.Base64 == "" {
		return nil
	}
	data, err := base64.StdEncoding.DecodeString(img.Base64)
	if err != nil {
		s.logger.Error("Failed to decode inline image, dropping it",
			zap.Error(err), zap.String("filename", img.Filename))
		return nil
	}
	contentType := img.ContentType
	if contentType == "" {
		contentType = "image/png"
	}
	filename := img.Filename
	if filename == "" {
		filename = "emotka.png"
	}
	return &DecodedAsset{
		Data:        data,
		ContentType: contentType,
		Filename:    filename,
		ContentID:   InlineImageCID,
	}
}

func (s *ReplySender) decodeAttachment(pdf *Attachment) *DecodedAsset {
	if pdf == nil || pdf.Base64 == "" {
		return nil
	}
	data, err := base64.StdEncoding.DecodeString(pdf.Base64)
	if err != nil {
		s.logger.Error("Failed to decode attachment, dropping it",
			zap.Error(err), zap.String("filename", pdf.Filename))
		return nil
	}
	filename := pdf.Filename
	if filename == "" {
		filename = "dokument.pdf"
	}
	return &DecodedAsset{
		Data:        data,
		ContentType: "application/pdf",
		Filename:    filename,
	}
}
