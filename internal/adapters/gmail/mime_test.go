package gmail

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/llm-autoresponder/internal/core"
)

func fullReply() *core.OutgoingReply {
	return &core.OutgoingReply{
		To:          "jdoe@gmail.com",
		Subject:     "Re: Hi",
		DisplayName: "Tyler Durden – Autoresponder",
		HTMLBody:    `<p><i>hej</i></p><img src="cid:emotka_cid">`,
		Inline: &core.DecodedAsset{
			Data:        []byte("png-bytes"),
			ContentType: "image/png",
			Filename:    "twarz_radosc.png",
			ContentID:   core.InlineImageCID,
		},
		Attachment: &core.DecodedAsset{
			Data:        []byte("pdf-bytes"),
			ContentType: "application/pdf",
			Filename:    "dokument.pdf",
		},
		Thread: core.ThreadRef{ThreadID: "t1", RFCMessageID: "<orig@mail.gmail.com>"},
	}
}

func TestBuildRawMessageFullShape(t *testing.T) {
	raw := buildRawMessage(fullReply(), "owner@gmail.com", "<orig@mail.gmail.com>")

	assert.Contains(t, raw, "To: jdoe@gmail.com\r\n")
	assert.Contains(t, raw, "<owner@gmail.com>")
	assert.Contains(t, raw, "In-Reply-To: <orig@mail.gmail.com>\r\n")
	assert.Contains(t, raw, "References: <orig@mail.gmail.com>\r\n")
	assert.Contains(t, raw, "MIME-Version: 1.0\r\n")
	assert.Contains(t, raw, "multipart/mixed")
	assert.Contains(t, raw, "multipart/related")
	assert.Contains(t, raw, "Content-Type: text/html; charset=UTF-8")
	assert.Contains(t, raw, "Content-ID: <emotka_cid>")
	assert.Contains(t, raw, `Content-Disposition: inline; filename="twarz_radosc.png"`)
	assert.Contains(t, raw, `Content-Disposition: attachment; filename="dokument.pdf"`)
	assert.Contains(t, raw, base64.StdEncoding.EncodeToString([]byte("png-bytes")))
	assert.Contains(t, raw, base64.StdEncoding.EncodeToString([]byte("pdf-bytes")))
	assert.Contains(t, raw, `<img src="cid:emotka_cid">`)
}

func TestBuildRawMessageEncodesSubjectAndName(t *testing.T) {
	reply := fullReply()
	raw := buildRawMessage(reply, "owner@gmail.com", "")

	// Non-ASCII subject and display name must be RFC 2047 encoded
	subjectLine := lineWithPrefix(t, raw, "Subject: ")
	assert.NotContains(t, subjectLine, "–")
	fromLine := lineWithPrefix(t, raw, "From: ")
	assert.NotContains(t, fromLine, "–")
	assert.Contains(t, fromLine, "owner@gmail.com")
}

func TestBuildRawMessageHTMLOnly(t *testing.T) {
	reply := fullReply()
	reply.Inline = nil
	reply.Attachment = nil
	raw := buildRawMessage(reply, "owner@gmail.com", "")

	assert.NotContains(t, raw, "multipart/mixed")
	assert.NotContains(t, raw, "multipart/related")
	assert.Contains(t, raw, "Content-Type: text/html; charset=UTF-8")
	assert.NotContains(t, raw, "In-Reply-To:")
}

func TestBuildRawMessageInlineWithoutAttachment(t *testing.T) {
	reply := fullReply()
	reply.Attachment = nil
	raw := buildRawMessage(reply, "owner@gmail.com", "")

	assert.NotContains(t, raw, "multipart/mixed")
	assert.Contains(t, raw, "multipart/related")
	assert.Contains(t, raw, "Content-ID: <emotka_cid>")
}

func TestBuildRawMessageAttachmentWithoutInline(t *testing.T) {
	reply := fullReply()
	reply.Inline = nil
	raw := buildRawMessage(reply, "owner@gmail.com", "")

	assert.Contains(t, raw, "multipart/mixed")
	assert.NotContains(t, raw, "multipart/related")
	assert.Contains(t, raw, `Content-Disposition: attachment; filename="dokument.pdf"`)
}

func lineWithPrefix(t *testing.T, raw, prefix string) string {
	t.Helper()
	for _, line := range strings.Split(raw, "\r\n") {
		if strings.HasPrefix(line, prefix) {
			return line
		}
	}
	require.Failf(t, "header not found", "no line with prefix %q", prefix)
	return ""
}
