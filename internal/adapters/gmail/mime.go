package gmail

import (
	"encoding/base64"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/mikey/llm-autoresponder/internal/core"
)

// buildRawMessage assembles the RFC-2822 reply. Structure, outermost first:
//
//	multipart/mixed
//	  multipart/related
//	    text/html
//	    inline image (Content-ID)
//	  attachment
//
// Levels without content are elided, so a plain HTML reply stays a single
// text/html body. inReplyTo carries the original Message-ID for threading;
// empty means a standalone message.
func buildRawMessage(reply *core.OutgoingReply, fromAddr, inReplyTo string) string {
	var buf strings.Builder

	if fromAddr != "" {
		if reply.DisplayName != "" {
			buf.WriteString(fmt.Sprintf("From: %s <%s>\r\n",
				mime.QEncoding.Encode("UTF-8", reply.DisplayName), fromAddr))
		} else {
			buf.WriteString(fmt.Sprintf("From: %s\r\n", fromAddr))
		}
	}
	buf.WriteString(fmt.Sprintf("To: %s\r\n", reply.To))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", reply.Subject)))
	if inReplyTo != "" {
		buf.WriteString(fmt.Sprintf("In-Reply-To: %s\r\n", inReplyTo))
		buf.WriteString(fmt.Sprintf("References: %s\r\n", inReplyTo))
	}
	buf.WriteString("MIME-Version: 1.0\r\n")

	writeBodyWithAttachment(&buf, reply)
	return buf.String()
}

func writeBodyWithAttachment(buf *strings.Builder, reply *core.OutgoingReply) {
	if reply.Attachment == nil {
		writeRelatedBody(buf, reply)
		return
	}

	boundary := fmt.Sprintf("mixed_%d", time.Now().UnixNano())
	buf.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=\"%s\"\r\n\r\n", boundary))

	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	writeRelatedBody(buf, reply)

	att := reply.Attachment
	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString(fmt.Sprintf("Content-Type: %s; name=\"%s\"\r\n", att.ContentType, att.Filename))
	buf.WriteString("Content-Transfer-Encoding: base64\r\n")
	buf.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=\"%s\"\r\n\r\n", att.Filename))
	buf.WriteString(base64.StdEncoding.EncodeToString(att.Data))
	buf.WriteString("\r\n")

	buf.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
}

func writeRelatedBody(buf *strings.Builder, reply *core.OutgoingReply) {
	if reply.Inline == nil {
		writeHTMLPart(buf, reply.HTMLBody)
		return
	}

	boundary := fmt.Sprintf("related_%d", time.Now().UnixNano())
	buf.WriteString(fmt.Sprintf("Content-Type: multipart/related; boundary=\"%s\"\r\n\r\n", boundary))

	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	writeHTMLPart(buf, reply.HTMLBody)

	img := reply.Inline
	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString(fmt.Sprintf("Content-Type: %s; name=\"%s\"\r\n", img.ContentType, img.Filename))
	buf.WriteString("Content-Transfer-Encoding: base64\r\n")
	buf.WriteString(fmt.Sprintf("Content-ID: <%s>\r\n", img.ContentID))
	buf.WriteString(fmt.Sprintf("Content-Disposition: inline; filename=\"%s\"\r\n\r\n", img.Filename))
	buf.WriteString(base64.StdEncoding.EncodeToString(img.Data))
	buf.WriteString("\r\n")

	buf.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
}

func writeHTMLPart(buf *strings.Builder, html string) {
	buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	buf.WriteString(html)
	buf.WriteString("\r\n")
}
