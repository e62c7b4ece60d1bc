package mail

import (
	"bytes"
	"io"
	"strings"
	"time"

	gomessage "github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
)

// Message is one mailbox message reduced to what the login flow needs.
// Body holds only plain-text content.
type Message struct {
	From    string
	Subject string
	Body    string
	Date    time.Time
	UID     uint32
}

// plainTextBody extracts the plain-text content of a raw RFC 2822
// message. A top-level text/plain body is used directly; otherwise the
// text of every direct text/plain subpart is concatenated in document
// order and other parts (notably text/html) are skipped.
func plainTextBody(raw []byte) string {
	entity, err := gomessage.Read(bytes.NewReader(raw))
	if err != nil && !gomessage.IsUnknownCharset(err) {
		// Not parseable as MIME; treat the payload as plain text.
		return string(raw)
	}

	if mediaType, _, err := entity.Header.ContentType(); err == nil && strings.HasPrefix(mediaType, "text/plain") {
		body, err := io.ReadAll(entity.Body)
		if err != nil {
			return ""
		}
		return string(body)
	}

	mr := entity.MultipartReader()
	if mr == nil {
		return ""
	}

	var sb strings.Builder
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}
		mediaType, _, err := part.Header.ContentType()
		if err != nil || !strings.HasPrefix(mediaType, "text/plain") {
			continue
		}
		body, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}
		sb.Write(body)
	}
	return sb.String()
}
