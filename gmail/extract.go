package gmail

import (
	"encoding/base64"
	"regexp"
	"strings"

	"google.golang.org/api/gmail/v1"
)

var angleAddr = regexp.MustCompile(`<([^>]+)>`)

// Extract pulls sender, subject, received date and plain-text body out of a
// full Gmail message. Fields that cannot be found are left empty; callers
// substitute placeholders via EmailRecord.Row.
func Extract(msg *gmail.Message) EmailRecord {
	var rec EmailRecord
	if msg == nil || msg.Payload == nil {
		return rec
	}

	for _, header := range msg.Payload.Headers {
		switch strings.ToLower(header.Name) {
		case "from":
			// "Name <email@example.com>" -> the address only; fall back to
			// the whole value when there are no angle brackets.
			if m := angleAddr.FindStringSubmatch(header.Value); m != nil {
				rec.Sender = m[1]
			} else {
				rec.Sender = header.Value
			}
		case "subject":
			rec.Subject = header.Value
		case "date":
			rec.ReceivedAt = header.Value
		}
	}

	rec.Body = plainTextBody(msg.Payload)
	return rec
}

// plainTextBody walks the MIME part tree depth-first and returns the decoded
// content of the first text/plain leaf. HTML-only parts are skipped; a
// multipart container is descended into, in part order.
func plainTextBody(part *gmail.MessagePart) string {
	switch {
	case part.MimeType == "text/plain":
		if part.Body == nil || part.Body.Data == "" {
			return ""
		}
		return decodeBody(part.Body.Data)
	case strings.HasPrefix(part.MimeType, "multipart/"):
		for _, p := range part.Parts {
			if body := plainTextBody(p); body != "" {
				return body
			}
		}
	}
	return ""
}

// decodeBody decodes the base64url message body. Gmail usually omits padding,
// so try the unpadded alphabet first and fall back to the padded one.
func decodeBody(data string) string {
	if b, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return string(b)
	}
	if b, err := base64.URLEncoding.DecodeString(data); err == nil {
		return string(b)
	}
	return ""
}
