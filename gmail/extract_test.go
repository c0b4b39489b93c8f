package gmail

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	gmailapi "google.golang.org/api/gmail/v1"
)

func b64(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func textPart(mimeType, content string) *gmailapi.MessagePart {
	return &gmailapi.MessagePart{
		MimeType: mimeType,
		Body:     &gmailapi.MessagePartBody{Data: b64(content)},
	}
}

func TestExtract_Headers(t *testing.T) {
	tests := []struct {
		name    string
		headers []*gmailapi.MessagePartHeader
		want    EmailRecord
	}{
		{
			name: "sender extracted from angle brackets",
			headers: []*gmailapi.MessagePartHeader{
				{Name: "From", Value: "Alice Example <alice@example.com>"},
				{Name: "Subject", Value: "Hello"},
				{Name: "Date", Value: "Mon, 2 Jun 2025 10:00:00 +0000"},
			},
			want: EmailRecord{
				Sender:     "alice@example.com",
				Subject:    "Hello",
				ReceivedAt: "Mon, 2 Jun 2025 10:00:00 +0000",
			},
		},
		{
			name: "sender without angle brackets kept verbatim",
			headers: []*gmailapi.MessagePartHeader{
				{Name: "From", Value: "bob@example.com"},
			},
			want: EmailRecord{Sender: "bob@example.com"},
		},
		{
			name: "header names matched case-insensitively",
			headers: []*gmailapi.MessagePartHeader{
				{Name: "FROM", Value: "carol@example.com"},
				{Name: "subject", Value: "mixed case"},
			},
			want: EmailRecord{Sender: "carol@example.com", Subject: "mixed case"},
		},
		{
			name:    "no headers yields empty fields",
			headers: nil,
			want:    EmailRecord{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := &gmailapi.Message{Payload: &gmailapi.MessagePart{Headers: tt.headers}}
			got := Extract(msg)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_Body(t *testing.T) {
	tests := []struct {
		name    string
		payload *gmailapi.MessagePart
		want    string
	}{
		{
			name:    "simple plain text message",
			payload: textPart("text/plain", "plain body"),
			want:    "plain body",
		},
		{
			name:    "html only message yields no body",
			payload: textPart("text/html", "<p>html</p>"),
			want:    "",
		},
		{
			name: "html leaf before nested plain text leaf",
			payload: &gmailapi.MessagePart{
				MimeType: "multipart/alternative",
				Parts: []*gmailapi.MessagePart{
					textPart("text/html", "<p>html</p>"),
					{
						MimeType: "multipart/related",
						Parts: []*gmailapi.MessagePart{
							textPart("text/plain", "nested plain"),
						},
					},
				},
			},
			want: "nested plain",
		},
		{
			name: "first plain text leaf wins",
			payload: &gmailapi.MessagePart{
				MimeType: "multipart/mixed",
				Parts: []*gmailapi.MessagePart{
					textPart("text/plain", "first"),
					textPart("text/plain", "second"),
				},
			},
			want: "first",
		},
		{
			name: "empty plain leaf is skipped for a later one",
			payload: &gmailapi.MessagePart{
				MimeType: "multipart/mixed",
				Parts: []*gmailapi.MessagePart{
					{MimeType: "text/plain", Body: &gmailapi.MessagePartBody{}},
					textPart("text/plain", "later"),
				},
			},
			want: "later",
		},
		{
			name: "padded base64 data still decodes",
			payload: &gmailapi.MessagePart{
				MimeType: "text/plain",
				Body: &gmailapi.MessagePartBody{
					Data: base64.URLEncoding.EncodeToString([]byte("padded")),
				},
			},
			want: "padded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := &gmailapi.Message{Payload: tt.payload}
			assert.Equal(t, tt.want, Extract(msg).Body)
		})
	}
}

func TestEmailRecord_Empty(t *testing.T) {
	assert.True(t, EmailRecord{}.Empty())
	assert.False(t, EmailRecord{Subject: "x"}.Empty())
	assert.True(t, Extract(&gmailapi.Message{}).Empty())
	assert.True(t, Extract(nil).Empty())
}

func TestEmailRecord_Row(t *testing.T) {
	tests := []struct {
		name string
		rec  EmailRecord
		want []any
	}{
		{
			name: "all fields present pass through untouched",
			rec: EmailRecord{
				Sender:     "alice@example.com",
				Subject:    "Hi",
				ReceivedAt: "Mon, 2 Jun 2025 10:00:00 +0000",
				Body:       "hello",
			},
			want: []any{"alice@example.com", "Hi", "Mon, 2 Jun 2025 10:00:00 +0000", "hello"},
		},
		{
			name: "absent fields replaced by placeholders",
			rec:  EmailRecord{Subject: "only subject"},
			want: []any{"Unknown", "only subject", "Unknown Date", "No Body"},
		},
		{
			name: "everything absent yields all placeholders",
			rec:  EmailRecord{},
			want: []any{"Unknown", "No Subject", "Unknown Date", "No Body"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rec.Row())
		})
	}
}
