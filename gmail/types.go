package gmail

// Placeholder values substituted for fields that could not be extracted.
// Rows are never written with empty cells.
const (
	PlaceholderSender  = "Unknown"
	PlaceholderSubject = "No Subject"
	PlaceholderDate    = "Unknown Date"
	PlaceholderBody    = "No Body"
)

// EmailRecord holds the fields extracted from a Gmail message. An empty
// string means the field was absent from the message.
type EmailRecord struct {
	Sender     string
	Subject    string
	ReceivedAt string
	Body       string
}

// Empty reports whether no field at all could be extracted.
func (r EmailRecord) Empty() bool {
	return r.Sender == "" && r.Subject == "" && r.ReceivedAt == "" && r.Body == ""
}

// Row returns the record as a spreadsheet row [sender, subject, received_at,
// body], with absent fields replaced by their placeholders.
func (r EmailRecord) Row() []any {
	return []any{
		orPlaceholder(r.Sender, PlaceholderSender),
		orPlaceholder(r.Subject, PlaceholderSubject),
		orPlaceholder(r.ReceivedAt, PlaceholderDate),
		orPlaceholder(r.Body, PlaceholderBody),
	}
}

func orPlaceholder(v, placeholder string) string {
	if v == "" {
		return placeholder
	}
	return v
}
