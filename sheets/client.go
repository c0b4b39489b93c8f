package sheets

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Client wraps the Google Sheets API for appending rows to one spreadsheet.
type Client struct {
	srv           *sheets.Service
	spreadsheetID string
}

// NewClient creates a Sheets client bound to a single spreadsheet.
func NewClient(ctx context.Context, ts oauth2.TokenSource, spreadsheetID string) (*Client, error) {
	srv, err := sheets.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create Sheets service: %w", err)
	}
	return &Client{srv: srv, spreadsheetID: spreadsheetID}, nil
}

// AppendRow appends one row past the last populated row of the named range.
// Values are inserted literally (RAW), never evaluated as formulas, and
// existing rows are never overwritten.
func (c *Client) AppendRow(ctx context.Context, rangeName string, row []any) error {
	body := &sheets.ValueRange{Values: [][]any{row}}
	_, err := c.srv.Spreadsheets.Values.Append(c.spreadsheetID, rangeName, body).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append row to %s: %w", rangeName, err)
	}
	return nil
}
