package gmail

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const (
	user        = "me"
	unreadQuery = "is:unread in:inbox"
)

// Client wraps the Gmail API for the operations the workflow needs: listing
// unread inbox messages, fetching full messages, and marking them read.
type Client struct {
	srv *gmail.Service
}

// NewClient creates a Gmail client authenticated by the given token source.
func NewClient(ctx context.Context, ts oauth2.TokenSource) (*Client, error) {
	srv, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create Gmail service: %w", err)
	}
	return &Client{srv: srv}, nil
}

// ListUnread returns the IDs of unread messages in the INBOX. The order is
// whatever the API returns; it is not guaranteed to reflect arrival order.
// Only the first page is fetched, which is plenty for low message volume.
func (c *Client) ListUnread(ctx context.Context) ([]string, error) {
	res, err := c.srv.Users.Messages.List(user).Q(unreadQuery).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list unread messages: %w", err)
	}
	ids := make([]string, 0, len(res.Messages))
	for _, msg := range res.Messages {
		ids = append(ids, msg.Id)
	}
	return ids, nil
}

// Fetch retrieves the full message for the given ID.
func (c *Client) Fetch(ctx context.Context, id string) (*gmail.Message, error) {
	msg, err := c.srv.Users.Messages.Get(user, id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetch message %s: %w", id, err)
	}
	return msg, nil
}

// FetchRecord fetches a message and extracts its record in one step.
func (c *Client) FetchRecord(ctx context.Context, id string) (EmailRecord, error) {
	msg, err := c.Fetch(ctx, id)
	if err != nil {
		return EmailRecord{}, err
	}
	return Extract(msg), nil
}

// MarkRead removes the UNREAD label from the given message.
func (c *Client) MarkRead(ctx context.Context, id string) error {
	req := &gmail.ModifyMessageRequest{RemoveLabelIds: []string{"UNREAD"}}
	if _, err := c.srv.Users.Messages.Modify(user, id, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("mark message %s read: %w", id, err)
	}
	return nil
}
