package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// XLSXContentType is the media type of the orders export.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Stats fetches the admin dashboard summary.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if err := c.doRequest(ctx, http.MethodGet, "/admin/stats", nil, nil, &stats); err != nil {
		return nil, fmt.Errorf("fetching stats: %w", err)
	}
	return &stats, nil
}

// ExportOrders downloads the orders spreadsheet, optionally filtered by status.
func (c *Client) ExportOrders(ctx context.Context, status string) ([]byte, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/admin/orders/export", query, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", XLSXContentType)

	data, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("exporting orders: %w", err)
	}
	return data, nil
}

// SendContact submits the contact form.
func (c *Client) SendContact(ctx context.Context, msg ContactMessage) error {
	if err := c.doRequest(ctx, http.MethodPost, "/contact", nil, msg, nil); err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	return nil
}

// ContactMessages lists received contact messages, newest first.
func (c *Client) ContactMessages(ctx context.Context) ([]ContactMessage, error) {
	var messages []ContactMessage
	if err := c.doRequest(ctx, http.MethodGet, "/contact", nil, nil, &messages); err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	return messages, nil
}

// Health checks if the API is available.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var health Health
	if err := c.doRequest(ctx, http.MethodGet, "/health", nil, nil, &health); err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}
	return &health, nil
}
