package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// CreateOrder places an order for the current customer.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	var order Order
	if err := c.doRequest(ctx, http.MethodPost, "/orders", nil, req, &order); err != nil {
		return nil, fmt.Errorf("creating order: %w", err)
	}
	return &order, nil
}

// MyOrders lists the orders of the current customer.
func (c *Client) MyOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := c.doRequest(ctx, http.MethodGet, "/orders/mine", nil, nil, &orders); err != nil {
		return nil, fmt.Errorf("listing my orders: %w", err)
	}
	return orders, nil
}

// Orders lists all orders, optionally only those with status.
func (c *Client) Orders(ctx context.Context, status string) ([]Order, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}

	var orders []Order
	if err := c.doRequest(ctx, http.MethodGet, "/orders", query, nil, &orders); err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return orders, nil
}

// Order fetches an order by id.
func (c *Client) Order(ctx context.Context, id string) (*Order, error) {
	var order Order
	if err := c.doRequest(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil, nil, &order); err != nil {
		return nil, fmt.Errorf("fetching order %s: %w", id, err)
	}
	return &order, nil
}

// OrderByNumber fetches an order by its customer facing number.
func (c *Client) OrderByNumber(ctx context.Context, number string) (*Order, error) {
	var order Order
	if err := c.doRequest(ctx, http.MethodGet, "/orders/number/"+url.PathEscape(number), nil, nil, &order); err != nil {
		return nil, fmt.Errorf("fetching order %s: %w", number, err)
	}
	return &order, nil
}

// UpdateOrderStatus sets an order's status.
func (c *Client) UpdateOrderStatus(ctx context.Context, id, status string) (*Order, error) {
	req := struct {
		Status string `json:"status"`
	}{Status: status}

	var order Order
	if err := c.doRequest(ctx, http.MethodPatch, "/orders/"+url.PathEscape(id)+"/status", nil, req, &order); err != nil {
		return nil, fmt.Errorf("updating order %s: %w", id, err)
	}
	return &order, nil
}
