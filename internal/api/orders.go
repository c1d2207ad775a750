package api

import (
	"context"
	"net/url"
	"strconv"
)

// CreateOrder submits the single atomic order-creation call: inline address,
// cart lines, and payment method in one request.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (CreateOrderResponse, error) {
	var res CreateOrderResponse
	err := c.post(ctx, "/checkout/with-items", req, &res)
	return res, err
}

// ListOrders pages through the user's order history.
func (c *Client) ListOrders(ctx context.Context, page, limit int) (Paginated[Order], error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	var res Paginated[Order]
	err := c.get(ctx, queryPath("/orders", q), &res)
	return res, err
}

// GetOrder fetches one order with its tracking timeline.
func (c *Client) GetOrder(ctx context.Context, id string) (Order, error) {
	var res Order
	err := c.get(ctx, "/orders/"+url.PathEscape(id), &res)
	return res, err
}
