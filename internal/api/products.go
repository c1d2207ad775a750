package api

import (
	"context"
	"net/url"
	"strconv"
)

// ProductListParams filters and pages the catalog listing.
type ProductListParams struct {
	Page       int
	Limit      int
	Category   string
	Collection string
	Sort       string // newest | price-asc | price-desc | popular
	Search     string
}

func (p ProductListParams) values() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Category != "" {
		q.Set("category", p.Category)
	}
	if p.Collection != "" {
		q.Set("collection", p.Collection)
	}
	if p.Sort != "" {
		q.Set("sort", p.Sort)
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	return q
}

// ListProducts pages through the public catalog.
func (c *Client) ListProducts(ctx context.Context, params ProductListParams) (Paginated[Product], error) {
	var res Paginated[Product]
	err := c.get(ctx, queryPath("/products", params.values()), &res)
	return res, err
}

// GetProduct fetches one catalog entry by id or slug.
func (c *Client) GetProduct(ctx context.Context, id string) (Product, error) {
	var res Product
	err := c.get(ctx, "/products/"+url.PathEscape(id), &res)
	return res, err
}

// FeaturedProducts returns the curated landing-page picks.
func (c *Client) FeaturedProducts(ctx context.Context) ([]Product, error) {
	var res []Product
	err := c.get(ctx, "/products/featured", &res)
	return res, err
}

// Categories lists shop categories with counts.
func (c *Client) Categories(ctx context.Context) ([]CategoryInfo, error) {
	var res []CategoryInfo
	err := c.get(ctx, "/products/categories", &res)
	return res, err
}

// ListCollections lists the public merchandised collections.
func (c *Client) ListCollections(ctx context.Context) ([]Collection, error) {
	var res []Collection
	err := c.get(ctx, "/collections", &res)
	return res, err
}
