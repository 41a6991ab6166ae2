package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/thomas/lookbook-terminal/internal/catalog"
)

// ============================================
// Products
// ============================================

// Values encodes the query as URL parameters. Zero fields are left out.
func (q ProductQuery) Values() url.Values {
	query := url.Values{}
	if q.Search != "" {
		query.Set("search", q.Search)
	}
	if q.Category != "" {
		query.Set("category", q.Category)
	}
	if q.Sort != "" {
		query.Set("sort", q.Sort)
	}
	if q.Featured {
		query.Set("featured", "true")
	}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	return query
}

// Products lists products matching the query.
func (c *Client) Products(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	var page ProductPage
	if err := c.doRequest(ctx, http.MethodGet, "/products", q.Values(), nil, &page); err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return &page, nil
}

// Product fetches one product.
func (c *Client) Product(ctx context.Context, id string) (*catalog.Product, error) {
	var p catalog.Product
	if err := c.doRequest(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, nil, &p); err != nil {
		return nil, fmt.Errorf("fetching product %s: %w", id, err)
	}
	return &p, nil
}

// ProductsByIDs fetches several products at once, e.g. to materialize a wishlist.
// Unknown ids are omitted by the server.
func (c *Client) ProductsByIDs(ctx context.Context, ids []string) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	body := struct {
		IDs []string `json:"ids"`
	}{IDs: ids}

	var products []catalog.Product
	if err := c.doRequest(ctx, http.MethodPost, "/products/batch", nil, body, &products); err != nil {
		return nil, fmt.Errorf("fetching products batch: %w", err)
	}
	return products, nil
}

// CreateProduct adds a product to the catalog.
func (c *Client) CreateProduct(ctx context.Context, p catalog.Product) (*catalog.Product, error) {
	var created catalog.Product
	if err := c.doRequest(ctx, http.MethodPost, "/products", nil, p, &created); err != nil {
		return nil, fmt.Errorf("creating product: %w", err)
	}
	return &created, nil
}

// UpdateProduct replaces a product.
func (c *Client) UpdateProduct(ctx context.Context, id string, p catalog.Product) (*catalog.Product, error) {
	var updated catalog.Product
	if err := c.doRequest(ctx, http.MethodPut, "/products/"+url.PathEscape(id), nil, p, &updated); err != nil {
		return nil, fmt.Errorf("updating product %s: %w", id, err)
	}
	return &updated, nil
}

// DeleteProduct removes a product.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil, nil, nil); err != nil {
		return fmt.Errorf("deleting product %s: %w", id, err)
	}
	return nil
}

// ============================================
// Categories
// ============================================

// Categories lists all categories.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.doRequest(ctx, http.MethodGet, "/categories", nil, nil, &categories); err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return categories, nil
}

// CreateCategory adds a category.
func (c *Client) CreateCategory(ctx context.Context, cat Category) (*Category, error) {
	var created Category
	if err := c.doRequest(ctx, http.MethodPost, "/categories", nil, cat, &created); err != nil {
		return nil, fmt.Errorf("creating category: %w", err)
	}
	return &created, nil
}

// UpdateCategory replaces a category.
func (c *Client) UpdateCategory(ctx context.Context, id string, cat Category) (*Category, error) {
	var updated Category
	if err := c.doRequest(ctx, http.MethodPut, "/categories/"+url.PathEscape(id), nil, cat, &updated); err != nil {
		return nil, fmt.Errorf("updating category %s: %w", id, err)
	}
	return &updated, nil
}

// DeleteCategory removes a category.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/categories/"+url.PathEscape(id), nil, nil, nil); err != nil {
		return fmt.Errorf("deleting category %s: %w", id, err)
	}
	return nil
}
