package cache

import (
	"context"
	"time"

	"github.com/thomas/lookbook-terminal/internal/api"
	"github.com/thomas/lookbook-terminal/internal/catalog"
)

// ProductSource is the part of the API client the catalog cache reads from.
type ProductSource interface {
	Products(ctx context.Context, q api.ProductQuery) (*api.ProductPage, error)
	Product(ctx context.Context, id string) (*catalog.Product, error)
	Categories(ctx context.Context) ([]api.Category, error)
}

// Catalog caches product listings, single products and categories.
// It is shared by all SSH sessions.
type Catalog struct {
	src        ProductSource
	pages      *Cache[api.ProductQuery, *api.ProductPage]
	products   *Cache[string, *catalog.Product]
	categories *Cache[struct{}, []api.Category]
}

// NewCatalog creates a catalog cache over src.
func NewCatalog(src ProductSource, ttl time.Duration) *Catalog {
	return &Catalog{
		src:        src,
		pages:      New[api.ProductQuery, *api.ProductPage](ttl),
		products:   New[string, *catalog.Product](ttl),
		categories: New[struct{}, []api.Category](ttl),
	}
}

// Products returns a product listing. Products on the page are also cached by id.
func (c *Catalog) Products(ctx context.Context, q api.ProductQuery) (*api.ProductPage, error) {
	return c.pages.GetOrLoad(ctx, q, func(ctx context.Context) (*api.ProductPage, error) {
		page, err := c.src.Products(ctx, q)
		if err != nil {
			return nil, err
		}
		for i := range page.Products {
			p := page.Products[i]
			if id := p.Identifier(); id != "" {
				c.products.Set(id, &p)
			}
		}
		return page, nil
	})
}

// Product returns one product.
func (c *Catalog) Product(ctx context.Context, id string) (*catalog.Product, error) {
	return c.products.GetOrLoad(ctx, id, func(ctx context.Context) (*catalog.Product, error) {
		return c.src.Product(ctx, id)
	})
}

// Categories returns the category list.
func (c *Catalog) Categories(ctx context.Context) ([]api.Category, error) {
	return c.categories.GetOrLoad(ctx, struct{}{}, c.src.Categories)
}

// Known returns every cached product, e.g. to materialize a wishlist without a request.
func (c *Catalog) Known() []catalog.Product {
	cached := c.products.Values()
	out := make([]catalog.Product, 0, len(cached))
	for _, p := range cached {
		out = append(out, *p)
	}
	return out
}

// Invalidate drops everything, e.g. after an admin edits the catalog.
func (c *Catalog) Invalidate() {
	c.pages.Clear()
	c.products.Clear()
	c.categories.Clear()
}

// Sweep drops expired entries from all caches.
func (c *Catalog) Sweep() int {
	return c.pages.Sweep() + c.products.Sweep() + c.categories.Sweep()
}
