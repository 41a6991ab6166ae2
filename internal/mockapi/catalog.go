package mockapi

import (
	"cmp"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/thomas/lookbook-terminal/internal/api"
	"github.com/thomas/lookbook-terminal/internal/catalog"
)

const (
	defaultPageSize = 12
	maxPageSize     = 100
	maxBatchIDs     = 100
)

// ============================================
// Products
// ============================================

func (s *Server) listProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	if limit < 1 {
		limit = defaultPageSize
	}
	limit = min(limit, maxPageSize)

	s.store.mu.RLock()
	filtered := filterProducts(s.store.products, c.Query("search"), c.Query("category"), c.Query("featured") == "true")
	s.store.mu.RUnlock()

	sortProducts(filtered, c.Query("sort"))

	total := len(filtered)
	start := (page - 1) * limit
	end := min(start+limit, total)
	if start >= total {
		filtered = []catalog.Product{}
	} else {
		filtered = filtered[start:end]
	}

	c.JSON(http.StatusOK, api.ProductPage{
		Products: filtered,
		Total:    total,
		Page:     page,
		Pages:    (total + limit - 1) / limit,
	})
}

// filterProducts returns a copy of the products matching every given filter.
// category matches either the category name or its slug.
func filterProducts(products []catalog.Product, search, category string, featured bool) []catalog.Product {
	search = strings.ToLower(strings.TrimSpace(search))
	category = strings.TrimSpace(category)

	filtered := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		if category != "" && !strings.EqualFold(p.Category, category) && slugify(p.Category) != category {
			continue
		}
		if featured && !p.Featured {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

// sortProducts orders products in place. Newest first is the reverse of insertion order.
func sortProducts(products []catalog.Product, order string) {
	switch order {
	case api.SortPriceAsc:
		slices.SortStableFunc(products, func(a, b catalog.Product) int { return cmp.Compare(a.Price, b.Price) })
	case api.SortPriceDesc:
		slices.SortStableFunc(products, func(a, b catalog.Product) int { return cmp.Compare(b.Price, a.Price) })
	case api.SortName:
		slices.SortStableFunc(products, func(a, b catalog.Product) int {
			return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		})
	default:
		slices.Reverse(products)
	}
}

func (s *Server) getProduct(c *gin.Context) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	i := s.store.productIndex(c.Param("id"))
	if i < 0 {
		fail(c, http.StatusNotFound, "product not found")
		return
	}
	c.JSON(http.StatusOK, s.store.products[i])
}

func (s *Server) batchProducts(c *gin.Context) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.IDs) > maxBatchIDs {
		fail(c, http.StatusBadRequest, "too many ids")
		return
	}

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	out := make([]catalog.Product, 0, len(req.IDs))
	for _, id := range req.IDs {
		if i := s.store.productIndex(id); i >= 0 {
			out = append(out, s.store.products[i])
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createProduct(c *gin.Context) {
	var p catalog.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(p.Name) == "" || p.Price < 0 {
		fail(c, http.StatusBadRequest, "name and a non-negative price are required")
		return
	}
	if p.Identifier() == "" {
		p.ID = uuid.NewString()
	}

	s.store.mu.Lock()
	s.store.products = append(s.store.products, p)
	s.store.mu.Unlock()

	s.logger.WithField("product", p.Identifier()).Info("product created")
	c.JSON(http.StatusCreated, p)
}

func (s *Server) updateProduct(c *gin.Context) {
	var p catalog.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	i := s.store.productIndex(c.Param("id"))
	if i < 0 {
		fail(c, http.StatusNotFound, "product not found")
		return
	}
	existing := s.store.products[i]
	p.ID, p.AltID = existing.ID, existing.AltID
	s.store.products[i] = p

	c.JSON(http.StatusOK, p)
}

func (s *Server) deleteProduct(c *gin.Context) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	i := s.store.productIndex(c.Param("id"))
	if i < 0 {
		fail(c, http.StatusNotFound, "product not found")
		return
	}
	s.store.products = slices.Delete(s.store.products, i, i+1)
	c.Status(http.StatusNoContent)
}

// ============================================
// Categories
// ============================================

func slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

func (s *Server) listCategories(c *gin.Context) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	c.JSON(http.StatusOK, s.store.categories)
}

func (s *Server) createCategory(c *gin.Context) {
	var cat api.Category
	if err := c.ShouldBindJSON(&cat); err != nil || strings.TrimSpace(cat.Name) == "" {
		fail(c, http.StatusBadRequest, "category name is required")
		return
	}
	cat.ID = uuid.NewString()
	if cat.Slug == "" {
		cat.Slug = slugify(cat.Name)
	}

	s.store.mu.Lock()
	s.store.categories = append(s.store.categories, cat)
	s.store.mu.Unlock()

	c.JSON(http.StatusCreated, cat)
}

func (s *Server) updateCategory(c *gin.Context) {
	var cat api.Category
	if err := c.ShouldBindJSON(&cat); err != nil || strings.TrimSpace(cat.Name) == "" {
		fail(c, http.StatusBadRequest, "category name is required")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	i := s.store.categoryIndex(c.Param("id"))
	if i < 0 {
		fail(c, http.StatusNotFound, "category not found")
		return
	}
	cat.ID = s.store.categories[i].ID
	if cat.Slug == "" {
		cat.Slug = slugify(cat.Name)
	}
	s.store.categories[i] = cat

	c.JSON(http.StatusOK, cat)
}

func (s *Server) deleteCategory(c *gin.Context) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	i := s.store.categoryIndex(c.Param("id"))
	if i < 0 {
		fail(c, http.StatusNotFound, "category not found")
		return
	}
	s.store.categories = slices.Delete(s.store.categories, i, i+1)
	c.Status(http.StatusNoContent)
}
