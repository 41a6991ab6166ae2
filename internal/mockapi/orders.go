package mockapi

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thomas/lookbook-terminal/internal/api"
)

func orderTotal(items []api.OrderItem) float64 {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Qty))))
	}
	return total.Round(2).InexactFloat64()
}

func validateOrder(req api.CreateOrderRequest) string {
	if len(req.Items) == 0 {
		return "an order needs at least one item"
	}
	for _, it := range req.Items {
		if it.ProductID == "" || it.Qty < 1 {
			return "every item needs a product and a quantity of at least 1"
		}
	}
	sh := req.Shipping
	if strings.TrimSpace(sh.Name) == "" || strings.TrimSpace(sh.Email) == "" || strings.TrimSpace(sh.Address) == "" {
		return "shipping name, email and address are required"
	}
	return ""
}

// createOrder places an order. Guests may order; a bearer token links the order
// to the account. Prices are taken from the request as captured in the cart.
func (s *Server) createOrder(c *gin.Context) {
	var req api.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateOrder(req); msg != "" {
		fail(c, http.StatusBadRequest, msg)
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	// Check every line before touching stock.
	for _, it := range req.Items {
		i := s.store.productIndex(it.ProductID)
		if i < 0 {
			fail(c, http.StatusBadRequest, fmt.Sprintf("unknown product %s", it.ProductID))
			return
		}
		if p := s.store.products[i]; p.Stock < it.Qty {
			fail(c, http.StatusConflict, fmt.Sprintf("%s is out of stock", p.Name))
			return
		}
	}
	for _, it := range req.Items {
		s.store.products[s.store.productIndex(it.ProductID)].Stock -= it.Qty
	}

	total := orderTotal(req.Items)
	order := api.Order{
		ID:          uuid.NewString(),
		OrderNumber: fmt.Sprintf("LB-%d", s.store.nextOrder),
		Status:      api.OrderPending,
		Items:       req.Items,
		Shipping:    req.Shipping,
		Subtotal:    total,
		Total:       total,
		Notes:       req.Notes,
		CreatedAt:   s.nowFunc().UTC(),
	}
	if a := currentAccount(c); a != nil {
		order.UserID = a.id()
	}
	s.store.nextOrder++
	s.store.orders = append(s.store.orders, order)

	s.logger.WithField("order", order.OrderNumber).WithField("total", total).Info("order placed")
	c.JSON(http.StatusCreated, order)
}

func (s *Server) myOrders(c *gin.Context) {
	id := currentAccount(c).id()

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	out := []api.Order{}
	for _, o := range s.store.orders {
		if o.UserID == id {
			out = append(out, o)
		}
	}
	slices.Reverse(out)
	c.JSON(http.StatusOK, out)
}

func (s *Server) ordersWithStatus(status string) []api.Order {
	out := []api.Order{}
	for _, o := range s.store.orders {
		if status == "" || o.Status == status {
			out = append(out, o)
		}
	}
	slices.Reverse(out)
	return out
}

func (s *Server) listOrders(c *gin.Context) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	c.JSON(http.StatusOK, s.ordersWithStatus(c.Query("status")))
}

func (s *Server) respondWithOrder(c *gin.Context, match func(api.Order) bool) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	i := s.store.orderIndex(match)
	if i < 0 {
		fail(c, http.StatusNotFound, "order not found")
		return
	}
	order := s.store.orders[i]

	a := currentAccount(c)
	if a.user.Role != roleAdmin && order.UserID != a.id() {
		fail(c, http.StatusNotFound, "order not found")
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) getOrder(c *gin.Context) {
	id := c.Param("id")
	s.respondWithOrder(c, func(o api.Order) bool { return o.ID == id })
}

func (s *Server) getOrderByNumber(c *gin.Context) {
	number := c.Param("number")
	s.respondWithOrder(c, func(o api.Order) bool { return strings.EqualFold(o.OrderNumber, number) })
}

func (s *Server) updateOrderStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !slices.Contains(api.OrderStatuses, req.Status) {
		fail(c, http.StatusBadRequest, "status must be one of "+strings.Join(api.OrderStatuses, ", "))
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	id := c.Param("id")
	i := s.store.orderIndex(func(o api.Order) bool { return o.ID == id })
	if i < 0 {
		fail(c, http.StatusNotFound, "order not found")
		return
	}
	if s.store.orders[i].Status == api.OrderCancelled || s.store.orders[i].Status == api.OrderDelivered {
		fail(c, http.StatusConflict, fmt.Sprintf("order is already %s", s.store.orders[i].Status))
		return
	}
	s.store.orders[i].Status = req.Status

	s.logger.WithField("order", s.store.orders[i].OrderNumber).WithField("status", req.Status).Info("order status changed")
	c.JSON(http.StatusOK, s.store.orders[i])
}
