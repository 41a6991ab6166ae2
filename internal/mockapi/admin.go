package mockapi

import (
	"fmt"
	"net/http"
	"net/mail"
	"net/url"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/thomas/lookbook-terminal/internal/api"
	"github.com/thomas/lookbook-terminal/internal/catalog"
)

const (
	exportSheet   = "Orders"
	maxUploadSize = 32 << 20
)

var exportColumns = []string{"Order", "Date", "Status", "Customer", "Email", "Items", "Total"}

func (s *Server) stats(c *gin.Context) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	stats := api.Stats{
		Orders:         len(s.store.orders),
		Products:       len(s.store.products),
		Messages:       len(s.store.messages),
		OrdersByStatus: make(map[string]int),
	}

	revenue := decimal.Zero
	for _, o := range s.store.orders {
		stats.OrdersByStatus[o.Status]++
		if o.Status != api.OrderCancelled {
			revenue = revenue.Add(decimal.NewFromFloat(o.Total))
		}
	}
	stats.Revenue = revenue.Round(2).InexactFloat64()

	for _, a := range s.store.accounts {
		if a.user.Role != roleAdmin {
			stats.Users++
		}
	}

	c.JSON(http.StatusOK, stats)
}

// exportOrders streams the orders, optionally filtered by status, as an xlsx workbook.
func (s *Server) exportOrders(c *gin.Context) {
	status := c.Query("status")

	s.store.mu.RLock()
	orders := s.ordersWithStatus(status)
	s.store.mu.RUnlock()

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", exportSheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"8C6B4F"}, Pattern: 1},
	})

	for i, name := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, cell, name)
		f.SetCellStyle(exportSheet, cell, cell, headerStyle)
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(exportSheet, col, col, 18)
	}

	for r, o := range orders {
		items := 0
		for _, it := range o.Items {
			items += it.Qty
		}
		row := []any{
			o.OrderNumber,
			o.CreatedAt.Format("2006-01-02 15:04"),
			o.Status,
			o.Shipping.Name,
			o.Shipping.Email,
			items,
			o.Total,
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			fail(c, http.StatusInternalServerError, "building export failed")
			return
		}
	}

	name := "orders.xlsx"
	if status != "" {
		name = fmt.Sprintf("orders-%s.xlsx", status)
	}
	c.Header("Content-Type", api.XLSXContentType)
	c.Header("Content-Disposition", "attachment; filename="+name)
	if err := f.Write(c.Writer); err != nil {
		s.logger.WithError(err).Error("writing export")
	}
}

// ============================================
// Contact
// ============================================

func (s *Server) sendContact(c *gin.Context) {
	var msg api.ContactMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(msg.Name) == "" || strings.TrimSpace(msg.Message) == "" {
		fail(c, http.StatusBadRequest, "name and message are required")
		return
	}
	if _, err := mail.ParseAddress(msg.Email); err != nil {
		fail(c, http.StatusBadRequest, "a valid email is required")
		return
	}
	msg.ID = uuid.NewString()
	msg.CreatedAt = s.nowFunc().UTC()

	s.store.mu.Lock()
	s.store.messages = append(s.store.messages, msg)
	s.store.mu.Unlock()

	c.JSON(http.StatusCreated, msg)
}

func (s *Server) listMessages(c *gin.Context) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	out := make([]api.ContactMessage, 0, len(s.store.messages))
	for i := len(s.store.messages) - 1; i >= 0; i-- {
		out = append(out, s.store.messages[i])
	}
	c.JSON(http.StatusOK, out)
}

// ============================================
// Uploads
// ============================================

// uploadedURL names an accepted file. Only the name is kept; the bytes are discarded.
func uploadedURL(filename string) string {
	return "/uploads/" + uuid.NewString() + strings.ToLower(path.Ext(filename))
}

func mediaType(field, contentType string) string {
	if field == "video" || strings.HasPrefix(contentType, "video/") {
		return catalog.MediaTypeVideo
	}
	return catalog.MediaTypeImage
}

func (s *Server) uploadFiles(field string, multiple bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil {
			fail(c, http.StatusBadRequest, "multipart form expected")
			return
		}
		files := form.File[field]
		if len(files) == 0 {
			fail(c, http.StatusBadRequest, fmt.Sprintf("no %s file in request", field))
			return
		}

		uploads := make([]api.Upload, 0, len(files))
		for _, fh := range files {
			if fh.Size > maxUploadSize {
				fail(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("%s is too large", fh.Filename))
				return
			}
			uploads = append(uploads, api.Upload{
				URL:  uploadedURL(fh.Filename),
				Type: mediaType(field, fh.Header.Get("Content-Type")),
			})
		}

		if multiple {
			c.JSON(http.StatusCreated, gin.H{"files": uploads})
			return
		}
		c.JSON(http.StatusCreated, uploads[0])
	}
}

func (s *Server) uploadFromURL(c *gin.Context) {
	var req struct {
		URL string `json:"url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	u, err := url.Parse(req.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		fail(c, http.StatusBadRequest, "an http(s) url is required")
		return
	}

	typ := catalog.MediaTypeImage
	switch strings.ToLower(path.Ext(u.Path)) {
	case ".mp4", ".webm", ".mov":
		typ = catalog.MediaTypeVideo
	}
	c.JSON(http.StatusCreated, api.Upload{URL: uploadedURL(u.Path), Type: typ})
}
