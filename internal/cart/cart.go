// Package cart holds the visitor's shopping cart and keeps it persisted.
package cart

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/thomas/lookbook-terminal/internal/api"
	"github.com/thomas/lookbook-terminal/internal/catalog"
	"github.com/thomas/lookbook-terminal/internal/storage"
)

// StorageKey is the persisted location of the cart.
const StorageKey = "cart:v1"

// LineItem is one purchasable selection of a product and its quantity.
type LineItem struct {
	Key          string            `json:"key"`
	ProductID    string            `json:"productId"`
	Name         string            `json:"name"`
	Price        float64           `json:"price"`
	Image        string            `json:"image"`
	Qty          int               `json:"qty"`
	Color        string            `json:"color,omitempty"`
	Size         string            `json:"size,omitempty"`
	Variant      string            `json:"variant,omitempty"`
	VariantLabel string            `json:"variantLabel,omitempty"`
	Options      map[string]string `json:"options,omitempty"`
}

// LineTotal returns price × qty.
func (li LineItem) LineTotal() float64 {
	return decimal.NewFromFloat(li.Price).Mul(decimal.NewFromInt(int64(li.Qty))).InexactFloat64()
}

// AddOptions carries the selection made on the product page.
type AddOptions struct {
	Variant      string
	VariantLabel string
	Color        string
	Size         string
	Options      map[string]string
}

// Totals is derived from the current line items.
type Totals struct {
	Subtotal float64
	Count    int // total quantity
	Lines    int // distinct line items
}

// LineKey builds the composite identity of a selection:
// productId|variant|color|size|serializedOptions.
func LineKey(productID, variant, color, size string, options map[string]string) string {
	opts := "{}"
	if len(options) > 0 {
		// encoding/json sorts map keys, so equal maps serialize equally.
		if data, err := json.Marshal(options); err == nil {
			opts = string(data)
		}
	}
	return strings.Join([]string{productID, variant, color, size, opts}, "|")
}

// Store holds the cart line items. It is owned by a single session and is not safe
// for concurrent mutation.
type Store struct {
	kv     storage.KV
	logger *log.Logger
	items  []LineItem
	totals Totals
}

// New creates a store and rehydrates it from kv. Unreadable or malformed state
// yields an empty cart.
func New(kv storage.KV, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	s := &Store{kv: kv, logger: logger.WithPrefix("cart")}
	s.items = s.rehydrate()
	s.recompute()
	return s
}

func (s *Store) rehydrate() []LineItem {
	data, err := s.kv.Load(StorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("Failed to load cart", "err", err)
		}
		return nil
	}

	var items []LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		s.logger.Warn("Discarding malformed cart", "err", err)
		return nil
	}

	// Drop rows that could not have been written by AddItem and fold repeated keys
	// into the first line with that key.
	valid := items[:0]
	seen := make(map[string]int, len(items))
	for _, it := range items {
		if it.Key == "" {
			continue
		}
		if it.Qty < 1 {
			it.Qty = 1
		}
		if i, ok := seen[it.Key]; ok {
			valid[i].Qty += it.Qty
			continue
		}
		seen[it.Key] = len(valid)
		valid = append(valid, it)
	}
	return valid
}

// AddItem adds one unit of the selection. An existing line with the same key has its
// quantity incremented and keeps the price and image captured when it was first added.
func (s *Store) AddItem(p *catalog.Product, opts AddOptions) LineItem {
	key := LineKey(p.Identifier(), opts.Variant, opts.Color, opts.Size, opts.Options)

	if i := s.indexOf(key); i >= 0 {
		s.items[i].Qty++
		s.changed()
		return s.items[i]
	}

	item := LineItem{
		Key:          key,
		ProductID:    p.Identifier(),
		Name:         p.Name,
		Price:        p.PriceFor(opts.Variant),
		Image:        catalog.ResolveImage(p, opts.Color),
		Qty:          1,
		Color:        opts.Color,
		Size:         opts.Size,
		Variant:      opts.Variant,
		VariantLabel: opts.VariantLabel,
		Options:      cloneOptions(opts.Options),
	}
	if item.VariantLabel == "" {
		if v := p.VariantByID(opts.Variant); v != nil {
			item.VariantLabel = v.Label
		}
	}

	s.items = append(s.items, item)
	s.changed()
	return item
}

// UpdateQty sets the quantity of a line, clamped to at least 1. Unknown keys are ignored.
func (s *Store) UpdateQty(key string, qty int) {
	i := s.indexOf(key)
	if i < 0 {
		return
	}
	s.items[i].Qty = max(1, qty)
	s.changed()
}

// SetQtyText parses a quantity typed by the visitor. Non-numeric input counts as 1.
func (s *Store) SetQtyText(key, text string) {
	qty, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		qty = 1
	}
	s.UpdateQty(key, qty)
}

// RemoveItem deletes a line. Unknown keys are ignored.
func (s *Store) RemoveItem(key string) {
	i := s.indexOf(key)
	if i < 0 {
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.changed()
}

// Clear empties the cart, e.g. after a successful checkout.
func (s *Store) Clear() {
	s.items = nil
	s.changed()
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []LineItem {
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// Item returns the line with the given key.
func (s *Store) Item(key string) (LineItem, bool) {
	if i := s.indexOf(key); i >= 0 {
		return s.items[i], true
	}
	return LineItem{}, false
}

// Totals returns the derived totals.
func (s *Store) Totals() Totals {
	return s.totals
}

// IsEmpty reports whether the cart has no lines.
func (s *Store) IsEmpty() bool {
	return len(s.items) == 0
}

// ItemCount returns the total quantity across all lines.
func (s *Store) ItemCount() int {
	return s.totals.Count
}

// ToOrderItems converts the lines into the checkout payload.
func (s *Store) ToOrderItems() []api.OrderItem {
	out := make([]api.OrderItem, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, api.OrderItem{
			ProductID:    it.ProductID,
			Name:         it.Name,
			Price:        it.Price,
			Qty:          it.Qty,
			Image:        it.Image,
			Color:        it.Color,
			Size:         it.Size,
			Variant:      it.Variant,
			VariantLabel: it.VariantLabel,
			Options:      cloneOptions(it.Options),
		})
	}
	return out
}

func (s *Store) indexOf(key string) int {
	for i := range s.items {
		if s.items[i].Key == key {
			return i
		}
	}
	return -1
}

func (s *Store) changed() {
	s.recompute()
	s.persist()
}

func (s *Store) recompute() {
	sum := decimal.Zero
	count := 0
	for _, it := range s.items {
		sum = sum.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Qty))))
		count += it.Qty
	}
	s.totals = Totals{
		Subtotal: sum.InexactFloat64(),
		Count:    count,
		Lines:    len(s.items),
	}
}

// persist is best effort: the in-memory cart stays authoritative for the session.
func (s *Store) persist() {
	items := s.items
	if items == nil {
		items = []LineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		s.logger.Debug("Failed to encode cart", "err", err)
		return
	}
	if err := s.kv.Save(StorageKey, data); err != nil {
		s.logger.Debug("Failed to persist cart", "err", err)
	}
}

func cloneOptions(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
