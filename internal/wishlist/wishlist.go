// Package wishlist keeps the set of products a visitor has liked.
package wishlist

import (
	"encoding/json"
	"errors"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/thomas/lookbook-terminal/internal/catalog"
	"github.com/thomas/lookbook-terminal/internal/storage"
)

// StorageKey is the persisted location of the liked ids.
const StorageKey = "wishlist:v1"

// Store is an ordered set of liked product ids. It is owned by a single session.
type Store struct {
	kv     storage.KV
	logger *log.Logger
	ids    []string
}

// New creates a store and rehydrates it from kv.
func New(kv storage.KV, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	s := &Store{kv: kv, logger: logger.WithPrefix("wishlist")}
	s.ids = s.rehydrate()
	return s
}

func (s *Store) rehydrate() []string {
	data, err := s.kv.Load(StorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("Failed to load wishlist", "err", err)
		}
		return nil
	}

	var stored []string
	if err := json.Unmarshal(data, &stored); err != nil {
		s.logger.Warn("Discarding malformed wishlist", "err", err)
		return nil
	}

	var ids []string
	for _, id := range stored {
		if id != "" && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Toggle likes the product if it is not liked yet, otherwise unlikes it.
// It returns whether the product is liked afterwards.
func (s *Store) Toggle(productID string) bool {
	if productID == "" {
		return false
	}
	if i := slices.Index(s.ids, productID); i >= 0 {
		s.ids = slices.Delete(s.ids, i, i+1)
		s.persist()
		return false
	}
	s.ids = append(s.ids, productID)
	s.persist()
	return true
}

// Remove unlikes the product; a product that is not liked is ignored.
func (s *Store) Remove(productID string) {
	i := slices.Index(s.ids, productID)
	if i < 0 {
		return
	}
	s.ids = slices.Delete(s.ids, i, i+1)
	s.persist()
}

// Clear unlikes everything.
func (s *Store) Clear() {
	s.ids = nil
	s.persist()
}

// Has reports whether the product is liked.
func (s *Store) Has(productID string) bool {
	return slices.Contains(s.ids, productID)
}

// IDs returns the liked ids in the order they were liked.
func (s *Store) IDs() []string {
	return slices.Clone(s.ids)
}

// Len returns the number of liked ids.
func (s *Store) Len() int {
	return len(s.ids)
}

// Items joins the liked ids against a catalog, matching either identifier field.
// Ids without a catalog entry are left out of the result but stay liked.
func (s *Store) Items(products []catalog.Product) []catalog.Product {
	items := make([]catalog.Product, 0, len(s.ids))
	for _, id := range s.ids {
		for i := range products {
			if products[i].Matches(id) {
				items = append(items, products[i])
				break
			}
		}
	}
	return items
}

func (s *Store) persist() {
	ids := s.ids
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		s.logger.Debug("Failed to encode wishlist", "err", err)
		return
	}
	if err := s.kv.Save(StorageKey, data); err != nil {
		s.logger.Debug("Failed to persist wishlist", "err", err)
	}
}
