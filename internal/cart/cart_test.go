package cart

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomas/lookbook-terminal/internal/catalog"
	"github.com/thomas/lookbook-terminal/internal/storage"
)

func shirt() *catalog.Product {
	return &catalog.Product{
		ID:    "shirt-1",
		Name:  "Linen Shirt",
		Price: 49.99,
		Media: catalog.NewPerColorMedia([]string{"Sand", "Navy"}, map[string][]catalog.Media{
			"Sand": {{URL: "sand.jpg"}},
			"Navy": {{URL: "navy.mp4", Type: catalog.MediaTypeVideo}, {URL: "navy.jpg"}},
		}),
		Variants: []catalog.Variant{{ID: "silk", Label: "Silk blend", Price: 79}},
	}
}

func TestAddSameSelectionTwiceIncrementsQty(t *testing.T) {
	s := New(storage.NewMemory(), nil)

	s.AddItem(shirt(), AddOptions{Color: "Sand", Size: "M"})
	s.AddItem(shirt(), AddOptions{Color: "Sand", Size: "M"})

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Qty)
}

func TestAddDifferentSizeCreatesTwoLines(t *testing.T) {
	s := New(storage.NewMemory(), nil)

	s.AddItem(shirt(), AddOptions{Color: "Sand", Size: "M"})
	s.AddItem(shirt(), AddOptions{Color: "Sand", Size: "L"})

	items := s.Items()
	require.Len(t, items, 2)
	assert.NotEqual(t, items[0].Key, items[1].Key)
}

func TestAddDifferentOptionsCreatesTwoLines(t *testing.T) {
	s := New(storage.NewMemory(), nil)

	s.AddItem(shirt(), AddOptions{Size: "M", Options: map[string]string{"monogram": "AB"}})
	s.AddItem(shirt(), AddOptions{Size: "M", Options: map[string]string{"monogram": "CD"}})
	s.AddItem(shirt(), AddOptions{Size: "M", Options: map[string]string{"monogram": "AB"}})

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].Qty)
}

func TestAddResolvesImageAndSnapshotsPrice(t *testing.T) {
	s := New(storage.NewMemory(), nil)

	item := s.AddItem(shirt(), AddOptions{Color: "Navy", Variant: "silk"})
	assert.Equal(t, "navy.jpg", item.Image)
	assert.Equal(t, 79.0, item.Price)
	assert.Equal(t, "Silk blend", item.VariantLabel)
	assert.Equal(t, "shirt-1", item.ProductID)
}

func TestReAddKeepsOriginalPrice(t *testing.T) {
	s := New(storage.NewMemory(), nil)

	p := shirt()
	s.AddItem(p, AddOptions{Size: "S"})

	p.Price = 10
	item := s.AddItem(p, AddOptions{Size: "S"})

	assert.Equal(t, 49.99, item.Price)
	assert.Equal(t, 2, item.Qty)
}

func TestAddUsesAlternateIdentifier(t *testing.T) {
	s := New(storage.NewMemory(), nil)

	item := s.AddItem(&catalog.Product{AltID: "mongo-7", Name: "Tote", Price: 20}, AddOptions{})
	assert.Equal(t, "mongo-7", item.ProductID)
	assert.Equal(t, "mongo-7||||{}", item.Key)
}

func TestUpdateQtyClamps(t *testing.T) {
	s := New(storage.NewMemory(), nil)
	item := s.AddItem(shirt(), AddOptions{})

	s.UpdateQty(item.Key, 0)
	got, ok := s.Item(item.Key)
	require.True(t, ok)
	assert.Equal(t, 1, got.Qty)

	s.UpdateQty(item.Key, -4)
	got, _ = s.Item(item.Key)
	assert.Equal(t, 1, got.Qty)

	s.UpdateQty(item.Key, 5)
	got, _ = s.Item(item.Key)
	assert.Equal(t, 5, got.Qty)

	// Unknown keys are ignored.
	s.UpdateQty("missing", 3)
	assert.Len(t, s.Items(), 1)
}

func TestSetQtyTextNonNumericIsOne(t *testing.T) {
	s := New(storage.NewMemory(), nil)
	item := s.AddItem(shirt(), AddOptions{})
	s.UpdateQty(item.Key, 4)

	s.SetQtyText(item.Key, "lots")
	got, _ := s.Item(item.Key)
	assert.Equal(t, 1, got.Qty)

	s.SetQtyText(item.Key, " 3 ")
	got, _ = s.Item(item.Key)
	assert.Equal(t, 3, got.Qty)
}

func TestSubtotal(t *testing.T) {
	s := New(storage.NewMemory(), nil)

	a := s.AddItem(&catalog.Product{ID: "a", Price: 0.1}, AddOptions{})
	s.UpdateQty(a.Key, 3)
	b := s.AddItem(&catalog.Product{ID: "b", Price: 0.2}, AddOptions{})

	totals := s.Totals()
	assert.Equal(t, 0.5, totals.Subtotal)
	assert.Equal(t, 4, totals.Count)
	assert.Equal(t, 2, totals.Lines)

	before := s.Totals().Subtotal
	bItem, _ := s.Item(b.Key)
	s.RemoveItem(b.Key)
	assert.InDelta(t, before-bItem.LineTotal(), s.Totals().Subtotal, 1e-9)
	assert.Equal(t, 0.3, s.Totals().Subtotal)
}

func TestRemoveAndClear(t *testing.T) {
	s := New(storage.NewMemory(), nil)
	item := s.AddItem(shirt(), AddOptions{Size: "M"})
	s.AddItem(shirt(), AddOptions{Size: "L"})

	s.RemoveItem("missing")
	assert.Len(t, s.Items(), 2)

	s.RemoveItem(item.Key)
	assert.Len(t, s.Items(), 1)

	s.Clear()
	assert.True(t, s.IsEmpty())
	assert.Equal(t, Totals{}, s.Totals())
}

func TestPersistsEveryMutation(t *testing.T) {
	kv := storage.NewMemory()
	s := New(kv, nil)
	item := s.AddItem(shirt(), AddOptions{Color: "Sand"})

	data, err := kv.Load(StorageKey)
	require.NoError(t, err)
	var stored []LineItem
	require.NoError(t, json.Unmarshal(data, &stored))
	require.Len(t, stored, 1)
	assert.Equal(t, item.Key, stored[0].Key)

	s.Clear()
	data, err = kv.Load(StorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestRehydrate(t *testing.T) {
	kv := storage.NewMemory()
	first := New(kv, nil)
	first.AddItem(shirt(), AddOptions{Size: "M"})
	first.AddItem(shirt(), AddOptions{Size: "M"})

	second := New(kv, nil)
	items := second.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Qty)
	assert.InDelta(t, 99.98, second.Totals().Subtotal, 1e-9)
}

func TestRehydrateMergesRepeatedKeys(t *testing.T) {
	kv := storage.NewMemory()
	key := LineKey("shirt-1", "", "", "M", nil)
	stored, err := json.Marshal([]LineItem{
		{Key: key, ProductID: "shirt-1", Name: "Linen Shirt", Price: 40, Size: "M", Qty: 2},
		{Key: "", ProductID: "ghost", Price: 5, Qty: 1},
		{Key: key, ProductID: "shirt-1", Name: "Linen Shirt", Price: 40, Size: "M", Qty: 0},
	})
	require.NoError(t, err)
	require.NoError(t, kv.Save(StorageKey, stored))

	s := New(kv, nil)
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Qty)

	s.AddItem(shirt(), AddOptions{Size: "M"})
	items = s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].Qty)
	assert.InDelta(t, 160.0, s.Totals().Subtotal, 1e-9)
}

func TestCorruptedStateYieldsEmptyCart(t *testing.T) {
	kv := storage.NewMemory()
	require.NoError(t, kv.Save(StorageKey, []byte("{not json")))

	s := New(kv, nil)
	assert.True(t, s.IsEmpty())
	assert.Equal(t, 0.0, s.Totals().Subtotal)
}

type failingKV struct{}

func (failingKV) Load(string) ([]byte, error) { return nil, errors.New("disk on fire") }
func (failingKV) Save(string, []byte) error   { return errors.New("disk on fire") }
func (failingKV) Remove(string) error         { return errors.New("disk on fire") }

func TestPersistenceFailuresAreSwallowed(t *testing.T) {
	s := New(failingKV{}, nil)
	assert.True(t, s.IsEmpty())

	s.AddItem(shirt(), AddOptions{})
	assert.Len(t, s.Items(), 1)
	assert.Equal(t, 49.99, s.Totals().Subtotal)
}

func TestLineKeyIsOrderIndependentForOptions(t *testing.T) {
	a := LineKey("p", "v", "c", "s", map[string]string{"x": "1", "y": "2"})
	b := LineKey("p", "v", "c", "s", map[string]string{"y": "2", "x": "1"})
	assert.Equal(t, a, b)
	assert.Equal(t, `p|v|c|s|{"x":"1","y":"2"}`, a)
}

func TestToOrderItems(t *testing.T) {
	s := New(storage.NewMemory(), nil)
	item := s.AddItem(shirt(), AddOptions{Color: "Sand", Size: "M", Options: map[string]string{"gift": "yes"}})
	s.UpdateQty(item.Key, 3)

	lines := s.ToOrderItems()
	require.Len(t, lines, 1)
	assert.Equal(t, "shirt-1", lines[0].ProductID)
	assert.Equal(t, 3, lines[0].Qty)
	assert.Equal(t, "sand.jpg", lines[0].Image)
	assert.Equal(t, map[string]string{"gift": "yes"}, lines[0].Options)
	assert.Equal(t, 3, s.ItemCount())
}
