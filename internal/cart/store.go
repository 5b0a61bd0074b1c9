package cart

import (
	"github.com/dreamcandylab/candylab-backend/internal/catalog"
)

const (
	// DefaultQuantity is applied when an add request carries no usable quantity.
	DefaultQuantity = 1
	// MaxQuantity caps a single line. Larger requests are clamped.
	MaxQuantity = 99
)

// Item is one cart line: a product snapshot and how many of it.
type Item struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// LineTotal is price times quantity.
func (i Item) LineTotal() int64 {
	return i.Product.Price * int64(i.Quantity)
}

// Store is a per-session cart keyed by product id. It never holds a zero or
// negative quantity. Not safe for concurrent use.
type Store struct {
	order []string
	items map[string]*Item
}

func NewStore() *Store {
	return &Store{items: make(map[string]*Item)}
}

// AddItem inserts the product or grows its quantity, never past MaxQuantity.
// Quantities below one count as DefaultQuantity.
func (s *Store) AddItem(product catalog.Product, quantity int) {
	if quantity < 1 {
		quantity = DefaultQuantity
	}
	quantity = min(quantity, MaxQuantity)
	if existing, ok := s.items[product.ID]; ok {
		existing.Quantity = min(existing.Quantity+quantity, MaxQuantity)
		return
	}
	s.items[product.ID] = &Item{Product: product, Quantity: quantity}
	s.order = append(s.order, product.ID)
}

// RemoveItem drops the product. Absent ids are ignored.
func (s *Store) RemoveItem(productID string) {
	if _, ok := s.items[productID]; !ok {
		return
	}
	delete(s.items, productID)
	for i, id := range s.order {
		if id == productID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// UpdateQuantity replaces the quantity, clamped to MaxQuantity. Zero or less
// removes the item.
func (s *Store) UpdateQuantity(productID string, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(productID)
		return
	}
	if existing, ok := s.items[productID]; ok {
		existing.Quantity = min(quantity, MaxQuantity)
	}
}

func (s *Store) Clear() {
	s.items = make(map[string]*Item)
	s.order = nil
}

// TotalPrice sums price times quantity over every line.
func (s *Store) TotalPrice() int64 {
	var total int64
	for _, item := range s.items {
		total += item.LineTotal()
	}
	return total
}

func (s *Store) TotalItems() int {
	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

func (s *Store) Len() int {
	return len(s.order)
}

// Items returns the lines in insertion order.
func (s *Store) Items() []Item {
	out := make([]Item, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.items[id])
	}
	return out
}

// Snapshot is the persisted form of a Store.
type Snapshot struct {
	Items []Item `json:"items"`
}

func (s *Store) Snapshot() Snapshot {
	return Snapshot{Items: s.Items()}
}

// Restore replaces the store contents with snap. Lines with a non-positive
// quantity or no product id are skipped and duplicate ids are merged.
func (s *Store) Restore(snap Snapshot) {
	s.Clear()
	for _, item := range snap.Items {
		if item.Product.ID == "" || item.Quantity < 1 {
			continue
		}
		s.AddItem(item.Product, item.Quantity)
	}
}
