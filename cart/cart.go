// Package cart holds a customer's in-progress equipment selection and keeps it
// in sync with a key/value store so it survives across requests.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"rental-quotes/models"
)

// Storage is a string key/value store. Get reports ok=false when the key is absent.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Cart is an ordered collection of line items, at most one per equipment id.
// Every mutation is written through to Storage. A failed write is logged and the
// in-memory state is kept.
type Cart struct {
	mu      sync.Mutex
	items   []models.CartLineItem
	storage Storage
	key     string
}

// New returns an empty cart that persists under key. A nil storage disables persistence.
func New(storage Storage, key string) *Cart {
	return &Cart{storage: storage, key: key, items: []models.CartLineItem{}}
}

// Open loads the cart stored under key. Malformed stored data yields an empty cart.
func Open(ctx context.Context, storage Storage, key string) (*Cart, error) {
	c := New(storage, key)
	if storage == nil {
		return c, nil
	}

	raw, ok, err := storage.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart %s: %w", key, err)
	}
	if !ok || raw == "" {
		return c, nil
	}

	var items []models.CartLineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		log.Printf("⚠️ Cart.Open: Ignoring malformed cart data for %s: %v", key, err)
		return c, nil
	}
	c.items = normalize(items)
	return c, nil
}

// Key returns the storage key the cart persists under
func (c *Cart) Key() string {
	return c.key
}

// Items returns a copy of the current line items in insertion order
func (c *Cart) Items() []models.CartLineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.CartLineItem, len(c.items))
	copy(out, c.items)
	return out
}

// TotalItems returns the sum of quantities across all lines
func (c *Cart) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return totalItems(c.items)
}

// Response returns the cart in its API shape
func (c *Cart) Response() models.CartResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]models.CartLineItem, len(c.items))
	copy(items, c.items)
	return models.CartResponse{Items: items, TotalItems: totalItems(items)}
}

// AddItem increments the line for equipment by one, or appends it with quantity 1
func (c *Cart) AddItem(ctx context.Context, equipment models.Equipment) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(equipment.ID); i >= 0 {
		c.items[i].Quantity++
	} else {
		c.items = append(c.items, models.CartLineItem{Equipment: equipment, Quantity: 1})
	}
	c.persist(ctx)
}

// RemoveItem deletes the whole line for equipmentID. Unknown ids are ignored.
func (c *Cart) RemoveItem(ctx context.Context, equipmentID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(equipmentID)
	c.persist(ctx)
}

// UpdateQuantity sets the line's quantity. A quantity of zero or less removes the line.
func (c *Cart) UpdateQuantity(ctx context.Context, equipmentID int64, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if quantity <= 0 {
		c.remove(equipmentID)
	} else if i := c.indexOf(equipmentID); i >= 0 {
		c.items[i].Quantity = quantity
	}
	c.persist(ctx)
}

// Clear empties the cart
func (c *Cart) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = []models.CartLineItem{}
	c.persist(ctx)
}

// Load replaces the cart's content. Duplicate equipment lines are merged and
// non-positive quantities dropped.
func (c *Cart) Load(ctx context.Context, items []models.CartLineItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = normalize(items)
	c.persist(ctx)
}

func (c *Cart) indexOf(equipmentID int64) int {
	for i, item := range c.items {
		if item.Equipment.ID == equipmentID {
			return i
		}
	}
	return -1
}

func (c *Cart) remove(equipmentID int64) {
	if i := c.indexOf(equipmentID); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
}

// persist must be called with mu held
func (c *Cart) persist(ctx context.Context) {
	if c.storage == nil {
		return
	}
	data, err := json.Marshal(c.items)
	if err != nil {
		log.Printf("❌ Cart.persist: Failed to encode cart %s: %v", c.key, err)
		return
	}
	if err := c.storage.Set(ctx, c.key, string(data)); err != nil {
		log.Printf("❌ Cart.persist: Failed to save cart %s: %v", c.key, err)
	}
}

func normalize(items []models.CartLineItem) []models.CartLineItem {
	out := make([]models.CartLineItem, 0, len(items))
	index := make(map[int64]int, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		if i, ok := index[item.Equipment.ID]; ok {
			out[i].Quantity += item.Quantity
			continue
		}
		index[item.Equipment.ID] = len(out)
		out = append(out, item)
	}
	return out
}

func totalItems(items []models.CartLineItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}
