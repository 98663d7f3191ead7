package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/example/ec-storefront/internal/apperr"
	"github.com/example/ec-storefront/internal/domain/cart"
)

// Tx operation names accepted by MockCartStore.FailOn
const (
	OpProductExists = "product_exists"
	OpIncrement     = "increment"
	OpLockItem      = "lock_item"
	OpSetQuantity   = "set_quantity"
	OpDeleteItem    = "delete_item"
)

// MockCartStore is an in-memory cart.Store. Transactions are serialized and
// roll back to a snapshot on error.
type MockCartStore struct {
	mu       sync.Mutex
	products *MockProductStore
	items    []cart.Item
	nextID   int64

	// For tracking calls in tests
	TxCalls    int
	Committed  int
	RolledBack int

	// FailOn makes the named Tx operation return FailErr
	FailOn    string
	FailErr   error
	CommitErr error
	LinesErr  error
}

// NewMockCartStore creates a MockCartStore backed by products
func NewMockCartStore(products *MockProductStore) *MockCartStore {
	return &MockCartStore{products: products}
}

func (m *MockCartStore) WithinTx(ctx context.Context, fn func(tx cart.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TxCalls++

	snapshot := make([]cart.Item, len(m.items))
	copy(snapshot, m.items)
	nextID := m.nextID

	err := fn(&mockCartTx{store: m})
	if err == nil && m.CommitErr != nil {
		err = apperr.Persistence("commit", m.CommitErr)
	}
	if err != nil {
		m.items = snapshot
		m.nextID = nextID
		m.RolledBack++
		return err
	}
	m.Committed++
	return nil
}

func (m *MockCartStore) Lines(ctx context.Context, cartID cart.ID) ([]cart.Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LinesErr != nil {
		return nil, m.LinesErr
	}
	lines := make([]cart.Line, 0, len(m.items))
	for _, item := range m.items {
		if item.CartID != cartID {
			continue
		}
		p, ok := m.products.Lookup(item.ProductID)
		if !ok {
			continue
		}
		lines = append(lines, cart.Line{
			Item: item,
			Product: cart.LineProduct{
				ID:    p.ID,
				Title: p.Title,
				Price: p.Price,
				Image: p.Image,
			},
		})
	}
	return lines, nil
}

// CountItems sums quantities, like the Postgres store
func (m *MockCartStore) CountItems(ctx context.Context, cartID cart.ID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, item := range m.items {
		if item.CartID == cartID {
			n += item.Quantity
		}
	}
	return n, nil
}

func (m *MockCartStore) Clear(ctx context.Context, cartID cart.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.items[:0]
	for _, item := range m.items {
		if item.CartID != cartID {
			kept = append(kept, item)
		}
	}
	m.items = kept
	return nil
}

// Items returns a copy of every stored item in insertion order
func (m *MockCartStore) Items() []cart.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]cart.Item, len(m.items))
	copy(out, m.items)
	return out
}

// Quantity returns the stored quantity for productID, 0 when absent
func (m *MockCartStore) Quantity(cartID cart.ID, productID int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.CartID == cartID && item.ProductID == productID {
			return item.Quantity
		}
	}
	return 0
}

// SetItem seeds an item directly for testing
func (m *MockCartStore) SetItem(cartID cart.ID, productID, quantity int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.items = append(m.items, cart.Item{
		ID:        m.nextID,
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: time.Now(),
	})
}

type mockCartTx struct {
	store *MockCartStore
}

func (tx *mockCartTx) fail(op string) error {
	if tx.store.FailOn == op {
		return apperr.Persistence(op, tx.store.FailErr)
	}
	return nil
}

func (tx *mockCartTx) indexOf(cartID cart.ID, productID int) int {
	for i, item := range tx.store.items {
		if item.CartID == cartID && item.ProductID == productID {
			return i
		}
	}
	return -1
}

func (tx *mockCartTx) indexByID(itemID int64) int {
	for i, item := range tx.store.items {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}

func (tx *mockCartTx) ProductExists(ctx context.Context, productID int) (bool, error) {
	if err := tx.fail(OpProductExists); err != nil {
		return false, err
	}
	return tx.store.products.Exists(productID), nil
}

func (tx *mockCartTx) Increment(ctx context.Context, cartID cart.ID, productID, delta int) (*cart.Item, error) {
	if err := tx.fail(OpIncrement); err != nil {
		return nil, err
	}
	if i := tx.indexOf(cartID, productID); i >= 0 {
		tx.store.items[i].Quantity += delta
		item := tx.store.items[i]
		return &item, nil
	}
	tx.store.nextID++
	item := cart.Item{
		ID:        tx.store.nextID,
		CartID:    cartID,
		ProductID: productID,
		Quantity:  delta,
		CreatedAt: time.Now(),
	}
	tx.store.items = append(tx.store.items, item)
	return &item, nil
}

func (tx *mockCartTx) LockItem(ctx context.Context, cartID cart.ID, productID int) (*cart.Item, error) {
	if err := tx.fail(OpLockItem); err != nil {
		return nil, err
	}
	if i := tx.indexOf(cartID, productID); i >= 0 {
		item := tx.store.items[i]
		return &item, nil
	}
	return nil, nil
}

func (tx *mockCartTx) SetQuantity(ctx context.Context, itemID int64, quantity int) error {
	if err := tx.fail(OpSetQuantity); err != nil {
		return err
	}
	if i := tx.indexByID(itemID); i >= 0 {
		tx.store.items[i].Quantity = quantity
		return nil
	}
	return apperr.NotFound("cart item", itemID)
}

func (tx *mockCartTx) DeleteItem(ctx context.Context, itemID int64) error {
	if err := tx.fail(OpDeleteItem); err != nil {
		return err
	}
	i := tx.indexByID(itemID)
	if i < 0 {
		return apperr.NotFound("cart item", itemID)
	}
	tx.store.items = append(tx.store.items[:i], tx.store.items[i+1:]...)
	return nil
}
