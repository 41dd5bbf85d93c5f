package inventory

import (
	"context"
	"sync"

	"shopdesk-be/internal/apperr"
	"shopdesk-be/internal/product"
)

type stockKey struct {
	tenantID  int64
	productID int64
}

type stockEntry struct {
	mu     sync.Mutex
	stock  int
	status product.Status
}

// MemoryLedger keeps stock in process. Each product has its own mutex, so
// callers competing for one product serialize while others run freely.
type MemoryLedger struct {
	mu      sync.RWMutex
	entries map[stockKey]*stockEntry
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{entries: make(map[stockKey]*stockEntry)}
}

// Put registers or replaces a product's stock and status.
func (m *MemoryLedger) Put(tenantID, productID int64, stock int, status product.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[stockKey{tenantID, productID}] = &stockEntry{stock: stock, status: status}
}

// Snapshot returns the current stock and status of a product.
func (m *MemoryLedger) Snapshot(tenantID, productID int64) (int, product.Status, bool) {
	e := m.entry(tenantID, productID)
	if e == nil {
		return 0, "", false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stock, e.status, true
}

func (m *MemoryLedger) entry(tenantID, productID int64) *stockEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[stockKey{tenantID, productID}]
}

func (m *MemoryLedger) DecreaseStock(ctx context.Context, tenantID, productID int64, qty int) (int, error) {
	if qty <= 0 {
		return 0, apperr.Invalid("quantity", "must be greater than zero")
	}
	e := m.entry(tenantID, productID)
	if e == nil {
		return 0, apperr.NotFound("product", productID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stock < qty {
		return 0, &InsufficientStockError{ProductID: productID, Requested: qty, Available: e.stock}
	}
	e.stock -= qty
	e.status = product.StatusAfterStockChange(e.status, e.stock)
	return e.stock, nil
}

func (m *MemoryLedger) IncreaseStock(ctx context.Context, tenantID, productID int64, qty int) (int, error) {
	if qty <= 0 {
		return 0, apperr.Invalid("quantity", "must be greater than zero")
	}
	e := m.entry(tenantID, productID)
	if e == nil {
		return 0, apperr.NotFound("product", productID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.stock += qty
	e.status = product.StatusAfterStockChange(e.status, e.stock)
	return e.stock, nil
}
