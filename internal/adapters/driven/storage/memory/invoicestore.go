package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/finvoice/internal/adapters/driven/storage/feed"
	"github.com/custodia-labs/finvoice/internal/core/domain"
	"github.com/custodia-labs/finvoice/internal/core/ports/driven"
)

// Ensure InvoiceStore implements the interface.
var _ driven.InvoiceStore = (*InvoiceStore)(nil)

// InvoiceStore is an in-memory implementation of driven.InvoiceStore.
// Subscribers are notified synchronously from Save and Delete.
type InvoiceStore struct {
	mu       sync.RWMutex
	invoices map[string]map[string]domain.Invoice
	hub      *feed.Hub
}

// NewInvoiceStore creates a new in-memory invoice store.
func NewInvoiceStore() *InvoiceStore {
	s := &InvoiceStore{
		invoices: make(map[string]map[string]domain.Invoice),
	}
	s.hub = feed.NewHub(s.load)
	return s
}

// Save stores or replaces an invoice.
func (s *InvoiceStore) Save(ctx context.Context, inv *domain.Invoice) error {
	if inv.UserID == "" || inv.ID == "" {
		return fmt.Errorf("%w: invoice needs an ID and owner", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	user, ok := s.invoices[inv.UserID]
	if !ok {
		user = make(map[string]domain.Invoice)
		s.invoices[inv.UserID] = user
	}
	user[inv.ID] = *inv.Clone()
	s.mu.Unlock()

	s.hub.Notify(ctx)
	return nil
}

// Get retrieves one invoice of a user.
func (s *InvoiceStore) Get(_ context.Context, userID, id string) (*domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invoices[userID][id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return inv.Clone(), nil
}

// Delete removes one invoice of a user.
func (s *InvoiceStore) Delete(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	if _, ok := s.invoices[userID][id]; !ok {
		s.mu.Unlock()
		return domain.ErrNotFound
	}
	delete(s.invoices[userID], id)
	s.mu.Unlock()

	s.hub.Notify(ctx)
	return nil
}

// List returns a user's invoices, newest first.
func (s *InvoiceStore) List(_ context.Context, userID string) ([]domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Invoice, 0, len(s.invoices[userID]))
	for _, inv := range s.invoices[userID] {
		result = append(result, *inv.Clone())
	}
	domain.SortNewestFirst(result)
	return result, nil
}

// ListAll returns every user's invoices, newest first.
func (s *InvoiceStore) ListAll(_ context.Context) ([]domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Invoice
	for _, user := range s.invoices {
		for _, inv := range user {
			result = append(result, *inv.Clone())
		}
	}
	if result == nil {
		result = []domain.Invoice{}
	}
	domain.SortNewestFirst(result)
	return result, nil
}

// Subscribe delivers snapshots of scope to fn.
func (s *InvoiceStore) Subscribe(
	ctx context.Context,
	scope domain.StoreScope,
	fn driven.SnapshotFunc,
) (func(), error) {
	return s.hub.Subscribe(ctx, scope, fn)
}

func (s *InvoiceStore) load(ctx context.Context, scope domain.StoreScope) ([]domain.Invoice, error) {
	if scope.All {
		return s.ListAll(ctx)
	}
	return s.List(ctx, scope.UserID)
}
