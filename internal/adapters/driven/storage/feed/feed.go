// Package feed fans out invoice history snapshots to store subscribers.
//
// Every InvoiceStore adapter owns one Hub. The adapter calls Notify after
// it learns of a change (its own write, a file event or a pub/sub message)
// and the hub reloads each subscriber's scope and delivers the snapshot.
package feed

import (
	"context"
	"sync"

	"github.com/custodia-labs/finvoice/internal/core/domain"
	"github.com/custodia-labs/finvoice/internal/core/ports/driven"
	"github.com/custodia-labs/finvoice/internal/logger"
)

// LoadFunc reads the current, newest-first invoices of a scope.
type LoadFunc func(ctx context.Context, scope domain.StoreScope) ([]domain.Invoice, error)

type subscriber struct {
	scope domain.StoreScope
	fn    driven.SnapshotFunc

	// deliver serialises calls to fn.
	deliver sync.Mutex
}

// Hub tracks subscribers of one store.
type Hub struct {
	load LoadFunc

	mu     sync.Mutex
	nextID int
	subs   map[int]*subscriber
}

// NewHub creates a hub that reads snapshots through load.
func NewHub(load LoadFunc) *Hub {
	return &Hub{
		load: load,
		subs: make(map[int]*subscriber),
	}
}

// Subscribe delivers the current snapshot of scope to fn and registers fn
// for later changes. The subscription ends when ctx is done or cancel is
// called, whichever is first.
func (h *Hub) Subscribe(ctx context.Context, scope domain.StoreScope, fn driven.SnapshotFunc) (func(), error) {
	invoices, err := h.load(ctx, scope)
	if err != nil {
		return nil, err
	}

	sub := &subscriber{scope: scope, fn: fn}
	sub.deliver.Lock()
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = sub
	h.mu.Unlock()

	// The initial snapshot is delivered before any change notification.
	fn(invoices)
	sub.deliver.Unlock()

	var once sync.Once
	remove := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
	stop := context.AfterFunc(ctx, remove)
	return func() {
		stop()
		remove()
	}, nil
}

// Notify reloads and delivers a snapshot to every subscriber.
// Load failures are logged and skip that subscriber.
func (h *Hub) Notify(ctx context.Context) {
	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subs))
	for _, sub := range h.subs {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		invoices, err := h.load(ctx, sub.scope)
		if err != nil {
			logger.Warn("reload subscription snapshot: %v", err)
			continue
		}
		sub.deliver.Lock()
		if h.active(sub) {
			sub.fn(invoices)
		}
		sub.deliver.Unlock()
	}
}

// Len returns the number of active subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close drops every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs = make(map[int]*subscriber)
}

func (h *Hub) active(sub *subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.subs {
		if s == sub {
			return true
		}
	}
	return false
}
