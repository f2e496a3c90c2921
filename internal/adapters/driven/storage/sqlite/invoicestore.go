package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/finvoice/internal/adapters/driven/storage/record"
	"github.com/custodia-labs/finvoice/internal/core/domain"
	"github.com/custodia-labs/finvoice/internal/core/ports/driven"
)

// InvoiceStore implements driven.InvoiceStore on top of a Store.
type InvoiceStore struct {
	store *Store
}

var _ driven.InvoiceStore = (*InvoiceStore)(nil)

// Save stores or replaces an invoice.
func (s *InvoiceStore) Save(ctx context.Context, inv *domain.Invoice) error {
	if inv.UserID == "" || inv.ID == "" {
		return fmt.Errorf("%w: invoice needs an ID and owner", domain.ErrInvalidInput)
	}

	doc, err := record.Marshal(inv)
	if err != nil {
		return err
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO invoices (user_id, id, invoice_number, client_name, created_at, document)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, id) DO UPDATE SET
			invoice_number = excluded.invoice_number,
			client_name = excluded.client_name,
			created_at = excluded.created_at,
			document = excluded.document
	`, inv.UserID, inv.ID, inv.InvoiceNumber, inv.Receiver.Name, inv.CreatedAt.UnixMilli(), string(doc))
	if err != nil {
		return fmt.Errorf("saving invoice: %w", err)
	}

	s.store.hub.Notify(ctx)
	return nil
}

// Get retrieves one invoice of a user.
func (s *InvoiceStore) Get(ctx context.Context, userID, id string) (*domain.Invoice, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT document FROM invoices WHERE user_id = ? AND id = ?", userID, id)

	var doc string
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning invoice: %w", err)
	}
	return record.Unmarshal([]byte(doc))
}

// Delete removes one invoice of a user.
func (s *InvoiceStore) Delete(ctx context.Context, userID, id string) error {
	result, err := s.store.db.ExecContext(ctx,
		"DELETE FROM invoices WHERE user_id = ? AND id = ?", userID, id)
	if err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	s.store.hub.Notify(ctx)
	return nil
}

// List returns a user's invoices, newest first.
func (s *InvoiceStore) List(ctx context.Context, userID string) ([]domain.Invoice, error) {
	return s.query(ctx,
		"SELECT document FROM invoices WHERE user_id = ? ORDER BY created_at DESC, id", userID)
}

// ListAll returns every user's invoices, newest first.
func (s *InvoiceStore) ListAll(ctx context.Context) ([]domain.Invoice, error) {
	return s.query(ctx, "SELECT document FROM invoices ORDER BY created_at DESC, id")
}

// Subscribe delivers snapshots of scope to fn.
func (s *InvoiceStore) Subscribe(
	ctx context.Context,
	scope domain.StoreScope,
	fn driven.SnapshotFunc,
) (func(), error) {
	return s.store.hub.Subscribe(ctx, scope, fn)
}

func (s *InvoiceStore) query(ctx context.Context, query string, args ...any) ([]domain.Invoice, error) {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying invoices: %w", err)
	}
	defer rows.Close()

	invoices := []domain.Invoice{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}
		inv, err := record.Unmarshal([]byte(doc))
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoices: %w", err)
	}

	domain.SortNewestFirst(invoices)
	return invoices, nil
}

// load reads the invoices of scope for the subscriber hub.
func (s *Store) load(ctx context.Context, scope domain.StoreScope) ([]domain.Invoice, error) {
	inv := s.InvoiceStore()
	if scope.All {
		return inv.ListAll(ctx)
	}
	return inv.List(ctx, scope.UserID)
}
