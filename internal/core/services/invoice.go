package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/finvoice/internal/core/domain"
	"github.com/custodia-labs/finvoice/internal/core/ports/driven"
	"github.com/custodia-labs/finvoice/internal/core/ports/driving"
	"github.com/custodia-labs/finvoice/internal/locale"
	"github.com/custodia-labs/finvoice/internal/logger"
)

// Ensure InvoiceService implements the interface.
var _ driving.InvoiceService = (*InvoiceService)(nil)

// invoiceNumberWidth is the zero-padded width of the sequence in INV-<year>-NNN.
const invoiceNumberWidth = 3

// InvoiceService creates, edits and stores invoices for one user.
type InvoiceService struct {
	store    driven.InvoiceStore
	profile  domain.UserProfile
	defaults domain.InvoiceDefaults

	now   func() time.Time
	newID func() string
}

// NewInvoiceService creates a new invoice service acting for profile.
func NewInvoiceService(
	store driven.InvoiceStore,
	profile domain.UserProfile,
	defaults domain.InvoiceDefaults,
) *InvoiceService {
	return &InvoiceService{
		store:    store,
		profile:  profile,
		defaults: defaults,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Profile returns the user the service acts for.
func (s *InvoiceService) Profile() domain.UserProfile {
	return s.profile
}

// New returns an unsaved draft numbered after the user's existing invoices.
func (s *InvoiceService) New(ctx context.Context) (*domain.Invoice, error) {
	now := s.now()
	inv := domain.NewDraftInvoice(now, s.defaults.InvoiceSettings())
	inv.UserID = s.profile.UID

	if s.store == nil || s.profile.IsGuest() {
		return inv, nil
	}
	number, err := s.nextNumber(ctx, now)
	if err != nil {
		return nil, err
	}
	inv.InvoiceNumber = number
	return inv, nil
}

// Get retrieves a saved invoice by ID. Admins may read any user's invoice.
func (s *InvoiceService) Get(ctx context.Context, id string) (*domain.Invoice, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	if s.profile.IsGuest() {
		return nil, domain.ErrAuthRequired
	}

	inv, err := s.store.Get(ctx, s.profile.UID, id)
	if err == nil || !errors.Is(err, domain.ErrNotFound) || !s.profile.IsAdmin {
		return inv, err
	}

	all, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("invoice %s: %w", id, domain.ErrNotFound)
}

// Details returns an invoice with its formatted totals.
func (s *InvoiceService) Details(ctx context.Context, id string) (*driving.InvoiceDetails, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return Describe(inv), nil
}

// Describe computes the display values of an invoice.
func Describe(inv *domain.Invoice) *driving.InvoiceDetails {
	totals := inv.Totals()
	code, tag := inv.Settings.Currency, inv.Settings.Locale
	return &driving.InvoiceDetails{
		Invoice:       inv,
		Totals:        totals,
		Subtotal:      locale.MustFormatCurrency(totals.Subtotal, code, tag),
		TaxAmount:     locale.MustFormatCurrency(totals.TaxAmount, code, tag),
		GrandTotal:    locale.MustFormatCurrency(totals.GrandTotal, code, tag),
		AmountInWords: domain.AmountInWords(totals.GrandTotal, code),
	}
}

// List returns the visible history, newest first.
// Guests have no history.
func (s *InvoiceService) List(ctx context.Context) ([]domain.Invoice, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	if s.profile.IsGuest() {
		return []domain.Invoice{}, nil
	}
	if s.profile.IsAdmin {
		return s.store.ListAll(ctx)
	}
	return s.store.List(ctx, s.profile.UID)
}

// Search filters the history by invoice number or client name.
func (s *InvoiceService) Search(ctx context.Context, query string) ([]domain.Invoice, error) {
	invoices, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]domain.Invoice, 0, len(invoices))
	for i := range invoices {
		if invoices[i].Matches(query) {
			results = append(results, invoices[i])
		}
	}
	return results, nil
}

// Save stores inv according to mode and returns the stored record.
//
// create assigns a fresh ID and CreatedAt. update keeps the ID, owner and
// CreatedAt of the existing record. copy stores a new record with a fresh
// ID and the next free invoice number.
func (s *InvoiceService) Save(
	ctx context.Context,
	inv *domain.Invoice,
	mode domain.SaveMode,
) (*domain.Invoice, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	if s.profile.IsGuest() {
		return nil, domain.ErrAuthRequired
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: invoice is required", domain.ErrInvalidInput)
	}
	if !mode.IsValid() {
		return nil, fmt.Errorf("%w: unknown save mode %q", domain.ErrInvalidInput, mode)
	}

	rec := inv.Clone()
	if err := s.normalise(rec); err != nil {
		return nil, err
	}

	now := s.now()
	switch mode {
	case domain.SaveModeCreate:
		rec.ID = s.newID()
		rec.UserID = s.profile.UID
		rec.CreatedAt = now
		if rec.InvoiceNumber == "" {
			number, err := s.nextNumber(ctx, now)
			if err != nil {
				return nil, err
			}
			rec.InvoiceNumber = number
		}
	case domain.SaveModeUpdate:
		if rec.ID == "" {
			return nil, fmt.Errorf("%w: update requires an invoice ID", domain.ErrInvalidInput)
		}
		existing, err := s.Get(ctx, rec.ID)
		if err != nil {
			return nil, err
		}
		rec.UserID = existing.UserID
		rec.CreatedAt = existing.CreatedAt
	case domain.SaveModeCopy:
		number, err := s.nextNumber(ctx, now)
		if err != nil {
			return nil, err
		}
		rec.ID = s.newID()
		rec.UserID = s.profile.UID
		rec.CreatedAt = now
		rec.InvoiceNumber = number
	}

	if err := s.store.Save(ctx, rec); err != nil {
		logger.Warn("save invoice %s failed: %v", rec.InvoiceNumber, err)
		return nil, fmt.Errorf("save invoice: %w", err)
	}
	logger.Info("Saved invoice %s (%s, id=%s)", rec.InvoiceNumber, mode, rec.ID)
	return rec, nil
}

// Delete removes a saved invoice.
func (s *InvoiceService) Delete(ctx context.Context, id string) error {
	if s.store == nil {
		return domain.ErrNotImplemented
	}
	if s.profile.IsGuest() {
		return domain.ErrAuthRequired
	}

	inv, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, inv.UserID, id); err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	logger.Info("Deleted invoice %s (id=%s)", inv.InvoiceNumber, id)
	return nil
}

// AddItem appends item to a saved invoice with a fresh ID.
func (s *InvoiceService) AddItem(
	ctx context.Context,
	invoiceID string,
	item domain.LineItem,
) (*domain.Invoice, error) {
	return s.editItems(ctx, invoiceID, func(inv *domain.Invoice) error {
		item.ID = s.newID()
		inv.Items = append(inv.Items, item)
		return nil
	})
}

// UpdateItem replaces the item with the same ID.
func (s *InvoiceService) UpdateItem(
	ctx context.Context,
	invoiceID string,
	item domain.LineItem,
) (*domain.Invoice, error) {
	return s.editItems(ctx, invoiceID, func(inv *domain.Invoice) error {
		idx := inv.ItemIndex(item.ID)
		if idx < 0 {
			return fmt.Errorf("item %s: %w", item.ID, domain.ErrNotFound)
		}
		inv.Items[idx] = item
		return nil
	})
}

// RemoveItem deletes an item by ID.
func (s *InvoiceService) RemoveItem(ctx context.Context, invoiceID, itemID string) (*domain.Invoice, error) {
	return s.editItems(ctx, invoiceID, func(inv *domain.Invoice) error {
		idx := inv.ItemIndex(itemID)
		if idx < 0 {
			return fmt.Errorf("item %s: %w", itemID, domain.ErrNotFound)
		}
		inv.Items = append(inv.Items[:idx], inv.Items[idx+1:]...)
		return nil
	})
}

// SetItems replaces all items of a saved invoice.
func (s *InvoiceService) SetItems(
	ctx context.Context,
	invoiceID string,
	items []domain.LineItem,
) (*domain.Invoice, error) {
	return s.editItems(ctx, invoiceID, func(inv *domain.Invoice) error {
		inv.Items = make([]domain.LineItem, len(items))
		copy(inv.Items, items)
		return nil
	})
}

// Watch calls fn with the visible history now and after every change.
func (s *InvoiceService) Watch(ctx context.Context, fn func([]domain.Invoice)) (func(), error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	if s.profile.IsGuest() {
		fn([]domain.Invoice{})
		return func() {}, nil
	}
	return s.store.Subscribe(ctx, domain.ScopeFor(s.profile), fn)
}

// editItems loads an invoice, applies edit to a copy and stores the result.
func (s *InvoiceService) editItems(
	ctx context.Context,
	invoiceID string,
	edit func(inv *domain.Invoice) error,
) (*domain.Invoice, error) {
	inv, err := s.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	rec := inv.Clone()
	if err := edit(rec); err != nil {
		return nil, err
	}
	if err := s.normalise(rec); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("save invoice: %w", err)
	}
	return rec, nil
}

// normalise fills defaults and rejects invoices that cannot be stored.
func (s *InvoiceService) normalise(inv *domain.Invoice) error {
	if inv.Status == "" {
		inv.Status = domain.StatusUnpaid
	}
	if !inv.Status.IsValid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, inv.Status)
	}
	if inv.Settings.Currency == "" {
		inv.Settings.Currency = s.defaults.InvoiceSettings().Currency
	}
	for i := range inv.Items {
		if inv.Items[i].ID == "" {
			inv.Items[i].ID = s.newID()
		}
	}
	return nil
}

func (s *InvoiceService) nextNumber(ctx context.Context, now time.Time) (string, error) {
	existing, err := s.store.List(ctx, s.profile.UID)
	if err != nil {
		return "", fmt.Errorf("number invoice: %w", err)
	}
	return domain.NextInvoiceNumber(existing, now.Year(), invoiceNumberWidth), nil
}
