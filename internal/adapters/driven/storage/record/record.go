// Package record encodes invoices as the JSON documents kept by the
// persistent invoice stores.
//
// The document layout is shared by the SQLite and Redis adapters so a
// history exported from one backend can be read by the other. Records
// written before the status badge setting existed have no useStatus
// field; those decode with the badge enabled.
package record

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/custodia-labs/finvoice/internal/core/domain"
)

// Document is the stored JSON form of an invoice.
type Document struct {
	ID            string   `json:"id"`
	UserID        string   `json:"userId"`
	InvoiceNumber string   `json:"invoiceNumber"`
	Date          string   `json:"date"`
	DueDate       string   `json:"dueDate"`
	Status        string   `json:"status"`
	Sender        Company  `json:"sender"`
	Receiver      Client   `json:"receiver"`
	Items         []Item   `json:"items"`
	Notes         string   `json:"notes"`
	Settings      Settings `json:"settings"`

	CreatedAt time.Time `json:"createdAt"`
}

// Company is the stored sender block.
type Company struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Website string `json:"website"`
	Logo    string `json:"logo,omitempty"`
}

// Client is the stored receiver block.
type Client struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

// Item is a stored line item. Amounts are decimal strings; plain JSON
// numbers are accepted on read.
type Item struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// Settings is the stored per-invoice settings block.
type Settings struct {
	Currency      string          `json:"currency"`
	TaxRate       decimal.Decimal `json:"taxRate"`
	BrandColor    string          `json:"brandColor"`
	Locale        string          `json:"locale"`
	SignatureText string          `json:"signatureText"`
	UseStatus     *bool           `json:"useStatus,omitempty"`
}

// FromInvoice converts an invoice to its stored form.
func FromInvoice(inv *domain.Invoice) Document {
	useStatus := inv.Settings.UseStatus
	doc := Document{
		ID:            inv.ID,
		UserID:        inv.UserID,
		InvoiceNumber: inv.InvoiceNumber,
		Date:          inv.Date,
		DueDate:       inv.DueDate,
		Status:        inv.Status.String(),
		Sender:        Company(inv.Sender),
		Receiver:      Client(inv.Receiver),
		Items:         make([]Item, len(inv.Items)),
		Notes:         inv.Notes,
		Settings: Settings{
			Currency:      inv.Settings.Currency,
			TaxRate:       inv.Settings.TaxRate,
			BrandColor:    inv.Settings.BrandColor,
			Locale:        inv.Settings.Locale,
			SignatureText: inv.Settings.SignatureText,
			UseStatus:     &useStatus,
		},
		CreatedAt: inv.CreatedAt.UTC(),
	}
	for i, item := range inv.Items {
		doc.Items[i] = Item{
			ID:          item.ID,
			Description: item.Description,
			Quantity:    item.Quantity,
			Price:       item.UnitPrice,
		}
	}
	return doc
}

// Invoice converts the stored form back to an invoice.
func (d Document) Invoice() *domain.Invoice {
	inv := &domain.Invoice{
		ID:            d.ID,
		UserID:        d.UserID,
		InvoiceNumber: d.InvoiceNumber,
		Date:          d.Date,
		DueDate:       d.DueDate,
		Status:        domain.InvoiceStatus(d.Status),
		Sender:        domain.CompanyInfo(d.Sender),
		Receiver:      domain.ClientInfo(d.Receiver),
		Items:         make([]domain.LineItem, len(d.Items)),
		Notes:         d.Notes,
		Settings: domain.InvoiceSettings{
			Currency:      d.Settings.Currency,
			TaxRate:       d.Settings.TaxRate,
			BrandColor:    d.Settings.BrandColor,
			Locale:        d.Settings.Locale,
			SignatureText: d.Settings.SignatureText,
			UseStatus:     d.Settings.UseStatus == nil || *d.Settings.UseStatus,
		},
		CreatedAt: d.CreatedAt,
	}
	if inv.Status == "" {
		inv.Status = domain.StatusUnpaid
	}
	for i, item := range d.Items {
		inv.Items[i] = domain.LineItem{
			ID:          item.ID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.Price,
		}
	}
	return inv
}

// Marshal encodes an invoice as a JSON document.
func Marshal(inv *domain.Invoice) ([]byte, error) {
	data, err := json.Marshal(FromInvoice(inv))
	if err != nil {
		return nil, fmt.Errorf("encode invoice %s: %w", inv.ID, err)
	}
	return data, nil
}

// Unmarshal decodes a JSON document into an invoice.
func Unmarshal(data []byte) (*domain.Invoice, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode invoice: %w", err)
	}
	return doc.Invoice(), nil
}
