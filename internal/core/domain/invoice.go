package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used for invoice and due dates.
const DateLayout = "2006-01-02"

// DefaultBrandColor is the accent colour of a new invoice.
const DefaultBrandColor = "#2563EB"

// InvoiceStatus is the payment state shown on an invoice.
type InvoiceStatus string

// Available invoice statuses.
const (
	StatusPaid   InvoiceStatus = "PAID"
	StatusUnpaid InvoiceStatus = "UNPAID"
	StatusDraft  InvoiceStatus = "DRAFT"
)

// IsValid returns true if the status is recognised.
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case StatusPaid, StatusUnpaid, StatusDraft:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s InvoiceStatus) String() string {
	return string(s)
}

// ParseInvoiceStatus parses a status case-insensitively.
func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	status := InvoiceStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, s)
	}
	return status, nil
}

// AllInvoiceStatuses returns all available statuses.
func AllInvoiceStatuses() []InvoiceStatus {
	return []InvoiceStatus{StatusPaid, StatusUnpaid, StatusDraft}
}

// LineItem is a single billed entry on an invoice.
type LineItem struct {
	// ID is the unique identifier for the item within its invoice.
	ID string

	// Description is the free-text label of the item.
	Description string

	// Quantity is the billed amount of units. Negative values are permitted.
	Quantity decimal.Decimal

	// UnitPrice is the price of one unit. Negative values are permitted.
	UnitPrice decimal.Decimal
}

// LineTotal returns Quantity × UnitPrice.
func (i LineItem) LineTotal() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice)
}

// CompanyInfo describes the invoice sender.
type CompanyInfo struct {
	Name    string
	Address string
	Email   string
	Phone   string
	Website string

	// Logo is an optional data URL for the sender logo.
	Logo string
}

// ClientInfo describes the invoice receiver.
type ClientInfo struct {
	Name    string
	Address string
	Email   string
	Phone   string
}

// InvoiceSettings holds per-invoice presentation and tax settings.
type InvoiceSettings struct {
	// Currency is the ISO 4217 currency code, e.g. "IDR".
	Currency string

	// TaxRate is a percentage: 11 means 11%.
	TaxRate decimal.Decimal

	// BrandColor is the accent colour used by the document renderer.
	BrandColor string

	// Locale is the BCP 47 tag used for number formatting, e.g. "id-ID".
	Locale string

	// SignatureText is printed under the signature line.
	SignatureText string

	// UseStatus controls whether the status badge is rendered.
	UseStatus bool
}

// Invoice is a draft or saved invoice.
type Invoice struct {
	// ID is the unique identifier for the invoice.
	ID string

	// UserID is the owner of the invoice in the record store.
	UserID string

	// InvoiceNumber is the human-facing number, e.g. "INV-2026-001".
	InvoiceNumber string

	// Date is the issue date (YYYY-MM-DD).
	Date string

	// DueDate is the payment due date (YYYY-MM-DD).
	DueDate string

	Status   InvoiceStatus
	Sender   CompanyInfo
	Receiver ClientInfo

	// Items is ordered by display order.
	Items []LineItem

	Notes    string
	Settings InvoiceSettings

	// CreatedAt is when the invoice was first saved.
	CreatedAt time.Time
}

// Totals computes the derived monetary values for the invoice.
func (inv *Invoice) Totals() InvoiceTotals {
	return ComputeTotals(inv.Items, inv.Settings.TaxRate)
}

// Clone returns a deep copy of the invoice.
func (inv *Invoice) Clone() *Invoice {
	c := *inv
	c.Items = make([]LineItem, len(inv.Items))
	copy(c.Items, inv.Items)
	return &c
}

// Matches reports whether the invoice number or client name contains
// the query, case-insensitively. An empty query matches everything.
func (inv *Invoice) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(inv.InvoiceNumber), q) ||
		strings.Contains(strings.ToLower(inv.Receiver.Name), q)
}

// ItemIndex returns the position of the item with the given ID, or -1.
func (inv *Invoice) ItemIndex(itemID string) int {
	for i := range inv.Items {
		if inv.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// UserProfile identifies the user owning saved invoices.
type UserProfile struct {
	// UID is the record store key of the user.
	UID string

	// Email is the user's email address, if known.
	Email string

	// IsAdmin grants access to every user's invoices.
	IsAdmin bool
}

// NewUserProfile creates a profile. Any email containing "admin" is treated as an admin.
func NewUserProfile(uid, email string) UserProfile {
	return UserProfile{
		UID:     uid,
		Email:   email,
		IsAdmin: strings.Contains(email, "admin"),
	}
}

// IsGuest returns true if no user is signed in.
func (u UserProfile) IsGuest() bool {
	return u.UID == ""
}

// InvoiceNumber formats an invoice number as INV-<year>-<seq> with seq
// zero-padded to width digits.
func InvoiceNumber(year, seq, width int) string {
	return fmt.Sprintf("INV-%d-%0*d", year, width, seq)
}

// NextInvoiceNumber returns the next free INV-<year>-NNN number given the
// existing invoices. Numbers from other years or with foreign formats are ignored.
func NextInvoiceNumber(existing []Invoice, year, width int) string {
	prefix := fmt.Sprintf("INV-%d-", year)
	highest := 0
	for i := range existing {
		suffix, ok := strings.CutPrefix(existing[i].InvoiceNumber, prefix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return InvoiceNumber(year, highest+1, width)
}

// DefaultInvoiceSettings returns the settings of a fresh invoice.
func DefaultInvoiceSettings() InvoiceSettings {
	return InvoiceSettings{
		Currency:      "IDR",
		TaxRate:       decimal.NewFromInt(11),
		BrandColor:    DefaultBrandColor,
		Locale:        "id-ID",
		SignatureText: "Authorized Signature",
		UseStatus:     true,
	}
}

// NewDraftInvoice returns an unsaved invoice populated with sample data,
// dated now and due seven days later.
func NewDraftInvoice(now time.Time, settings InvoiceSettings) *Invoice {
	return &Invoice{
		InvoiceNumber: InvoiceNumber(now.Year(), 1, 3),
		Date:          now.Format(DateLayout),
		DueDate:       now.AddDate(0, 0, 7).Format(DateLayout),
		Status:        StatusUnpaid,
		Sender: CompanyInfo{
			Name:    "Your Company Name",
			Address: "123 Business Rd, Tech City, 10101",
			Email:   "billing@company.com",
			Phone:   "+62 812-3456-7890",
			Website: "www.yourcompany.com",
		},
		Receiver: ClientInfo{
			Name:    "Client Name",
			Address: "456 Client Ave, Startupsville, 20202",
			Email:   "client@email.com",
		},
		Items: []LineItem{
			{
				ID:          "1",
				Description: "Web Development Services",
				Quantity:    decimal.NewFromInt(1),
				UnitPrice:   decimal.NewFromInt(5_000_000),
			},
			{
				ID:          "2",
				Description: "Server Maintenance (Yearly)",
				Quantity:    decimal.NewFromInt(1),
				UnitPrice:   decimal.NewFromInt(1_200_000),
			},
		},
		Notes:    "Thank you for your business. Please transfer payment to BCA 1234567890.",
		Settings: settings,
	}
}

// Defaults of a freshly added line item.
const (
	DefaultItemDescription = "New Item"
	DefaultItemQuantity    = 1
)

// NewLineItem returns a blank line item with the default description,
// a quantity of one and a zero price. The ID is left for the caller.
func NewLineItem() LineItem {
	return LineItem{
		Description: DefaultItemDescription,
		Quantity:    decimal.NewFromInt(DefaultItemQuantity),
		UnitPrice:   decimal.Zero,
	}
}

// SaveMode selects how an invoice is written to the record store.
type SaveMode string

// Available save modes.
const (
	// SaveModeCreate stores the invoice as a new record.
	SaveModeCreate SaveMode = "create"

	// SaveModeUpdate overwrites the existing record with the same ID.
	SaveModeUpdate SaveMode = "update"

	// SaveModeCopy stores the invoice as a new record with a new number.
	SaveModeCopy SaveMode = "copy"
)

// IsValid returns true if the mode is recognised.
func (m SaveMode) IsValid() bool {
	switch m {
	case SaveModeCreate, SaveModeUpdate, SaveModeCopy:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m SaveMode) String() string {
	return string(m)
}
