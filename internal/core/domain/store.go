package domain

import "sort"

// StoreScope selects which invoices a listing or subscription covers.
type StoreScope struct {
	// UserID limits the scope to one user's invoices.
	UserID string

	// All covers every user's invoices; UserID is ignored.
	All bool
}

// ScopeFor returns the scope a profile may see.
func ScopeFor(profile UserProfile) StoreScope {
	if profile.IsAdmin {
		return StoreScope{All: true}
	}
	return StoreScope{UserID: profile.UID}
}

// Includes reports whether an invoice owned by userID is inside the scope.
func (s StoreScope) Includes(userID string) bool {
	return s.All || s.UserID == userID
}

// SortNewestFirst orders invoices by CreatedAt descending, breaking ties by ID
// so listings are stable.
func SortNewestFirst(invoices []Invoice) {
	sort.SliceStable(invoices, func(i, j int) bool {
		if invoices[i].CreatedAt.Equal(invoices[j].CreatedAt) {
			return invoices[i].ID < invoices[j].ID
		}
		return invoices[i].CreatedAt.After(invoices[j].CreatedAt)
	})
}
