package store

import (
	"context"
	"strings"

	"github.com/MrJamesThe3rd/contas/internal/bill"
)

// Store answers category lookups from the bills already in the ledger.
type Store struct {
	ledger *bill.Ledger
}

func New(ledger *bill.Ledger) *Store {
	return &Store{ledger: ledger}
}

// FindCategory looks for the user's bill whose description occurs in
// description, ignoring case. The longest such description wins, then the
// most recently updated bill.
func (s *Store) FindCategory(_ context.Context, userID, description string) (string, error) {
	needle := strings.ToLower(strings.TrimSpace(description))
	if needle == "" {
		return "", nil
	}

	var best *bill.Bill

	bills := bill.ForUser(s.ledger.Snapshot(), userID)
	for i := range bills {
		b := &bills[i]

		pattern := strings.ToLower(strings.TrimSpace(b.Description))
		if pattern == "" || !strings.Contains(needle, pattern) {
			continue
		}

		if best == nil || better(b, best) {
			best = b
		}
	}

	if best == nil {
		return "", nil
	}

	return best.Category, nil
}

func better(a, b *bill.Bill) bool {
	if len(a.Description) != len(b.Description) {
		return len(a.Description) > len(b.Description)
	}

	return a.UpdatedAt.After(b.UpdatedAt)
}
