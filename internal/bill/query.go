package bill

import (
	"slices"
)

// ForUser returns the bills owned by userID in snapshot order.
func ForUser(snap *Snapshot, userID string) []Bill {
	if snap == nil || userID == "" {
		return []Bill{}
	}

	out := make([]Bill, 0, len(snap.bills))

	for _, b := range snap.bills {
		if b.UserID != userID {
			continue
		}

		out = append(out, b.clone())
	}

	return out
}

// ApplyFilters keeps the bills matching every field present in filter.
// Date bounds are inclusive and compare against the due date.
func ApplyFilters(bills []Bill, filter Filter) []Bill {
	out := make([]Bill, 0, len(bills))

	for _, b := range bills {
		if filter.matches(b) {
			out = append(out, b)
		}
	}

	return out
}

func (f Filter) matches(b Bill) bool {
	if f.Status != nil && b.Status != *f.Status {
		return false
	}

	if f.Category != nil && b.Category != *f.Category {
		return false
	}

	if f.DateFrom != nil && b.DueDate.Before(*f.DateFrom) {
		return false
	}

	if f.DateTo != nil && b.DueDate.After(*f.DateTo) {
		return false
	}

	return true
}

// Categories returns the distinct categories used by userID, sorted.
func Categories(snap *Snapshot, userID string) []string {
	seen := make(map[string]struct{})
	categories := []string{}

	for _, b := range ForUser(snap, userID) {
		if _, ok := seen[b.Category]; ok {
			continue
		}

		seen[b.Category] = struct{}{}
		categories = append(categories, b.Category)
	}

	slices.Sort(categories)

	return categories
}
