// Package matching fills in categories for imported bills using the
// categories the user already gave to similarly described bills.
package matching

import (
	"context"
	"fmt"

	"github.com/MrJamesThe3rd/contas/internal/bill"
)

// DefaultCategory is used when nothing the user has filed resembles the bill.
const DefaultCategory = "Outros"

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	FindCategory(ctx context.Context, userID, description string) (string, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns a category for description, or "" when there is no match.
func (s *Service) Suggest(ctx context.Context, userID, description string) (string, error) {
	return s.repo.FindCategory(ctx, userID, description)
}

// Fill sets the category of every param that has none, falling back to
// DefaultCategory. It reports how many categories came from a suggestion.
func (s *Service) Fill(ctx context.Context, userID string, params []bill.CreateParams) (int, error) {
	suggested := 0

	for i := range params {
		if params[i].Category != "" {
			continue
		}

		category, err := s.Suggest(ctx, userID, params[i].Description)
		if err != nil {
			return suggested, fmt.Errorf("suggesting category for %q: %w", params[i].Description, err)
		}

		if category == "" {
			params[i].Category = DefaultCategory
			continue
		}

		params[i].Category = category
		suggested++
	}

	return suggested, nil
}
