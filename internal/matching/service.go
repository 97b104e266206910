// Package matching remembers which category a user files descriptions under.
package matching

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/smartledger/smartledger/internal/validation"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	FindCategory(ctx context.Context, owner uuid.UUID, description string) (string, error)
	CreateRule(ctx context.Context, owner uuid.UUID, pattern, category string) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type rule struct {
	Pattern  string `validate:"required,max=200"`
	Category string `validate:"required,max=64"`
}

// Suggest returns the category of owner's rule whose pattern occurs in
// description, preferring the longest and then the newest pattern.
// Returns empty string if no rule matches.
func (s *Service) Suggest(ctx context.Context, owner uuid.UUID, description string) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", nil
	}

	return s.repo.FindCategory(ctx, owner, description)
}

// Learn stores a rule filing descriptions containing pattern under category.
func (s *Service) Learn(ctx context.Context, owner uuid.UUID, pattern, category string) error {
	r := rule{Pattern: strings.TrimSpace(pattern), Category: strings.TrimSpace(category)}

	if err := validation.Struct(r); err != nil {
		return err
	}

	return s.repo.CreateRule(ctx, owner, r.Pattern, r.Category)
}
