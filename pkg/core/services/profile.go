package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/identity"
)

// ProfileInput holds the user-editable profile fields
type ProfileInput struct {
	FirstName  string
	Address    string
	Contact    string
	Role       model.Role
	Categories []string
}

type ProfileStore interface {
	UpsertProfile(ctx context.Context, profile *model.UserProfile) error
}

// SetProfile creates or replaces the signed-in user's profile.
// Preferred categories are stored in canonical form and must all be known.
func SetProfile(ctx context.Context, store ProfileStore, id identity.Provider, logger *zap.Logger, input ProfileInput) (*model.UserProfile, error) {
	email, err := currentUser(id)
	if err != nil {
		return nil, err
	}

	profile := &model.UserProfile{
		EmailAddress: email,
		FirstName:    strings.TrimSpace(input.FirstName),
		Address:      strings.TrimSpace(input.Address),
		Contact:      strings.TrimSpace(input.Contact),
		Role:         input.Role,
		Categories:   []string{},
	}

	seen := make(map[model.Category]bool)
	for _, raw := range input.Categories {
		c, known := model.ParseCategory(raw)
		if !known {
			return nil, fmt.Errorf("unknown category %q: %w", raw, model.ErrValidation)
		}
		if !seen[c] {
			seen[c] = true
			profile.Categories = append(profile.Categories, string(c))
		}
	}

	if err := validate.Struct(profile); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrValidation, err)
	}

	if err := store.UpsertProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	logger.Info("Profile saved",
		zap.String("email", email),
		zap.String("role", profile.Role.String()),
		zap.Strings("categories", profile.Categories))
	return profile, nil
}
