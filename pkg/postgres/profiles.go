package postgres

import (
	"context"
	"fmt"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

// GetProfileByEmail retrieves a user profile by its email address
func (d *DB) GetProfileByEmail(ctx context.Context, email string) (*model.UserProfile, error) {
	var p model.UserProfile
	var role int16
	err := d.pool.QueryRow(ctx, `
		SELECT email_address, first_name, address, contact, role, categories
		FROM user_profile
		WHERE email_address = $1
	`, email).Scan(&p.EmailAddress, &p.FirstName, &p.Address, &p.Contact, &role, &p.Categories)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile %s: %w", email, mapError(err))
	}
	p.Role = model.Role(role)
	return &p, nil
}

// UpsertProfile creates or replaces a user profile
func (d *DB) UpsertProfile(ctx context.Context, p *model.UserProfile) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO user_profile (email_address, first_name, address, contact, role, categories)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email_address) DO UPDATE
		SET first_name = EXCLUDED.first_name,
		    address = EXCLUDED.address,
		    contact = EXCLUDED.contact,
		    role = EXCLUDED.role,
		    categories = EXCLUDED.categories
	`, p.EmailAddress, p.FirstName, p.Address, p.Contact, int16(p.Role), nonNil(p.Categories))
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", mapError(err))
	}
	return nil
}
