package internal

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"atlas-asset-api/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// seedDefaultCategories inserts the stock category list on an empty table.
// Safe to call on every startup.
func (s *Server) seedDefaultCategories(ctx context.Context) error {
	var count int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, c := range models.DefaultCategories {
		_, err := s.DB.ExecContext(ctx, `
			INSERT INTO categories (name, category_type, display_name)
			VALUES ($1, $2, $3)
			ON CONFLICT (name) DO NOTHING`, c.Name, c.CategoryType, c.DisplayName)
		if err != nil {
			return fmt.Errorf("seed category %s: %w", c.Name, err)
		}
	}
	s.Log.WithField("count", len(models.DefaultCategories)).Info("Seeded default categories")
	return nil
}

const passwordAlphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func generatePassword(length int) (string, error) {
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(passwordAlphabet))))
		if err != nil {
			return "", err
		}
		out[i] = passwordAlphabet[n.Int64()]
	}
	return string(out), nil
}

// seedDefaultAdmin creates a bootstrap admin account when the users table is
// empty. The generated password is logged once and the account is flagged to
// force a password change on first login.
func (s *Server) seedDefaultAdmin(ctx context.Context) error {
	var count int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	password, err := generatePassword(16)
	if err != nil {
		return fmt.Errorf("generate admin password: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	var orgID int64
	err = s.DB.QueryRowContext(ctx, `
		INSERT INTO organizations (name, is_personal)
		VALUES ('Default Organization', false)
		RETURNING id`).Scan(&orgID)
	if err != nil {
		return fmt.Errorf("create default organization: %w", err)
	}

	const adminEmail = "admin@example.com"
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO users (name, email, password_hash, role, organization_id, must_change_password)
		VALUES ('Admin', $1, $2, $3, $4, true)`,
		adminEmail, string(hash), models.RoleAdmin, orgID)
	if err != nil {
		return fmt.Errorf("create default admin: %w", err)
	}

	s.Log.WithField("email", adminEmail).
		WithField("password", password).
		Warn("Seeded default admin account; change the password after first login")
	return nil
}
