package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/fortivus/fortivus/internal/models"
	"github.com/google/uuid"
)

// GetOrCreateUser finds or creates a user by login name. Returns the user ID.
// Updates last_seen and display_name on each call.
func (db *DB) GetOrCreateUser(ctx context.Context, login, displayName string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (id, login, display_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = NOW(), display_name = COALESCE(NULLIF($3, ''), users.display_name)
		RETURNING id
	`, uuid.New(), login, displayName).Scan(&id)
	return id, err
}

// UserFilter narrows the admin user listing.
type UserFilter struct {
	Search string // substring match on login or display name
	Status string // "", "active", or "banned"
	Page   int    // 1-based
	Limit  int
}

// UserPage is one page of the admin user listing.
type UserPage struct {
	Users []models.User `json:"users"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// ListUsers returns a filtered, paginated user listing for the admin
// dashboard, newest accounts first.
func (db *DB) ListUsers(ctx context.Context, f UserFilter) (*UserPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 25
	}

	where := []string{"TRUE"}
	args := []any{}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, s)
		where = append(where, fmt.Sprintf(
			"(login ILIKE '%%' || $%d || '%%' OR display_name ILIKE '%%' || $%d || '%%')",
			len(args), len(args)))
	}
	switch f.Status {
	case "banned":
		where = append(where, "is_banned = TRUE")
	case "active":
		where = append(where, "is_banned = FALSE")
	}
	cond := strings.Join(where, " AND ")

	page := &UserPage{Page: f.Page, Limit: f.Limit}
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE `+cond, args...,
	).Scan(&page.Total)
	if err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}

	args = append(args, f.Limit, (f.Page-1)*f.Limit)
	rows, err := db.Pool.Query(ctx,
		fmt.Sprintf(`SELECT id, login, display_name, xp, streak_days, is_banned, created_at
		 FROM users WHERE %s
		 ORDER BY created_at DESC
		 LIMIT $%d OFFSET $%d`, cond, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Login, &u.DisplayName, &u.XP, &u.StreakDays, &u.IsBanned, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		page.Users = append(page.Users, u)
	}
	return page, rows.Err()
}
