// Package user provides the user model and its SQLite store.
package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/evcraddock/eventos/internal/apperr"
)

// User is a registered person who may author comments.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"nome"`
	Email     string    `json:"email"`
	Role      string    `json:"cargo"`
	Course    string    `json:"curso"`
	CreatedAt time.Time `json:"criadoEm"`
}

// Input is the body accepted when creating or updating a user.
// On update, blank fields keep their stored value.
type Input struct {
	Name   string `json:"nome" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
	Role   string `json:"cargo"`
	Course string `json:"curso"`
}

// Store manages users in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a user store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectSQL = "SELECT id, nome, email, cargo, curso, criado_em FROM usuarios"

func scanUser(row interface{ Scan(...interface{}) error }) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Course, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// Add creates a new user. Emails are stored lowercased and must be unique.
func (s *Store) Add(ctx context.Context, in Input) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	name := strings.TrimSpace(in.Name)

	if name == "" {
		return nil, apperr.NewBadRequest("nome is required")
	}
	if email == "" {
		return nil, apperr.NewBadRequest("email is required")
	}

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO usuarios (nome, email, cargo, curso) VALUES (?, ?, ?, ?)",
		name, email, strings.TrimSpace(in.Role), strings.TrimSpace(in.Course),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, apperr.NewBadRequest("email already registered: %s", email)
		}
		return nil, fmt.Errorf("adding user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user ID: %w", err)
	}

	return s.GetByID(ctx, id)
}

// List returns all users ordered by name.
func (s *Store) List(ctx context.Context) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx, selectSQL+" ORDER BY nome, id")
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			slog.Warn("closing rows", "error", cerr)
		}
	}()

	users := make([]*User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// GetByID returns a user by ID.
func (s *Store) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, selectSQL+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NewNotFound("usuario %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return u, nil
}

// Update merges the non-blank fields of in over the stored user.
func (s *Store) Update(ctx context.Context, id int64, in Input) (*User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	email := u.Email
	if v := strings.ToLower(strings.TrimSpace(in.Email)); v != "" {
		email = v
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE usuarios SET nome = ?, email = ?, cargo = ?, curso = ? WHERE id = ?",
		orKeep(in.Name, u.Name), email, orKeep(in.Role, u.Role), orKeep(in.Course, u.Course), id,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, apperr.NewBadRequest("email already registered: %s", email)
		}
		return nil, fmt.Errorf("updating user: %w", err)
	}

	return s.GetByID(ctx, id)
}

// Delete removes a user and returns it as it was before deletion. Comments
// the user authored keep their free-text author and lose the link.
func (s *Store) Delete(ctx context.Context, id int64) (*User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM usuarios WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("deleting user: %w", err)
	}

	return u, nil
}

func orKeep(v, current string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return current
}
