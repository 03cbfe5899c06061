package event

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/evcraddock/eventos/internal/apperr"
)

// Repository provides CRUD operations for events.
type Repository struct {
	db *sql.DB
}

// NewRepository creates an event repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectColumns = `id, titulo, descricao, data, local, criado_em, atualizado_em`

// Insert adds a new event and returns it with its generated ID.
func (r *Repository) Insert(ctx context.Context, in Input) (*Event, error) {
	title := strings.TrimSpace(in.Title)
	date := strings.TrimSpace(in.Date)
	if title == "" {
		return nil, apperr.NewBadRequest("titulo is required")
	}
	if date == "" {
		return nil, apperr.NewBadRequest("data is required")
	}

	result, err := r.db.ExecContext(ctx,
		"INSERT INTO eventos (titulo, descricao, data, local) VALUES (?, ?, ?, ?)",
		title, strings.TrimSpace(in.Description), date, strings.TrimSpace(in.Location),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting insert id: %w", err)
	}

	return r.GetByID(ctx, id)
}

// GetByID returns an event by its ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Event, error) {
	query := fmt.Sprintf("SELECT %s FROM eventos WHERE id = ?", selectColumns)
	row := r.db.QueryRowContext(ctx, query, id)

	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NewNotFound("evento %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying event %d: %w", id, err)
	}

	return e, nil
}

// List returns all events ordered by date.
func (r *Repository) List(ctx context.Context) ([]*Event, error) {
	query := fmt.Sprintf("SELECT %s FROM eventos ORDER BY data ASC, id ASC", selectColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("closing rows", "error", closeErr)
		}
	}()

	events := make([]*Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}

	return events, nil
}

// Update merges the non-blank fields of in over the stored event.
func (r *Repository) Update(ctx context.Context, id int64, in Input) (*Event, error) {
	e, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE eventos SET titulo = ?, descricao = ?, data = ?, local = ?, atualizado_em = CURRENT_TIMESTAMP
		WHERE id = ?`,
		orKeep(in.Title, e.Title), orKeep(in.Description, e.Description),
		orKeep(in.Date, e.Date), orKeep(in.Location, e.Location), id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating event: %w", err)
	}

	return r.GetByID(ctx, id)
}

// Delete removes an event, and through the foreign key its comments, and
// returns the event as it was before deletion.
func (r *Repository) Delete(ctx context.Context, id int64) (*Event, error) {
	e, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := r.db.ExecContext(ctx, "DELETE FROM eventos WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("deleting event: %w", err)
	}

	return e, nil
}

func orKeep(v, current string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return current
}
