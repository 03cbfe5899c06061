package comment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/evcraddock/eventos/internal/apperr"
)

// Repository provides CRUD operations for comments.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a comment repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectSQL = `SELECT c.id, c.evento_id, c.usuario_id, c.autor, c.conteudo, c.criado_em, c.atualizado_em,
		u.id, u.nome, u.email
	FROM comentarios c
	LEFT JOIN usuarios u ON u.id = c.usuario_id`

// scanComment scans a comment and its optional user from a database row.
func scanComment(row interface{ Scan(...interface{}) error }) (*Comment, error) {
	var c Comment
	var userID, joinedID sql.NullInt64
	var userName, userEmail sql.NullString

	err := row.Scan(
		&c.ID, &c.EventID, &userID, &c.Author, &c.Body, &c.CreatedAt, &c.UpdatedAt,
		&joinedID, &userName, &userEmail,
	)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		c.UserID = &userID.Int64
	}
	if joinedID.Valid {
		c.User = &Author{ID: joinedID.Int64, Name: userName.String, Email: userEmail.String}
	}

	return &c, nil
}

// Add creates a new comment on an event.
func (r *Repository) Add(ctx context.Context, eventID int64, in NewComment) (*Comment, error) {
	author := strings.TrimSpace(in.Author)
	body := strings.TrimSpace(in.Body)
	if author == "" {
		return nil, apperr.NewBadRequest("autor is required")
	}
	if body == "" {
		return nil, apperr.NewBadRequest("conteudo is required")
	}

	if err := r.requireRow(ctx, "eventos", eventID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NewNotFound("evento %d not found", eventID)
		}
		return nil, err
	}
	if in.UserID != nil {
		if err := r.requireRow(ctx, "usuarios", *in.UserID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, apperr.NewBadRequest("usuario %d does not exist", *in.UserID)
			}
			return nil, err
		}
	}

	result, err := r.db.ExecContext(ctx,
		"INSERT INTO comentarios (evento_id, usuario_id, autor, conteudo) VALUES (?, ?, ?, ?)",
		eventID, in.UserID, author, body,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting insert id: %w", err)
	}

	c, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reading back comment: %w", err)
	}

	return c, nil
}

// GetByID returns a comment by its ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Comment, error) {
	row := r.db.QueryRowContext(ctx, selectSQL+" WHERE c.id = ?", id)

	c, err := scanComment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NewNotFound("comentario %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying comment %d: %w", id, err)
	}

	return c, nil
}

// getForEvent returns a comment only if it belongs to the given event.
func (r *Repository) getForEvent(ctx context.Context, eventID, id int64) (*Comment, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.EventID != eventID {
		return nil, apperr.NewNotFound("comentario %d not found", id)
	}
	return c, nil
}

// ListByEventID returns all comments for an event in creation order.
// An event without comments yields an empty, non-nil slice.
func (r *Repository) ListByEventID(ctx context.Context, eventID int64) ([]*Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		selectSQL+" WHERE c.evento_id = ? ORDER BY c.criado_em ASC, c.id ASC",
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("closing rows", "error", closeErr)
		}
	}()

	comments := make([]*Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating comments: %w", err)
	}

	return comments, nil
}

// Update merges the non-blank fields of p over the stored comment.
func (r *Repository) Update(ctx context.Context, eventID, id int64, p Patch) (*Comment, error) {
	existing, err := r.getForEvent(ctx, eventID, id)
	if err != nil {
		return nil, err
	}

	author := existing.Author
	if p.Author != nil && strings.TrimSpace(*p.Author) != "" {
		author = strings.TrimSpace(*p.Author)
	}
	body := existing.Body
	if p.Body != nil && strings.TrimSpace(*p.Body) != "" {
		body = strings.TrimSpace(*p.Body)
	}

	_, err = r.db.ExecContext(ctx,
		"UPDATE comentarios SET autor = ?, conteudo = ?, atualizado_em = CURRENT_TIMESTAMP WHERE id = ?",
		author, body, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating comment: %w", err)
	}

	return r.GetByID(ctx, id)
}

// Delete removes a comment and returns it as it was before deletion.
func (r *Repository) Delete(ctx context.Context, eventID, id int64) (*Comment, error) {
	existing, err := r.getForEvent(ctx, eventID, id)
	if err != nil {
		return nil, err
	}

	result, err := r.db.ExecContext(ctx, "DELETE FROM comentarios WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("deleting comment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return nil, apperr.NewNotFound("comentario %d not found", id)
	}

	return existing, nil
}

// requireRow returns sql.ErrNoRows if table has no row with the given id.
func (r *Repository) requireRow(ctx context.Context, table string, id int64) error {
	var one int
	err := r.db.QueryRowContext(ctx, fmt.Sprintf("SELECT 1 FROM %s WHERE id = ?", table), id).Scan(&one)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking %s %d: %w", table, id, err)
	}
	return err
}
