// Package comment provides the event comment domain model and data access.
package comment

import "time"

// Author is the registered user a comment is linked to.
type Author struct {
	ID    int64  `json:"id"`
	Name  string `json:"nome"`
	Email string `json:"email"`
}

// Comment represents a message left on an event.
// UserID is nil when the author is free text rather than a registered user.
type Comment struct {
	ID        int64     `json:"id"`
	EventID   int64     `json:"eventoId"`
	UserID    *int64    `json:"usuarioId"`
	Author    string    `json:"autor"`
	Body      string    `json:"conteudo"`
	CreatedAt time.Time `json:"criadoEm"`
	UpdatedAt time.Time `json:"atualizadoEm"`
	User      *Author   `json:"usuario,omitempty"`
}

// NewComment is the input for creating a comment.
type NewComment struct {
	Author string `json:"autor" validate:"required"`
	Body   string `json:"conteudo" validate:"required"`
	UserID *int64 `json:"usuarioId,omitempty" validate:"omitempty,gt=0"`
}

// Patch holds the fields an update may change. Nil or blank fields keep
// their stored value.
type Patch struct {
	Author *string `json:"autor,omitempty"`
	Body   *string `json:"conteudo,omitempty"`
}
