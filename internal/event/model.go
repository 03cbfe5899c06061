// Package event provides the event domain model and data access.
package event

import "time"

// Event is a scheduled activity that comments attach to.
type Event struct {
	ID          int64     `json:"id"`
	Title       string    `json:"titulo"`
	Description string    `json:"descricao"`
	Date        string    `json:"data"`
	Location    string    `json:"local"`
	CreatedAt   time.Time `json:"criadoEm"`
	UpdatedAt   time.Time `json:"atualizadoEm"`
}

// Input is the body accepted when creating or updating an event.
// On update, blank fields keep their stored value.
type Input struct {
	Title       string `json:"titulo" validate:"required"`
	Description string `json:"descricao"`
	Date        string `json:"data" validate:"required"`
	Location    string `json:"local"`
}

// scanEvent scans an event from a database row.
func scanEvent(row interface{ Scan(...interface{}) error }) (*Event, error) {
	var e Event
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Date, &e.Location, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
