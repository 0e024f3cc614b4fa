package repository

import (
	"context"
	"database/sql"
	"time"

	"levitt_bridge/internal/models"
	"levitt_bridge/internal/repository/db"
)

// InitDB opens the SQLite store; re-exported so callers wire the repository
// without importing the db package.
func InitDB(path string) (*sql.DB, error) {
	return db.InitDB(path)
}

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

// EventRepo is the append-only command audit log. Only operator actions are
// recorded; polled sensor values are never persisted.
type EventRepo interface {
	Append(ctx context.Context, e models.CommandEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.CommandEvent, error)
}

type Repository struct {
	Events EventRepo
	Auth   Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Events: NewEventSQLite(db),
		Auth:   NewUserRepository(db),
	}
}
