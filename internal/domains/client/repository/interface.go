package repository

import (
	"context"

	"github.com/google/uuid"

	"wavehouse-backend/internal/domains/client/model"
)

// Repository is client data access. Implementations enforce one client per
// normalised email.
type Repository interface {
	// FindByEmail returns nil, nil when absent
	FindByEmail(ctx context.Context, email string) (*model.Client, error)

	GetByID(ctx context.Context, id uuid.UUID) (*model.Client, error)

	// Create inserts a new client.
	// Returns model.ErrInvalidClient for empty fields, model.ErrDuplicateEmail
	// when the email is taken.
	Create(ctx context.Context, client *model.Client) error

	// FindOrCreate returns the existing client for client.Email or inserts
	// client. created reports which happened.
	FindOrCreate(ctx context.Context, client *model.Client) (found *model.Client, created bool, err error)
}
