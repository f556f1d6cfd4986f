package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"wavehouse-backend/internal/domains/client/model"
	"wavehouse-backend/pkg/database"
)

type postgresRepository struct {
	db database.DBTX
}

// NewPostgresRepository works on a pool or inside a transaction.
func NewPostgresRepository(db database.DBTX) Repository {
	return &postgresRepository{db: db}
}

const clientColumns = `id, name, email, phone, created_at`

func (r *postgresRepository) FindByEmail(ctx context.Context, email string) (*model.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE email = $1`

	client, err := scanClient(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find client by email: %w", err)
	}
	return client, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`

	client, err := scanClient(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return client, nil
}

func (r *postgresRepository) Create(ctx context.Context, client *model.Client) error {
	if err := client.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO clients (id, name, email, phone, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query, client.ID, client.Name, client.Email, client.Phone, client.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return model.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

// FindOrCreate relies on the unique email index: a concurrent insert of the
// same email blocks until the other transaction finishes, then DO NOTHING
// yields no row and the committed client is re-read.
func (r *postgresRepository) FindOrCreate(ctx context.Context, client *model.Client) (*model.Client, bool, error) {
	if err := client.Validate(); err != nil {
		return nil, false, err
	}

	existing, err := r.FindByEmail(ctx, client.Email)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	query := `
		INSERT INTO clients (id, name, email, phone, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO NOTHING
		RETURNING ` + clientColumns

	created, err := scanClient(r.db.QueryRow(ctx, query,
		client.ID, client.Name, client.Email, client.Phone, client.CreatedAt))
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to insert client: %w", err)
	}

	existing, err = r.FindByEmail(ctx, client.Email)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, model.ErrDuplicateEmail
	}
	return existing, false, nil
}

func scanClient(row pgx.Row) (*model.Client, error) {
	var c model.Client
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
