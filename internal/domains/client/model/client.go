package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrClientNotFound = errors.New("client not found")
	ErrInvalidClient  = errors.New("client name, email and phone are required")
	ErrDuplicateEmail = errors.New("client email already exists")
)

// Client is identified by email. Created on first booking, never updated.
type Client struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Phone     string    `db:"phone"`
	CreatedAt time.Time `db:"created_at"`
}

// NewClient builds an unsaved client with a fresh id.
func NewClient(name, email, phone string) (*Client, error) {
	c := &Client{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Phone:     strings.TrimSpace(phone),
		CreatedAt: time.Now().UTC(),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) Validate() error {
	if c.Name == "" || c.Email == "" || c.Phone == "" {
		return ErrInvalidClient
	}
	return nil
}
