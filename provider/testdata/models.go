// Package testdata contains declarations for the source provider tests.
package testdata

import (
	"context"
	"time"
)

// User represents a user in the system.
// This is the full documentation body.
type User struct {
	// ID is the unique identifier
	ID UserID `json:"id"`

	Name  string `json:"name"`
	Email string `json:"email,omitempty"` // Email is optional

	Age       *int           `json:"age"`
	CreatedAt time.Time      `json:"created_at"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Role      Role           `json:"role"`
	Password  string         `json:"-"`

	internal string
}

// UserID identifies a user.
type UserID string

// Role is a user's permission level.
type Role string

const (
	// RoleAdmin can do anything.
	RoleAdmin Role = "admin"
	RoleGuest Role = "guest"
)

// Priority orders tasks.
type Priority int

const (
	Low Priority = iota + 1
	High
)

// Page is a generic page of results.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// Stringish admits string-like types.
type Stringish interface {
	~string | ~int
}

// Wrapper has a union-constrained parameter.
type Wrapper[T Stringish] struct {
	Item T `json:"item"`
}

// Timestamps is embedded by records.
type Timestamps struct {
	UpdatedAt time.Time `json:"updated_at"`
}

// Task is a unit of work.
//
// Deprecated: use Job.
type Task struct {
	Timestamps
	Priority Priority   `json:"priority"`
	Owner    *User      `json:"owner"`
	Subtasks []*Task    `json:"subtasks"`
	Results  Page[User] `json:"results"`
	Options  struct {
		Retries int `json:"retries"`
	} `json:"options"`
}

// Greet returns a greeting.
func Greet(ctx context.Context, name string, times int) (string, error) {
	return name, nil
}

// Rename changes the user's name.
func (u *User) Rename(name string) error {
	u.Name = name
	return nil
}

func (u User) internalHelper() {}
