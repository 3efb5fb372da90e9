package domain

import "errors"

// ErrOperationNotFound is returned by FindByID for an unknown id
var ErrOperationNotFound = errors.New("operation not found")

// OperationRepository defines the interface for operation history persistence
type OperationRepository interface {
	// Create creates a new operation record
	Create(op *Operation) error

	// Update updates an existing operation record
	Update(op *Operation) error

	// FindByID finds an operation by ID
	FindByID(id string) (*Operation, error)

	// FindAll finds operations matching the filter, newest first
	FindAll(filter OperationFilter) ([]*Operation, error)

	// GetStats returns operation statistics
	GetStats() (*OperationStats, error)
}

// OperationFilter narrows FindAll. Zero values match everything.
type OperationFilter struct {
	Kind   OperationKind
	Status OperationStatus
	URL    string
	Limit  int
}

// OperationStats represents operation statistics
type OperationStats struct {
	Total     int64 `json:"total"`
	Running   int64 `json:"running"`
	Succeeded int64 `json:"succeeded"`
	Failed    int64 `json:"failed"`
	Resolves  int64 `json:"resolves"`
	Downloads int64 `json:"downloads"`
}
