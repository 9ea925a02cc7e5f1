package ports

import (
	"context"

	"concepter-backend/domain/serialization"
)

// ProjectRepository defines the persistence contract for whole
// projects. This is a port in hexagonal architecture - the domain
// doesn't know about the implementation.
//
// A project is stored as its node records plus an open map of
// project-scoped state variables. Implementations only move records;
// resolving edges back into live nodes is the caller's job.
type ProjectRepository interface {
	// ListProjects returns the names of every stored project
	ListProjects(ctx context.Context) ([]string, error)

	// LoadProject retrieves a project's node records and state variables
	LoadProject(ctx context.Context, name string) ([]serialization.NodeRecord, map[string]interface{}, error)

	// SaveProject persists a project, replacing any prior version
	SaveProject(ctx context.Context, name string, records []serialization.NodeRecord, stateVariables map[string]interface{}) error

	// DeleteProject removes a stored project
	DeleteProject(ctx context.Context, name string) error
}
