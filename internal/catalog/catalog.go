package catalog

import (
	"context"
	"errors"
)

// Failure kinds surfaced by catalog backends. Activities translate these
// into Temporal application error types so the registration workflow can
// route on them.
var (
	// ErrAlreadyExists signals an idempotent re-registration: the resource
	// (location, database or table) is already provisioned. The workflow
	// recovers from this locally instead of failing.
	ErrAlreadyExists = errors.New("already exists")

	// ErrAccessDenied is fatal; the workflow aborts and surfaces the
	// failing stage.
	ErrAccessDenied = errors.New("access denied")

	// ErrNotFound is returned by lookups against resources that were never
	// provisioned.
	ErrNotFound = errors.New("not found")
)

// Catalog is the central governance catalog the registration workflow
// provisions against. Every call targets exactly one remote provisioning
// operation; retries are the caller's concern.
type Catalog interface {
	// RegisterLocation registers a storage location with the catalog so it
	// can be governed centrally.
	RegisterLocation(ctx context.Context, location string) error

	// GrantLocationAccess grants a principal access to a registered storage
	// location. Grants are upserts.
	GrantLocationAccess(ctx context.Context, principal, location string) error

	// CreateDatabase creates a database pointing at the given storage
	// location.
	CreateDatabase(ctx context.Context, name, location string) error

	// SetDatabaseOwner records owner metadata on an existing database.
	SetDatabaseOwner(ctx context.Context, database, owner string, piiFlag bool) error

	// CreateTable creates a table in a database, backed by the given
	// storage sub-path.
	CreateTable(ctx context.Context, database, name, location string) error

	// GrantTableAccess grants a principal access to a single table.
	GrantTableAccess(ctx context.Context, principal, database, table string) error
}
