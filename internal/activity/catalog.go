package activity

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/temporal"

	"github.com/meshfoundry/datamesh/internal/catalog"
	"github.com/meshfoundry/datamesh/internal/storage"
)

// Application error types the registration workflow routes on.
const (
	// ErrTypeAlreadyExists marks idempotent re-provisioning; the workflow
	// recovers from it at the guarded steps instead of failing.
	ErrTypeAlreadyExists = "AlreadyExists"

	// ErrTypeAccessDenied is fatal and aborts the workflow.
	ErrTypeAccessDenied = "AccessDenied"
)

// CatalogActivities contains activities that provision resources in the
// central governance catalog. Each activity wraps exactly one catalog call;
// transient backend errors stay retryable and are handled by the workflow's
// retry policy.
type CatalogActivities struct {
	catalog        catalog.Catalog
	verifier       storage.Verifier
	adminPrincipal string
}

// NewCatalogActivities creates a new CatalogActivities struct.
// adminPrincipal is the central governance principal granted admin access
// on every registered location.
func NewCatalogActivities(cat catalog.Catalog, verifier storage.Verifier, adminPrincipal string) *CatalogActivities {
	return &CatalogActivities{
		catalog:        cat,
		verifier:       verifier,
		adminPrincipal: adminPrincipal,
	}
}

// mapCatalogError translates catalog failure kinds into non-retryable
// Temporal application errors so the workflow can route on their type.
// Anything else is returned as-is and retried.
func mapCatalogError(err error) error {
	switch {
	case errors.Is(err, catalog.ErrAlreadyExists):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeAlreadyExists, err)
	case errors.Is(err, catalog.ErrAccessDenied):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeAccessDenied, err)
	default:
		return err
	}
}

// RegisterLocation verifies the data product location exists in the object
// store and registers it with the catalog.
func (a *CatalogActivities) RegisterLocation(ctx context.Context, params RegisterLocationParams) error {
	if err := a.verifier.VerifyLocation(ctx, params.Location); err != nil {
		return fmt.Errorf("verify location %s: %w", params.Location, err)
	}
	if err := a.catalog.RegisterLocation(ctx, params.Location); err != nil {
		return mapCatalogError(err)
	}
	return nil
}

// GrantAdminAccess grants the governance admin principal access to the
// registered location.
func (a *CatalogActivities) GrantAdminAccess(ctx context.Context, params GrantAdminAccessParams) error {
	if err := a.catalog.GrantLocationAccess(ctx, a.adminPrincipal, params.Location); err != nil {
		return mapCatalogError(err)
	}
	return nil
}

// GrantProducerAccess grants the producer account access to its own
// registered location.
func (a *CatalogActivities) GrantProducerAccess(ctx context.Context, params GrantProducerAccessParams) error {
	if err := a.catalog.GrantLocationAccess(ctx, params.AccountID, params.Location); err != nil {
		return mapCatalogError(err)
	}
	return nil
}

// CreateCentralDatabase creates the central catalog database for a data
// product.
func (a *CatalogActivities) CreateCentralDatabase(ctx context.Context, params CreateCentralDatabaseParams) error {
	if err := a.catalog.CreateDatabase(ctx, params.Name, params.Location); err != nil {
		return mapCatalogError(err)
	}
	return nil
}

// SetDatabaseOwner records owner metadata on the central database.
func (a *CatalogActivities) SetDatabaseOwner(ctx context.Context, params SetDatabaseOwnerParams) error {
	if err := a.catalog.SetDatabaseOwner(ctx, params.Database, params.Owner, params.PiiFlag); err != nil {
		return mapCatalogError(err)
	}
	return nil
}

// CreateTable creates one catalog table and returns its name.
func (a *CatalogActivities) CreateTable(ctx context.Context, params CreateTableParams) (string, error) {
	if err := a.catalog.CreateTable(ctx, params.Database, params.Name, params.Location); err != nil {
		return "", mapCatalogError(err)
	}
	return params.Name, nil
}

// GrantTablePermissions grants the producer account access to one table.
func (a *CatalogActivities) GrantTablePermissions(ctx context.Context, params GrantTablePermissionsParams) error {
	if err := a.catalog.GrantTableAccess(ctx, params.AccountID, params.Database, params.Table); err != nil {
		return mapCatalogError(err)
	}
	return nil
}
