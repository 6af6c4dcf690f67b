package core

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	temporalclient "go.temporal.io/sdk/client"

	"github.com/meshfoundry/datamesh/internal/registry"
)

// TaskQueue is the Temporal task queue shared by the API and the worker.
const TaskQueue = "datamesh-tasks"

// DB defines the database operations services depend on.
// *pgxpool.Pool satisfies this interface.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Services struct {
	Registration *RegistrationService
	Domain       *DomainService
}

func NewServices(db DB, tc temporalclient.Client, reg *registry.Registry) *Services {
	return &Services{
		Registration: NewRegistrationService(db, tc),
		Domain:       NewDomainService(reg),
	}
}
