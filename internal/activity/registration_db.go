package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/meshfoundry/datamesh/internal/metrics"
	"github.com/meshfoundry/datamesh/internal/model"
)

// DB defines the database operations used by activity structs.
// *pgxpool.Pool satisfies this interface.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RegistrationDB contains activities that read from and update the
// registrations table.
type RegistrationDB struct {
	db DB
}

// NewRegistrationDB creates a new RegistrationDB activity struct.
func NewRegistrationDB(db DB) *RegistrationDB {
	return &RegistrationDB{db: db}
}

// GetRegistrationByID retrieves a registration by its ID.
func (a *RegistrationDB) GetRegistrationByID(ctx context.Context, id string) (*model.Registration, error) {
	var r model.Registration
	var tablesJSON []byte
	var tableNamesJSON []byte
	err := a.db.QueryRow(ctx,
		`SELECT id, producer_account_id, database_name, data_product_location, product_owner_name,
		        product_pii_flag, tables, table_names, status, status_message, created_at, updated_at
		 FROM registrations WHERE id = $1`, id,
	).Scan(&r.ID, &r.ProducerAccountID, &r.DatabaseName, &r.DataProductLocation, &r.ProductOwnerName,
		&r.ProductPiiFlag, &tablesJSON, &tableNamesJSON, &r.Status, &r.StatusMessage, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get registration by id: %w", err)
	}
	if err := json.Unmarshal(tablesJSON, &r.Tables); err != nil {
		return nil, fmt.Errorf("decode tables for registration %s: %w", id, err)
	}
	if tableNamesJSON != nil {
		if err := json.Unmarshal(tableNamesJSON, &r.TableNames); err != nil {
			return nil, fmt.Errorf("decode table names for registration %s: %w", id, err)
		}
	}
	return &r, nil
}

// UpdateRegistrationStatus sets the status of a registration row.
func (a *RegistrationDB) UpdateRegistrationStatus(ctx context.Context, params UpdateRegistrationStatusParams) error {
	_, err := a.db.Exec(ctx,
		"UPDATE registrations SET status = $1, status_message = $2, updated_at = now() WHERE id = $3",
		params.Status, params.StatusMessage, params.ID,
	)
	if err != nil {
		return err
	}
	switch params.Status {
	case model.StatusActive, model.StatusFailed:
		metrics.RegistrationsTotal.WithLabelValues(params.Status).Inc()
	}
	return nil
}

// SetRegistrationResult stores the created table names on the registration
// row, index-aligned with the request's table order.
func (a *RegistrationDB) SetRegistrationResult(ctx context.Context, params SetRegistrationResultParams) error {
	names, err := json.Marshal(params.TableNames)
	if err != nil {
		return fmt.Errorf("encode table names for registration %s: %w", params.ID, err)
	}
	_, err = a.db.Exec(ctx,
		"UPDATE registrations SET table_names = $1, updated_at = now() WHERE id = $2",
		names, params.ID,
	)
	return err
}
