package core

import (
	"context"
	"encoding/json"
	"fmt"

	temporalclient "go.temporal.io/sdk/client"

	"github.com/meshfoundry/datamesh/internal/api/request"
	"github.com/meshfoundry/datamesh/internal/model"
)

type RegistrationService struct {
	db DB
	tc temporalclient.Client
}

func NewRegistrationService(db DB, tc temporalclient.Client) *RegistrationService {
	return &RegistrationService{db: db, tc: tc}
}

// Create persists a pending registration and starts the provisioning
// workflow. The workflow ID is derived from the registration ID, so
// re-submitting the same registration while a run is in flight is rejected
// by the workflow engine rather than provisioned twice.
func (s *RegistrationService) Create(ctx context.Context, reg *model.Registration) error {
	tables, err := json.Marshal(reg.Tables)
	if err != nil {
		return fmt.Errorf("encode tables for registration %s: %w", reg.ID, err)
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO registrations (id, producer_account_id, database_name, data_product_location,
		                            product_owner_name, product_pii_flag, tables, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		reg.ID, reg.ProducerAccountID, reg.DatabaseName, reg.DataProductLocation,
		reg.ProductOwnerName, reg.ProductPiiFlag, tables, reg.Status, reg.CreatedAt, reg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}

	workflowID := fmt.Sprintf("register-product-%s", reg.ID)
	_, err = s.tc.ExecuteWorkflow(ctx, temporalclient.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: TaskQueue,
	}, "RegisterDataProductWorkflow", reg.ID)
	if err != nil {
		return fmt.Errorf("start RegisterDataProductWorkflow: %w", err)
	}

	return nil
}

// Resubmit restarts the provisioning workflow for an existing registration.
// Provisioning steps are guarded against already-existing resources, so a
// re-run of a partially provisioned registration converges.
func (s *RegistrationService) Resubmit(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx,
		"UPDATE registrations SET status = $1, status_message = NULL, updated_at = now() WHERE id = $2",
		model.StatusPending, id,
	)
	if err != nil {
		return fmt.Errorf("set registration %s status to pending: %w", id, err)
	}

	workflowID := fmt.Sprintf("register-product-%s", id)
	_, err = s.tc.ExecuteWorkflow(ctx, temporalclient.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: TaskQueue,
	}, "RegisterDataProductWorkflow", id)
	if err != nil {
		return fmt.Errorf("start RegisterDataProductWorkflow: %w", err)
	}

	return nil
}

func (s *RegistrationService) GetByID(ctx context.Context, id string) (*model.Registration, error) {
	var r model.Registration
	var tablesJSON, tableNamesJSON []byte
	err := s.db.QueryRow(ctx,
		`SELECT id, producer_account_id, database_name, data_product_location, product_owner_name,
		        product_pii_flag, tables, table_names, status, status_message, created_at, updated_at
		 FROM registrations WHERE id = $1`, id,
	).Scan(&r.ID, &r.ProducerAccountID, &r.DatabaseName, &r.DataProductLocation, &r.ProductOwnerName,
		&r.ProductPiiFlag, &tablesJSON, &tableNamesJSON, &r.Status, &r.StatusMessage, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get registration %s: %w", id, err)
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

func (s *RegistrationService) List(ctx context.Context, params request.ListParams) ([]model.Registration, bool, error) {
	query := `SELECT id, producer_account_id, database_name, data_product_location, product_owner_name,
	                 product_pii_flag, tables, table_names, status, status_message, created_at, updated_at
	          FROM registrations WHERE 1=1`
	args := []any{}
	argIdx := 1

	if params.Search != "" {
		query += fmt.Sprintf(` AND (database_name ILIKE $%d OR producer_account_id ILIKE $%d)`, argIdx, argIdx)
		args = append(args, "%"+params.Search+"%")
		argIdx++
	}
	if params.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, params.Status)
		argIdx++
	}
	if params.Cursor != "" {
		query += fmt.Sprintf(` AND id > $%d`, argIdx)
		args = append(args, params.Cursor)
		argIdx++
	}

	query += ` ORDER BY id`
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, params.Limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		var r model.Registration
		var tablesJSON, tableNamesJSON []byte
		if err := rows.Scan(&r.ID, &r.ProducerAccountID, &r.DatabaseName, &r.DataProductLocation, &r.ProductOwnerName,
			&r.ProductPiiFlag, &tablesJSON, &tableNamesJSON, &r.Status, &r.StatusMessage, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, false, fmt.Errorf("scan registration: %w", err)
		}
		if err := json.Unmarshal(tablesJSON, &r.Tables); err != nil {
			return nil, false, fmt.Errorf("decode tables for registration %s: %w", r.ID, err)
		}
		if tableNamesJSON != nil {
			if err := json.Unmarshal(tableNamesJSON, &r.TableNames); err != nil {
				return nil, false, fmt.Errorf("decode table names for registration %s: %w", r.ID, err)
			}
		}
		regs = append(regs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate registrations: %w", err)
	}

	hasMore := len(regs) > params.Limit
	if hasMore {
		regs = regs[:params.Limit]
	}
	return regs, hasMore, nil
}
