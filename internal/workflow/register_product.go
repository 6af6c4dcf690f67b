package workflow

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/meshfoundry/datamesh/internal/activity"
	"github.com/meshfoundry/datamesh/internal/model"
)

// RegisterDataProductWorkflow provisions a data product in the central
// governance catalog on behalf of a producer account: it registers the
// storage location, grants admin and producer access, creates the central
// database, creates every table of the product, and finally notifies the
// producer's domain over the event bus.
//
// AlreadyExists failures at the register-location, create-database and
// create-table steps are recovered locally, which makes re-submitting the
// same registration safe.
func RegisterDataProductWorkflow(ctx workflow.Context, registrationID string) error {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:    3,
			InitialInterval:    1 * time.Second,
			MaximumInterval:    10 * time.Second,
			BackoffCoefficient: 2.0,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)
	logger := workflow.GetLogger(ctx)

	// Set status to provisioning.
	err := workflow.ExecuteActivity(ctx, "UpdateRegistrationStatus", activity.UpdateRegistrationStatusParams{
		ID:     registrationID,
		Status: model.StatusProvisioning,
	}).Get(ctx, nil)
	if err != nil {
		return err
	}

	// Look up the registration.
	var reg model.Registration
	err = workflow.ExecuteActivity(ctx, "GetRegistrationByID", registrationID).Get(ctx, &reg)
	if err != nil {
		_ = setRegistrationFailed(ctx, registrationID, "GetRegistration", err)
		return err
	}

	centralDB := reg.CentralDatabaseName()

	// Register the data product location. An already-registered location
	// is not an error: skip straight to granting access.
	recovered, err := executeGuarded(ctx, "RegisterLocation", activity.RegisterLocationParams{
		Location: reg.DataProductLocation,
	})
	if err != nil {
		_ = setRegistrationFailed(ctx, registrationID, "RegisterLocation", err)
		return err
	}
	if recovered {
		logger.Info("location already registered, proceeding", "location", reg.DataProductLocation)
	}

	// Grant the governance admin access to the location.
	err = workflow.ExecuteActivity(ctx, "GrantAdminAccess", activity.GrantAdminAccessParams{
		Location: reg.DataProductLocation,
	}).Get(ctx, nil)
	if err != nil {
		_ = setRegistrationFailed(ctx, registrationID, "GrantAdminAccess", err)
		return err
	}

	// Grant the producer account access to its own location.
	err = workflow.ExecuteActivity(ctx, "GrantProducerAccess", activity.GrantProducerAccessParams{
		AccountID: reg.ProducerAccountID,
		Location:  reg.DataProductLocation,
	}).Get(ctx, nil)
	if err != nil {
		_ = setRegistrationFailed(ctx, registrationID, "GrantProducerAccess", err)
		return err
	}

	// Create the central database. An existing database means a re-run:
	// skip straight to refreshing its owner metadata.
	recovered, err = executeGuarded(ctx, "CreateCentralDatabase", activity.CreateCentralDatabaseParams{
		Name:     centralDB,
		Location: reg.DataProductLocation,
	})
	if err != nil {
		_ = setRegistrationFailed(ctx, registrationID, "CreateDatabase", err)
		return err
	}
	if recovered {
		logger.Info("database already exists, updating owner metadata", "database", centralDB)
	}

	err = workflow.ExecuteActivity(ctx, "SetDatabaseOwner", activity.SetDatabaseOwnerParams{
		Database: centralDB,
		Owner:    reg.ProductOwnerName,
		PiiFlag:  reg.ProductPiiFlag,
	}).Get(ctx, nil)
	if err != nil {
		_ = setRegistrationFailed(ctx, registrationID, "UpdateDatabaseOwnerMetadata", err)
		return err
	}

	// Create all tables of the product in parallel.
	tableNames, err := fanOutTables(ctx, reg.Tables, reg.ProducerAccountID, centralDB)
	if err != nil {
		_ = setRegistrationFailed(ctx, registrationID, "FanOutTables", err)
		return err
	}

	err = workflow.ExecuteActivity(ctx, "SetRegistrationResult", activity.SetRegistrationResultParams{
		ID:         registrationID,
		TableNames: tableNames,
	}).Get(ctx, nil)
	if err != nil {
		_ = setRegistrationFailed(ctx, registrationID, "SetRegistrationResult", err)
		return err
	}

	// Notify the producer's domain. Single attempt: provisioning is
	// complete at this point, so a failed publish leaves the domain
	// unnotified until the registration is re-submitted (safe, all steps
	// above are guarded or idempotent).
	publishCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	})
	err = workflow.ExecuteActivity(publishCtx, "PublishNotification", activity.PublishNotificationParams{
		ProducerAccountID:   reg.ProducerAccountID,
		DatabaseName:        reg.DatabaseName,
		CentralDatabaseName: centralDB,
		TableNames:          tableNames,
	}).Get(ctx, nil)
	if err != nil {
		_ = setRegistrationFailed(ctx, registrationID, "PublishNotification", err)
		return err
	}

	// Set status to active.
	return workflow.ExecuteActivity(ctx, "UpdateRegistrationStatus", activity.UpdateRegistrationStatusParams{
		ID:     registrationID,
		Status: model.StatusActive,
	}).Get(ctx, nil)
}

// fanOutTables runs the create-table sub-pipeline once per table. The
// sub-pipelines execute concurrently; results land in a pre-sized slice
// indexed by the table's position in the request, so the returned sequence
// always matches the input order no matter which pipeline finishes first.
// Any unguarded failure fails the whole stage.
func fanOutTables(ctx workflow.Context, tables []model.TableSpec, accountID, database string) ([]string, error) {
	names := make([]string, len(tables))
	errs := make([]error, len(tables))

	wg := workflow.NewWaitGroup(ctx)
	for i, table := range tables {
		i, table := i, table
		wg.Add(1)
		workflow.Go(ctx, func(gCtx workflow.Context) {
			defer wg.Done()
			names[i], errs[i] = createTablePipeline(gCtx, table, accountID, database)
		})
	}
	wg.Wait(ctx)

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", tables[i].Name, err)
		}
	}
	return names, nil
}

// createTablePipeline creates one table and grants the producer account
// access to it. An already-existing table skips straight to the grant.
func createTablePipeline(ctx workflow.Context, table model.TableSpec, accountID, database string) (string, error) {
	var name string
	err := workflow.ExecuteActivity(ctx, "CreateTable", activity.CreateTableParams{
		Database: database,
		Name:     table.Name,
		Location: table.Location,
	}).Get(ctx, &name)
	if err != nil {
		if !isAlreadyExists(err) {
			return "", err
		}
		name = table.Name
	}

	err = workflow.ExecuteActivity(ctx, "GrantTablePermissions", activity.GrantTablePermissionsParams{
		AccountID: accountID,
		Database:  database,
		Table:     name,
	}).Get(ctx, nil)
	if err != nil {
		return "", err
	}
	return name, nil
}
