package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	temporalclient "go.temporal.io/sdk/client"
	temporalmocks "go.temporal.io/sdk/mocks"

	"github.com/meshfoundry/datamesh/internal/api/request"
	"github.com/meshfoundry/datamesh/internal/model"
)

func TestNewRegistrationService(t *testing.T) {
	db := &mockDB{}
	tc := &temporalmocks.Client{}
	svc := NewRegistrationService(db, tc)

	require.NotNil(t, svc)
	assert.Equal(t, db, svc.db)
	assert.Equal(t, tc, svc.tc)
}

// ---------- Create ----------

func TestRegistrationService_Create_Success(t *testing.T) {
	db := &mockDB{}
	tc := &temporalmocks.Client{}
	svc := NewRegistrationService(db, tc)
	ctx := context.Background()

	reg := &model.Registration{
		ID:                  "test-registration-1",
		ProducerAccountID:   "111111111111",
		DatabaseName:        "sales",
		DataProductLocation: "bucket/path",
		ProductOwnerName:    "Alice",
		Tables:              []model.TableSpec{{Name: "orders", Location: "bucket/path/orders"}},
		Status:              model.StatusPending,
		CreatedAt:           time.Now(),
		UpdatedAt:           time.Now(),
	}

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.CommandTag{}, nil)

	wfRun := &temporalmocks.WorkflowRun{}
	tc.On("ExecuteWorkflow", ctx, mock.MatchedBy(func(opts temporalclient.StartWorkflowOptions) bool {
		return opts.ID == "register-product-test-registration-1" && opts.TaskQueue == TaskQueue
	}), "RegisterDataProductWorkflow", reg.ID).Return(wfRun, nil)

	err := svc.Create(ctx, reg)
	require.NoError(t, err)
	db.AssertExpectations(t)
	tc.AssertExpectations(t)
}

func TestRegistrationService_Create_InsertError(t *testing.T) {
	db := &mockDB{}
	tc := &temporalmocks.Client{}
	svc := NewRegistrationService(db, tc)
	ctx := context.Background()

	reg := &model.Registration{ID: "test-registration-1", DatabaseName: "sales"}

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.CommandTag{}, errors.New("db error"))

	err := svc.Create(ctx, reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert registration")
	db.AssertExpectations(t)
	tc.AssertNotCalled(t, "ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRegistrationService_Create_WorkflowError(t *testing.T) {
	db := &mockDB{}
	tc := &temporalmocks.Client{}
	svc := NewRegistrationService(db, tc)
	ctx := context.Background()

	reg := &model.Registration{ID: "test-registration-1", DatabaseName: "sales"}

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.CommandTag{}, nil)
	tc.On("ExecuteWorkflow", ctx, mock.Anything, "RegisterDataProductWorkflow", reg.ID).Return(nil, errors.New("temporal down"))

	err := svc.Create(ctx, reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start RegisterDataProductWorkflow")
	db.AssertExpectations(t)
	tc.AssertExpectations(t)
}

// ---------- Resubmit ----------

func TestRegistrationService_Resubmit_Success(t *testing.T) {
	db := &mockDB{}
	tc := &temporalmocks.Client{}
	svc := NewRegistrationService(db, tc)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.CommandTag{}, nil)

	wfRun := &temporalmocks.WorkflowRun{}
	tc.On("ExecuteWorkflow", ctx, mock.Anything, "RegisterDataProductWorkflow", "test-registration-1").Return(wfRun, nil)

	err := svc.Resubmit(ctx, "test-registration-1")
	require.NoError(t, err)
	db.AssertExpectations(t)
	tc.AssertExpectations(t)
}

// ---------- GetByID ----------

func TestRegistrationService_GetByID_Success(t *testing.T) {
	db := &mockDB{}
	tc := &temporalmocks.Client{}
	svc := NewRegistrationService(db, tc)
	ctx := context.Background()

	now := time.Now().Truncate(time.Microsecond)

	row := &mockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*string)) = "test-registration-1"
		*(dest[1].(*string)) = "111111111111"
		*(dest[2].(*string)) = "sales"
		*(dest[3].(*string)) = "bucket/path"
		*(dest[4].(*string)) = "Alice"
		*(dest[5].(*bool)) = true
		*(dest[6].(*[]byte)) = []byte(`[{"name":"orders","location":"bucket/path/orders"}]`)
		*(dest[7].(*[]byte)) = []byte(`["orders"]`)
		*(dest[8].(*string)) = model.StatusActive
		*(dest[9].(**string)) = nil
		*(dest[10].(*time.Time)) = now
		*(dest[11].(*time.Time)) = now
		return nil
	}}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(row)

	result, err := svc.GetByID(ctx, "test-registration-1")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "sales", result.DatabaseName)
	assert.True(t, result.ProductPiiFlag)
	require.Len(t, result.Tables, 1)
	assert.Equal(t, "orders", result.Tables[0].Name)
	assert.Equal(t, []string{"orders"}, result.TableNames)
	db.AssertExpectations(t)
}

func TestRegistrationService_GetByID_NotFound(t *testing.T) {
	db := &mockDB{}
	tc := &temporalmocks.Client{}
	svc := NewRegistrationService(db, tc)
	ctx := context.Background()

	row := &mockRow{scanFunc: func(dest ...any) error {
		return errors.New("no rows in result set")
	}}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(row)

	result, err := svc.GetByID(ctx, "nonexistent")
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "get registration")
	db.AssertExpectations(t)
}

// ---------- List ----------

func TestRegistrationService_List_Success(t *testing.T) {
	db := &mockDB{}
	tc := &temporalmocks.Client{}
	svc := NewRegistrationService(db, tc)
	ctx := context.Background()

	now := time.Now().Truncate(time.Microsecond)

	rows := newMockRows(
		func(dest ...any) error {
			*(dest[0].(*string)) = "test-registration-1"
			*(dest[1].(*string)) = "111111111111"
			*(dest[2].(*string)) = "sales"
			*(dest[3].(*string)) = "bucket/path"
			*(dest[4].(*string)) = "Alice"
			*(dest[5].(*bool)) = false
			*(dest[6].(*[]byte)) = []byte(`[]`)
			*(dest[7].(*[]byte)) = nil
			*(dest[8].(*string)) = model.StatusPending
			*(dest[9].(**string)) = nil
			*(dest[10].(*time.Time)) = now
			*(dest[11].(*time.Time)) = now
			return nil
		},
	)
	db.On("Query", ctx, mock.AnythingOfType("string"), mock.Anything).Return(rows, nil)

	result, hasMore, err := svc.List(ctx, request.ListParams{Limit: 50})
	require.NoError(t, err)
	assert.False(t, hasMore)
	require.Len(t, result, 1)
	assert.Equal(t, "sales", result[0].DatabaseName)
	db.AssertExpectations(t)
}

func TestRegistrationService_List_QueryError(t *testing.T) {
	db := &mockDB{}
	tc := &temporalmocks.Client{}
	svc := NewRegistrationService(db, tc)
	ctx := context.Background()

	db.On("Query", ctx, mock.AnythingOfType("string"), mock.Anything).Return(nil, errors.New("connection lost"))

	result, _, err := svc.List(ctx, request.ListParams{Limit: 50})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "list registrations")
	db.AssertExpectations(t)
}
