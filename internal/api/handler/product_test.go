package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	temporalmocks "go.temporal.io/sdk/mocks"

	"github.com/meshfoundry/datamesh/internal/core"
	"github.com/meshfoundry/datamesh/internal/model"
)

func validProductBody() map[string]any {
	return map[string]any{
		"producer_account_id":   "111111111111",
		"database_name":         "sales",
		"data_product_location": "data-products/sales",
		"product_owner_name":    "Alice",
		"product_pii_flag":      false,
		"tables": []map[string]any{
			{"name": "orders", "location": "data-products/sales/orders"},
		},
	}
}

// --- Create ---

func TestProductCreate_InvalidJSON(t *testing.T) {
	h := NewProduct(nil)
	rec := httptest.NewRecorder()
	r := newRequestRaw(http.MethodPost, "/data-products", "{bad json")

	h.Create(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Contains(t, body["error"], "invalid JSON")
}

func TestProductCreate_NoTables(t *testing.T) {
	h := NewProduct(nil)
	rec := httptest.NewRecorder()
	body := validProductBody()
	body["tables"] = []map[string]any{}
	r := newRequest(http.MethodPost, "/data-products", body)

	h.Create(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeErrorResponse(rec)
	assert.Contains(t, resp["error"], "validation error")
}

func TestProductCreate_DuplicateTableNames(t *testing.T) {
	h := NewProduct(nil)
	rec := httptest.NewRecorder()
	body := validProductBody()
	body["tables"] = []map[string]any{
		{"name": "orders", "location": "data-products/sales/orders"},
		{"name": "orders", "location": "data-products/sales/orders_v2"},
	}
	r := newRequest(http.MethodPost, "/data-products", body)

	h.Create(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeErrorResponse(rec)
	assert.Contains(t, resp["error"], "validation error")
}

func TestProductCreate_BadAccountID(t *testing.T) {
	h := NewProduct(nil)
	rec := httptest.NewRecorder()
	body := validProductBody()
	body["producer_account_id"] = "not-an-account"
	r := newRequest(http.MethodPost, "/data-products", body)

	h.Create(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductCreate_Accepted(t *testing.T) {
	db := &handlerMockDB{}
	tc := &temporalmocks.Client{}
	h := NewProduct(core.NewRegistrationService(db, tc))

	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.CommandTag{}, nil)
	wfRun := &temporalmocks.WorkflowRun{}
	tc.On("ExecuteWorkflow", mock.Anything, mock.Anything, "RegisterDataProductWorkflow", mock.Anything).Return(wfRun, nil)

	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/data-products", validProductBody())

	h.Create(rec, r)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var reg model.Registration
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
	assert.NotEmpty(t, reg.ID)
	assert.Equal(t, model.StatusPending, reg.Status)
	assert.Equal(t, "111111111111", reg.ProducerAccountID)
	require.Len(t, reg.Tables, 1)
	assert.Equal(t, "orders", reg.Tables[0].Name)
	db.AssertExpectations(t)
	tc.AssertExpectations(t)
}

// --- Get ---

func TestProductGet_EmptyID(t *testing.T) {
	h := NewProduct(nil)
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodGet, "/data-products/", nil)
	r = withChiURLParam(r, "id", "")

	h.Get(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Contains(t, body["error"], "missing required ID")
}

// --- Resubmit ---

func TestProductResubmit_EmptyID(t *testing.T) {
	h := NewProduct(nil)
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/data-products//resubmit", nil)
	r = withChiURLParam(r, "id", "")

	h.Resubmit(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
