package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meshfoundry/datamesh/internal/api/request"
	"github.com/meshfoundry/datamesh/internal/api/response"
	"github.com/meshfoundry/datamesh/internal/core"
	"github.com/meshfoundry/datamesh/internal/model"
	"github.com/meshfoundry/datamesh/internal/platform"
)

type Product struct {
	svc *core.RegistrationService
}

func NewProduct(svc *core.RegistrationService) *Product {
	return &Product{svc: svc}
}

// Create accepts a data product registration, persists it as pending and
// starts the provisioning workflow. Returns 202: provisioning is
// asynchronous, clients poll the registration status.
func (h *Product) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateDataProduct
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tables := make([]model.TableSpec, len(req.Tables))
	for i, t := range req.Tables {
		tables[i] = model.TableSpec{Name: t.Name, Location: t.Location}
	}

	now := time.Now()
	reg := &model.Registration{
		ID:                  platform.NewID(),
		ProducerAccountID:   req.ProducerAccountID,
		DatabaseName:        req.DatabaseName,
		DataProductLocation: req.DataProductLocation,
		ProductOwnerName:    req.ProductOwnerName,
		ProductPiiFlag:      req.ProductPiiFlag,
		Tables:              tables,
		Status:              model.StatusPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := h.svc.Create(r.Context(), reg); err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusAccepted, reg)
}

func (h *Product) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	reg, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusOK, reg)
}

func (h *Product) List(w http.ResponseWriter, r *http.Request) {
	params := request.ParseListParams(r)

	regs, hasMore, err := h.svc.List(r.Context(), params)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var nextCursor string
	if hasMore && len(regs) > 0 {
		nextCursor = regs[len(regs)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, regs, nextCursor, hasMore)
}

// Resubmit re-runs the provisioning workflow for an existing registration.
// Safe on partially provisioned registrations: every provisioning step
// skips resources that already exist.
func (h *Product) Resubmit(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.svc.GetByID(r.Context(), id); err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	if err := h.svc.Resubmit(r.Context(), id); err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusAccepted, map[string]string{"id": id, "status": model.StatusPending})
}
