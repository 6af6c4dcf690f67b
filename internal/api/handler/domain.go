package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meshfoundry/datamesh/internal/api/request"
	"github.com/meshfoundry/datamesh/internal/api/response"
	"github.com/meshfoundry/datamesh/internal/core"
	"github.com/meshfoundry/datamesh/internal/registry"
)

type Domain struct {
	svc *core.DomainService
}

func NewDomain(svc *core.DomainService) *Domain {
	return &Domain{svc: svc}
}

// Register adds a data domain to the mesh and installs its notification
// routing rule. Registering the same domain again updates its endpoint;
// claiming a domain registered under a different account is a conflict.
func (h *Domain) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterDomain
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	domain, err := h.svc.Register(r.Context(), req.DomainID, req.AccountID, req.Endpoint)
	if err != nil {
		if errors.Is(err, registry.ErrAccountMismatch) || errors.Is(err, registry.ErrAccountInUse) {
			response.WriteError(w, http.StatusConflict, err.Error())
			return
		}
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusCreated, domain)
}

func (h *Domain) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	domain, err := h.svc.GetByDomainID(r.Context(), id)
	if err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusOK, domain)
}

func (h *Domain) List(w http.ResponseWriter, r *http.Request) {
	pg := request.ParsePagination(r)

	domains, hasMore, err := h.svc.List(r.Context(), pg.Limit, pg.Cursor)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var nextCursor string
	if hasMore && len(domains) > 0 {
		nextCursor = domains[len(domains)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, domains, nextCursor, hasMore)
}

// Deregister removes a domain and its routing rule. Notifications for the
// domain's account are dropped from then on.
func (h *Domain) Deregister(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Deregister(r.Context(), id); err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
