package core

import (
	"context"

	"github.com/meshfoundry/datamesh/internal/model"
	"github.com/meshfoundry/datamesh/internal/registry"
)

// DomainService exposes data domain registration to the API layer. All
// semantics live in the registry, which keeps the persisted domain records
// and the event bus routing rules in sync.
type DomainService struct {
	registry *registry.Registry
}

func NewDomainService(reg *registry.Registry) *DomainService {
	return &DomainService{registry: reg}
}

func (s *DomainService) Register(ctx context.Context, domainID, accountID, endpoint string) (*model.DataDomain, error) {
	return s.registry.Register(ctx, domainID, accountID, endpoint)
}

func (s *DomainService) Deregister(ctx context.Context, domainID string) error {
	return s.registry.Deregister(ctx, domainID)
}

func (s *DomainService) GetByDomainID(ctx context.Context, domainID string) (*model.DataDomain, error) {
	return s.registry.GetByDomainID(ctx, domainID)
}

func (s *DomainService) List(ctx context.Context, limit int, cursor string) ([]model.DataDomain, bool, error) {
	return s.registry.List(ctx, limit, cursor)
}
