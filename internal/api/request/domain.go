package request

// RegisterDomain is the payload for registering a data domain with the
// mesh. Endpoint is the queue notifications for the domain's account are
// routed to.
type RegisterDomain struct {
	DomainID  string `json:"domain_id" validate:"required,slug"`
	AccountID string `json:"account_id" validate:"required,account_id"`
	Endpoint  string `json:"endpoint" validate:"required"`
}
