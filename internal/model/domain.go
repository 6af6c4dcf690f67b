package model

import "time"

// DataDomain is a producer/consumer account participating in the mesh.
// Registering a domain installs the event bus routing rule that delivers
// registration notifications to the domain's endpoint.
type DataDomain struct {
	ID        string    `json:"id" db:"id"`
	DomainID  string    `json:"domain_id" db:"domain_id"`
	AccountID string    `json:"account_id" db:"account_id"`
	Endpoint  string    `json:"endpoint" db:"endpoint"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
