package model

import "time"

// TableSpec describes one catalog table of a data product. Name is unique
// within the owning registration.
type TableSpec struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// Registration is a data product registration request submitted by a producer
// account, plus its provisioning outcome.
type Registration struct {
	ID                  string      `json:"id" db:"id"`
	ProducerAccountID   string      `json:"producer_account_id" db:"producer_account_id"`
	DatabaseName        string      `json:"database_name" db:"database_name"`
	DataProductLocation string      `json:"data_product_location" db:"data_product_location"`
	ProductOwnerName    string      `json:"product_owner_name" db:"product_owner_name"`
	ProductPiiFlag      bool        `json:"product_pii_flag" db:"product_pii_flag"`
	Tables              []TableSpec `json:"tables" db:"tables"`
	TableNames          []string    `json:"table_names,omitempty" db:"table_names"`
	Status              string      `json:"status" db:"status"`
	StatusMessage       *string     `json:"status_message,omitempty" db:"status_message"`
	CreatedAt           time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at" db:"updated_at"`
}

// CentralDatabaseName returns the qualified name of the database created in
// the central catalog. Deterministic per producer account and database name,
// which is what makes re-submission of the same request idempotent.
func (r *Registration) CentralDatabaseName() string {
	return CentralDatabaseName(r.ProducerAccountID, r.DatabaseName)
}

func CentralDatabaseName(producerAccountID, databaseName string) string {
	return producerAccountID + "_" + databaseName
}
