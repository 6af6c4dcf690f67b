package request

// TableInput describes one table of a data product.
type TableInput struct {
	Name     string `json:"name" validate:"required,slug"`
	Location string `json:"location" validate:"required"`
}

// CreateDataProduct is the payload for registering a data product.
type CreateDataProduct struct {
	ProducerAccountID   string       `json:"producer_account_id" validate:"required,account_id"`
	DatabaseName        string       `json:"database_name" validate:"required,slug"`
	DataProductLocation string       `json:"data_product_location" validate:"required"`
	ProductOwnerName    string       `json:"product_owner_name" validate:"required"`
	ProductPiiFlag      bool         `json:"product_pii_flag"`
	Tables              []TableInput `json:"tables" validate:"required,min=1,unique=Name,dive"`
}
