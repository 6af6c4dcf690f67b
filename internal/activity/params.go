package activity

// RegisterLocationParams holds the parameters for RegisterLocation.
type RegisterLocationParams struct {
	Location string `json:"location"`
}

// GrantAdminAccessParams holds the parameters for GrantAdminAccess.
type GrantAdminAccessParams struct {
	Location string `json:"location"`
}

// GrantProducerAccessParams holds the parameters for GrantProducerAccess.
type GrantProducerAccessParams struct {
	AccountID string `json:"account_id"`
	Location  string `json:"location"`
}

// CreateCentralDatabaseParams holds the parameters for CreateCentralDatabase.
type CreateCentralDatabaseParams struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// SetDatabaseOwnerParams holds the parameters for SetDatabaseOwner.
type SetDatabaseOwnerParams struct {
	Database string `json:"database"`
	Owner    string `json:"owner"`
	PiiFlag  bool   `json:"pii_flag"`
}

// CreateTableParams holds the parameters for CreateTable.
type CreateTableParams struct {
	Database string `json:"database"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

// GrantTablePermissionsParams holds the parameters for GrantTablePermissions.
type GrantTablePermissionsParams struct {
	AccountID string `json:"account_id"`
	Database  string `json:"database"`
	Table     string `json:"table"`
}

// UpdateRegistrationStatusParams holds the parameters for
// UpdateRegistrationStatus.
type UpdateRegistrationStatusParams struct {
	ID            string  `json:"id"`
	Status        string  `json:"status"`
	StatusMessage *string `json:"status_message,omitempty"`
}

// SetRegistrationResultParams holds the parameters for SetRegistrationResult.
type SetRegistrationResultParams struct {
	ID         string   `json:"id"`
	TableNames []string `json:"table_names"`
}

// PublishNotificationParams holds the parameters for PublishNotification.
type PublishNotificationParams struct {
	ProducerAccountID   string   `json:"producer_account_id"`
	DatabaseName        string   `json:"database_name"`
	CentralDatabaseName string   `json:"central_database_name"`
	TableNames          []string `json:"table_names"`
}
