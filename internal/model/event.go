package model

// EventSource identifies events emitted by the registration workflow.
const EventSource = "datamesh.registration"

// detailTypeSuffix scopes routing rules to a single producer account.
// Account IDs are globally unique, so no rule ever matches more than one
// domain.
const detailTypeSuffix = "_createResourceLinks"

// DetailTypeFor returns the routing key for notifications addressed to the
// given account.
func DetailTypeFor(accountID string) string {
	return accountID + detailTypeSuffix
}

// NotificationDetail is the payload of the event published when a data
// product registration completes.
type NotificationDetail struct {
	CentralDatabaseName string   `json:"central_database_name"`
	ProducerAccountID   string   `json:"producer_account_id"`
	DatabaseName        string   `json:"database_name"`
	TableNames          []string `json:"table_names"`
}
