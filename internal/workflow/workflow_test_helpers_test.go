package workflow

import (
	"strings"

	"github.com/stretchr/testify/mock"
	"go.temporal.io/sdk/testsuite"

	"github.com/meshfoundry/datamesh/internal/activity"
	"github.com/meshfoundry/datamesh/internal/model"
)

// registerActivities registers every activity struct the workflows invoke
// by name. The receivers carry zero-value dependencies; tests replace each
// invocation with OnActivity mocks.
func registerActivities(env *testsuite.TestWorkflowEnvironment) {
	env.RegisterActivity(&activity.CatalogActivities{})
	env.RegisterActivity(&activity.RegistrationDB{})
	env.RegisterActivity(&activity.Notify{})
}

// matchFailedStatus matches the status update a workflow issues when a
// stage fails: status failed, with the stage name leading the message.
func matchFailedStatus(id, stage string) any {
	return mock.MatchedBy(func(params activity.UpdateRegistrationStatusParams) bool {
		return params.ID == id &&
			params.Status == model.StatusFailed &&
			params.StatusMessage != nil &&
			strings.HasPrefix(*params.StatusMessage, stage+":")
	})
}
