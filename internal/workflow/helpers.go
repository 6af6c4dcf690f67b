package workflow

import (
	"errors"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/meshfoundry/datamesh/internal/activity"
	"github.com/meshfoundry/datamesh/internal/model"
)

// setRegistrationFailed is a helper to set a registration status to failed
// with the failing stage and error in the status message. It returns any
// error but callers typically ignore it since the primary error is more
// important.
func setRegistrationFailed(ctx workflow.Context, id, stage string, err error) error {
	msg := stage + ": " + err.Error()
	return workflow.ExecuteActivity(ctx, "UpdateRegistrationStatus", activity.UpdateRegistrationStatusParams{
		ID:            id,
		Status:        model.StatusFailed,
		StatusMessage: &msg,
	}).Get(ctx, nil)
}

// executeGuarded runs an activity and intercepts the AlreadyExists
// application error: a re-registration of an existing resource is not a
// failure, it means the workflow proceeds straight to the next dependent
// step. Every other error propagates. The returned flag reports whether the
// guard fired.
func executeGuarded(ctx workflow.Context, name string, arg any) (bool, error) {
	err := workflow.ExecuteActivity(ctx, name, arg).Get(ctx, nil)
	if err == nil {
		return false, nil
	}
	if isAlreadyExists(err) {
		return true, nil
	}
	return false, err
}

func isAlreadyExists(err error) bool {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Type() == activity.ErrTypeAlreadyExists
	}
	return false
}
