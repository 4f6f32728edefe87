package exception

import "fmt"

type RevisionNotFoundError struct {
	*AppError
	ApplicationName string
	Revision        string
}

func NewRevisionNotFoundError(applicationName string, revision string, cause error) *RevisionNotFoundError {
	shown := revision
	if shown == "" {
		shown = "latest"
	}
	return &RevisionNotFoundError{
		AppError: &AppError{
			Code:    "REVISION_NOT_FOUND",
			Message: fmt.Sprintf("revision '%s' of application '%s' does not exist", shown, applicationName),
			Cause:   cause,
		},
		ApplicationName: applicationName,
		Revision:        revision,
	}
}

type ApplicationNotFoundError struct {
	*AppError
	ApplicationName string
}

func NewApplicationNotFoundError(applicationName string) *ApplicationNotFoundError {
	return &ApplicationNotFoundError{
		AppError: &AppError{
			Code:    "APPLICATION_NOT_FOUND",
			Message: fmt.Sprintf("application with name '%s' does not exist", applicationName),
		},
		ApplicationName: applicationName,
	}
}
