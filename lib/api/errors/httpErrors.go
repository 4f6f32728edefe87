package errors

var InvalidRevisionError = Error{
	Message: "Invalid revision",
	Error:   400,
}

var InvalidApplicationNameError = Error{
	Message: "Invalid application name",
	Error:   400,
}

var InvalidRequestError = Error{
	Message: "Invalid request",
	Error:   400,
}

func NewInvalidParamError(paramName string) Error {
	return Error{
		Message: "Invalid parameter: " + paramName,
		Error:   400,
	}
}

var RevisionNotFoundError = Error{
	Message: "Revision not found",
	Error:   404,
}

var ApplicationNotFoundError = Error{
	Message: "Application not found",
	Error:   404,
}

var InternalServerError = Error{
	Message: "Internal server error",
	Error:   500,
}

var DataRetrievalError = Error{
	Message: "Failed to retrieve data",
	Error:   500,
}

var UpstreamTimeoutError = Error{
	Message: "Metadata lookup timed out",
	Error:   504,
}

var ValidationError = Error{
	Message: "Validation failed",
	Error:   422,
}

func NewValidationError(detail string) Error {
	return Error{
		Message: ValidationError.Message + ": " + detail,
		Error:   ValidationError.Error,
	}
}
