package utils

import (
	"context"
	"errors"
	"net/url"

	apiErrors "github.com/ether/revpanel/lib/api/errors"
	"github.com/ether/revpanel/lib/exception"
	"github.com/ether/revpanel/lib/utils"
	"github.com/gofiber/fiber/v2"
)

// ApplicationName reads and checks the :name route parameter.
func ApplicationName(c *fiber.Ctx) (string, *apiErrors.Error) {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return "", &apiErrors.InvalidApplicationNameError
	}
	if err := utils.CheckValidApplicationName(name); err != nil {
		return "", &apiErrors.InvalidApplicationNameError
	}
	return name, nil
}

// RevisionParam reads and checks the :revision route parameter. Revisions
// such as branch names may arrive with an escaped slash.
func RevisionParam(c *fiber.Ctx) (string, *apiErrors.Error) {
	rev, err := url.PathUnescape(c.Params("revision"))
	if err != nil {
		return "", &apiErrors.InvalidRevisionError
	}
	return Revision(rev)
}

// Revision reads and checks a revision, empty meaning the latest one.
func Revision(rev string) (string, *apiErrors.Error) {
	if err := utils.CheckValidRev(rev); err != nil {
		return "", &apiErrors.InvalidRevisionError
	}
	return rev, nil
}

// LookupError maps an error of a metadata lookup to its API error.
func LookupError(err error) apiErrors.Error {
	var revErr *exception.RevisionNotFoundError
	var appErr *exception.ApplicationNotFoundError
	switch {
	case errors.As(err, &revErr):
		return apiErrors.RevisionNotFoundError
	case errors.As(err, &appErr):
		return apiErrors.ApplicationNotFoundError
	case errors.Is(err, context.DeadlineExceeded):
		return apiErrors.UpstreamTimeoutError
	default:
		return apiErrors.DataRetrievalError
	}
}

// SendError writes apiErr with its own status code.
func SendError(c *fiber.Ctx, apiErr apiErrors.Error) error {
	return c.Status(apiErr.Error).JSON(apiErr)
}
