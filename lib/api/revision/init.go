package revision

import (
	"context"
	"errors"
	"time"

	"github.com/ether/revpanel/lib"
	apiErrors "github.com/ether/revpanel/lib/api/errors"
	apiUtils "github.com/ether/revpanel/lib/api/utils"
	"github.com/ether/revpanel/lib/db"
	"github.com/ether/revpanel/lib/metadata"
	"github.com/ether/revpanel/lib/models/revision"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// PutRevisionMetadataRequest is the body accepted when metadata is pushed.
type PutRevisionMetadataRequest struct {
	Author  string     `json:"author" validate:"max=255"`
	Date    *time.Time `json:"date"`
	Tags    []string   `json:"tags" validate:"omitempty,max=64,dive,required,max=128"`
	Message string     `json:"message" validate:"max=65536"`
}

type RevisionListResponse struct {
	ApplicationName string                    `json:"applicationName"`
	Revisions       []revision.StoredRevision `json:"revisions"`
}

func getMetadata(store *lib.InitStore, c *fiber.Ctx, latest bool) error {
	name, apiErr := apiUtils.ApplicationName(c)
	if apiErr != nil {
		return apiUtils.SendError(c, *apiErr)
	}
	rev := ""
	if !latest {
		if rev, apiErr = apiUtils.RevisionParam(c); apiErr != nil {
			return apiUtils.SendError(c, *apiErr)
		}
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), store.RetrievedSettings.Panel.RenderTimeout())
	defer cancel()

	found, err := store.Fetcher.RevisionMetadata(ctx, name, rev)
	if err != nil {
		if !metadata.IsNotFound(err) {
			store.Logger.Warnw("error looking up revision metadata", "application", name, "revision", rev, "error", err)
		}
		return apiUtils.SendError(c, apiUtils.LookupError(err))
	}
	return c.JSON(found)
}

// GetLatestRevisionMetadata godoc
// @Summary Get the metadata of the latest revision
// @Description Returns the metadata of the most recently dated revision of an application
// @Tags Revisions
// @Produce json
// @Param name path string true "Application name"
// @Success 200 {object} revision.RevisionMetadata
// @Failure 400 {object} errors.Error
// @Failure 404 {object} errors.Error
// @Failure 500 {object} errors.Error
// @Failure 504 {object} errors.Error
// @Router /api/v1/applications/{name}/revisions/metadata [get]
func GetLatestRevisionMetadata(store *lib.InitStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return getMetadata(store, c, true)
	}
}

// GetRevisionMetadata godoc
// @Summary Get the metadata of a revision
// @Description Returns author, date, tags and message of a revision
// @Tags Revisions
// @Produce json
// @Param name path string true "Application name"
// @Param revision path string true "Revision"
// @Success 200 {object} revision.RevisionMetadata
// @Failure 400 {object} errors.Error
// @Failure 404 {object} errors.Error
// @Failure 500 {object} errors.Error
// @Failure 504 {object} errors.Error
// @Router /api/v1/applications/{name}/revisions/{revision}/metadata [get]
func GetRevisionMetadata(store *lib.InitStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return getMetadata(store, c, false)
	}
}

// PutRevisionMetadata godoc
// @Summary Store the metadata of a revision
// @Description Creates or replaces the metadata record of a revision and refreshes open panels of the application
// @Tags Revisions
// @Accept json
// @Produce json
// @Param name path string true "Application name"
// @Param revision path string true "Revision"
// @Param request body PutRevisionMetadataRequest true "Revision metadata"
// @Success 200 {object} revision.RevisionMetadata
// @Failure 400 {object} errors.Error
// @Failure 422 {object} errors.Error
// @Failure 500 {object} errors.Error
// @Router /api/v1/applications/{name}/revisions/{revision}/metadata [put]
func PutRevisionMetadata(store *lib.InitStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name, apiErr := apiUtils.ApplicationName(c)
		if apiErr != nil {
			return apiUtils.SendError(c, *apiErr)
		}
		rev, apiErr := apiUtils.RevisionParam(c)
		if apiErr != nil {
			return apiUtils.SendError(c, *apiErr)
		}
		if rev == "" {
			return apiUtils.SendError(c, apiErrors.InvalidRevisionError)
		}

		var request PutRevisionMetadataRequest
		if err := c.BodyParser(&request); err != nil {
			return apiUtils.SendError(c, apiErrors.InvalidRequestError)
		}
		if err := store.Validator.Struct(request); err != nil {
			var validationErrors validator.ValidationErrors
			if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
				return apiUtils.SendError(c, apiErrors.NewValidationError(validationErrors[0].Namespace()))
			}
			return apiUtils.SendError(c, apiErrors.ValidationError)
		}

		stored := revision.StoredRevision{
			ApplicationName: name,
			Revision:        rev,
			Metadata: revision.RevisionMetadata{
				Author:  request.Author,
				Date:    request.Date,
				Tags:    request.Tags,
				Message: request.Message,
			},
		}
		if err := store.Store.SaveRevisionMetadata(stored); err != nil {
			store.Logger.Errorw("error saving revision metadata", "application", name, "revision", rev, "error", err)
			return apiUtils.SendError(c, apiErrors.InternalServerError)
		}
		changed(store, name, rev)

		store.Logger.Infow("stored revision metadata", "application", name, "revision", rev)
		return c.Status(fiber.StatusOK).JSON(stored.Metadata)
	}
}

// DeleteRevisionMetadata godoc
// @Summary Delete the metadata of a revision
// @Description Removes the stored metadata record of a revision
// @Tags Revisions
// @Param name path string true "Application name"
// @Param revision path string true "Revision"
// @Success 204 "No Content"
// @Failure 400 {object} errors.Error
// @Failure 404 {object} errors.Error
// @Failure 500 {object} errors.Error
// @Router /api/v1/applications/{name}/revisions/{revision}/metadata [delete]
func DeleteRevisionMetadata(store *lib.InitStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name, apiErr := apiUtils.ApplicationName(c)
		if apiErr != nil {
			return apiUtils.SendError(c, *apiErr)
		}
		rev, apiErr := apiUtils.RevisionParam(c)
		if apiErr != nil || rev == "" {
			return apiUtils.SendError(c, apiErrors.InvalidRevisionError)
		}

		if err := store.Store.RemoveRevisionMetadata(name, rev); err != nil {
			if errors.Is(err, db.ErrRevisionNotFound) {
				return apiUtils.SendError(c, apiErrors.RevisionNotFoundError)
			}
			store.Logger.Errorw("error removing revision metadata", "application", name, "revision", rev, "error", err)
			return apiUtils.SendError(c, apiErrors.InternalServerError)
		}
		changed(store, name, rev)
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ListRevisions godoc
// @Summary List the stored revisions of an application
// @Description Returns every stored revision of an application, newest first
// @Tags Revisions
// @Produce json
// @Param name path string true "Application name"
// @Success 200 {object} RevisionListResponse
// @Failure 400 {object} errors.Error
// @Failure 500 {object} errors.Error
// @Router /api/v1/applications/{name}/revisions [get]
func ListRevisions(store *lib.InitStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name, apiErr := apiUtils.ApplicationName(c)
		if apiErr != nil {
			return apiUtils.SendError(c, *apiErr)
		}
		revisions, err := store.Store.GetRevisionsOfApplication(name)
		if err != nil {
			store.Logger.Errorw("error listing revisions", "application", name, "error", err)
			return apiUtils.SendError(c, apiErrors.DataRetrievalError)
		}
		if revisions == nil {
			revisions = []revision.StoredRevision{}
		}
		return c.JSON(RevisionListResponse{
			ApplicationName: name,
			Revisions:       revisions,
		})
	}
}

func Init(store *lib.InitStore) {
	applications := store.C.Group("/api/v1/applications/:name")

	applications.Get("/revisions/metadata", GetLatestRevisionMetadata(store))
	applications.Get("/revisions/:revision/metadata", GetRevisionMetadata(store))
	applications.Put("/revisions/:revision/metadata", PutRevisionMetadata(store))
	applications.Delete("/revisions/:revision/metadata", DeleteRevisionMetadata(store))
	applications.Get("/revisions", ListRevisions(store))
}

// changed drops cached lookups of the revision and refreshes open panels.
func changed(store *lib.InitStore, applicationName string, rev string) {
	if invalidator, ok := store.Fetcher.(metadata.Invalidator); ok {
		invalidator.Invalidate(applicationName, rev)
	}
	if store.Hub != nil {
		store.Hub.RefreshApplication(applicationName)
	}
}
