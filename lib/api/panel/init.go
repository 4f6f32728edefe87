package panel

import (
	"context"
	"errors"
	"net/http"

	"github.com/a-h/templ"
	"github.com/ether/revpanel/lib"
	apiErrors "github.com/ether/revpanel/lib/api/errors"
	apiUtils "github.com/ether/revpanel/lib/api/utils"
	"github.com/ether/revpanel/lib/metadata"
	"github.com/ether/revpanel/lib/panel"
	"github.com/ether/revpanel/lib/resource"
	"github.com/ether/revpanel/lib/ws"
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
)

func renderComponent(c *fiber.Ctx, status int, component templ.Component) error {
	return adaptor.HTTPHandler(templ.Handler(component, templ.WithStatus(status)))(c)
}

// statusFor maps the state the panel ended in to the response code of the
// fragment. A lookup that has not settled yet is answered with its loading
// placeholder.
func statusFor(st panel.State) int {
	switch st.Status {
	case resource.Ready:
		return fiber.StatusOK
	case resource.Failed:
		if metadata.IsNotFound(st.Err) {
			return fiber.StatusNotFound
		}
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusAccepted
	}
}

// PanelSocket godoc
// @Summary Live revision metadata panel
// @Description Upgrades to a websocket. The client sends {"applicationName","revision"} and receives the rendered panel of the latest pair whenever its state changes
// @Tags Panel
// @Success 101 "Switching Protocols"
// @Router /panel/ws [get]
func PanelSocket(store *lib.InitStore, defaultPlacement panel.Placement) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return adaptor.HTTPHandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ws.ServePanelWs(store.Hub, writer, request, store.Fetcher, defaultPlacement, store.Logger)
		})(c)
	}
}

// PanelFragment godoc
// @Summary Render the revision metadata panel
// @Description Returns the panel of a revision as an HTML fragment. A lookup that does not settle in time is answered with the loading placeholder
// @Tags Panel
// @Produce html
// @Param name path string true "Application name"
// @Param revision query string false "Revision, latest when empty"
// @Param placement query string false "Tooltip placement (top, bottom, left, right)"
// @Success 200 {string} string "Panel"
// @Success 202 {string} string "Loading placeholder"
// @Failure 400 {object} errors.Error
// @Failure 404 {string} string "Error view"
// @Failure 500 {string} string "Error view"
// @Router /panel/{name} [get]
func PanelFragment(store *lib.InitStore, defaultPlacement panel.Placement) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name, apiErr := apiUtils.ApplicationName(c)
		if apiErr != nil {
			return apiUtils.SendError(c, *apiErr)
		}
		rev, apiErr := apiUtils.Revision(c.Query("revision"))
		if apiErr != nil {
			return apiUtils.SendError(c, *apiErr)
		}
		placement := defaultPlacement
		if requested := c.Query("placement"); requested != "" {
			parsed, parseErr := panel.ParsePlacement(requested)
			if parseErr != nil {
				return apiUtils.SendError(c, apiErrors.NewInvalidParamError("placement"))
			}
			placement = parsed
		}

		p := panel.New(store.Fetcher, panel.WithPlacement(placement))
		defer p.Close()
		p.SetInput(name, rev)

		ctx, cancel := context.WithTimeout(c.UserContext(), store.RetrievedSettings.Panel.RenderTimeout())
		defer cancel()
		st, err := p.Wait(ctx)
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			store.Logger.Errorw("error waiting for panel", "application", name, "revision", rev, "error", err)
			return apiUtils.SendError(c, apiErrors.InternalServerError)
		}
		if st.Status == resource.Failed && !metadata.IsNotFound(st.Err) {
			store.Logger.Warnw("revision metadata lookup failed", "application", name, "revision", rev, "error", st.Err)
		}
		return renderComponent(c, statusFor(st), p.Render(st))
	}
}

func Init(store *lib.InitStore) {
	defaultPlacement, err := panel.ParsePlacement(store.RetrievedSettings.Panel.Placement)
	if err != nil {
		store.Logger.Warnw("unknown panel placement, using default", "placement", store.RetrievedSettings.Panel.Placement)
		defaultPlacement = panel.PlacementBottom
	}

	store.C.Get("/panel/ws", PanelSocket(store, defaultPlacement))
	store.C.Get("/panel/:name", PanelFragment(store, defaultPlacement))
}
