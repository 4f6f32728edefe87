package stats

import "github.com/gofiber/fiber/v2"

type HealthStatus string

const (
	StatusPass HealthStatus = "pass"
	StatusWarn HealthStatus = "warn"
	StatusFail HealthStatus = "fail"
)

type Check struct {
	Status     HealthStatus `json:"status"`
	Component  string       `json:"component,omitempty"`
	Observed   any          `json:"observedValue,omitempty"`
	ObservedAt string       `json:"observedAt,omitempty"`
	Output     string       `json:"output,omitempty"`
}

type HealthResponse struct {
	Status    HealthStatus       `json:"status"`
	Version   string             `json:"version,omitempty"`
	ReleaseID string             `json:"releaseId,omitempty"`
	ServiceID string             `json:"serviceId,omitempty"`
	Checks    map[string][]Check `json:"checks,omitempty"`
}

type Checker interface {
	Name() string
	Check() Check
}

// Handler godoc
// @Summary Health check endpoint
// @Description Returns the health status of the service (RFC Health Check Draft)
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse "Service is healthy"
// @Failure 503 {object} HealthResponse "Service is unhealthy"
// @Router /health [get]
func Handler(
	version string,
	releaseID string,
	serviceID string,
	checkers []Checker,
) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resp := HealthResponse{
			Status:    StatusPass,
			Version:   version,
			ReleaseID: releaseID,
			ServiceID: serviceID,
			Checks:    map[string][]Check{},
		}

		httpStatus := fiber.StatusOK

		for _, checker := range checkers {
			check := checker.Check()
			resp.Checks[checker.Name()] = []Check{check}

			switch check.Status {
			case StatusFail:
				resp.Status = StatusFail
				httpStatus = fiber.StatusServiceUnavailable
			case StatusWarn:
				if resp.Status != StatusFail {
					resp.Status = StatusWarn
				}
			}
		}

		return c.Status(httpStatus).JSON(resp, "application/health+json")
	}
}
