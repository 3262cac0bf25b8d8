package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthHandler serves liveness checks
type HealthHandler struct {
	dataFile string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(dataFile string) *HealthHandler {
	return &HealthHandler{dataFile: dataFile}
}

// Health godoc
// @Summary Health Check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:   "ok",
		Time:     time.Now().UTC().Format(time.RFC3339),
		DataFile: h.dataFile,
	})
}

// Utility types

type HealthResponse struct {
	Status   string `json:"status"`
	Time     string `json:"time"`
	DataFile string `json:"data_file,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
