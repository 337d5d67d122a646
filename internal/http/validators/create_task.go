package validators

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/shahpalash10/chore-Mate/internal/constants"
	dto "github.com/shahpalash10/chore-Mate/internal/data_models"
)

func ValidateCreateTaskRequest(r *dto.CreateTaskRequest) error {
	if strings.TrimSpace(r.Title) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	if r.Category != "" && !constants.ValidCategory(constants.Category(r.Category)) {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown category")
	}
	return nil
}
