package validators

import (
	"net/http"

	"github.com/labstack/echo/v4"

	dto "github.com/shahpalash10/chore-Mate/internal/data_models"
)

func ValidateLoginRequest(r *dto.LoginRequest) error {
	if r.Email == "" || r.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "please enter both email and password")
	}
	return nil
}

func ValidateSignupRequest(r *dto.SignupRequest) error {
	if r.Name == "" || r.Email == "" || r.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "please fill in all fields")
	}
	return nil
}
