package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	dto "github.com/shahpalash10/chore-Mate/internal/data_models"
	errs "github.com/shahpalash10/chore-Mate/internal/errors"
	"github.com/shahpalash10/chore-Mate/internal/http/validators"
	"github.com/shahpalash10/chore-Mate/internal/services"
)

// Handler is the presentation adapter: it translates HTTP requests into
// session and task intents and serves the derived views. All authorization
// decisions live in the services.
type Handler struct {
	session *services.SessionService
	sync    *services.SyncService
}

func NewHandler(session *services.SessionService, sync *services.SyncService) *Handler {
	return &Handler{session: session, sync: sync}
}

func (h *Handler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := validators.ValidateLoginRequest(&req); err != nil {
		return err
	}

	if err := h.session.Login(c.Request().Context(), req.Email, req.Password); err != nil {
		return echo.NewHTTPError(errs.StatusCode(err), err.Error())
	}
	return c.JSON(http.StatusOK, h.sessionResponse())
}

func (h *Handler) Signup(c echo.Context) error {
	var req dto.SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := validators.ValidateSignupRequest(&req); err != nil {
		return err
	}

	if err := h.session.Signup(c.Request().Context(), req.Name, req.Email, req.Password); err != nil {
		return echo.NewHTTPError(errs.StatusCode(err), err.Error())
	}
	return c.JSON(http.StatusCreated, h.sessionResponse())
}

func (h *Handler) Logout(c echo.Context) error {
	h.session.Logout(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) RequestPasswordReset(c echo.Context) error {
	var req dto.PasswordResetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}

	if err := h.session.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return echo.NewHTTPError(errs.StatusCode(err), err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password reset link sent, check your email"})
}

func (h *Handler) ChangePassword(c echo.Context) error {
	var req dto.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}

	if err := h.session.ChangePassword(c.Request().Context(), req.NewPassword, req.ConfirmPassword); err != nil {
		return echo.NewHTTPError(errs.StatusCode(err), err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

func (h *Handler) GetSession(c echo.Context) error {
	return c.JSON(http.StatusOK, h.sessionResponse())
}

func (h *Handler) ListTasks(c echo.Context) error {
	viewer := h.session.CurrentUser()
	if viewer == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, errs.ErrNotAuthenticated.Error())
	}

	visible := services.VisibleTasks(h.sync.Tasks(), viewer)
	return c.JSON(http.StatusOK, echo.Map{
		"count": len(visible),
		"tasks": visible,
	})
}

func (h *Handler) GetTaskFeed(c echo.Context) error {
	viewer := h.session.CurrentUser()
	if viewer == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, errs.ErrNotAuthenticated.Error())
	}

	tasks := h.sync.Tasks()
	return c.JSON(http.StatusOK, echo.Map{
		"groups":          services.GroupTasks(services.VisibleTasks(tasks, viewer)),
		"pending_count":   services.PendingCount(tasks, viewer.ID),
		"completed_toast": h.sync.CompletionSignal(),
	})
}

func (h *Handler) CreateTask(c echo.Context) error {
	var req dto.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := validators.ValidateCreateTaskRequest(&req); err != nil {
		return err
	}

	input := services.CreateTaskInput{
		Title:        req.Title,
		Category:     category(req.Category),
		AssignedToID: req.AssignedToID,
		DueDate:      req.DueDate,
		DueTime:      req.DueTime,
	}

	id, err := h.sync.Create(c.Request().Context(), input)
	if err != nil {
		return echo.NewHTTPError(errs.StatusCode(err), err.Error())
	}

	// Accepted, not created: the row is confirmed later by the change stream.
	return c.JSON(http.StatusAccepted, echo.Map{"id": id})
}

func (h *Handler) ToggleTask(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(errs.ErrTaskIDRequired.StatusCode, errs.ErrTaskIDRequired.Error())
	}

	var req dto.ToggleTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}

	if err := h.sync.ToggleCompletion(c.Request().Context(), id, req.IsCompleted); err != nil {
		return echo.NewHTTPError(errs.StatusCode(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteTask(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(errs.ErrTaskIDRequired.StatusCode, errs.ErrTaskIDRequired.Error())
	}

	if err := h.sync.Delete(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(errs.StatusCode(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListEmployees(c echo.Context) error {
	if h.session.CurrentUser() == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, errs.ErrNotAuthenticated.Error())
	}

	employees := h.sync.Employees()
	return c.JSON(http.StatusOK, echo.Map{
		"count": len(employees),
		"users": employees,
	})
}

func (h *Handler) sessionResponse() dto.SessionResponse {
	return dto.SessionResponse{
		State: string(h.session.State()),
		User:  h.session.CurrentUser(),
		Error: h.session.LastError(),
	}
}
