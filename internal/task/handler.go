// AngelaMos | 2026
// handler.go

package task

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/taskflow/internal/core"
	"github.com/carterperez-dev/taskflow/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/tasks", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.ListTasks)
		r.Post("/", h.CreateTask)
		r.Get("/{taskID}", h.GetTask)
		r.Patch("/{taskID}", h.UpdateTask)
		r.Delete("/{taskID}", h.DeleteTask)
	})
}

func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	isAdmin := middleware.IsAdmin(r.Context())

	tasks, err := h.service.List(
		r.Context(),
		userID,
		isAdmin,
		r.URL.Query().Get("status"),
	)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, err.Error())
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToTaskResponseList(tasks))
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	task, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, err.Error())
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToTaskResponse(task))
}

func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	isAdmin := middleware.IsAdmin(r.Context())
	taskID := chi.URLParam(r, "taskID")

	task, err := h.service.GetByID(r.Context(), userID, isAdmin, taskID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "task")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToTaskResponse(task))
}

func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	isAdmin := middleware.IsAdmin(r.Context())
	taskID := chi.URLParam(r, "taskID")

	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	task, err := h.service.Update(r.Context(), userID, isAdmin, taskID, req)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "task")
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, err.Error())
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, ToTaskResponse(task))
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	isAdmin := middleware.IsAdmin(r.Context())
	taskID := chi.URLParam(r, "taskID")

	if err := h.service.Delete(r.Context(), userID, isAdmin, taskID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "task")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}
