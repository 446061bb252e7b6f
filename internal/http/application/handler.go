package application

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/bursar/internal/application"
	"github.com/MrJamesThe3rd/bursar/internal/auth"
	"github.com/MrJamesThe3rd/bursar/internal/http/httperr"
	"github.com/MrJamesThe3rd/bursar/internal/http/middleware"
)

type Handler struct {
	svc *application.Service
}

func NewHandler(svc *application.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes expects an authenticated router.
func (h *Handler) Routes(r chi.Router) {
	r.With(middleware.RequireRole(application.RoleStudent)).Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Get("/{id}/history", h.history)
	r.Post("/{id}/transitions", h.transition)
}

type createApplicationRequest struct {
	ScholarshipID uuid.UUID         `json:"scholarship_id" validate:"required"`
	Form          application.Form  `json:"form"`
	Documents     map[string]string `json:"documents"`
}

type transitionRequest struct {
	Action         application.Action  `json:"action" validate:"required,oneof=approve reject forward disburse"`
	Remarks        string              `json:"remarks"`
	Amount         *int64              `json:"amount"`
	ExpectedStatus *application.Status `json:"expected_status"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())

	var req createApplicationRequest
	if err := httperr.Decode(r, &req); err != nil {
		httperr.Write(w, r, err)
		return
	}

	app, err := h.svc.Create(r.Context(), application.CreateParams{
		ScholarshipID: req.ScholarshipID,
		StudentID:     id.UserID,
		Form:          req.Form,
		Documents:     req.Documents,
	})
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusCreated, toResponse(app, id.Role))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())

	filter := application.ListFilter{
		Query: r.URL.Query().Get("q"),
		Role:  id.Role,
	}

	if id.Role == application.RoleStudent {
		filter.StudentID = new(id.UserID)
	}

	for _, raw := range r.URL.Query()["status"] {
		status, err := application.ParseStatus(raw)
		if err != nil {
			httperr.Write(w, r, err)
			return
		}

		filter.Statuses = append(filter.Statuses, status)
	}

	apps, err := h.svc.List(r.Context(), filter)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusOK, toResponseList(apps, id.Role))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	app, ok := h.load(w, r)
	if !ok {
		return
	}

	id, _ := auth.IdentityFrom(r.Context())
	httperr.JSON(w, http.StatusOK, toResponse(app, id.Role))
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	app, ok := h.load(w, r)
	if !ok {
		return
	}

	transitions, err := h.svc.History(r.Context(), app.ID)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusOK, toTransitionResponseList(transitions))
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())

	appID, err := parseID(r)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	var req transitionRequest
	if err := httperr.Decode(r, &req); err != nil {
		httperr.Write(w, r, err)
		return
	}

	if req.ExpectedStatus != nil && !req.ExpectedStatus.Valid() {
		httperr.Write(w, r, &application.ValidationError{Field: "expected_status", Reason: "unknown status"})
		return
	}

	app, err := h.svc.ApplyTransition(r.Context(), appID, application.TransitionRequest{
		Action:         req.Action,
		ActorRole:      id.Role,
		ActorID:        new(id.UserID),
		Remarks:        req.Remarks,
		Amount:         req.Amount,
		ExpectedStatus: req.ExpectedStatus,
	})
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusOK, toResponse(app, id.Role))
}

// load fetches the application named in the path. Students only see their own;
// anyone else's answers 404 so ids cannot be probed.
func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*application.Application, bool) {
	appID, err := parseID(r)
	if err != nil {
		httperr.Write(w, r, err)
		return nil, false
	}

	app, err := h.svc.Get(r.Context(), appID)
	if err != nil {
		httperr.Write(w, r, err)
		return nil, false
	}

	id, _ := auth.IdentityFrom(r.Context())
	if id.Role == application.RoleStudent && app.StudentID != id.UserID {
		httperr.Write(w, r, application.ErrNotFound)
		return nil, false
	}

	return app, true
}

func parseID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, &httperr.BadRequest{Err: errors.New("invalid id")}
	}

	return id, nil
}
