package scholarship

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/bursar/internal/application"
	"github.com/MrJamesThe3rd/bursar/internal/catalog"
	"github.com/MrJamesThe3rd/bursar/internal/http/httperr"
	"github.com/MrJamesThe3rd/bursar/internal/http/middleware"
)

const maxUploadBytes = 10 << 20

type Handler struct {
	svc *catalog.Service
	now func() time.Time
}

func NewHandler(svc *catalog.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/categories", h.categories)
	r.Get("/{id}", h.get)
	r.With(middleware.RequireRole(application.RoleReviewer)).Post("/import", h.importCatalog)
}

type scholarshipResponse struct {
	ID                uuid.UUID `json:"id"`
	Title             string    `json:"title"`
	Summary           string    `json:"summary"`
	Category          string    `json:"category"`
	Eligibility       string    `json:"eligibility"`
	Amount            int64     `json:"amount"`
	AmountDisplay     string    `json:"amount_display"`
	RequiredDocuments []string  `json:"required_documents"`
	Deadline          string    `json:"deadline,omitempty"`
	Closed            bool      `json:"closed"`
}

type importResponse struct {
	Imported     int                   `json:"imported"`
	Scholarships []scholarshipResponse `json:"scholarships"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := catalog.ListFilter{
		Query:    r.URL.Query().Get("q"),
		Category: r.URL.Query().Get("category"),
	}

	scholarships, err := h.svc.List(r.Context(), filter)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusOK, h.toResponseList(scholarships))
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.Categories(r.Context())
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	if categories == nil {
		categories = []string{}
	}

	httperr.JSON(w, http.StatusOK, categories)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httperr.Write(w, r, &httperr.BadRequest{Err: errors.New("invalid id")})
		return
	}

	sch, err := h.svc.Get(r.Context(), id)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusOK, h.toResponse(sch))
}

func (h *Handler) importCatalog(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httperr.Write(w, r, &httperr.BadRequest{Err: fmt.Errorf("failed to parse form: %w", err)})
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		httperr.Write(w, r, &httperr.BadRequest{Err: errors.New("file field is required")})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httperr.Write(w, r, &httperr.BadRequest{Err: fmt.Errorf("reading upload: %w", err)})
		return
	}

	if mt := mimetype.Detect(data); !isText(mt) {
		httperr.Message(w, http.StatusUnsupportedMediaType, fmt.Sprintf("expected a CSV file, got %s", mt.String()))
		return
	}

	scholarships, err := h.svc.Import(r.Context(), bytes.NewReader(data))
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusCreated, importResponse{
		Imported:     len(scholarships),
		Scholarships: h.toResponseList(scholarships),
	})
}

// isText accepts text/plain and its descendants such as text/csv. Legacy
// single-byte charsets are detected as plain text too.
func isText(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}

	return false
}

func (h *Handler) toResponse(s *catalog.Scholarship) scholarshipResponse {
	resp := scholarshipResponse{
		ID:                s.ID,
		Title:             s.Title,
		Summary:           s.Summary,
		Category:          s.Category,
		Eligibility:       s.Eligibility,
		Amount:            s.Amount,
		AmountDisplay:     catalog.FormatAmount(s.Amount),
		RequiredDocuments: s.RequiredDocuments,
		Closed:            s.Closed(h.now().UTC()),
	}

	if resp.RequiredDocuments == nil {
		resp.RequiredDocuments = []string{}
	}

	if !s.Deadline.IsZero() {
		resp.Deadline = s.Deadline.Format(time.DateOnly)
	}

	return resp
}

func (h *Handler) toResponseList(scholarships []*catalog.Scholarship) []scholarshipResponse {
	responses := make([]scholarshipResponse, 0, len(scholarships))
	for _, s := range scholarships {
		responses = append(responses, h.toResponse(s))
	}

	return responses
}
