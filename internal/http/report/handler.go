package report

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/bursar/internal/application"
	"github.com/MrJamesThe3rd/bursar/internal/auth"
	"github.com/MrJamesThe3rd/bursar/internal/catalog"
	"github.com/MrJamesThe3rd/bursar/internal/http/httperr"
	"github.com/MrJamesThe3rd/bursar/internal/report"
)

type Handler struct {
	svc *report.Service
}

func NewHandler(svc *report.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/summary", h.summary)
	r.Post("/export", h.export)
}

type summaryResponse struct {
	*report.Summary
	DisbursedDisplay      string `json:"disbursed_display"`
	PendingFinanceDisplay string `json:"pending_finance_display"`
}

type exportRequest struct {
	Statuses []application.Status `json:"statuses" validate:"omitempty,dive,oneof=PENDING_SAG APPROVED_BY_SAG REJECTED_BY_SAG PENDING_FINANCE PAID REJECTED_BY_FINANCE"`
	Query    string               `json:"q"`
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.Summary(r.Context(), scopedFilter(r, application.ListFilter{}))
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusOK, summaryResponse{
		Summary:               sum,
		DisbursedDisplay:      catalog.FormatAmount(sum.DisbursedTotal),
		PendingFinanceDisplay: catalog.FormatAmount(sum.PendingFinanceTotal),
	})
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	var req exportRequest

	// An empty body exports everything in scope.
	if r.ContentLength != 0 {
		if err := httperr.Decode(r, &req); err != nil {
			httperr.Write(w, r, err)
			return
		}
	}

	filter := scopedFilter(r, application.ListFilter{Statuses: req.Statuses, Query: req.Query})

	var buf bytes.Buffer
	if err := h.svc.Export(r.Context(), filter, &buf); err != nil {
		httperr.Write(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", report.ExportName(time.Now())))

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write export", "error", err)
	}
}

func scopedFilter(r *http.Request, filter application.ListFilter) application.ListFilter {
	id, _ := auth.IdentityFrom(r.Context())
	filter.Role = id.Role

	return filter
}
