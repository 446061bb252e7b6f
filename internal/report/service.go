package report

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/bursar/internal/application"
	"github.com/MrJamesThe3rd/bursar/internal/catalog"
)

// Lister is satisfied by *application.Service.
type Lister interface {
	List(ctx context.Context, filter application.ListFilter) ([]*application.Application, error)
}

// Summary holds the dashboard figures for the applications a caller can see.
type Summary struct {
	Counts              map[application.Status]int `json:"counts"`
	Total               int                        `json:"total"`
	DisbursedTotal      int64                      `json:"disbursed_total"`
	PendingFinanceTotal int64                      `json:"pending_finance_total"`
}

type Service struct {
	apps Lister
	now  func() time.Time
}

func NewService(apps Lister) *Service {
	return &Service{apps: apps, now: time.Now}
}

func (s *Service) Summary(ctx context.Context, filter application.ListFilter) (*Summary, error) {
	apps, err := s.apps.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing applications: %w", err)
	}

	return Summarize(apps), nil
}

func Summarize(apps []*application.Application) *Summary {
	sum := &Summary{Counts: make(map[application.Status]int, len(application.AllStatuses))}

	for _, app := range apps {
		sum.Counts[app.Status]++
		sum.Total++

		switch app.Status {
		case application.StatusPaid:
			sum.DisbursedTotal += app.Amount
		case application.StatusPendingFinance:
			sum.PendingFinanceTotal += app.Amount
		}
	}

	return sum
}

// ExportName is the suggested file name of an export generated at t.
func ExportName(t time.Time) string {
	return fmt.Sprintf("bursar_export_%s.zip", t.Format("20060102"))
}

var csvHeader = []string{
	"urn", "scholarship", "student_id", "status", "amount",
	"reviewer_remarks", "finance_remarks", "payment_reference", "applied_date", "last_updated",
}

// Export writes a zip archive to w holding disbursements.csv, one row per
// application in filter, and summary.txt with the totals.
func (s *Service) Export(ctx context.Context, filter application.ListFilter, w io.Writer) error {
	_, err := s.export(ctx, filter, w)
	return err
}

// ExportFile writes the export into dir under ExportName and returns its path
// and the summary it contains. A failed export leaves no file behind.
func (s *Service) ExportFile(ctx context.Context, filter application.ListFilter, dir string) (string, *Summary, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("creating %s: %w", dir, err)
	}

	path := filepath.Join(dir, ExportName(s.now()))

	f, err := os.Create(path)
	if err != nil {
		return "", nil, fmt.Errorf("creating export file: %w", err)
	}

	sum, err := s.export(ctx, filter, f)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("closing export file: %w", closeErr)
	}

	if err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			slog.Warn("failed to remove partial export", "path", path, "error", rmErr)
		}

		return "", nil, err
	}

	return path, sum, nil
}

func (s *Service) export(ctx context.Context, filter application.ListFilter, w io.Writer) (*Summary, error) {
	apps, err := s.apps.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing applications: %w", err)
	}

	zw := zip.NewWriter(w)

	f, err := zw.Create("disbursements.csv")
	if err != nil {
		return nil, fmt.Errorf("creating csv entry: %w", err)
	}

	if err := writeCSV(f, apps); err != nil {
		return nil, err
	}

	f, err = zw.Create("summary.txt")
	if err != nil {
		return nil, fmt.Errorf("creating summary entry: %w", err)
	}

	sum := Summarize(apps)

	if _, err := io.WriteString(f, SummaryText(sum, s.now())); err != nil {
		return nil, fmt.Errorf("writing summary: %w", err)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing zip: %w", err)
	}

	return sum, nil
}

func writeCSV(w io.Writer, apps []*application.Application) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, app := range apps {
		record := []string{
			app.URN,
			app.ScholarshipTitle,
			app.StudentID.String(),
			string(app.Status),
			strconv.FormatInt(app.Amount, 10),
			deref(app.ReviewerRemarks),
			deref(app.FinanceRemarks),
			app.PaymentReference,
			app.AppliedDate.UTC().Format(time.RFC3339),
			app.LastUpdated.UTC().Format(time.RFC3339),
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing %s: %w", app.URN, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// SummaryText renders the summary as the plain text shipped inside exports.
func SummaryText(sum *Summary, at time.Time) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Bursar export generated %s\n\n", at.UTC().Format(time.RFC1123))

	for _, st := range application.AllStatuses {
		fmt.Fprintf(&sb, "%-20s %d\n", st, sum.Counts[st])
	}

	fmt.Fprintf(&sb, "\n%-20s %d\n", "TOTAL", sum.Total)
	fmt.Fprintf(&sb, "%-20s %s\n", "DISBURSED", catalog.FormatAmount(sum.DisbursedTotal))
	fmt.Fprintf(&sb, "%-20s %s\n", "AWAITING PAYMENT", catalog.FormatAmount(sum.PendingFinanceTotal))

	return sb.String()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
