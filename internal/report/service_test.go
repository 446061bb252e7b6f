package report_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/bursar/internal/application"
	"github.com/MrJamesThe3rd/bursar/internal/report"
)

type stubLister struct {
	apps   []*application.Application
	err    error
	filter application.ListFilter
}

func (s *stubLister) List(_ context.Context, filter application.ListFilter) ([]*application.Application, error) {
	s.filter = filter
	return s.apps, s.err
}

func fixtures() []*application.Application {
	applied := time.Date(2026, time.September, 1, 8, 0, 0, 0, time.UTC)

	return []*application.Application{
		{ID: uuid.New(), URN: "URN-2026-000001", ScholarshipTitle: "STEM Innovation Grant", Status: application.StatusPaid, Amount: 3000, FinanceRemarks: new("Payment processed successfully."), PaymentReference: "pay_1", AppliedDate: applied, LastUpdated: applied},
		{ID: uuid.New(), URN: "URN-2026-000002", ScholarshipTitle: "Merit-Based Excellence Award", Status: application.StatusPaid, Amount: 2500, AppliedDate: applied, LastUpdated: applied},
		{ID: uuid.New(), URN: "URN-2026-000003", ScholarshipTitle: "Merit-Based Excellence Award", Status: application.StatusPendingFinance, Amount: 2500, ReviewerRemarks: new("ok"), AppliedDate: applied, LastUpdated: applied},
		{ID: uuid.New(), URN: "URN-2026-000004", ScholarshipTitle: "Entrepreneurship Innovation Fund", Status: application.StatusRejectedByFinance, Amount: 5000, AppliedDate: applied, LastUpdated: applied},
	}
}

func TestService_Summary(t *testing.T) {
	lister := &stubLister{apps: fixtures()}
	svc := report.NewService(lister)

	filter := application.ListFilter{Role: application.RoleFinance}

	sum, err := svc.Summary(context.Background(), filter)
	require.NoError(t, err)

	assert.Equal(t, filter, lister.filter)
	assert.Equal(t, 4, sum.Total)
	assert.Equal(t, 2, sum.Counts[application.StatusPaid])
	assert.Equal(t, 1, sum.Counts[application.StatusPendingFinance])
	assert.Equal(t, int64(5500), sum.DisbursedTotal)
	assert.Equal(t, int64(2500), sum.PendingFinanceTotal)
}

func TestService_Summary_Error(t *testing.T) {
	svc := report.NewService(&stubLister{err: errors.New("db error")})

	_, err := svc.Summary(context.Background(), application.ListFilter{})
	assert.Error(t, err)
}

func TestService_Export(t *testing.T) {
	svc := report.NewService(&stubLister{apps: fixtures()})

	var buf bytes.Buffer
	require.NoError(t, svc.Export(context.Background(), application.ListFilter{}, &buf))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.Equal(t, "disbursements.csv", zr.File[0].Name)
	assert.Equal(t, "summary.txt", zr.File[1].Name)

	f, err := zr.File[0].Open()
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "urn", rows[0][0])
	assert.Equal(t, []string{"URN-2026-000001", "STEM Innovation Grant"}, rows[1][:2])
	assert.Equal(t, "3000", rows[1][4])
	assert.Equal(t, "pay_1", rows[1][7])

	s, err := zr.File[1].Open()
	require.NoError(t, err)
	defer s.Close()

	text, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Contains(t, string(text), "$5,500")
	assert.Contains(t, string(text), "PENDING_FINANCE")
}

func TestService_ExportFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	svc := report.NewService(&stubLister{apps: fixtures()})

	path, sum, err := svc.ExportFile(context.Background(), application.ListFilter{}, dir)
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.Equal(t, 4, sum.Total)

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	assert.Len(t, zr.File, 2)
}

func TestService_ExportFile_FailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	svc := report.NewService(&stubLister{err: errors.New("db error")})

	path, sum, err := svc.ExportFile(context.Background(), application.ListFilter{}, dir)
	require.Error(t, err)
	assert.Empty(t, path)
	assert.Nil(t, sum)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExportName(t *testing.T) {
	assert.Equal(t, "bursar_export_20261019.zip", report.ExportName(time.Date(2026, time.October, 19, 23, 0, 0, 0, time.UTC)))
}
