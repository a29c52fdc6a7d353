package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-schedule-sim/internal/models"
	appErrors "github.com/noah-isme/sma-schedule-sim/pkg/errors"
	"github.com/noah-isme/sma-schedule-sim/pkg/export"
	"github.com/noah-isme/sma-schedule-sim/pkg/storage"
)

func newExportServiceForTest(t *testing.T) *ExportService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	cfg := ExportConfig{APIPrefix: "/api/v1/", ResultTTL: time.Hour}
	return NewExportService(store, signer, cfg, zap.NewNop(), export.NewCSVExporter(), export.NewPDFExporter())
}

func sampleGrid() Grid {
	return Grid{
		Kind:    GridKindClass,
		Name:    "Grade 1 A",
		Days:    []string{"Sunday", "Monday"},
		Periods: []int{1},
		Cells:   [][]*models.GridCell{{{Subject: "Math", Teacher: "Ana"}, nil}},
	}
}

func TestExportServiceCSVRoundTrip(t *testing.T) {
	svc := newExportServiceForTest(t)

	result, err := svc.ExportGrid(context.Background(), "sess-1", sampleGrid(), "CSV")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.URL, "/api/v1/exports/"))
	assert.True(t, strings.HasPrefix(result.Filename, "class_Grade_1_A_"))
	assert.Equal(t, "csv", result.Format)

	file, err := svc.Download(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", file.Owner)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Contains(t, string(file.Body), "Period,Sunday,Monday")
	assert.Contains(t, string(file.Body), "Math")
}

func TestExportServicePDF(t *testing.T) {
	svc := newExportServiceForTest(t)

	result, err := svc.ExportGrid(context.Background(), "sess-1", sampleGrid(), "pdf")
	require.NoError(t, err)

	file, err := svc.Download(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Body), "%PDF"))
}

func TestExportServiceRejectsUnknownFormatAndBadToken(t *testing.T) {
	svc := newExportServiceForTest(t)

	_, err := svc.ExportGrid(context.Background(), "sess-1", sampleGrid(), "xlsx")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Download("not-a-token")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}
