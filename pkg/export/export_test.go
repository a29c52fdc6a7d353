package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gridDataset() Dataset {
	return Dataset{
		Title:   "Grade 1 A",
		Headers: []string{"Period", "Sunday", "Monday"},
		Rows: []map[string]string{
			{"Period": "1", "Sunday": "Math\nAhmad"},
			{"Period": "2", "Monday": "Science\nSara"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(gridDataset())
	require.NoError(t, err)
	assert.Contains(t, string(out), "Period,Sunday,Monday\n")
	assert.Contains(t, string(out), "2,,\"Science\nSara\"\n")
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	exporter := NewPDFExporter()
	out, err := exporter.Render(gridDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Equal(t, "application/pdf", exporter.ContentType())
}
