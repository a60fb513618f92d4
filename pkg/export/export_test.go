package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"department", "avg_score"},
		Rows: []map[string]string{
			{"department": "hardware", "avg_score": "7.50"},
			{"department": "software", "avg_score": "6.25"},
		},
		Numeric: []string{"avg_score"},
		Footer:  map[string]string{"department": "all", "avg_score": "6.88"},
	}
}

func TestCSVExporterRendersRowsAndFooter(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "department,avg_score\nhardware,7.50\nsoftware,6.25\nall,6.88\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRenders(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(), "Department Report 2024-03")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFExporterRequiresHeaders(t *testing.T) {
	_, err := NewPDFExporter().Render(Dataset{}, "")
	assert.Error(t, err)
}
