package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Name", "Code", "Students"},
		Rows: [][]string{
			{"Science", "SCI", "120"},
			{"Math", "MAT", "95"},
		},
	}
}

func TestCSVRender(t *testing.T) {
	data, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "Name,Code,Students")
	assert.Contains(t, out, "Science,SCI,120")
	assert.Contains(t, out, "Math,MAT,95")
}

func TestCSVRenderPadsShortRows(t *testing.T) {
	data, err := NewCSVExporter().Render(Dataset{
		Headers: []string{"A", "B", "C"},
		Rows:    [][]string{{"only"}},
	})
	require.NoError(t, err)
	assert.Contains(t, string(data), "only,,")
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFRender(t *testing.T) {
	data, err := NewPDFExporter().Render(sampleDataset(), "Department List")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestPDFRenderRequiresHeaders(t *testing.T) {
	_, err := NewPDFExporter().Render(Dataset{}, "")
	require.Error(t, err)
}
