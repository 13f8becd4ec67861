package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRenderQuotesSeparators(t *testing.T) {
	renderer := NewCSVRenderer()
	data, err := renderer.Render(Dataset{
		Headers: []string{"Code", "Title"},
		Rows: [][]string{
			{"CSE101", "Programming, Fundamentals"},
		},
	})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Programming, Fundamentals", records[1][1])
	assert.Contains(t, string(data), `"Programming, Fundamentals"`)
}

func TestCSVRenderAppendsSummaryAfterSpacer(t *testing.T) {
	renderer := NewCSVRenderer()
	data, err := renderer.Render(Dataset{
		Headers: []string{"Grade", "Count"},
		Rows:    [][]string{{"A", "3"}},
		Summary: []string{"Graded enrollments: 3"},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Grade,Count", lines[0])
	assert.Equal(t, "A,3", lines[1])
	assert.Equal(t, ",", lines[2])
	assert.Equal(t, "Graded enrollments: 3", lines[3])
}

func TestCSVRenderPadsShortRows(t *testing.T) {
	renderer := NewCSVRenderer()
	data, err := renderer.Render(Dataset{
		Headers: []string{"A", "B", "C"},
		Rows:    [][]string{{"only"}},
	})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"only", "", ""}, records[1])
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	renderer := NewCSVRenderer()
	_, err := renderer.Render(Dataset{})
	require.Error(t, err)
}

func TestPDFRenderProducesDocument(t *testing.T) {
	renderer := NewPDFRenderer()
	data, err := renderer.Render(Dataset{
		Headers: []string{"Reg No", "Name", "GPA"},
		Rows:    [][]string{{"24BCE10001", "Aarav Sharma", "9.00"}},
		Summary: []string{"Students: 1"},
	}, "Top Students")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}
