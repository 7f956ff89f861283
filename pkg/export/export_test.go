package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRenderOrdersColumnsByHeader(t *testing.T) {
	exp := &CSVExporter{}
	out, err := exp.Render(Dataset{
		Headers: []string{"Name", "Score"},
		Rows:    []map[string]string{{"Score": "4.50", "Name": "Aziz, K."}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Name,Score\n\"Aziz, K.\",4.50\n", string(out))
}

func TestCSVRenderWritesBOM(t *testing.T) {
	out, err := NewCSVExporter().Render(Dataset{Headers: []string{"A"}})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "\ufeff"))
}

func TestRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{}, "x")
	assert.Error(t, err)
	_, err = NewPDFExporter().RenderSections("x", nil)
	assert.Error(t, err)
}

func TestPDFRenderProducesDocument(t *testing.T) {
	wide := Dataset{Headers: []string{"1", "2", "3", "4", "5", "6", "7"}, Rows: []map[string]string{{"1": "a"}}}
	out, err := NewPDFExporter().Render(wide, "ratings")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	out, err = NewPDFExporter().RenderSections("dashboard", []Section{{Heading: "Progress", Pairs: [][2]string{{"Overall", "55%"}}}})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
