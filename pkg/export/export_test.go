package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title: "StreetVoice reports",
		Columns: []Column{
			{Key: "id", Title: "ID"},
			{Key: "tags", Title: "Tag"},
			{Key: "description", Title: "Description", Weight: 3},
		},
		Rows: []map[string]string{
			{"id": "r-1", "tags": "Road", "description": "Pothole, near the \"old\" bridge"},
			{"id": "r-2", "tags": "Water"},
		},
	}
}

func TestCSVRendererQuotesAndOrders(t *testing.T) {
	out, err := NewCSVRenderer().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "ID,Tag,Description\nr-1,Road,\"Pothole, near the \"\"old\"\" bridge\"\nr-2,Water,\n", string(out))
}

func TestPDFRendererProducesDocument(t *testing.T) {
	out, err := NewPDFRenderer().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestRenderersRejectEmptyColumns(t *testing.T) {
	_, err := NewCSVRenderer().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFRenderer().Render(Dataset{})
	assert.Error(t, err)
}

func TestForFormat(t *testing.T) {
	r, err := ForFormat("pdf")
	require.NoError(t, err)
	assert.Equal(t, "pdf", r.Extension())

	_, err = ForFormat("xlsx")
	assert.Error(t, err)
}

func TestColumnWidthsFillPage(t *testing.T) {
	widths := columnWidths(sampleDataset().Columns)
	sum := 0.0
	for _, w := range widths {
		sum += w
	}
	assert.InDelta(t, pageWidth, sum, 0.001)
	assert.InDelta(t, widths[0]*3, widths[2], 0.001)
}
