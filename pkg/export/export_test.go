package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "posts",
		Headers: []string{"id", "title"},
		Rows: [][]string{
			{"p1", "Annual Report"},
			{"p2", "Budget, 2024"},
			{"p3"},
		},
	}
}

func TestRenderCSV(t *testing.T) {
	out, err := NewRenderer().Render(FormatCSV, sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "id,title\np1,Annual Report\np2,\"Budget, 2024\"\np3,\n", string(out))
}

func TestRenderPDF(t *testing.T) {
	out, err := NewRenderer().Render(FormatPDF, sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderRejectsBadInput(t *testing.T) {
	_, err := NewRenderer().Render(FormatCSV, Dataset{})
	assert.Error(t, err)

	_, err = NewRenderer().Render(Format("xlsx"), sampleDataset())
	assert.Error(t, err)
}

func TestFormatContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", FormatPDF.ContentType())
	assert.Equal(t, "text/csv", FormatCSV.ContentType())
}
