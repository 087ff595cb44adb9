package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vbonduro/boxoffice/internal/domain"
)

func TestWriteXLSX(t *testing.T) {
	movies := []*domain.Movie{
		{ID: "a", Name: "Snitch", Description: "Undercover.", Price: 11.99, AssetURL: "http://x/posters/a.jpg"},
		{ID: "b", Name: "Damsel", Description: "Framed.", Price: 13.99},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, movies))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Movies"}, f.GetSheetList())

	rows, err := f.GetRows("Movies")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"ID", "Name", "Description", "Price", "Image URL"}, rows[0])
	assert.Equal(t, []string{"a", "Snitch", "Undercover.", "11.99", "http://x/posters/a.jpg"}, rows[1])
	// Trailing empty cells are dropped by GetRows.
	assert.Equal(t, []string{"b", "Damsel", "Framed.", "13.99"}, rows[2])
}

func TestWriteXLSX_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Movies")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
