package httpapi

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"jamaah-data/internal/domain"
)

func TestGenerateRosterExport(t *testing.T) {
	roster := []*domain.Pilgrim{
		{Title: "Mr", Nama: "REBI SARIP", NoIdentitas: "3204123456789012", NoPaspor: "C1234567"},
		{Title: "Mrs", Nama: "SITI AMINAH", NoIdentitas: "3204000011112222"},
	}

	data, err := GenerateRosterExport(roster)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Jamaah")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// header row is the fixed column contract
	assert.Equal(t, domain.ExportColumns, rows[0])

	assert.Equal(t, "REBI SARIP", rows[1][1])
	assert.Equal(t, "3204123456789012", rows[1][4])
	assert.Equal(t, "C1234567", rows[1][6])
	assert.Equal(t, "SITI AMINAH", rows[2][1])
}

func TestGenerateRosterExport_EmptyRoster(t *testing.T) {
	data, err := GenerateRosterExport(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Jamaah")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.ExportColumns, rows[0])
}
