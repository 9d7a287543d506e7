package mapping

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"TmhnaDash/api/model"
)

func TestReadCSVAccountMappings(t *testing.T) {
	in := "Source Account Name,Unified Account Number,Unified Account Name\n" +
		"Freight,U400,Freight Expense\n" +
		",,\n" +
		"\"Rent, Office\",U500,\n"
	rows, err := ReadRows("accounts.CSV", strings.NewReader(in))
	require.NoError(t, err)

	ms, err := AccountMappings(rows)
	require.NoError(t, err)
	assert.Equal(t, []model.AccountMapping{
		{SourceAccountName: "Freight", UnifiedAccountNumber: "U400", UnifiedAccountName: "Freight Expense"},
		{SourceAccountName: "Rent, Office", UnifiedAccountNumber: "U500"},
	}, ms)
}

func TestReadXLSXCostCenters(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]string{"CC10", "UCC100", "Manufacturing"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]string{"CC20", "UCC200", "Sales"}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	rows, err := ReadRows("cc.xlsx", &buf)
	require.NoError(t, err)
	ms, err := CostCenterMappings(rows)
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, "UCC200", ms[1].UnifiedCostCenter)
}

func TestUnsupportedExtension(t *testing.T) {
	_, err := ReadRows("mappings.txt", strings.NewReader("a,b,c"))
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestEmptyUpload(t *testing.T) {
	_, err := AccountMappings([][]string{{"Source", "Unified", "Name"}})
	assert.Error(t, err)
}
