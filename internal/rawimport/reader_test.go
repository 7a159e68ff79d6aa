package rawimport_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gstledger/internal/domain"
	"gstledger/internal/ledger"
	"gstledger/internal/rawimport"
)

func TestParse_CSV(t *testing.T) {
	input := "GSTIN of supplier,Invoice number,Taxable Value (₹),Integrated Tax (₹),Reverse Charge\n" +
		"27ABCDE1234F1Z5,INV-1,\"1,000.00\",180,N\n" +
		",,,,\n" +
		"29ABCDE1234F1Z5,INV-2,500,,Y\n"

	res, err := rawimport.Parse(strings.NewReader(input), domain.FileTypeCSV, ledger.Profile2B)

	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "INV-1", res.Rows[0]["Invoice number"])
	assert.Equal(t, "1,000.00", res.Rows[0]["Taxable Value (₹)"])
	assert.Nil(t, res.Rows[1]["Integrated Tax (₹)"])
	assert.Empty(t, res.Unmapped)
}

func TestParse_CSVWindows1252AndSemicolons(t *testing.T) {
	input := []byte("GSTIN of supplier;Trade/Legal name;Invoice number;Taxable Value\r\n" +
		"27ABCDE1234F1Z5;Caf\xe9 Traders;INV-1;100\r\n")

	res, err := rawimport.Parse(bytes.NewReader(input), domain.FileTypeCSV, ledger.Profile2A)

	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Café Traders", res.Rows[0]["Trade/Legal name"])
}

func TestParse_CSVStripsBOM(t *testing.T) {
	input := "\xef\xbb\xbfGSTIN of supplier,Invoice number,Taxable Value\n27ABCDE1234F1Z5,INV-1,100\n"

	res, err := rawimport.Parse(strings.NewReader(input), domain.FileTypeCSV, ledger.Profile2B)

	require.NoError(t, err)
	assert.Equal(t, "GSTIN of supplier", res.Headers[0])
	assert.Equal(t, "27ABCDE1234F1Z5", res.Rows[0]["GSTIN of supplier"])
}

func TestParse_XLSXFindsHeaderBelowTitleAndPrefersB2BSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Read me"}))
	_, err := f.NewSheet("B2B")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("B2B", "A1", &[]any{"Goods and Services Tax - GSTR-2B"}))
	require.NoError(t, f.SetSheetRow("B2B", "A3", &[]any{"", "", "", "Tax Amount"}))
	require.NoError(t, f.SetSheetRow("B2B", "A4", &[]any{"GSTIN of supplier", "Invoice number", "Taxable Value (₹)", "", "Cess (₹)"}))
	require.NoError(t, f.SetSheetRow("B2B", "A5", &[]any{"27ABCDE1234F1Z5", "INV-9", 1000, 180, 0}))
	var buf bytes.Buffer
	_, err = f.WriteTo(&buf)
	require.NoError(t, err)

	res, err := rawimport.Parse(&buf, domain.FileTypeXLSX, ledger.Profile2B)

	require.NoError(t, err)
	assert.Equal(t, "B2B", res.Sheet)
	assert.Equal(t, []string{"GSTIN of supplier", "Invoice number", "Taxable Value (₹)", "Tax Amount", "Cess (₹)"}, res.Headers)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "INV-9", res.Rows[0]["Invoice number"])
	assert.Equal(t, "1000", res.Rows[0]["Taxable Value (₹)"])
	require.Len(t, res.Unmapped, 1)
	assert.Equal(t, "Tax Amount", res.Unmapped[0].Header)
}

func TestParse_RowsClassifyThroughEngine(t *testing.T) {
	input := "GSTIN of supplier,Invoice number,Taxable Value (₹),Integrated Tax (₹),Supply Attract Reverse Charge\n" +
		"27ABCDE1234F1Z5,INV-1,\"1,000.00\",180,N\n"
	res, err := rawimport.Parse(strings.NewReader(input), domain.FileTypeCSV, ledger.Profile2B)
	require.NoError(t, err)

	e := ledger.NewEngine(ledger.Profile2B, nil)
	rec, mismatched := e.Classify(res.Rows[0], 0)

	assert.False(t, mismatched)
	assert.Equal(t, domain.Slab18, rec.Slab)
	assert.Equal(t, 1000.0, *rec.TaxableValue)
}

func TestParse_NoHeaderRow(t *testing.T) {
	_, err := rawimport.Parse(strings.NewReader("a,b,c\n1,2,3\n"), domain.FileTypeCSV, ledger.Profile2B)
	assert.ErrorIs(t, err, domain.ErrNoHeaderRow)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParse_UnreadableWorkbook(t *testing.T) {
	_, err := rawimport.Parse(strings.NewReader("not a workbook"), domain.FileTypeXLSX, ledger.Profile2B)
	assert.ErrorIs(t, err, domain.ErrUnreadableFile)
}

func TestParse_UnsupportedType(t *testing.T) {
	_, err := rawimport.Parse(strings.NewReader(""), domain.FileType("pdf"), ledger.Profile2B)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestParse_SuggestsClosestHeader(t *testing.T) {
	input := "GSTIN of supplier,Invoice number,Taxable Value,Integratd Taxx\n27ABCDE1234F1Z5,INV-1,100,18\n"

	res, err := rawimport.Parse(strings.NewReader(input), domain.FileTypeCSV, ledger.Profile2B)

	require.NoError(t, err)
	require.Len(t, res.Unmapped, 1)
	assert.Equal(t, "Integratd Taxx", res.Unmapped[0].Header)
	assert.Contains(t, ledger.HeaderKey(res.Unmapped[0].Suggestion), "integrat")
}
