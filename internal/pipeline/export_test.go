package pipeline

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportXLSX_RoundTrip(t *testing.T) {
	records := []ResultRecord{
		{Title: "Wypadek drogowy", Link: "http://a.test/n1", Source: "http://a.test"},
		{Title: "Pożar hali w Łodzi", Link: "https://news.google.com/articles/CBMi2", Source: GoogleNewsName},
		{Title: "Bez źródła", Link: "http://b.test/x", Source: ""},
	}

	r, err := ExportXLSX(records)
	require.NoError(t, err)

	got, err := ReadReport(r)
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestExportXLSX_Layout(t *testing.T) {
	r, err := ExportXLSX([]ResultRecord{{Title: "T", Link: "L", Source: "S"}})
	require.NoError(t, err)

	f, err := excelize.OpenReader(r)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ReportSheetName}, f.GetSheetList())

	rows, err := f.GetRows(ReportSheetName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"title", "link", "source"},
		{"T", "L", "S"},
	}, rows)
}

func TestExportXLSX_EmptyIsHeaderOnly(t *testing.T) {
	r, err := ExportXLSX(nil)
	require.NoError(t, err)

	got, err := ReadReport(r)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExportXLSX_ReaderAtStart(t *testing.T) {
	r, err := ExportXLSX([]ResultRecord{{Title: "T", Link: "L", Source: "S"}})
	require.NoError(t, err)

	pos, err := r.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Zero(t, pos)

	// XLSX is a zip container
	head := make([]byte, 2)
	_, err = io.ReadFull(r, head)
	require.NoError(t, err)
	assert.Equal(t, "PK", string(head))
}

func TestReadReport_RejectsForeignWorkbook(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", ReportSheetName))
	require.NoError(t, f.SetSheetRow(ReportSheetName, "A1", &[]string{"link", "title"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	_, err = ReadReport(buf)
	assert.Error(t, err)
}
