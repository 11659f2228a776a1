// =============================================================================
// export.go - XLSXレポート出力
// =============================================================================
//
// 検索結果を1シート（"News Report"）のスプレッドシートにまとめます。
//
// 【レイアウト】
//
//	行1:  title | link | source   ← ヘッダー行
//	行2~: 1レコード1行（インデックス列なし）
//
// ファイルには書き出さず、メモリ上で生成して先頭位置のReaderを返す。
// ダウンロード・メール添付・Lambdaレスポンスにそのまま渡せる。
//
// =============================================================================
package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	// ReportSheetName はレポートのシート名
	ReportSheetName = "News Report"
	// ReportFileName はダウンロード時のファイル名
	ReportFileName = "polish_news_report.xlsx"
	// ReportMIMEType はXLSXのMIMEタイプ
	ReportMIMEType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// reportHeader is the fixed column order.
var reportHeader = []string{"title", "link", "source"}

// ExportXLSX serializes records into an in-memory XLSX workbook and returns a
// reader positioned at its start. An empty slice yields a header-only sheet.
// Failures are returned as *ExportError.
func ExportXLSX(records []ResultRecord) (*bytes.Reader, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ReportSheetName); err != nil {
		return nil, &ExportError{Err: fmt.Errorf("rename sheet: %w", err)}
	}

	if err := f.SetSheetRow(ReportSheetName, "A1", &reportHeader); err != nil {
		return nil, &ExportError{Err: fmt.Errorf("write header: %w", err)}
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, &ExportError{Err: err}
		}
		row := []string{r.Title, r.Link, r.Source}
		if err := f.SetSheetRow(ReportSheetName, cell, &row); err != nil {
			return nil, &ExportError{Err: fmt.Errorf("write row %d: %w", i+2, err)}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, &ExportError{Err: fmt.Errorf("write workbook: %w", err)}
	}
	return bytes.NewReader(buf.Bytes()), nil
}

// ReadReport はExportXLSXで生成したレポートを読み戻す
//
// ヘッダー行の列順が title, link, source でない場合はエラー。
func ReadReport(r io.Reader) ([]ResultRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(ReportSheetName)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", ReportSheetName, err)
	}
	if len(rows) == 0 {
		return nil, errors.New("report has no header row")
	}
	for i, h := range reportHeader {
		if i >= len(rows[0]) || rows[0][i] != h {
			return nil, fmt.Errorf("unexpected header %v", rows[0])
		}
	}

	out := make([]ResultRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		// GetRows trims trailing empty cells
		for len(row) < len(reportHeader) {
			row = append(row, "")
		}
		out = append(out, ResultRecord{Title: row[0], Link: row[1], Source: row[2]})
	}
	return out, nil
}
