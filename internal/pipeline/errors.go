package pipeline

import (
	"errors"
	"fmt"
)

// ErrAccessDenied is returned by a Gate when the supplied secret does not match.
var ErrAccessDenied = errors.New("access denied")

// ConfigLoadError はソースレジストリの読み込み失敗
//
// 呼び出し側はログに記録し、空のレジストリで処理を続行する。
type ConfigLoadError struct {
	Path string
	Err  error
}

func (e *ConfigLoadError) Error() string {
	return fmt.Sprintf("load sources %s: %v", e.Path, e.Err)
}

func (e *ConfigLoadError) Unwrap() error { return e.Err }

// FetchError covers network failures, timeouts, non-2xx responses and HTML
// parse failures for a single source. It never aborts a run.
type FetchError struct {
	URL    string
	Status int // 0 when no response was received
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("GET %s: status %d: %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExportError は XLSX レポートの生成失敗
type ExportError struct {
	Err error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export report: %v", e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }
