// =============================================================================
// pipeline.go - 検索パイプラインのエントリーポイント
// =============================================================================
//
// CLI（cmd/pipeline）と Lambda（cmd/lambda/*）から共通で呼ばれる処理。
//
//   ソースレジストリ読み込み → Aggregator.Run → （呼び出し側で）XLSX出力
//
// =============================================================================
package pipeline

import (
	"context"
	"fmt"
)

// Search はPipelineConfigに従って1回の検索を実行する
//
// ソースレジストリの読み込みに失敗した場合は0件のソースとして続行する
// （フォールバック検索は実行される）。エラーを返すのは設定値が不正な場合のみ。
func Search(ctx context.Context, cfg *PipelineConfig, f FilterSpec, onProgress ProgressFunc) (RunResult, error) {
	agg, err := NewAggregator(cfg.Fetch.FetchConfig(), cfg.Fetch.Fallback, cfg.Fetch.Workers)
	if err != nil {
		return RunResult{}, fmt.Errorf("configure search: %w", err)
	}
	sources := LoadSourcesOrEmpty(cfg.Input.SourcesFile)
	return agg.Run(ctx, sources, f, onProgress), nil
}
