// =============================================================================
// main.go - news-relay パイプラインのエントリーポイント
// =============================================================================
//
// 設定されたニュースサイトを巡回し、キーワードに一致する記事リンクを集めて
// XLSXレポートに出力するCLIツールです。
//
// =============================================================================
// 【処理フロー】
// =============================================================================
//
//   ┌──────────────┐   ┌──────────────┐   ┌──────────────┐   ┌──────────────┐
//   │ sources.json │──>│ サイト巡回   │──>│ Google News  │──>│ 重複排除     │
//   │ 読み込み     │   │ (a[href]判定)│   │ フォールバック│   │ XLSX出力     │
//   └──────────────┘   └──────────────┘   └──────────────┘   └──────────────┘
//
// =============================================================================
// 【使用例】
// =============================================================================
//
//   ./pipeline -sources=sources.json -keywords="wypadek,morderstwo" -exclude="sport,piłka"
//   ./pipeline -keywords=pożar -workers=8 -fallback=rss -json=-
//   ./pipeline -config=config.yaml -sendEmail -notionClip
//
// =============================================================================
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"news-relay/internal/pipeline"
)

func main() {
	// .env ファイルから環境変数を読み込み（存在しなくても続行）
	if err := pipeline.LoadEnvFiles(); err != nil {
		fmt.Fprintf(os.Stderr, "WARN: %v (using environment variables only)\n", err)
	}

	cfg := pipeline.ParseFlags()

	z, err := pipeline.NewLogger(cfg.LogLevel)
	if err != nil {
		fatalf("creating logger: %v", err)
	}
	pipeline.SetLogger(z)
	defer func() { _ = z.Sync() }()

	// --- 0) Access gate ---
	gate, err := pipeline.NewGate(cfg.Access.PasswordHash)
	if err != nil {
		fatalf("configuring access gate: %v", err)
	}
	if err := gate.Check(cfg.Access.Password); err != nil {
		fatalf("❌ Wrong password! (%v)", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// --- 1) Search ---
	f := cfg.Filter.Spec()
	fmt.Fprintf(os.Stderr, "🔎 Searching for %v while excluding %v\n", f.Keywords, f.ExcludeWords)

	res, err := pipeline.Search(ctx, cfg, f, printProgress)
	if err != nil {
		fatalf("%v", err)
	}

	if failed := res.Failed(); len(failed) > 0 {
		fmt.Fprintf(os.Stderr, "⚠ %d source(s) failed:\n", len(failed))
		for _, s := range failed {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", s.Source, s.Err)
		}
	}

	if len(res.Records) == 0 {
		fmt.Fprintln(os.Stderr, "⚠ No matching news found.")
		if cfg.Email.SendEmail {
			handleEmailSend(ctx, res, f, nil)
		}
		return
	}

	fmt.Fprintf(os.Stderr, "✅ Found %d matching articles\n", len(res.Records))
	printRecords(res.Records)

	// --- 2) Export ---
	report := handleExport(res.Records, cfg.Output.OutFile)

	if cfg.Output.JSONFile != "" {
		handleJSON(res.Records, cfg.Output.JSONFile)
	}

	// --- 3) Notion / Email ---
	if cfg.Output.NotionClip {
		handleNotionClip(ctx, res.Records, cfg.Output)
	}
	if cfg.Email.SendEmail {
		handleEmailSend(ctx, res, f, report)
	}
}

// printProgress は進捗を1行で上書き表示する
func printProgress(completed, total int) {
	pct := float64(completed) / float64(total) * 100
	fmt.Fprintf(os.Stderr, "\rProgress: %3.0f%% (%d/%d)", pct, completed, total)
	if completed == total {
		fmt.Fprintln(os.Stderr)
	}
}

// printRecords は結果を表形式で標準エラー出力に表示する
func printRecords(records []pipeline.ResultRecord) {
	fmt.Fprintln(os.Stderr, strings.Repeat("-", 60))
	for i, r := range records {
		fmt.Fprintf(os.Stderr, "%3d. %s\n     %s\n     [%s]\n", i+1, r.Title, r.Link, r.Source)
	}
	fmt.Fprintln(os.Stderr, strings.Repeat("-", 60))
}
