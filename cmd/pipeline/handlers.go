// =============================================================================
// handlers.go - コマンドハンドラ
// =============================================================================
//
// このファイルはCLIの出力処理を提供します。
//
// 【このファイルで提供する機能】
//   - handleExport:      XLSXレポートの保存
//   - handleJSON:        JSON出力
//   - handleNotionClip:  Notionへのクリップ
//   - handleEmailSend:   レポートのメール送信
//
// 出力処理の失敗はその出力だけを中断し、表示済みの結果はそのまま残す。
//
// =============================================================================
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"

	"news-relay/internal/pipeline"
)

// fatalf はエラーメッセージを出力してプログラムを終了する
func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// handleExport はXLSXレポートを生成して path に保存し、その内容を返す
//
// 失敗した場合はエラーを表示してnilを返す（検索結果の表示には影響しない）
func handleExport(records []pipeline.ResultRecord, path string) []byte {
	r, err := pipeline.ExportXLSX(records)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ reading report: %v\n", err)
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "❌ writing report: %v\n", err)
		return data
	}
	fmt.Fprintf(os.Stderr, "📥 Report saved: %s (%s)\n", path, pipeline.ReportMIMEType)
	return data
}

// handleJSON は結果をJSONで書き出す（"-" の場合は標準出力）
func handleJSON(records []pipeline.ResultRecord, path string) {
	if path == "-" {
		if err := pipeline.WriteJSON(os.Stdout, records); err != nil {
			fmt.Fprintf(os.Stderr, "❌ writing JSON: %v\n", err)
		}
		return
	}

	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ writing JSON: %v\n", err)
		return
	}
	defer f.Close()
	if err := pipeline.WriteJSON(f, records); err != nil {
		fmt.Fprintf(os.Stderr, "❌ writing JSON: %v\n", err)
	}
}

// handleNotionClip は結果をNotionデータベースにクリップする
//
// データベースIDが未設定の場合は -notionPageID の下に新規作成し、
// IDを .env に保存する。
func handleNotionClip(ctx context.Context, records []pipeline.ResultRecord, out pipeline.OutputConfig) {
	fmt.Fprintln(os.Stderr, "\n========================================")
	fmt.Fprintln(os.Stderr, "📎 Clipping to Notion Database")
	fmt.Fprintln(os.Stderr, "========================================")

	token := os.Getenv("NOTION_TOKEN")
	clipper, err := pipeline.NewNotionClipper(token, out.NotionDatabaseID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ creating Notion clipper: %v\n", err)
		return
	}

	if clipper.DatabaseID() == "" {
		if out.NotionPageID == "" {
			fmt.Fprintln(os.Stderr, "❌ -notionPageID is required when creating a new Notion database")
			return
		}
		dbID, err := clipper.CreateDatabase(ctx, out.NotionPageID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			return
		}
		if err := appendToEnvFile(".env", "NOTION_DATABASE_ID", dbID); err != nil {
			fmt.Fprintf(os.Stderr, "Please manually add to .env:\nNOTION_DATABASE_ID=%s\n", dbID)
		} else {
			fmt.Fprintln(os.Stderr, "✅ Database ID saved to .env file")
		}
	}

	clipped := clipper.ClipRecords(ctx, records)
	fmt.Fprintf(os.Stderr, "✅ Clipped %d/%d articles to Notion\n", clipped, len(records))
}

// handleEmailSend はレポートをメールで送信する（report がnilの場合は添付なし）
func handleEmailSend(ctx context.Context, res pipeline.RunResult, f pipeline.FilterSpec, report []byte) {
	sender, err := pipeline.NewEmailSenderFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ creating email sender: %v\n", err)
		return
	}
	if err := sender.SendReport(ctx, res, f, report); err != nil {
		fmt.Fprintf(os.Stderr, "❌ sending email: %v\n", err)
		return
	}
	fmt.Fprintln(os.Stderr, "✅ Report email sent")
}

// appendToEnvFile は .env ファイルに key=value を追加（既存の値は上書き）する
func appendToEnvFile(path, key, value string) error {
	env, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		env = map[string]string{}
	}
	env[key] = value
	return godotenv.Write(env, path)
}
