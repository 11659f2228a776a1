// =============================================================================
// Lambda: search-news
// =============================================================================
//
// 全ソースを検索し、XLSXレポート（base64）を返すLambda関数
// NOTION_TOKEN と NOTION_DATABASE_ID が設定されていればNotion DBにも保存する
//
// イベント:
//
//	{"keywords": "wypadek,morderstwo", "exclude": "sport,piłka", "password": "..."}
//
// 環境変数:
//   - SOURCES_FILE:             ソースレジストリ (デフォルト: sources.json)
//   - KEYWORDS / EXCLUDE_WORDS: イベントで省略された場合の検索条件
//   - FETCH_WORKERS:            並列取得数 (デフォルト: 1)
//   - FALLBACK_MODE:            html|rss|off (デフォルト: html)
//   - NEWS_RELAY_PASSWORD_HASH: アクセスゲートのbcryptハッシュ (任意)
//   - NOTION_TOKEN:             Notion API Token (任意)
//   - NOTION_DATABASE_ID:       NotionデータベースID (任意)
//
// =============================================================================
package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"news-relay/internal/pipeline"
)

// Event はLambdaの入力イベント
type Event struct {
	Keywords string `json:"keywords"`
	Exclude  string `json:"exclude"`
	Password string `json:"password"`
}

// Response はLambdaレスポンス
type Response struct {
	StatusCode    int                     `json:"statusCode"`
	Message       string                  `json:"message"`
	Found         int                     `json:"found"`
	Clipped       int                     `json:"clipped"`
	FailedSources []string                `json:"failedSources,omitempty"`
	Records       []pipeline.ResultRecord `json:"records,omitempty"`
	FileName      string                  `json:"fileName,omitempty"`
	MIMEType      string                  `json:"mimeType,omitempty"`
	Report        string                  `json:"report,omitempty"` // base64 XLSX
}

// Handler はLambdaのメインハンドラー
func Handler(ctx context.Context, event Event) (Response, error) {
	log.Println("Starting search-news Lambda...")

	cfg, err := pipeline.LoadConfig()
	if err != nil {
		return Response{StatusCode: 500, Message: err.Error()}, err
	}

	gate, err := pipeline.NewGate(cfg.Access.PasswordHash)
	if err != nil {
		return Response{StatusCode: 500, Message: err.Error()}, err
	}
	if err := gate.Check(event.Password); err != nil {
		if errors.Is(err, pipeline.ErrAccessDenied) {
			return Response{StatusCode: 403, Message: "wrong password"}, nil
		}
		return Response{StatusCode: 500, Message: err.Error()}, err
	}

	f := filterFromEvent(event, cfg.Filter)
	log.Printf("Config: sources=%s, keywords=%v, exclude=%v, workers=%d",
		cfg.Input.SourcesFile, f.Keywords, f.ExcludeWords, cfg.Fetch.Workers)

	res, err := pipeline.Search(ctx, cfg, f, nil)
	if err != nil {
		return Response{StatusCode: 500, Message: err.Error()}, err
	}

	resp := Response{StatusCode: 200, Found: len(res.Records)}
	for _, s := range res.Failed() {
		resp.FailedSources = append(resp.FailedSources, s.Source)
	}

	if len(res.Records) == 0 {
		resp.Message = "No matching news found"
		return resp, nil
	}
	resp.Records = res.Records

	// XLSX出力に失敗しても検索結果は返す
	report, err := exportBase64(res.Records)
	if err != nil {
		log.Printf("Error exporting report: %v", err)
		resp.Message = fmt.Sprintf("Found %d articles; report export failed: %v", len(res.Records), err)
	} else {
		resp.FileName = pipeline.ReportFileName
		resp.MIMEType = pipeline.ReportMIMEType
		resp.Report = report
		resp.Message = fmt.Sprintf("Found %d matching articles", len(res.Records))
	}

	if token := os.Getenv("NOTION_TOKEN"); token != "" && cfg.Output.NotionDatabaseID != "" {
		clipper, err := pipeline.NewNotionClipper(token, cfg.Output.NotionDatabaseID)
		if err != nil {
			log.Printf("Error creating Notion clipper: %v", err)
		} else {
			resp.Clipped = clipper.ClipRecords(ctx, res.Records)
			log.Printf("Clipped %d records to Notion", resp.Clipped)
		}
	}

	return resp, nil
}

// filterFromEvent はイベントの検索条件を優先し、空の場合は設定値を使う
func filterFromEvent(event Event, def pipeline.FilterConfig) pipeline.FilterSpec {
	kw, ex := event.Keywords, event.Exclude
	if kw == "" {
		kw = def.Keywords
	}
	if ex == "" {
		ex = def.Exclude
	}
	return pipeline.ParseFilter(kw, ex)
}

func exportBase64(records []pipeline.ResultRecord) (string, error) {
	r, err := pipeline.ExportXLSX(records)
	if err != nil {
		return "", err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func main() {
	z, err := pipeline.NewLogger(os.Getenv("LOG_LEVEL"))
	if err == nil {
		pipeline.SetLogger(z)
	}
	lambda.Start(Handler)
}
