// =============================================================================
// Lambda: send-report
// =============================================================================
//
// 全ソースを検索し、XLSXレポートを添付したメールを送信するLambda関数
// 0件の場合も「該当なし」のメールを送る（添付なし）
//
// 環境変数:
//   - SOURCES_FILE:             ソースレジストリ (デフォルト: sources.json)
//   - KEYWORDS:                 検索キーワード (カンマ区切り)
//   - EXCLUDE_WORDS:            除外ワード (カンマ区切り)
//   - EMAIL_FROM:               送信元メールアドレス (必須)
//   - EMAIL_PASSWORD:           SMTPパスワード (必須)
//   - EMAIL_TO:                 送信先メールアドレス (必須)
//
// =============================================================================
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"news-relay/internal/pipeline"
)

// Response はLambdaレスポンス
type Response struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Found      int    `json:"found"`
	Failed     int    `json:"failed"`
	Sent       bool   `json:"sent"`
}

// Handler はLambdaのメインハンドラー
func Handler(ctx context.Context, event interface{}) (Response, error) {
	log.Println("Starting send-report Lambda...")

	cfg, err := pipeline.LoadConfig()
	if err != nil {
		return Response{StatusCode: 500, Message: err.Error()}, err
	}

	// 検索前にメール設定を検証（無駄な巡回を避ける）
	sender, err := pipeline.NewEmailSenderFromEnv()
	if err != nil {
		return Response{StatusCode: 400, Message: err.Error()}, err
	}

	f := cfg.Filter.Spec()
	log.Printf("Config: sources=%s, keywords=%v, exclude=%v", cfg.Input.SourcesFile, f.Keywords, f.ExcludeWords)

	res, err := pipeline.Search(ctx, cfg, f, nil)
	if err != nil {
		return Response{StatusCode: 500, Message: err.Error()}, err
	}
	resp := Response{Found: len(res.Records), Failed: len(res.Failed())}

	var attachment []byte
	if len(res.Records) > 0 {
		r, err := pipeline.ExportXLSX(res.Records)
		if err != nil {
			log.Printf("Error exporting report (sending without attachment): %v", err)
		} else if attachment, err = io.ReadAll(r); err != nil {
			log.Printf("Error reading report: %v", err)
			attachment = nil
		}
	}

	if err := sender.SendReport(ctx, res, f, attachment); err != nil {
		log.Printf("Error sending email: %v", err)
		resp.StatusCode = 500
		resp.Message = err.Error()
		return resp, err
	}

	resp.StatusCode = 200
	resp.Sent = true
	resp.Message = fmt.Sprintf("Sent report with %d articles", len(res.Records))
	return resp, nil
}

func main() {
	z, err := pipeline.NewLogger(os.Getenv("LOG_LEVEL"))
	if err == nil {
		pipeline.SetLogger(z)
	}
	lambda.Start(Handler)
}
