// =============================================================================
// email.go - メール送信モジュール
// =============================================================================
//
// このファイルはSMTPを使用したレポート送信機能を提供します。
// 検索結果の一覧を本文に、XLSXレポートを添付ファイルにして送信します。
//
// =============================================================================
// 【処理の流れ】
// =============================================================================
//
// 1. プレーンテキスト形式のメール本文を生成（件数・失敗ソース・記事一覧）
// 2. multipart/mixed のメッセージを構築（本文 + polish_news_report.xlsx）
// 3. SMTP経由で送信（リトライ付き）
//
// =============================================================================
// 【必要な環境変数】
// =============================================================================
//
//   EMAIL_FROM     - 送信元メールアドレス
//   EMAIL_PASSWORD - SMTPパスワード（Gmailの場合はアプリパスワード）
//   EMAIL_TO       - 送信先メールアドレス（カンマ区切りで複数可）
//   SMTP_HOST      - 任意（デフォルト: smtp.gmail.com）
//   SMTP_PORT      - 任意（デフォルト: 587）
//
// =============================================================================
package pipeline

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"mime"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"os"
	"strings"
	"time"
)

// =============================================================================
// 設定・構造体
// =============================================================================

// EmailConfig はメール送信の設定を保持する
type EmailConfig struct {
	From     string   // 送信元メールアドレス
	Password string   // SMTPパスワード
	To       []string // 送信先メールアドレス（複数可）
	SMTPHost string   // SMTPサーバーホスト
	SMTPPort string   // SMTPポート
}

// sendMailFunc は smtp.SendMail と同じシグネチャ（テストで差し替える）
type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailSender はメール送信を担当する
type EmailSender struct {
	config   EmailConfig
	sendMail sendMailFunc
	sleep    func(time.Duration)
}

// NewEmailSender は新しいメール送信者を作成する
//
// 引数:
//
//	from:     送信元メールアドレス
//	password: SMTPパスワード
//	to:       送信先メールアドレス（カンマ区切りで複数可）
func NewEmailSender(from, password, to string) (*EmailSender, error) {
	if from == "" {
		return nil, fmt.Errorf("EMAIL_FROM is required")
	}
	if password == "" {
		return nil, fmt.Errorf("EMAIL_PASSWORD is required")
	}
	toList := splitTerms(to)
	if len(toList) == 0 {
		return nil, fmt.Errorf("EMAIL_TO is required")
	}

	host := os.Getenv("SMTP_HOST")
	if host == "" {
		host = "smtp.gmail.com"
	}
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587" // TLSポート
	}

	return &EmailSender{
		config: EmailConfig{
			From:     from,
			Password: password,
			To:       toList,
			SMTPHost: host,
			SMTPPort: port,
		},
		sendMail: smtp.SendMail,
		sleep:    time.Sleep,
	}, nil
}

// NewEmailSenderFromEnv は EMAIL_FROM / EMAIL_PASSWORD / EMAIL_TO から作成する
func NewEmailSenderFromEnv() (*EmailSender, error) {
	return NewEmailSender(os.Getenv("EMAIL_FROM"), os.Getenv("EMAIL_PASSWORD"), os.Getenv("EMAIL_TO"))
}

// =============================================================================
// レポート送信
// =============================================================================

// SendReport はレポートメールを送信する
//
// 0件の場合もレポートなしで「該当なし」のメールを送る。
// attachment が nil の場合は添付しない。
func (es *EmailSender) SendReport(ctx context.Context, res RunResult, f FilterSpec, attachment []byte) error {
	subject := fmt.Sprintf("News Report - %s (%d articles)", time.Now().Format("2006-01-02"), len(res.Records))
	body := es.generateReportBody(res, f)

	msg, err := es.buildEmailMessage(subject, body, attachment)
	if err != nil {
		return fmt.Errorf("build email: %w", err)
	}
	if err := es.sendWithRetry(ctx, msg); err != nil {
		return err
	}
	infof("report email sent to %s", strings.Join(es.config.To, ", "))
	return nil
}

// generateReportBody はメール本文を生成する
func (es *EmailSender) generateReportBody(res RunResult, f FilterSpec) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(f.Keywords, ", "))
	fmt.Fprintf(&b, "Excluded: %s\n\n", strings.Join(f.ExcludeWords, ", "))

	if len(res.Records) == 0 {
		b.WriteString("No matching news found.\n")
	} else {
		fmt.Fprintf(&b, "Found %d matching articles:\n\n", len(res.Records))
		for i, r := range res.Records {
			fmt.Fprintf(&b, "%d. %s\n   %s\n   (%s)\n\n", i+1, r.Title, r.Link, r.Source)
		}
	}

	if failed := res.Failed(); len(failed) > 0 {
		fmt.Fprintf(&b, "%d source(s) failed:\n", len(failed))
		for _, s := range failed {
			fmt.Fprintf(&b, "  %s: %v\n", s.Source, s.Err)
		}
	}
	return b.String()
}

// buildEmailMessage はmultipart/mixed形式のメールメッセージを構築する
//
//	From / To / Subject / MIME-Version / Content-Type: multipart/mixed
//	  part 1: text/plain; charset=UTF-8
//	  part 2: XLSX（base64、attachment が空でない場合のみ）
func (es *EmailSender) buildEmailMessage(subject, body string, attachment []byte) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", es.config.From)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(es.config.To, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n", mw.Boundary())
	buf.WriteString("\r\n") // ヘッダーと本文の区切り

	textPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=UTF-8"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := textPart.Write([]byte(body)); err != nil {
		return nil, err
	}

	if len(attachment) > 0 {
		filePart, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {ReportMIMEType},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", ReportFileName)},
		})
		if err != nil {
			return nil, err
		}
		enc := base64.StdEncoding.EncodeToString(attachment)
		// RFC 2045: 1行76文字以内
		for len(enc) > 76 {
			if _, err := filePart.Write([]byte(enc[:76] + "\r\n")); err != nil {
				return nil, err
			}
			enc = enc[76:]
		}
		if _, err := filePart.Write([]byte(enc + "\r\n")); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// =============================================================================
// 送信（リトライ付き）
// =============================================================================

// sendWithRetry は指数バックオフでリトライしながらメールを送信する
//
// 1回目失敗: 2秒待機、2回目失敗: 4秒待機。ctxがキャンセルされたら中断する。
func (es *EmailSender) sendWithRetry(ctx context.Context, msg []byte) error {
	maxRetries := 3
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		if i > 0 {
			wait := time.Duration(math.Pow(2, float64(i))) * time.Second
			infof("retrying email send in %v", wait)
			es.sleep(wait)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		err := es.send(msg)
		if err == nil {
			return nil
		}
		lastErr = err
		warnf("email send failed (attempt %d/%d): %v", i+1, maxRetries, err)
	}

	return fmt.Errorf("failed to send email after %d retries: %w", maxRetries, lastErr)
}

// send はSMTP（PLAIN認証）でメールを送信する
func (es *EmailSender) send(msg []byte) error {
	auth := smtp.PlainAuth("", es.config.From, es.config.Password, es.config.SMTPHost)
	addr := es.config.SMTPHost + ":" + es.config.SMTPPort

	if err := es.sendMail(addr, auth, es.config.From, es.config.To, msg); err != nil {
		return fmt.Errorf("SMTP send failed: %w", err)
	}
	return nil
}
