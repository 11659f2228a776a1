// =============================================================================
// utils.go - ユーティリティ関数
// =============================================================================
//
// このファイルはシステム全体で使用する汎用的なヘルパー関数を提供します。
//
// 【このファイルで提供する機能】
//   - HTTP操作: User-Agent・タイムアウト付きGET、HTML/フィードのパース
//   - JSON操作: ファイル読み込み、Writerへの出力
//   - 文字列操作: 空白正規化、切り詰め
//
// =============================================================================
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// -----------------------------------------------------------------------------
// HTTP設定
// -----------------------------------------------------------------------------

// DefaultUserAgent はブラウザ風のUser-Agent（ブロッキング回避）
const DefaultUserAgent = "Mozilla/5.0"

// DefaultTimeout は1リクエストあたりのタイムアウト
const DefaultTimeout = 10 * time.Second

// FetchConfig はHTTP取得時の設定を保持
type FetchConfig struct {
	UserAgent string        // HTTPリクエスト時のUser-Agentヘッダー
	Timeout   time.Duration // HTTPリクエストのタイムアウト時間
	Client    *http.Client  // 共有HTTPクライアント（nilの場合はTimeoutから生成）
}

// DefaultFetchConfig はデフォルトの取得設定を返す
func DefaultFetchConfig() FetchConfig {
	return FetchConfig{
		UserAgent: DefaultUserAgent,
		Timeout:   DefaultTimeout,
		Client: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (c FetchConfig) client() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

func (c FetchConfig) userAgent() string {
	if c.UserAgent == "" {
		return DefaultUserAgent
	}
	return c.UserAgent
}

// -----------------------------------------------------------------------------
// HTTP操作関数
// -----------------------------------------------------------------------------

// httpGet はUser-Agent付きのGETリクエストを実行する
//
// 2xx以外のステータスは *FetchError として返す。
// 呼び出し元でresp.Body.Close()を行う必要がある。
func httpGet(ctx context.Context, u string, accept string, cfg FetchConfig) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &FetchError{URL: u, Err: fmt.Errorf("request creation failed: %w", err)}
	}
	req.Header.Set("User-Agent", cfg.userAgent())
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := cfg.client().Do(req)
	if err != nil {
		return nil, &FetchError{URL: u, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, &FetchError{URL: u, Status: resp.StatusCode, Err: fmt.Errorf("unexpected status: %s", resp.Status)}
	}
	return resp, nil
}

// fetchDoc は指定URLからHTMLドキュメントを取得してgoqueryでパース
func fetchDoc(ctx context.Context, u string, cfg FetchConfig) (*goquery.Document, error) {
	resp, err := httpGet(ctx, u, "text/html,application/xhtml+xml", cfg)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: u, Err: fmt.Errorf("parse HTML failed: %w", err)}
	}
	return doc, nil
}

// fetchFeed は指定URLからRSS/Atomフィードを取得してgofeedでパース
func fetchFeed(ctx context.Context, feedURL string, cfg FetchConfig) (*gofeed.Feed, error) {
	resp, err := httpGet(ctx, feedURL, "application/rss+xml,application/atom+xml,application/xml", cfg)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: feedURL, Err: fmt.Errorf("RSS parse failed: %w", err)}
	}
	return feed, nil
}

// -----------------------------------------------------------------------------
// JSON操作関数
// -----------------------------------------------------------------------------

// WriteJSON は任意のデータを2スペースインデントのJSONで書き出す
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readJSONFile はJSONファイルを読み込んで指定した型に変換する
func readJSONFile(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

// -----------------------------------------------------------------------------
// 文字列操作関数
// -----------------------------------------------------------------------------

// normalizeWhitespace は文字列内の連続する空白を単一スペースに正規化する
//
//	normalizeWhitespace("  hello   world  ")  // "hello world"
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateString は文字列を指定した長さ（rune数）に切り詰める
//
//	truncateString("Hello World", 8)  // "Hello..."
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
