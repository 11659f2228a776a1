// =============================================================================
// fallback.go - フォールバック検索（Google News）
// =============================================================================
//
// 全ソースのスクレイピング後に1回だけ実行される汎用ニュース検索。
//
// 【実装】
//   - GoogleNewsHTML: 検索結果ページを goquery でパース（"article h3 a"）
//   - GoogleNewsRSS:  RSS検索エンドポイントを gofeed でパース
//   - NoFallback:     フォールバック無効
//
// 【注意】Google Newsのマークアップは当システムの管理外で、予告なく変わる。
// HTML版のhrefは "./articles/..." 形式で、先頭1文字を落としてオリジンを付ける。
// 構造が変わった場合は -fallback=rss に切り替える。
//
// =============================================================================
package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// GoogleNewsName はフォールバック結果の source フィールドに入る固定値
const GoogleNewsName = "Google News"

// DefaultGoogleNewsOrigin is the origin used to build search URLs and links.
const DefaultGoogleNewsOrigin = "https://news.google.com"

// Searcher is a keyword search against a general news provider.
type Searcher interface {
	Name() string
	Search(ctx context.Context, keywords []string) ([]ResultRecord, error)
}

// NewSearcher returns the fallback searcher for mode ("html", "rss" or "off").
func NewSearcher(mode string, cfg FetchConfig) (Searcher, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "html":
		return NewGoogleNewsHTML(cfg), nil
	case "rss":
		return NewGoogleNewsRSS(cfg), nil
	case "off", "none":
		return NoFallback{}, nil
	default:
		return nil, fmt.Errorf("unsupported fallback mode: %s", mode)
	}
}

// joinQuery joins keywords with a literal "%20" separator.
// Each term is query-escaped so reserved characters survive.
func joinQuery(keywords []string) string {
	parts := make([]string, 0, len(keywords))
	for _, k := range keywords {
		parts = append(parts, url.PathEscape(k))
	}
	return strings.Join(parts, "%20")
}

// -----------------------------------------------------------------------------
// GoogleNewsHTML
// -----------------------------------------------------------------------------

// GoogleNewsHTML scrapes the Google News search result page.
type GoogleNewsHTML struct {
	Origin string // e.g. https://news.google.com; overridable for tests
	cfg    FetchConfig
}

// NewGoogleNewsHTML returns a searcher pointed at the public Google News origin.
func NewGoogleNewsHTML(cfg FetchConfig) *GoogleNewsHTML {
	return &GoogleNewsHTML{Origin: DefaultGoogleNewsOrigin, cfg: cfg}
}

func (g *GoogleNewsHTML) Name() string { return GoogleNewsName }

// Search fetches <origin>/search?q=<k1>%20<k2>... and extracts headline links.
func (g *GoogleNewsHTML) Search(ctx context.Context, keywords []string) ([]ResultRecord, error) {
	origin := strings.TrimRight(g.Origin, "/")
	doc, err := fetchDoc(ctx, origin+"/search?q="+joinQuery(keywords), g.cfg)
	if err != nil {
		return nil, err
	}

	var out []ResultRecord
	doc.Find("article h3 a").Each(func(_ int, item *goquery.Selection) {
		href, ok := item.Attr("href")
		if !ok || href == "" {
			return
		}
		out = append(out, ResultRecord{
			Title:  normalizeWhitespace(item.Text()),
			Link:   origin + href[1:],
			Source: GoogleNewsName,
		})
	})
	return out, nil
}

// -----------------------------------------------------------------------------
// GoogleNewsRSS
// -----------------------------------------------------------------------------

// GoogleNewsRSS queries the Google News RSS search feed.
type GoogleNewsRSS struct {
	Origin string
	cfg    FetchConfig
}

// NewGoogleNewsRSS returns an RSS-backed searcher.
func NewGoogleNewsRSS(cfg FetchConfig) *GoogleNewsRSS {
	return &GoogleNewsRSS{Origin: DefaultGoogleNewsOrigin, cfg: cfg}
}

func (g *GoogleNewsRSS) Name() string { return GoogleNewsName }

// Search fetches <origin>/rss/search?q=... and maps feed items to records.
func (g *GoogleNewsRSS) Search(ctx context.Context, keywords []string) ([]ResultRecord, error) {
	origin := strings.TrimRight(g.Origin, "/")
	feed, err := fetchFeed(ctx, origin+"/rss/search?q="+joinQuery(keywords), g.cfg)
	if err != nil {
		return nil, err
	}

	out := make([]ResultRecord, 0, len(feed.Items))
	for _, item := range feed.Items {
		title := normalizeWhitespace(item.Title)
		if title == "" || item.Link == "" {
			continue
		}
		out = append(out, ResultRecord{
			Title:  title,
			Link:   normalizeLink(origin, item.Link),
			Source: GoogleNewsName,
		})
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// NoFallback
// -----------------------------------------------------------------------------

// NoFallback disables the fallback search.
type NoFallback struct{}

func (NoFallback) Name() string { return "none" }

func (NoFallback) Search(context.Context, []string) ([]ResultRecord, error) { return nil, nil }
