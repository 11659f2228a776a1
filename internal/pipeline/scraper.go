// =============================================================================
// scraper.go - サイトスクレイパー
// =============================================================================
//
// 1つのサイトのトップページを取得し、全ての <a href> を走査して
// アンカーテキストがキーワード条件に一致するリンクを抽出します。
//
// 【処理の流れ】
//  1. User-Agent・タイムアウト付きでGET
//  2. goqueryでHTMLをパース
//  3. a[href] ごとに表示テキストを取り出し FilterSpec.Match で判定
//  4. 相対リンクをサイトのルートと結合して絶対URLにする
//
// サイト固有の抽出ルールは持たない。全ソースに同じ判定を適用する。
//
// =============================================================================
package pipeline

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Scraper fetches one site and extracts matching anchors.
type Scraper struct {
	cfg FetchConfig
}

// NewScraper returns a Scraper using cfg for every request.
func NewScraper(cfg FetchConfig) *Scraper {
	return &Scraper{cfg: cfg}
}

// Scrape fetches siteURL and returns the anchors whose text passes f.
// Network, status and parse failures are returned as *FetchError.
func (s *Scraper) Scrape(ctx context.Context, siteURL string, f FilterSpec) ([]ResultRecord, error) {
	doc, err := fetchDoc(ctx, siteURL, s.cfg)
	if err != nil {
		return nil, err
	}
	return extractMatches(doc, siteURL, f), nil
}

// extractMatches はドキュメント内のリンクから条件に一致するものを抽出
func extractMatches(doc *goquery.Document, siteURL string, f FilterSpec) []ResultRecord {
	var out []ResultRecord
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		text := normalizeWhitespace(a.Text())
		if text == "" || !f.Match(text) {
			return
		}
		href, _ := a.Attr("href")
		out = append(out, ResultRecord{
			Title:  text,
			Link:   normalizeLink(siteURL, href),
			Source: siteURL,
		})
	})
	return out
}

// normalizeLink は相対リンクをサイトのルートに結合する
//
// "http" で始まるリンクはそのまま返す。それ以外はsiteURL末尾の "/" と
// href先頭の "/" を取り除き、"/" 1つで結合する。
//
//	normalizeLink("http://example.com/", "/foo/bar")  // "http://example.com/foo/bar"
//	normalizeLink("http://example.com", "https://x.pl/a")  // "https://x.pl/a"
func normalizeLink(siteURL, href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "http") {
		return href
	}
	return strings.TrimRight(siteURL, "/") + "/" + strings.TrimLeft(href, "/")
}
