// =============================================================================
// aggregator.go - 検索の実行と集約
// =============================================================================
//
// 【処理フロー】
//
//   ソースレジストリ ─┬─> Scraper(source 1) ─┐
//                    ├─> Scraper(source 2) ─┼─> 結合 ─> 重複排除 ─> RunResult
//                    └─> ...                │
//   Fallback(keywords) ────────────────────┘
//
// 【ルール】
//   - ソースごとの失敗は警告ログのみ。そのソースは0件として続行する
//   - 全ソース処理後、フォールバック検索を必ず1回実行する
//   - 重複排除は (title, link, source) の完全一致、最初の出現を残す
//   - Workers > 1 の場合も結果はレジストリ順に結合する（完了順ではない）
//
// =============================================================================
package pipeline

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// SiteScraper fetches one source and returns matching records.
type SiteScraper interface {
	Scrape(ctx context.Context, siteURL string, f FilterSpec) ([]ResultRecord, error)
}

// ProgressFunc receives the number of completed sources out of total after
// each source finishes. completed increases by one per call.
type ProgressFunc func(completed, total int)

// Aggregator runs the scraper over every source, then the fallback searcher.
type Aggregator struct {
	Scraper  SiteScraper
	Fallback Searcher // nil disables the fallback
	Workers  int      // <= 1 means sequential
}

// NewAggregator wires an Aggregator with the default scraper and fallback mode.
func NewAggregator(cfg FetchConfig, fallbackMode string, workers int) (*Aggregator, error) {
	fb, err := NewSearcher(fallbackMode, cfg)
	if err != nil {
		return nil, err
	}
	return &Aggregator{
		Scraper:  NewScraper(cfg),
		Fallback: fb,
		Workers:  workers,
	}, nil
}

// Run executes one search. It never fails: per-source errors are recorded in
// the returned RunResult and logged as warnings.
func (a *Aggregator) Run(ctx context.Context, sources []SourceEntry, f FilterSpec, onProgress ProgressFunc) RunResult {
	infof("searching %d sources for %v excluding %v", len(sources), f.Keywords, f.ExcludeWords)

	res := RunResult{Sources: a.scrapeAll(ctx, sources, f, onProgress)}
	res.Fallback = a.searchFallback(ctx, f.Keywords)

	var all []ResultRecord
	for _, sr := range res.Sources {
		all = append(all, sr.Records...)
	}
	all = append(all, res.Fallback.Records...)
	res.Records = Dedup(all)

	if failed := res.Failed(); len(failed) > 0 {
		infof("%d of %d source(s) failed", len(failed), len(sources)+1)
	}
	infof("found %d matching articles (%d before dedup)", len(res.Records), len(all))
	return res
}

// scrapeAll はソースを順番に（またはWorkers並列で）処理する
//
// 結果はインデックスごとのスロットに格納するので、完了順に関係なくレジストリ順になる。
func (a *Aggregator) scrapeAll(ctx context.Context, sources []SourceEntry, f FilterSpec, onProgress ProgressFunc) []SourceResult {
	results := make([]SourceResult, len(sources))
	total := len(sources)

	var mu sync.Mutex
	completed := 0
	done := func() {
		mu.Lock()
		defer mu.Unlock()
		completed++
		if onProgress != nil {
			onProgress(completed, total)
		}
	}

	if a.Workers <= 1 {
		for i, src := range sources {
			results[i] = a.scrapeOne(ctx, src.URL, f)
			done()
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(a.Workers)
	for i, src := range sources {
		g.Go(func() error {
			results[i] = a.scrapeOne(ctx, src.URL, f)
			done()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (a *Aggregator) scrapeOne(ctx context.Context, siteURL string, f FilterSpec) SourceResult {
	recs, err := a.Scraper.Scrape(ctx, siteURL, f)
	if err != nil {
		Logger().Warnw("error scraping site", "source", siteURL, "error", err)
		return SourceResult{Source: siteURL, Err: err}
	}
	return SourceResult{Source: siteURL, Records: recs}
}

func (a *Aggregator) searchFallback(ctx context.Context, keywords []string) SourceResult {
	if a.Fallback == nil {
		return SourceResult{Source: "none"}
	}
	name := a.Fallback.Name()
	recs, err := a.Fallback.Search(ctx, keywords)
	if err != nil {
		Logger().Warnw("error searching fallback", "source", name, "error", err)
		return SourceResult{Source: name, Err: err}
	}
	return SourceResult{Source: name, Records: recs}
}

// Dedup は (title, link, source) が完全一致するレコードを除去する
//
// 最初に出現したものを残し、順序は保持する。
func Dedup(in []ResultRecord) []ResultRecord {
	seen := make(map[ResultRecord]struct{}, len(in))
	out := make([]ResultRecord, 0, len(in))
	for _, r := range in {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
