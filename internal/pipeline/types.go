// =============================================================================
// types.go - データ構造定義
// =============================================================================
//
// このファイルはnews-relay全体で使用するデータ構造（型）を定義します。
//
// 【このファイルで定義している型】
//   - SourceEntry:  スキャン対象サイト（sources.json の1エントリ）
//   - FilterSpec:   キーワード／除外ワードの検索条件
//   - ResultRecord: マッチした記事（タイトル・リンク・ソース）
//   - SourceResult: ソース単位の収集結果（成功／失敗）
//   - RunResult:    1回の検索実行の集約結果
//
// =============================================================================
package pipeline

// -----------------------------------------------------------------------------
// SourceEntry - スキャン対象サイト
// -----------------------------------------------------------------------------
//
// ソースレジストリ（sources.json / sources.yaml）から読み込まれる1サイト分の設定。
// 実行中は変更されない。
type SourceEntry struct {
	URL  string `json:"url" yaml:"url"`                       // サイトのURL
	Name string `json:"name,omitempty" yaml:"name,omitempty"` // 表示名（任意、マッチングには使わない）
}

// -----------------------------------------------------------------------------
// ResultRecord - マッチした記事
// -----------------------------------------------------------------------------
//
// Source はスクレイピング元のURL、またはフォールバック検索のプロバイダ名
// （"Google News"）。3フィールドすべてが一致するレコードは同一とみなす。
type ResultRecord struct {
	Title  string `json:"title"`  // アンカーテキスト（トリム済み）
	Link   string `json:"link"`   // 絶対URL
	Source string `json:"source"` // 取得元
}

// -----------------------------------------------------------------------------
// SourceResult - ソース単位の収集結果
// -----------------------------------------------------------------------------
//
// Err が nil でない場合、そのソースは0件として扱われる。
// 呼び出し側は例外を捕捉せずに、どのソースが失敗したかを確認できる。
type SourceResult struct {
	Source  string
	Records []ResultRecord
	Err     error
}

// OK reports whether the source was collected without error.
func (r SourceResult) OK() bool {
	return r.Err == nil
}

// RunResult is the outcome of one Aggregator run.
type RunResult struct {
	Records  []ResultRecord // deduplicated, first-seen order
	Sources  []SourceResult // one per registry entry, registry order
	Fallback SourceResult
}

// Failed returns every source (including the fallback) that returned an error.
func (r RunResult) Failed() []SourceResult {
	var out []SourceResult
	for _, s := range r.Sources {
		if !s.OK() {
			out = append(out, s)
		}
	}
	if !r.Fallback.OK() {
		out = append(out, r.Fallback)
	}
	return out
}
