package pipeline

import "strings"

// FilterSpec は1回の検索で使うキーワード条件
//
// Keywords のいずれかを含み、ExcludeWords のどれも含まないアンカーテキストだけが残る。
// 比較はすべて小文字化した部分一致。
type FilterSpec struct {
	Keywords     []string `json:"keywords"`
	ExcludeWords []string `json:"excludeWords"`
}

// ParseFilter はカンマ区切りの入力文字列から FilterSpec を組み立てる
//
// 使用例:
//
//	f := ParseFilter("wypadek, morderstwo", "sport,,piłka")
//	// f.Keywords     = ["wypadek", "morderstwo"]
//	// f.ExcludeWords = ["sport", "piłka"]
func ParseFilter(keywordsRaw, excludeRaw string) FilterSpec {
	return FilterSpec{
		Keywords:     splitTerms(keywordsRaw),
		ExcludeWords: splitTerms(excludeRaw),
	}
}

// splitTerms splits on commas, trims each token and drops empty ones.
func splitTerms(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Match reports whether text passes the filter.
// An empty keyword list never matches.
func (f FilterSpec) Match(text string) bool {
	lower := strings.ToLower(text)
	if !containsAny(lower, f.Keywords) {
		return false
	}
	return !containsAny(lower, f.ExcludeWords)
}

// containsAny は lower が terms のいずれかを（小文字化して）含むかチェック
func containsAny(lower string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(lower, strings.ToLower(t)) {
			return true
		}
	}
	return false
}
