package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// sourceDocument is the on-disk shape of the source registry:
//
//	{"sources": [{"url": "https://example.pl"}, ...]}
//
// The same shape is accepted as YAML.
type sourceDocument struct {
	Sources []SourceEntry `json:"sources" yaml:"sources"`
}

// LoadSources はソースレジストリを読み込む
//
// 拡張子が .yaml / .yml の場合はYAML、それ以外はJSONとしてパースする。
// URLが空のエントリはスキップする。
// 読み込み・パースに失敗した場合は *ConfigLoadError を返す。
func LoadSources(path string) ([]SourceEntry, error) {
	var doc sourceDocument

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, &ConfigLoadError{Path: path, Err: err}
		}
		if err := yaml.Unmarshal(b, &doc); err != nil {
			return nil, &ConfigLoadError{Path: path, Err: err}
		}
	default:
		if err := readJSONFile(path, &doc); err != nil {
			return nil, &ConfigLoadError{Path: path, Err: err}
		}
	}

	if doc.Sources == nil {
		return nil, &ConfigLoadError{Path: path, Err: errors.New(`missing "sources" list`)}
	}

	out := make([]SourceEntry, 0, len(doc.Sources))
	for _, s := range doc.Sources {
		s.URL = strings.TrimSpace(s.URL)
		if s.URL == "" {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// LoadSourcesOrEmpty は LoadSources の失敗をログに記録し、空のレジストリを返す
//
// 設定エラーがあっても検索（フォールバックを含む）は続行する。
func LoadSourcesOrEmpty(path string) []SourceEntry {
	sources, err := LoadSources(path)
	if err != nil {
		errorf("%v (continuing with 0 sources)", err)
		return nil
	}
	infof("loaded %d sources from %s", len(sources), path)
	return sources
}
