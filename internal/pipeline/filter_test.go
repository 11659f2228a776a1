package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name        string
		keywords    string
		exclude     string
		wantKeyword []string
		wantExclude []string
	}{
		{"defaults", "wypadek,morderstwo", "sport,piłka", []string{"wypadek", "morderstwo"}, []string{"sport", "piłka"}},
		{"trims and drops empty", " wypadek , ,pożar,", ",, ", []string{"wypadek", "pożar"}, nil},
		{"empty input", "", "", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ParseFilter(tt.keywords, tt.exclude)
			assert.Equal(t, tt.wantKeyword, f.Keywords)
			assert.Equal(t, tt.wantExclude, f.ExcludeWords)
		})
	}
}

func TestFilterSpecMatch(t *testing.T) {
	tests := []struct {
		name   string
		filter FilterSpec
		text   string
		want   bool
	}{
		{"keyword substring", FilterSpec{Keywords: []string{"wypadek"}}, "Groźny wypadek na A4", true},
		{"case insensitive keyword", FilterSpec{Keywords: []string{"WYPADEK"}}, "Wypadek drogowy", true},
		{"unicode lower", FilterSpec{Keywords: []string{"pożar"}}, "POŻAR kamienicy", true},
		{"no keyword", FilterSpec{Keywords: []string{"wypadek"}}, "Mecz piłki", false},
		{"excluded", FilterSpec{Keywords: []string{"wypadek"}, ExcludeWords: []string{"Sport"}}, "Wypadek na torze, sport", false},
		{"exclude without keyword", FilterSpec{ExcludeWords: []string{"sport"}}, "Wypadek", false},
		{"empty keywords never match", FilterSpec{}, "anything", false},
		{"any of several keywords", FilterSpec{Keywords: []string{"morderstwo", "wypadek"}}, "Wypadek", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(tt.text))
		})
	}
}
