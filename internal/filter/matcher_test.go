package filter

import (
	"testing"

	"go-bosszp-automation/internal/scraper"
)

func TestShouldInclude(t *testing.T) {
	tests := []struct {
		name     string
		keywords []string
		excludes []string
		rec      scraper.JobRecord
		expected bool
	}{
		{
			name:     "no keywords accepts everything",
			rec:      scraper.JobRecord{Title: "算法工程师"},
			expected: true,
		},
		{
			name:     "keyword match in title",
			keywords: []string{"golang"},
			rec:      scraper.JobRecord{Title: "Golang 后端开发"},
			expected: true,
		},
		{
			name:     "keyword match in tags",
			keywords: []string{"kubernetes"},
			rec:      scraper.JobRecord{Title: "后端开发", Tags: "Kubernetes, Docker"},
			expected: true,
		},
		{
			name:     "keyword miss",
			keywords: []string{"golang"},
			rec:      scraper.JobRecord{Title: "Java 开发", Description: "Spring 全家桶"},
			expected: false,
		},
		{
			name:     "exclude wins over keyword",
			keywords: []string{"golang"},
			excludes: []string{"外包"},
			rec:      scraper.JobRecord{Title: "Golang 开发（外包）"},
			expected: false,
		},
		{
			name:     "exclude applies with no keywords",
			excludes: []string{"实习"},
			rec:      scraper.JobRecord{Title: "测试实习生"},
			expected: false,
		},
		{
			name:     "diacritics stripped",
			keywords: []string{"can tho"},
			rec:      scraper.JobRecord{Title: "Backend Developer", Description: "Cần Thơ office"},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatcher(tt.keywords, tt.excludes)
			if got := m.ShouldInclude(&tt.rec); got != tt.expected {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}
