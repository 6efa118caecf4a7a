package components

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/explorador/internal/tui/styles"
)

// matchIndexes returns the byte offsets in name that match query, or nil
func matchIndexes(query, name string) []int {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	lower := strings.ToLower(name)

	// Prefer a contiguous substring, which is what the list filter matches on
	if i := strings.Index(lower, query); i >= 0 && len(lower) == len(name) {
		idx := make([]int, 0, len(query))
		for j := range query {
			idx = append(idx, i+j)
		}
		return idx
	}

	matches := fuzzy.Find(query, []string{name})
	if len(matches) == 0 {
		return nil
	}
	return matches[0].MatchedIndexes
}

// highlightParts splits text into row parts, batching consecutive characters
// with the same match state
func highlightParts(text string, matched []int, selected bool) []styles.RowPart {
	if len(matched) == 0 {
		return []styles.RowPart{{Text: text}}
	}

	set := make(map[int]bool, len(matched))
	for _, i := range matched {
		set[i] = true
	}
	hl := styles.MatchHighlightStyle
	if selected {
		hl = styles.MatchHighlightSelectedStyle
	}

	var parts []styles.RowPart
	var run strings.Builder
	inMatch := false
	flush := func() {
		if run.Len() == 0 {
			return
		}
		p := styles.RowPart{Text: run.String()}
		if inMatch {
			p.Style = &hl
		}
		parts = append(parts, p)
		run.Reset()
	}
	for i, r := range text {
		if set[i] != inMatch {
			flush()
			inMatch = set[i]
		}
		run.WriteRune(r)
	}
	flush()
	return parts
}
