package picker

import (
	"sort"
	"strings"
	"unicode"
)

// match holds one scored item during filtering.
type match struct {
	item  Item
	score int
}

// filterItems returns the items matching query, best score first.
// An empty query keeps the original order.
func filterItems(items []Item, query string) []Item {
	if query == "" {
		out := make([]Item, len(items))
		copy(out, items)
		return out
	}

	query = strings.ToLower(query)
	matches := make([]match, 0, len(items))
	for _, it := range items {
		if score := scoreItem(query, it); score > 0 {
			matches = append(matches, match{item: it, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	out := make([]Item, len(matches))
	for i, m := range matches {
		out[i] = m.item
	}
	return out
}

// scoreItem scores an item against the query. Label matches outrank
// detail matches.
func scoreItem(query string, it Item) int {
	if s := fuzzyScore(query, it.Label); s > 0 {
		return s + 50
	}
	return fuzzyScore(query, it.Detail)
}

// fuzzyScore performs subsequence matching; 0 means no match.
func fuzzyScore(query, text string) int {
	if text == "" {
		return 0
	}

	textLower := strings.ToLower(text)
	positions := make([]int, 0, len(query))
	qi := 0
	for i := 0; i < len(textLower) && qi < len(query); i++ {
		if textLower[i] == query[qi] {
			positions = append(positions, i)
			qi++
		}
	}
	if qi != len(query) {
		return 0
	}

	score := 100
	for i := 1; i < len(positions); i++ {
		if positions[i] == positions[i-1]+1 {
			score += 20
		}
	}
	for _, idx := range positions {
		if wordBoundary(text, idx) {
			score += 15
		}
	}
	if positions[0] == 0 {
		score += 25
	} else {
		score -= positions[0]
	}
	if strings.HasPrefix(textLower, query) {
		score += 50
	}
	if score < 1 {
		score = 1
	}
	return score
}

func wordBoundary(text string, idx int) bool {
	if idx == 0 {
		return true
	}
	if idx >= len(text) {
		return false
	}
	prev := rune(text[idx-1])
	curr := rune(text[idx])
	switch prev {
	case '/', '_', '-', '.', ' ', ':':
		return true
	}
	return unicode.IsLower(prev) && unicode.IsUpper(curr)
}
