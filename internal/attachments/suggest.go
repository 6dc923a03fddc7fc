package attachments

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// minSuggestSimilarity is the Levenshtein similarity a slot needs to be
// offered as a correction.
const minSuggestSimilarity = 0.5

// SuggestSlot returns the vocabulary slot closest to name, ignoring case.
// ok is false when no slot is similar enough.
func SuggestSlot(name string, vocabulary []string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}

	metric := metrics.NewLevenshtein()
	metric.CaseSensitive = false

	best, score := "", 0.0
	for _, slot := range vocabulary {
		if slot == "" {
			continue
		}
		if s := strutil.Similarity(name, slot, metric); s > score {
			best, score = slot, s
		}
	}
	return best, score >= minSuggestSimilarity
}

// KnownSlot reports whether slot is in vocabulary.
func KnownSlot(slot string, vocabulary []string) bool {
	for _, s := range vocabulary {
		if s == slot {
			return true
		}
	}
	return false
}
