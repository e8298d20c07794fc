package prediction

import (
	"fmt"
	"strings"
	"time"
)

// LabelStat is the share of one label across a history.
type LabelStat struct {
	Label   Label   `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Statistics aggregates a history per label, in Labels order.
type Statistics struct {
	Total  int         `json:"total"`
	Labels []LabelStat `json:"labels"`
}

// Summarize counts results per known label. Percentages are of the total
// history size, so unknown labels lower the known shares. An empty history
// yields zero for every label.
func Summarize(history []Result) Statistics {
	counts := make(map[Label]int, len(Labels))
	for _, r := range history {
		counts[r.Sentiment]++
	}

	stats := Statistics{Total: len(history), Labels: make([]LabelStat, 0, len(Labels))}
	for _, l := range Labels {
		s := LabelStat{Label: l, Count: counts[l]}
		if stats.Total > 0 {
			s.Percent = float64(s.Count) / float64(stats.Total) * 100
		}
		stats.Labels = append(stats.Labels, s)
	}
	return stats
}

// Of returns the stat for l.
func (s Statistics) Of(l Label) LabelStat {
	for _, ls := range s.Labels {
		if ls.Label == l {
			return ls
		}
	}
	return LabelStat{Label: l}
}

// CharCount is the number of characters in a draft.
func CharCount(text string) int {
	return len([]rune(text))
}

// WordCount counts whitespace separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// TimeAgo renders the age of a timestamp in coarse buckets.
func TimeAgo(createdAt, now time.Time) string {
	seconds := int64(now.Sub(createdAt) / time.Second)
	switch {
	case seconds < 60:
		return "Just now"
	case seconds < 3600:
		return fmt.Sprintf("%dm ago", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%dh ago", seconds/3600)
	}
	return fmt.Sprintf("%dd ago", seconds/86400)
}

// FormatPercent renders a probability in [0,1] as a percentage with the given precision.
func FormatPercent(p float64, decimals int) string {
	return fmt.Sprintf("%.*f%%", decimals, p*100)
}
