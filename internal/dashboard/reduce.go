package dashboard

import (
	"sort"

	"github.com/gamedash/gamedash-server/internal/catalog"
	"github.com/gamedash/gamedash-server/internal/terms"
)

const (
	// TopPlatforms and TopGenres bound the displayed lists.
	TopPlatforms = 8
	TopGenres    = 8

	// YearWindow is the number of years before the current one in the histogram.
	YearWindow = 15
)

// CountPlatforms counts every platform reference across items and returns
// the top n by count. Ties keep the order in which platforms were first seen.
func CountPlatforms(items []catalog.Item, n int) []PlatformSummary {
	counts := make(map[string]int)
	var order []string
	for _, item := range items {
		for _, p := range item.Platforms {
			if _, seen := counts[p]; !seen {
				order = append(order, p)
			}
			counts[p]++
		}
	}

	out := make([]PlatformSummary, 0, len(order))
	for _, name := range order {
		out = append(out, PlatformSummary{Name: name, Count: counts[name]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// YearHistogram counts release years over [currentYear-15, currentYear].
// The result always has 16 ascending entries. Items without a parseable
// date, or released outside the window, are skipped.
func YearHistogram(items []catalog.Item, currentYear int) []YearCount {
	first := currentYear - YearWindow
	out := make([]YearCount, YearWindow+1)
	for i := range out {
		out[i].Year = first + i
	}
	for _, item := range items {
		year, ok := item.ReleaseYear()
		if !ok || year < first || year > currentYear {
			continue
		}
		out[year-first].Count++
	}
	return out
}

var ratingRanges = [...]string{"0.0-1.0", "1.0-2.0", "2.0-3.0", "3.0-4.0", "4.0-5.0"}

// RatingDistribution buckets ratings into five one-point ranges.
// Unrated items (missing or zero) are not counted.
func RatingDistribution(items []catalog.Item) []RatingBucket {
	out := make([]RatingBucket, len(ratingRanges))
	for i, r := range ratingRanges {
		out[i].Range = r
	}
	for _, item := range items {
		if item.Rating == nil || *item.Rating == 0 {
			continue
		}
		switch r := *item.Rating; {
		case r < 1.0:
			out[0].Count++
		case r < 2.0:
			out[1].Count++
		case r < 3.0:
			out[2].Count++
		case r < 4.0:
			out[3].Count++
		default:
			out[4].Count++
		}
	}
	return out
}

// ClassifyModes buckets every item by the play modes its tags indicate.
// The four counts always sum to len(items).
func ClassifyModes(items []catalog.Item) ModeCounts {
	var c ModeCounts
	for _, item := range items {
		f := terms.Classify(item.Tags)
		switch {
		case f.HasSingle && f.HasMulti:
			c.Both++
		case f.HasSingle:
			c.SingleplayerOnly++
		case f.HasMulti:
			c.MultiplayerOnly++
		default:
			c.Unclassified++
		}
	}
	return c
}
