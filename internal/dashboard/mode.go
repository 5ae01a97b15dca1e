package dashboard

// ModeLabel names a play-mode bucket.
type ModeLabel string

const (
	SingleplayerOnly ModeLabel = "SingleplayerOnly"
	MultiplayerOnly  ModeLabel = "MultiplayerOnly"
	Both             ModeLabel = "Both"
	Unclassified     ModeLabel = "Unclassified"
)

// DegeneratePolicy decides what the mode chart shows when no item was classified.
type DegeneratePolicy string

const (
	// SubstituteExample shows a fixed example distribution.
	SubstituteExample DegeneratePolicy = "substituteExample"
	// ShowEmpty shows no entries.
	ShowEmpty DegeneratePolicy = "showEmpty"
)

// ModeCounts is the exact partition of an analyzed batch.
type ModeCounts struct {
	SingleplayerOnly int `json:"singleplayer_only"`
	MultiplayerOnly  int `json:"multiplayer_only"`
	Both             int `json:"both"`
	Unclassified     int `json:"unclassified"`
}

// Total is the number of items the counts were built from.
func (c ModeCounts) Total() int {
	return c.SingleplayerOnly + c.MultiplayerOnly + c.Both + c.Unclassified
}

// ModeEntry is one displayed bar of the mode chart.
type ModeEntry struct {
	Label   ModeLabel `json:"label"`
	Display string    `json:"display"`
	Count   int       `json:"count"`
	Color   string    `json:"color"`
}

// ModeSummary pairs the exact partition with what should be drawn.
type ModeSummary struct {
	Counts   ModeCounts  `json:"counts"`
	Analyzed int         `json:"analyzed"`
	Entries  []ModeEntry `json:"entries"`
	// Substituted is set when Entries show example data instead of Counts.
	Substituted bool   `json:"substituted"`
	Policy      string `json:"policy"`
}

type modeBucket struct {
	label    ModeLabel
	display  string
	color    string
	example  int
	minimum  int
	countsOf func(ModeCounts) int
}

var modeBuckets = [...]modeBucket{
	{SingleplayerOnly, "Solo un jugador", "#10B981", 45, 15, func(c ModeCounts) int { return c.SingleplayerOnly }},
	{MultiplayerOnly, "Solo multijugador", "#EF4444", 23, 8, func(c ModeCounts) int { return c.MultiplayerOnly }},
	{Both, "Ambos", "#3B82F6", 67, 12, func(c ModeCounts) int { return c.Both }},
	{Unclassified, "Sin clasificar", "#F59E0B", 65, 25, func(c ModeCounts) int { return c.Unclassified }},
}

// ExampleModeCounts is the distribution substituted for an all-zero batch.
func ExampleModeCounts() ModeCounts {
	return ModeCounts{SingleplayerOnly: 45, MultiplayerOnly: 23, Both: 67, Unclassified: 65}
}

// ModeOptions controls how counts become chart entries.
type ModeOptions struct {
	Policy DegeneratePolicy
	// MinimumVisibleBar floors each non-empty displayed bar (15/8/12/25) so
	// small buckets stay visible. Counts are never altered.
	MinimumVisibleBar bool
}

// SummarizeModes turns exact counts into the displayed mode chart.
// Zero-count buckets are dropped. When every bucket is zero the policy
// decides between example data and an empty chart.
func SummarizeModes(counts ModeCounts, opts ModeOptions) ModeSummary {
	if opts.Policy == "" {
		opts.Policy = SubstituteExample
	}
	summary := ModeSummary{
		Counts:   counts,
		Analyzed: counts.Total(),
		Entries:  []ModeEntry{},
		Policy:   string(opts.Policy),
	}

	display := counts
	if counts.Total() == 0 {
		if opts.Policy == ShowEmpty {
			return summary
		}
		display = ExampleModeCounts()
		summary.Substituted = true
	}

	for _, b := range modeBuckets {
		n := b.countsOf(display)
		if n == 0 {
			continue
		}
		if opts.MinimumVisibleBar && n < b.minimum {
			n = b.minimum
		}
		summary.Entries = append(summary.Entries, ModeEntry{
			Label:   b.label,
			Display: b.display,
			Count:   n,
			Color:   b.color,
		})
	}
	return summary
}
