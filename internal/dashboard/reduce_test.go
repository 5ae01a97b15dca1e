package dashboard

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamedash/gamedash-server/internal/catalog"
)

func itemsWithPlatforms(platforms ...[]string) []catalog.Item {
	items := make([]catalog.Item, len(platforms))
	for i, p := range platforms {
		items[i] = catalog.Item{ID: i + 1, Platforms: p}
	}
	return items
}

func rating(v float64) *float64 { return &v }

func TestCountPlatforms_Scenario(t *testing.T) {
	items := itemsWithPlatforms([]string{"PS4", "PC"}, []string{"PC"})

	got := CountPlatforms(items, TopPlatforms)
	assert.Equal(t, []PlatformSummary{{Name: "PC", Count: 2}, {Name: "PS4", Count: 1}}, got)
}

func TestCountPlatforms_TiesKeepFirstSeenOrder(t *testing.T) {
	items := itemsWithPlatforms(
		[]string{"Xbox One"},
		[]string{"Nintendo Switch", "PC"},
		[]string{"PC", "Xbox One"},
		[]string{"Nintendo Switch"},
		[]string{"iOS"},
	)

	got := CountPlatforms(items, TopPlatforms)
	assert.Equal(t, []PlatformSummary{
		{Name: "Xbox One", Count: 2},
		{Name: "Nintendo Switch", Count: 2},
		{Name: "PC", Count: 2},
		{Name: "iOS", Count: 1},
	}, got)
}

func TestCountPlatforms_TruncatesAndSorts(t *testing.T) {
	var rows [][]string
	for i := range 12 {
		// Platform i appears i+1 times.
		for range i + 1 {
			rows = append(rows, []string{fmt.Sprintf("P%02d", i)})
		}
	}
	items := itemsWithPlatforms(rows...)

	got := CountPlatforms(items, TopPlatforms)
	require.Len(t, got, 8)
	assert.Equal(t, "P11", got[0].Name)
	assert.Equal(t, 12, got[0].Count)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Count, got[i].Count)
	}
}

func TestCountPlatforms_SumCoversItems(t *testing.T) {
	items := itemsWithPlatforms([]string{"PC", "PS5"}, []string{"PC"}, []string{"Xbox Series S/X", "PS5", "PC"})

	sum := 0
	for _, p := range CountPlatforms(items, 100) {
		sum += p.Count
	}
	assert.GreaterOrEqual(t, sum, len(items))
	assert.Equal(t, 6, sum)
}

func TestCountPlatforms_Empty(t *testing.T) {
	got := CountPlatforms(nil, TopPlatforms)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestYearHistogram(t *testing.T) {
	items := []catalog.Item{
		{Released: "2024-05-01"},
		{Released: "2024-11-30"},
		{Released: "2010-01-01"},
		{Released: "2009-12-31"}, // outside the window
		{Released: "2030-01-01"}, // future
		{Released: ""},
		{Released: "TBA"},
		{Released: "2015"},
	}

	got := YearHistogram(items, 2025)
	require.Len(t, got, 16)
	assert.Equal(t, 2010, got[0].Year)
	assert.Equal(t, 2025, got[15].Year)
	for i := 1; i < len(got); i++ {
		assert.Equal(t, got[i-1].Year+1, got[i].Year)
	}

	byYear := map[int]int{}
	total := 0
	for _, e := range got {
		byYear[e.Year] = e.Count
		total += e.Count
	}
	assert.Equal(t, 2, byYear[2024])
	assert.Equal(t, 1, byYear[2010])
	assert.Equal(t, 1, byYear[2015])
	assert.Equal(t, 0, byYear[2025])
	assert.Equal(t, 4, total)
}

func TestYearHistogram_AlwaysSixteenEntries(t *testing.T) {
	for _, year := range []int{1990, 2000, 2026} {
		got := YearHistogram(nil, year)
		require.Len(t, got, 16)
		assert.Equal(t, year-15, got[0].Year)
		for _, e := range got {
			assert.Zero(t, e.Count)
		}
	}
}

func TestRatingDistribution(t *testing.T) {
	items := []catalog.Item{
		{Rating: rating(0.5)},
		{Rating: rating(1.0)},
		{Rating: rating(2.99)},
		{Rating: rating(3.5)},
		{Rating: rating(4.0)},
		{Rating: rating(4.8)},
		{Rating: rating(5.0)},
		{Rating: rating(0)}, // unrated
		{},
	}

	got := RatingDistribution(items)
	assert.Equal(t, []RatingBucket{
		{Range: "0.0-1.0", Count: 1},
		{Range: "1.0-2.0", Count: 1},
		{Range: "2.0-3.0", Count: 1},
		{Range: "3.0-4.0", Count: 1},
		{Range: "4.0-5.0", Count: 3},
	}, got)
}

func TestClassifyModes_Scenario(t *testing.T) {
	items := []catalog.Item{
		{ID: 1, Tags: []string{"Singleplayer", "Story"}},
		{ID: 2, Tags: []string{"Multiplayer", "PvP"}},
		{ID: 3, Tags: []string{}},
	}

	got := ClassifyModes(items)
	assert.Equal(t, ModeCounts{SingleplayerOnly: 1, MultiplayerOnly: 1, Both: 0, Unclassified: 1}, got)
}

func TestClassifyModes_PartitionsBatch(t *testing.T) {
	pool := []string{"Singleplayer", "Online Co-Op", "Puzzle", "Story Rich", "PvP", "Atmospheric", "MMO", "Great Soundtrack"}
	rng := rand.New(rand.NewSource(7))

	for n := range 50 {
		items := make([]catalog.Item, n)
		for i := range items {
			for range rng.Intn(4) {
				items[i].Tags = append(items[i].Tags, pool[rng.Intn(len(pool))])
			}
		}
		c := ClassifyModes(items)
		assert.Equal(t, n, c.Total())
		assert.Equal(t, n, c.SingleplayerOnly+c.MultiplayerOnly+c.Both+c.Unclassified)
	}
}

func TestClassifyModes_Idempotent(t *testing.T) {
	items := []catalog.Item{
		{Tags: []string{"Singleplayer", "Co-op"}},
		{Tags: []string{"Campaign"}},
		{Tags: []string{"Competitive"}},
		{Tags: nil},
	}

	first := ClassifyModes(items)
	second := ClassifyModes(items)
	assert.Equal(t, first, second)
	assert.Equal(t, ModeCounts{SingleplayerOnly: 1, MultiplayerOnly: 1, Both: 1, Unclassified: 1}, first)
}

func TestSummarizeModes_DropsZeroBuckets(t *testing.T) {
	got := SummarizeModes(ModeCounts{SingleplayerOnly: 1, MultiplayerOnly: 1, Unclassified: 1}, ModeOptions{})

	assert.False(t, got.Substituted)
	assert.Equal(t, 3, got.Analyzed)
	assert.Equal(t, string(SubstituteExample), got.Policy)
	require.Len(t, got.Entries, 3)
	assert.Equal(t, SingleplayerOnly, got.Entries[0].Label)
	assert.Equal(t, MultiplayerOnly, got.Entries[1].Label)
	assert.Equal(t, Unclassified, got.Entries[2].Label)
	for _, e := range got.Entries {
		assert.Equal(t, 1, e.Count)
		assert.NotEmpty(t, e.Color)
		assert.NotEmpty(t, e.Display)
	}
}

func TestSummarizeModes_DegeneratePolicies(t *testing.T) {
	t.Run("substitute example", func(t *testing.T) {
		got := SummarizeModes(ModeCounts{}, ModeOptions{Policy: SubstituteExample})

		assert.True(t, got.Substituted)
		assert.Equal(t, 0, got.Analyzed)
		assert.Equal(t, ModeCounts{}, got.Counts)
		require.Len(t, got.Entries, 4)
		counts := []int{got.Entries[0].Count, got.Entries[1].Count, got.Entries[2].Count, got.Entries[3].Count}
		assert.Equal(t, []int{45, 23, 67, 65}, counts)
	})

	t.Run("show empty", func(t *testing.T) {
		got := SummarizeModes(ModeCounts{}, ModeOptions{Policy: ShowEmpty})

		assert.False(t, got.Substituted)
		assert.NotNil(t, got.Entries)
		assert.Empty(t, got.Entries)
	})
}

func TestSummarizeModes_MinimumVisibleBar(t *testing.T) {
	counts := ModeCounts{SingleplayerOnly: 1, MultiplayerOnly: 0, Both: 20, Unclassified: 3}

	got := SummarizeModes(counts, ModeOptions{MinimumVisibleBar: true})
	require.Len(t, got.Entries, 3)
	assert.Equal(t, 15, got.Entries[0].Count)
	assert.Equal(t, Both, got.Entries[1].Label)
	assert.Equal(t, 20, got.Entries[1].Count)
	assert.Equal(t, 25, got.Entries[2].Count)
	assert.Equal(t, counts, got.Counts, "floors only affect display")

	plain := SummarizeModes(counts, ModeOptions{})
	assert.Equal(t, 1, plain.Entries[0].Count)
}
