// Package terms classifies free-text game tags and translates catalog
// vocabulary from English to Spanish.
package terms

import "strings"

var (
	singleIndicators = []string{"singleplayer", "single-player", "story", "campaign", "adventure"}
	multiIndicators  = []string{"multiplayer", "multi-player", "online", "co-op", "cooperative", "pvp", "mmo", "competitive"}
)

// Flags reports which play modes a tag list indicates.
type Flags struct {
	HasSingle bool `json:"has_single"`
	HasMulti  bool `json:"has_multi"`
}

// Classify inspects tags for single and multiplayer indicators.
// Matching is a case-insensitive substring test, so "Story Rich" and
// "Online PvP" both count. A nil or empty list yields the zero Flags.
func Classify(tags []string) Flags {
	var f Flags
	for _, tag := range tags {
		lower := strings.ToLower(tag)
		if !f.HasSingle && containsAny(lower, singleIndicators) {
			f.HasSingle = true
		}
		if !f.HasMulti && containsAny(lower, multiIndicators) {
			f.HasMulti = true
		}
		if f.HasSingle && f.HasMulti {
			break
		}
	}
	return f
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
