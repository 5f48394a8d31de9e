package storage

import "strings"

// Rating is the thumbs-up/thumbs-down feedback attached to a saved summary.
type Rating int

const (
	RatingUp   Rating = 1
	RatingDown Rating = -1
)

// Valid reports whether the rating is one of the accepted values.
func (r Rating) Valid() bool {
	return r == RatingUp || r == RatingDown
}

// String returns a human-readable label.
func (r Rating) String() string {
	switch r {
	case RatingUp:
		return "up"
	case RatingDown:
		return "down"
	default:
		return ""
	}
}

// ParseRating converts a CLI-style label ("up", "down", "1", "-1") into a Rating.
func ParseRating(label string) (Rating, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "up", "1", "+1":
		return RatingUp, true
	case "down", "-1":
		return RatingDown, true
	default:
		return 0, false
	}
}

// WorkoutSummary is one saved analysis result. Timestamp is epoch
// milliseconds and uniquely identifies the entry within history.
type WorkoutSummary struct {
	Plan      string `json:"plan,omitempty" yaml:"plan,omitempty"`
	Summary   string `json:"summary" yaml:"summary"`
	Timestamp int64  `json:"timestamp" yaml:"timestamp"`
	Rating    Rating `json:"rating,omitempty" yaml:"rating,omitempty"`
}

// Preferences is the single live user-preferences document.
type Preferences map[string]string
