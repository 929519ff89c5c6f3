package survey

import (
	"errors"
	"math"
)

// ErrNoRatings is returned when aggregation is asked to score an empty
// rating sequence. The question count is fixed at configuration time, so
// this is a contract violation rather than a user condition.
var ErrNoRatings = errors.New("rating sequence is empty")

// ErrRatingCountMismatch is returned when the rating sequence does not line
// up with the configured question set.
var ErrRatingCountMismatch = errors.New("rating count does not match question count")

// ReverseScore maps a raw rating to its reverse-scored value on the 1-5
// scale (1<->5, 2<->4, 3 fixed). Out-of-range values are clamped first.
func ReverseScore(raw int) int {
	return (PointsPerQuestion + 1) - clampRating(raw)
}

func clampRating(r int) int {
	if r < 1 {
		return 1
	}
	if r > PointsPerQuestion {
		return PointsPerQuestion
	}
	return r
}

// Aggregate converts an ordered rating sequence into the final 1-10 score.
// Ratings at reverse-scored ordinals are inverted, everything is summed and
// the total is normalized against the configured divisor, rounded to one
// decimal place.
func (c *Config) Aggregate(ratings []int) (float64, error) {
	if len(ratings) == 0 {
		return 0, ErrNoRatings
	}

	if len(ratings) != c.Len() {
		return 0, ErrRatingCountMismatch
	}

	total := 0
	for i, r := range ratings {
		r = clampRating(r)
		if c.IsReverseScored(i) {
			r = ReverseScore(r)
		}
		total += r
	}

	score := float64(total) / float64(c.NormalizationDivisor) * 10

	return math.Round(score*10) / 10, nil
}
