package survey

// Band is one of the four fixed recommendation bands selected by the final
// score. Boundary values belong to the lower band.
type Band string

const (
	BandLow        Band = "low"
	BandModerate   Band = "moderate"
	BandFairlyHigh Band = "fairly-high"
	BandHigh       Band = "high"
)

var advice = map[Band]string{
	BandLow: "You appear to be less open to new information or viewpoints. " +
		"Try practicing active listening, asking clarifying questions, " +
		"and seeking out mentors who challenge your thinking.",
	BandModerate: "You show moderate openness. Consider journaling about situations " +
		"where you might have been overly attached to beliefs. Seek more " +
		"critical feedback and learn to embrace 'I don't know.'",
	BandFairlyHigh: "You're fairly intellectually humble. Keep fostering environments " +
		"where people feel comfortable challenging your ideas. Stay curious " +
		"and open to new ideas.",
	BandHigh: "You demonstrate high intellectual humility. To maintain this level, " +
		"continue challenging yourself with new perspectives, welcoming feedback, " +
		"and guiding others to remain open-minded.",
}

// Recommend selects the band containing the given final score.
func Recommend(score float64) Band {
	switch {
	case score <= 3:
		return BandLow
	case score <= 6:
		return BandModerate
	case score <= 8:
		return BandFairlyHigh
	default:
		return BandHigh
	}
}

// Advice returns the canned recommendation text for the band.
func (b Band) Advice() string {
	return advice[b]
}
