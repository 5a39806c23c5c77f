package difficulty

// Score thresholds, in percent.
const (
	ExpertThreshold  = 90.0
	HardThreshold    = 75.0
	MediumThreshold  = 50.0
	PromoteThreshold = 90.0
	DemoteThreshold  = 50.0

	// HistoryWindow is how many recent scores Initial averages.
	HistoryWindow = 5
)

// Initial picks the starting level for a new quiz from a student's prior
// scores on the course, most recent first. An empty history yields Medium.
func Initial(history []float64) Level {
	if len(history) == 0 {
		return Medium
	}
	if len(history) > HistoryWindow {
		history = history[:HistoryWindow]
	}

	var sum float64
	for _, s := range history {
		sum += s
	}
	avg := sum / float64(len(history))

	switch {
	case avg >= ExpertThreshold:
		return Expert
	case avg >= HardThreshold:
		return Hard
	case avg >= MediumThreshold:
		return Medium
	default:
		return Easy
	}
}

// Next returns the level to use after scoring scorePercent at current.
// Scores of 90 and above move up one level, scores below 50 move down one
// level, and everything in between keeps the current level.
func Next(current Level, scorePercent float64) Level {
	switch {
	case scorePercent >= PromoteThreshold:
		return current.Up()
	case scorePercent < DemoteThreshold:
		return current.Down()
	default:
		return current
	}
}
