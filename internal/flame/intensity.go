package flame

// EventHours is the fixed duration assumed per completed event when turning
// completion counts into "hours today". Display heuristic only.
const EventHours = 1.0

// intensitySteps are the visual fill percentages. A category with any
// activity starts at 40 and climbs one step per threshold reached.
var intensitySteps = [...]int{40, 50, 60, 70, 80, 100}

// categoryThresholds maps a category id to the hours required for each step
// beyond the base. Categories without an entry use defaultThresholds.
var categoryThresholds = map[string][5]float64{
	"fitness": {0.5, 1, 1.5, 2, 3},
	"work":    {2, 3, 4, 6, 8},
	"mind":    {0.5, 1, 1.5, 2, 2.5},
}

var defaultThresholds = [5]float64{1, 2, 3, 4, 6}

// IntensityPercent maps cumulative hours of activity today to a display
// percentage for the given category.
func IntensityPercent(categoryID string, hoursToday float64) int {
	if hoursToday <= 0 {
		return 0
	}

	thresholds, ok := categoryThresholds[categoryID]
	if !ok {
		thresholds = defaultThresholds
	}

	percent := intensitySteps[0]
	for i, th := range thresholds {
		if hoursToday >= th {
			percent = intensitySteps[i+1]
		}
	}
	return percent
}

// HoursToday converts a completed-event count into assumed hours.
func HoursToday(completedCount int) float64 {
	if completedCount < 0 {
		return 0
	}
	return float64(completedCount) * EventHours
}
