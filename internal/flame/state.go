package flame

import "time"

// StateAt classifies a category given its last activity timestamp. A nil
// lastActive is off. Activity on or after the local start of today is
// active. Otherwise the category stays in grace until the start of today
// plus (24 + graceHours) hours has passed, and is cold after that.
// Callers pass now already shifted into the user's timezone.
func StateAt(lastActive *time.Time, graceHours int, now time.Time) State {
	if lastActive == nil {
		return StateOff
	}

	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if !lastActive.Before(startOfToday) {
		return StateActive
	}

	endOfGrace := startOfToday.Add(time.Duration(24+graceHours) * time.Hour)
	if !now.After(endOfGrace) {
		return StateGrace
	}
	return StateCold
}
