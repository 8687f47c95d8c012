package engine

import (
	"strconv"
	"time"
)

// Active reports whether a restriction timer is still running. A nil timer
// means the player is not restricted.
func Active(until *time.Time, now time.Time) bool {
	return until != nil && now.Before(*until)
}

// Remaining returns how long a timer still runs, or zero.
func Remaining(until *time.Time, now time.Time) time.Duration {
	if !Active(until, now) {
		return 0
	}
	return until.Sub(now)
}

// CooldownActive checks a per-(player, action) expiry read from storage.
func CooldownActive(expiry *time.Time, now time.Time) (bool, time.Duration) {
	if !Active(expiry, now) {
		return false, 0
	}
	return true, expiry.Sub(now)
}

// CrimeActionID is the cooldown key of a crime.
func CrimeActionID(crimeID int) string {
	return "crime:" + strconv.Itoa(crimeID)
}
