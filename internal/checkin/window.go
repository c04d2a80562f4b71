package checkin

import (
	"time"

	"github.com/ysrc26/footbal-squad-manager/internal/models"
)

// WindowOpen reports whether check-in is open for the game at time now.
// The window opens leadMinutes before kickoff. For auto-generated games
// it closes at midnight after the game date in loc; manually created
// games stay open until the game is deleted.
func WindowOpen(g models.Game, now time.Time, leadMinutes int, loc *time.Location) (bool, string) {
	opens := g.KickoffTime.Add(-time.Duration(leadMinutes) * time.Minute)
	if now.Before(opens) {
		return false, "check-in has not opened yet"
	}

	if g.IsAutoGenerated {
		y, m, d := g.Date.Date()
		midnight := time.Date(y, m, d+1, 0, 0, 0, 0, loc)
		if now.After(midnight) {
			return false, "check-in window has closed"
		}
	}

	return true, ""
}
