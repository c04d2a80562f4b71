package registrations

import (
	"time"

	"github.com/ysrc26/footbal-squad-manager/internal/models"
)

// Eligibility is the outcome of the registration gating predicate.
type Eligibility struct {
	Allowed bool
	Reason  string
}

// CheckEligibility decides whether a user may register for a game at time
// now. Precedence: wave 2 timestamp opens the game for everyone; wave 1
// timestamp opens it for residents; otherwise the legacy status field
// decides. Each gate only grants, so a non-resident at wave 1 still passes
// if the legacy status says open_for_all.
func CheckEligibility(g models.Game, isResident bool, now time.Time) Eligibility {
	if g.Wave2OpensAt != nil && !now.Before(*g.Wave2OpensAt) {
		return Eligibility{Allowed: true}
	}

	residentsOnly := false
	if g.Wave1OpensAt != nil && !now.Before(*g.Wave1OpensAt) {
		if isResident {
			return Eligibility{Allowed: true}
		}
		residentsOnly = true
	}

	switch g.Status {
	case models.GameOpenForAll:
		return Eligibility{Allowed: true}
	case models.GameOpenForResidents:
		if isResident {
			return Eligibility{Allowed: true}
		}
		residentsOnly = true
	}

	if residentsOnly {
		return Eligibility{Reason: "registration is open to residents only"}
	}
	return Eligibility{Reason: "registration is not open"}
}
