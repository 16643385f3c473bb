package workflow

import (
	"bitbucket.org/mmdatafocus/dra_backend/models"
)

// draTransitions is the folder lifecycle. Reimbursed is reachable from
// Accepted only, and only the reimbursement coordinator takes that edge; the
// direct transition endpoint rejects it.
var draTransitions = map[models.DraState][]models.DraState{
	models.DraStateActive:   {models.DraStateClosed, models.DraStateRefused, models.DraStateAccepted},
	models.DraStateRefused:  {models.DraStateClosed},
	models.DraStateAccepted: {models.DraStateReimbursed},
}

func CanTransitionDra(from models.DraState, to models.DraState) bool {
	for _, allowed := range draTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
