package membership

import "github.com/Tomlord1122/taskhub/internal/domain"

// PlanAdd classifies every resolved user independently, then applies the
// capacity check to the tentatively accepted users as one group. If the group
// does not fit, nobody in it is added.
func PlanAdd(project domain.ProjectSnapshot, batch Resolved) Plan {
	outcomes := make([]Outcome, 0, len(batch.IDs))
	var tentative []uint

	for _, id := range batch.IDs {
		switch {
		case project.HasMember(id):
			outcomes = append(outcomes, Outcome{UserID: id, Kind: AlreadyMember})
		case batch.ProjectCounts[id] >= MaxProjectsPerUser:
			outcomes = append(outcomes, Outcome{UserID: id, Kind: ProjectLimitReached})
		default:
			tentative = append(tentative, id)
		}
	}

	if project.ExistingMembers+len(tentative) > project.MaxMembers {
		remaining := project.RemainingCapacity()
		for _, id := range tentative {
			outcomes = append(outcomes, Outcome{UserID: id, Kind: CapacityExceeded, Remaining: remaining})
		}
		return Plan{Outcomes: outcomes}
	}

	for _, id := range tentative {
		outcomes = append(outcomes, Outcome{UserID: id, Kind: Added})
	}
	return Plan{Outcomes: outcomes, Apply: tentative}
}

// PlanRemove schedules deletion for every resolved user who is currently a member.
func PlanRemove(project domain.ProjectSnapshot, batch Resolved) Plan {
	outcomes := make([]Outcome, 0, len(batch.IDs))
	var remove []uint

	for _, id := range batch.IDs {
		if project.HasMember(id) {
			outcomes = append(outcomes, Outcome{UserID: id, Kind: Removed})
			remove = append(remove, id)
			continue
		}
		outcomes = append(outcomes, Outcome{UserID: id, Kind: NotMember})
	}
	return Plan{Outcomes: outcomes, Apply: remove}
}
