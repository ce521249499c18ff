package membership

import "fmt"

// Kind tags the result for one user id in a batch.
type Kind int

const (
	AlreadyMember Kind = iota
	ProjectLimitReached
	CapacityExceeded
	Added
	Removed
	NotMember
)

// Outcome is what happened to one user id.
type Outcome struct {
	UserID uint
	Kind   Kind
	// Remaining is the project's free capacity, set for CapacityExceeded.
	Remaining int
}

// Message returns the text reported to the caller for this outcome.
func (o Outcome) Message() string {
	switch o.Kind {
	case AlreadyMember:
		return MsgAlreadyMember
	case ProjectLimitReached:
		return MsgProjectLimitReached
	case CapacityExceeded:
		return fmt.Sprintf(msgCapacityFormat, o.Remaining)
	case Added:
		return MsgMemberAdded
	case Removed:
		return MsgMemberRemoved
	case NotMember:
		return MsgNotMember
	default:
		return ""
	}
}

// Plan is the decision for a whole batch. Apply lists the user ids whose
// memberships must be inserted (add) or deleted (remove).
type Plan struct {
	Outcomes []Outcome
	Apply    []uint
}

// Logs maps each user id to its outcome message.
func (p Plan) Logs() map[uint]string {
	logs := make(map[uint]string, len(p.Outcomes))
	for _, o := range p.Outcomes {
		logs[o.UserID] = o.Message()
	}
	return logs
}
