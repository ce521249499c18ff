// Package membership decides what an add-members or remove-members call does
// to a project. It performs no I/O: callers hand it the project snapshot and
// the per-user project counts, then persist the returned plan.
package membership

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"

	"github.com/Tomlord1122/taskhub/internal/domain"
)

// MaxProjectsPerUser is the number of projects a user may belong to at once.
const MaxProjectsPerUser = 2

const (
	MsgAlreadyMember       = "User is already a member"
	MsgProjectLimitReached = "Cannot add as user is already a member in two projects"
	MsgInvalidIDs          = "Invalid ids present"
	MsgNotMember           = "User is not a member of the project"
	MsgMemberAdded         = "Member added successfully"
	MsgMemberRemoved       = "Member removed successfully"
	msgCapacityFormat      = "Max limit reached for project members. %d members can be added."
)

// UserIDsField is the request field carrying the batch.
const UserIDsField = "user_ids"

// Dedup collapses repeated ids and returns them in ascending order.
func Dedup[T cmp.Ordered](ids []T) []T {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

// Candidates returns the ids in requested that can name a user at all. Only
// these need a lookup; the rest are invalid without one.
func Candidates(requested []int64) []uint {
	out := make([]uint, 0, len(requested))
	for _, id := range requested {
		if id > 0 {
			out = append(out, uint(id))
		}
	}
	return out
}

// InvalidIDsError names requested ids that match no user.
type InvalidIDsError struct {
	IDs []int64
}

func (e *InvalidIDsError) Error() string {
	return fmt.Sprintf("%s: %v", MsgInvalidIDs, e.IDs)
}

// ValidationError renders the failure as a field error on user_ids, with the
// offending ids listed under invalid_ids.
func (e *InvalidIDsError) ValidationError() *domain.ValidationError {
	verr := domain.NewValidationError(UserIDsField, MsgInvalidIDs)
	for _, id := range e.IDs {
		verr.Add("invalid_ids", strconv.FormatInt(id, 10))
	}
	return verr
}

// Resolved is a batch whose every id matched a user.
type Resolved struct {
	IDs []uint
	// ProjectCounts holds each user's total number of project memberships.
	ProjectCounts map[uint]int
}

// Resolve checks a deduplicated batch against the users found in the store.
// counts must hold an entry, possibly zero, for every existing user among
// requested. Any id without an entry, including any id below 1, fails the
// whole batch.
func Resolve(requested []int64, counts map[uint]int) (Resolved, error) {
	var invalid []int64
	for _, id := range requested {
		if id < 1 {
			invalid = append(invalid, id)
			continue
		}
		if _, ok := counts[uint(id)]; !ok {
			invalid = append(invalid, id)
		}
	}
	if len(invalid) > 0 {
		return Resolved{}, &InvalidIDsError{IDs: invalid}
	}

	resolved := Resolved{
		IDs:           make([]uint, 0, len(requested)),
		ProjectCounts: make(map[uint]int, len(requested)),
	}
	for _, id := range requested {
		resolved.IDs = append(resolved.IDs, uint(id))
		resolved.ProjectCounts[uint(id)] = counts[uint(id)]
	}
	return resolved, nil
}
