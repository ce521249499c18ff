package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Tomlord1122/taskhub/internal/domain"
	"github.com/Tomlord1122/taskhub/internal/membership"
)

const requesterID = 1

var member = Requester{UserID: requesterID}

func TestAddMembersRejectsUsersInTwoProjects(t *testing.T) {
	repo := newFakeProjectRepo(requesterID, 5, 6, 7)
	repo.addProject(10, 2)
	repo.addProject(11, 5, 5)
	repo.addProject(12, 5, 5)
	svc := NewProjectService(repo, zap.NewNop())

	// Staff see every project, so the requester need not be a member of 10.
	resp, err := svc.AddMembers(context.Background(), Requester{UserID: requesterID, Staff: true}, 10,
		MembersRequest{UserIDs: []int64{5, 6, 7}})
	require.NoError(t, err)

	assert.Equal(t, map[uint]string{
		5: membership.MsgProjectLimitReached,
		6: membership.MsgMemberAdded,
		7: membership.MsgMemberAdded,
	}, resp.Logs)
	assert.Equal(t, map[uint]bool{6: true, 7: true}, repo.projects[10].members)
	assert.Equal(t, 1, repo.inserts)
}

func TestAddMembersCapacityIsAllOrNothing(t *testing.T) {
	repo := newFakeProjectRepo(requesterID, 8, 9)
	repo.addProject(10, 2, requesterID)
	svc := NewProjectService(repo, zap.NewNop())

	resp, err := svc.AddMembers(context.Background(), member, 10, MembersRequest{UserIDs: []int64{8, 9}})
	require.NoError(t, err)

	msg := "Max limit reached for project members. 1 members can be added."
	assert.Equal(t, map[uint]string{8: msg, 9: msg}, resp.Logs)
	assert.Len(t, repo.projects[10].members, 1)
	assert.Zero(t, repo.inserts)
}

func TestAddMembersDeduplicates(t *testing.T) {
	repo := newFakeProjectRepo(requesterID, 3)
	repo.addProject(10, 3, requesterID)
	svc := NewProjectService(repo, zap.NewNop())

	resp, err := svc.AddMembers(context.Background(), member, 10, MembersRequest{UserIDs: []int64{3, 3, 3}})
	require.NoError(t, err)

	assert.Equal(t, map[uint]string{3: membership.MsgMemberAdded}, resp.Logs)
	assert.Len(t, repo.projects[10].members, 2)
}

func TestAddMembersIsIdempotentForMembers(t *testing.T) {
	repo := newFakeProjectRepo(requesterID, 3)
	repo.addProject(10, 3, requesterID)
	svc := NewProjectService(repo, zap.NewNop())
	ctx := context.Background()

	_, err := svc.AddMembers(ctx, member, 10, MembersRequest{UserIDs: []int64{3}})
	require.NoError(t, err)
	resp, err := svc.AddMembers(ctx, member, 10, MembersRequest{UserIDs: []int64{3, requesterID}})
	require.NoError(t, err)

	assert.Equal(t, map[uint]string{
		3:           membership.MsgAlreadyMember,
		requesterID: membership.MsgAlreadyMember,
	}, resp.Logs)
	assert.Len(t, repo.projects[10].members, 2)
	assert.Equal(t, 1, repo.inserts)
}

func TestAddMembersInvalidIDs(t *testing.T) {
	repo := newFakeProjectRepo(requesterID, 3)
	repo.addProject(10, 3, requesterID)
	svc := NewProjectService(repo, zap.NewNop())

	_, err := svc.AddMembers(context.Background(), member, 10, MembersRequest{UserIDs: []int64{3, 999}})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{membership.MsgInvalidIDs}, verr.Fields["user_ids"])
	assert.Equal(t, []string{"999"}, verr.Fields["invalid_ids"])
	assert.Len(t, repo.projects[10].members, 1)
}

func TestAddMembersBatchSize(t *testing.T) {
	repo := newFakeProjectRepo(requesterID, 3)
	repo.addProject(10, 3, requesterID)
	svc := NewProjectService(repo, zap.NewNop())

	tests := []struct {
		name    string
		ids     []int64
		wantErr string
	}{
		{name: "missing", ids: nil, wantErr: "This field is required."},
		{name: "empty", ids: []int64{}, wantErr: "Ensure this field has at least 1 elements."},
		{name: "eleven", ids: []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}, wantErr: "Ensure this field has no more than 10 elements."},
		{name: "ten duplicates are one user", ids: []int64{3, 3, 3, 3, 3, 3, 3, 3, 3, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.AddMembers(context.Background(), member, 10, MembersRequest{UserIDs: tt.ids})
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, map[uint]string{3: membership.MsgMemberAdded}, resp.Logs)
				return
			}
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, []string{tt.wantErr}, verr.Fields["user_ids"])
		})
	}
	assert.Len(t, repo.projects[10].members, 2)
}

func TestAddMembersRejectsNonPositiveIDs(t *testing.T) {
	repo := newFakeProjectRepo(requesterID, 3)
	repo.addProject(10, 3, requesterID)
	svc := NewProjectService(repo, zap.NewNop())

	_, err := svc.AddMembers(context.Background(), member, 10, MembersRequest{UserIDs: []int64{3, -1, 0}})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{membership.MsgInvalidIDs}, verr.Fields["user_ids"])
	assert.Equal(t, []string{"-1", "0"}, verr.Fields["invalid_ids"])
	assert.Len(t, repo.projects[10].members, 1)
}

func TestMembershipRequiresVisibleProject(t *testing.T) {
	repo := newFakeProjectRepo(requesterID, 3)
	repo.addProject(10, 3, 3)
	svc := NewProjectService(repo, zap.NewNop())

	_, err := svc.AddMembers(context.Background(), member, 10, MembersRequest{UserIDs: []int64{3}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.RemoveMembers(context.Background(), member, 10, MembersRequest{UserIDs: []int64{3}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetProject(context.Background(), member, 10)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddMembersStoreFailureRollsBack(t *testing.T) {
	repo := newFakeProjectRepo(requesterID, 3)
	repo.addProject(10, 3, requesterID)
	repo.failAdd = errors.New("connection reset")
	svc := NewProjectService(repo, zap.NewNop())

	_, err := svc.AddMembers(context.Background(), member, 10, MembersRequest{UserIDs: []int64{3}})
	assert.ErrorContains(t, err, "connection reset")
	assert.Len(t, repo.projects[10].members, 1)
}

func TestRemoveMembers(t *testing.T) {
	repo := newFakeProjectRepo(requesterID, 2, 3)
	repo.addProject(10, 3, requesterID, 2)
	svc := NewProjectService(repo, zap.NewNop())

	resp, err := svc.RemoveMembers(context.Background(), member, 10, MembersRequest{UserIDs: []int64{2, 3, 2}})
	require.NoError(t, err)

	assert.Equal(t, map[uint]string{
		2: membership.MsgMemberRemoved,
		3: membership.MsgNotMember,
	}, resp.Logs)
	assert.Equal(t, map[uint]bool{requesterID: true}, repo.projects[10].members)
	assert.Equal(t, 1, repo.deletes)
}

func TestRemoveOnlyNonMembersSkipsDelete(t *testing.T) {
	repo := newFakeProjectRepo(requesterID, 3)
	repo.addProject(10, 3, requesterID)
	svc := NewProjectService(repo, zap.NewNop())

	resp, err := svc.RemoveMembers(context.Background(), member, 10, MembersRequest{UserIDs: []int64{3}})
	require.NoError(t, err)
	assert.Equal(t, membership.MsgNotMember, resp.Logs[3])
	assert.Zero(t, repo.deletes)
}

func TestCreateAndListProjects(t *testing.T) {
	repo := newFakeProjectRepo(requesterID)
	svc := NewProjectService(repo, zap.NewNop())
	ctx := context.Background()

	_, err := svc.CreateProject(ctx, member, CreateProjectRequest{Name: "x", MaxMembers: 2})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	staff := Requester{UserID: requesterID, Staff: true}
	_, err = svc.CreateProject(ctx, staff, CreateProjectRequest{Name: "x", MaxMembers: 0})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "max_members")

	created, err := svc.CreateProject(ctx, staff, CreateProjectRequest{Name: "Apollo", MaxMembers: 2, Status: 1})
	require.NoError(t, err)
	assert.Equal(t, "In progress", created.StatusDisplay)

	mine, err := svc.ListProjects(ctx, member)
	require.NoError(t, err)
	assert.Empty(t, mine)

	all, err := svc.ListProjects(ctx, staff)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Apollo", all[0].Name)
}

func TestGetProjectSnapshot(t *testing.T) {
	repo := newFakeProjectRepo(requesterID, 4)
	repo.addProject(10, 3, 4, requesterID)
	svc := NewProjectService(repo, zap.NewNop())

	snap, err := svc.GetProject(context.Background(), member, 10)
	require.NoError(t, err)
	assert.Equal(t, &ProjectSnapshotResponse{ID: 10, MaxMembers: 3, ExistingMembers: 2, Users: []uint{1, 4}}, snap)
}
