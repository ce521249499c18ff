package service

import (
	"context"
	"sort"
	"time"

	"github.com/Tomlord1122/taskhub/internal/domain"
	"github.com/Tomlord1122/taskhub/internal/repository"
)

type fakeProject struct {
	project domain.Project
	members map[uint]bool
}

// fakeProjectRepo is an in-memory ProjectRepository. WithinTransaction
// restores the previous state when fn fails.
type fakeProjectRepo struct {
	users    map[uint]bool
	projects map[uint]*fakeProject
	nextID   uint

	inserts int
	deletes int
	failAdd error
}

func newFakeProjectRepo(userIDs ...uint) *fakeProjectRepo {
	r := &fakeProjectRepo{users: map[uint]bool{}, projects: map[uint]*fakeProject{}}
	for _, id := range userIDs {
		r.users[id] = true
	}
	return r
}

func (r *fakeProjectRepo) addProject(id uint, maxMembers uint, members ...uint) {
	p := &fakeProject{project: domain.Project{ID: id, Name: "p", MaxMembers: maxMembers}, members: map[uint]bool{}}
	for _, m := range members {
		p.members[m] = true
	}
	r.projects[id] = p
}

func (r *fakeProjectRepo) membershipCount(userID uint) int {
	n := 0
	for _, p := range r.projects {
		if p.members[userID] {
			n++
		}
	}
	return n
}

func (r *fakeProjectRepo) visible(p *fakeProject, scope repository.ProjectScope) bool {
	return scope.Unrestricted || p.members[scope.UserID]
}

func (r *fakeProjectRepo) Create(_ context.Context, project *domain.Project) error {
	r.nextID++
	project.ID = 100 + r.nextID
	r.projects[project.ID] = &fakeProject{project: *project, members: map[uint]bool{}}
	return nil
}

func (r *fakeProjectRepo) List(_ context.Context, scope repository.ProjectScope) ([]domain.ProjectSummary, error) {
	var out []domain.ProjectSummary
	for _, p := range r.projects {
		if !r.visible(p, scope) {
			continue
		}
		out = append(out, domain.ProjectSummary{
			ID:                  p.project.ID,
			Name:                p.project.Name,
			Status:              p.project.Status,
			MaxMembers:          p.project.MaxMembers,
			ExistingMemberCount: len(p.members),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeProjectRepo) Snapshot(_ context.Context, projectID uint, scope repository.ProjectScope) (domain.ProjectSnapshot, error) {
	p, ok := r.projects[projectID]
	if !ok || !r.visible(p, scope) {
		return domain.ProjectSnapshot{}, domain.ErrNotFound
	}
	members := make([]uint, 0, len(p.members))
	for id := range p.members {
		members = append(members, id)
	}
	return domain.NewProjectSnapshot(projectID, int(p.project.MaxMembers), len(members), members), nil
}

func (r *fakeProjectRepo) ProjectCounts(_ context.Context, userIDs []uint) (map[uint]int, error) {
	counts := map[uint]int{}
	for _, id := range userIDs {
		if r.users[id] {
			counts[id] = r.membershipCount(id)
		}
	}
	return counts, nil
}

func (r *fakeProjectRepo) AddMembers(_ context.Context, projectID uint, userIDs []uint) error {
	if r.failAdd != nil {
		return r.failAdd
	}
	r.inserts++
	for _, id := range userIDs {
		if r.projects[projectID].members[id] {
			return domain.ErrConflict
		}
		r.projects[projectID].members[id] = true
	}
	return nil
}

func (r *fakeProjectRepo) RemoveMembers(_ context.Context, projectID uint, userIDs []uint) (int64, error) {
	r.deletes++
	var n int64
	for _, id := range userIDs {
		if r.projects[projectID].members[id] {
			delete(r.projects[projectID].members, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeProjectRepo) WithinTransaction(_ context.Context, fn func(repository.ProjectRepository) error) error {
	saved := map[uint]map[uint]bool{}
	for id, p := range r.projects {
		members := map[uint]bool{}
		for m := range p.members {
			members[m] = true
		}
		saved[id] = members
	}
	if err := fn(r); err != nil {
		for id, members := range saved {
			r.projects[id].members = members
		}
		return err
	}
	return nil
}

type fakeUserRepo struct {
	byID       map[uint]*domain.User
	nextID     uint
	lastLogins map[uint]time.Time
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[uint]*domain.User{}, lastLogins: map[uint]time.Time{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	for _, u := range r.byID {
		if u.Email == user.Email {
			return domain.ErrConflict
		}
	}
	r.nextID++
	user.ID = r.nextID
	user.DateJoined = time.Now()
	stored := *user
	r.byID[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uint) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Email == domain.NormalizeEmail(email) {
			out := *u
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, id uint, at time.Time) error {
	r.lastLogins[id] = at
	return nil
}

type fakeTodoRepo struct {
	todos  map[uint]*domain.Todo
	nextID uint
}

func newFakeTodoRepo() *fakeTodoRepo {
	return &fakeTodoRepo{todos: map[uint]*domain.Todo{}}
}

func (r *fakeTodoRepo) Create(_ context.Context, todo *domain.Todo) error {
	r.nextID++
	todo.ID = r.nextID
	todo.DateCreated = time.Now()
	stored := *todo
	r.todos[todo.ID] = &stored
	return nil
}

func (r *fakeTodoRepo) FindByID(_ context.Context, ownerID, id uint) (*domain.Todo, error) {
	t, ok := r.todos[id]
	if !ok || t.UserID != ownerID {
		return nil, domain.ErrNotFound
	}
	out := *t
	return &out, nil
}

func (r *fakeTodoRepo) List(_ context.Context, ownerID uint, offset, limit int) ([]domain.Todo, int64, error) {
	var all []domain.Todo
	for _, t := range r.todos {
		if t.UserID == ownerID {
			all = append(all, *t)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *fakeTodoRepo) Update(_ context.Context, todo *domain.Todo) error {
	stored := *todo
	r.todos[todo.ID] = &stored
	return nil
}

func (r *fakeTodoRepo) Delete(_ context.Context, ownerID, id uint) error {
	t, ok := r.todos[id]
	if !ok || t.UserID != ownerID {
		return domain.ErrNotFound
	}
	delete(r.todos, id)
	return nil
}
