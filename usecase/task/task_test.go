package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

// --- fakes ---

type mockTaskRepo struct {
	listFn        func(ctx context.Context, query repository.TaskQuery) ([]domain.Task, error)
	createFn      func(ctx context.Context, task *domain.Task) (*domain.Task, error)
	assignFn      func(ctx context.Context, taskID, profileID int64) error
	setCompleteFn func(ctx context.Context, taskID int64, complete bool) error
}

func (m *mockTaskRepo) List(ctx context.Context, query repository.TaskQuery) ([]domain.Task, error) {
	if m.listFn != nil {
		return m.listFn(ctx, query)
	}
	return nil, nil
}

func (m *mockTaskRepo) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if m.createFn != nil {
		return m.createFn(ctx, task)
	}
	return task, nil
}

func (m *mockTaskRepo) Assign(ctx context.Context, taskID, profileID int64) error {
	if m.assignFn != nil {
		return m.assignFn(ctx, taskID, profileID)
	}
	return nil
}

func (m *mockTaskRepo) SetComplete(ctx context.Context, taskID int64, complete bool) error {
	if m.setCompleteFn != nil {
		return m.setCompleteFn(ctx, taskID, complete)
	}
	return nil
}

type mockProfileRepo struct {
	mu          sync.Mutex
	lookups     [][]int64
	listByIDsFn func(ctx context.Context, ids []int64) ([]domain.ProfileRef, error)
	listFn      func(ctx context.Context) ([]domain.Profile, error)
}

func (m *mockProfileRepo) GetByUsername(context.Context, string) (*domain.Profile, error) {
	return nil, domain.ErrProfileNotFound
}

func (m *mockProfileRepo) Insert(context.Context, repository.NewProfile) (*domain.Profile, error) {
	return nil, errors.New("not implemented")
}

func (m *mockProfileRepo) ListByIDs(ctx context.Context, ids []int64) ([]domain.ProfileRef, error) {
	m.mu.Lock()
	m.lookups = append(m.lookups, append([]int64(nil), ids...))
	m.mu.Unlock()
	if m.listByIDsFn != nil {
		return m.listByIDsFn(ctx, ids)
	}
	return nil, nil
}

func (m *mockProfileRepo) List(ctx context.Context) ([]domain.Profile, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockProfileRepo) UpdatePushToken(context.Context, int64, *string) error { return nil }

var _ repository.TaskRepository = (*mockTaskRepo)(nil)
var _ repository.ProfileRepository = (*mockProfileRepo)(nil)

func id(v int64) *int64 { return &v }

// --- tests ---

func TestList_JoinsProfilesPreservingOrder(t *testing.T) {
	tasks := &mockTaskRepo{listFn: func(context.Context, repository.TaskQuery) ([]domain.Task, error) {
		return []domain.Task{
			{ID: 1, AssignToProfileID: id(5)},
			{ID: 2, AssignToProfileID: nil},
		}, nil
	}}
	profiles := &mockProfileRepo{listByIDsFn: func(context.Context, []int64) ([]domain.ProfileRef, error) {
		return []domain.ProfileRef{{ID: 5, Username: "bob"}}, nil
	}}
	uc := New(tasks, profiles, nil, nil)

	out, err := uc.List(context.Background(), domain.FilterAll, nil)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, int64(1), out[0].ID)
	require.NotNil(t, out[0].AssignedProfile)
	assert.Equal(t, domain.ProfileRef{ID: 5, Username: "bob"}, *out[0].AssignedProfile)

	assert.Equal(t, int64(2), out[1].ID)
	assert.Nil(t, out[1].AssignedProfile)
	assert.Equal(t, [][]int64{{5}}, profiles.lookups)
}

func TestList_SingleLookupWithDistinctIDs(t *testing.T) {
	tasks := &mockTaskRepo{listFn: func(context.Context, repository.TaskQuery) ([]domain.Task, error) {
		return []domain.Task{
			{ID: 3, AssignToProfileID: id(2), CreatedByProfileID: id(1)},
			{ID: 2, AssignToProfileID: id(1), CreatedByProfileID: id(2)},
			{ID: 1, AssignToProfileID: id(9), CreatedByProfileID: id(1)},
		}, nil
	}}
	profiles := &mockProfileRepo{}
	uc := New(tasks, profiles, nil, nil)

	_, err := uc.List(context.Background(), domain.FilterAll, nil)
	require.NoError(t, err)
	require.Len(t, profiles.lookups, 1)
	assert.Equal(t, []int64{1, 2, 9}, profiles.lookups[0])
}

func TestList_NoLookupWithoutReferences(t *testing.T) {
	tasks := &mockTaskRepo{listFn: func(context.Context, repository.TaskQuery) ([]domain.Task, error) {
		return []domain.Task{{ID: 1}, {ID: 2}}, nil
	}}
	profiles := &mockProfileRepo{}
	uc := New(tasks, profiles, nil, nil)

	out, err := uc.List(context.Background(), domain.FilterAll, nil)
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Empty(t, profiles.lookups)

	empty := New(&mockTaskRepo{}, profiles, nil, nil)
	out, err = empty.List(context.Background(), domain.FilterAll, nil)
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
	assert.Empty(t, profiles.lookups)
}

func TestList_DanglingReferenceIsNil(t *testing.T) {
	tasks := &mockTaskRepo{listFn: func(context.Context, repository.TaskQuery) ([]domain.Task, error) {
		return []domain.Task{{ID: 1, AssignToProfileID: id(404), CreatedByProfileID: id(1)}}, nil
	}}
	profiles := &mockProfileRepo{listByIDsFn: func(context.Context, []int64) ([]domain.ProfileRef, error) {
		return []domain.ProfileRef{{ID: 1, Username: "jane"}}, nil
	}}
	uc := New(tasks, profiles, nil, nil)

	out, err := uc.List(context.Background(), domain.FilterAll, nil)
	require.NoError(t, err)
	assert.Nil(t, out[0].AssignedProfile)
	require.NotNil(t, out[0].CreatedByProfile)
	assert.Equal(t, "jane", out[0].CreatedByProfile.Username)
}

func TestList_ProfileLookupFailureDegrades(t *testing.T) {
	tasks := &mockTaskRepo{listFn: func(context.Context, repository.TaskQuery) ([]domain.Task, error) {
		return []domain.Task{{ID: 1, AssignToProfileID: id(5)}}, nil
	}}
	profiles := &mockProfileRepo{listByIDsFn: func(context.Context, []int64) ([]domain.ProfileRef, error) {
		return nil, domain.WrapError(domain.ErrCodeTransport, "fetch profiles by id", errors.New("timeout"))
	}}
	rec := &recorder{}
	uc := New(tasks, profiles, rec, nil)

	out, err := uc.List(context.Background(), domain.FilterAll, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Nil(t, out[0].AssignedProfile)
	assert.Equal(t, []string{OutcomeDegraded}, rec.outcomes)
}

func TestList_TaskQueryFailureSurfaces(t *testing.T) {
	boom := domain.WrapError(domain.ErrCodeTransport, "fetch tasks", errors.New("connection refused"))
	tasks := &mockTaskRepo{listFn: func(context.Context, repository.TaskQuery) ([]domain.Task, error) {
		return nil, boom
	}}
	profiles := &mockProfileRepo{}
	uc := New(tasks, profiles, nil, nil)

	_, err := uc.List(context.Background(), domain.FilterAll, nil)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, profiles.lookups)
}

func TestList_FilterPredicates(t *testing.T) {
	var got []repository.TaskQuery
	tasks := &mockTaskRepo{listFn: func(_ context.Context, q repository.TaskQuery) ([]domain.Task, error) {
		got = append(got, q)
		return nil, nil
	}}
	uc := New(tasks, &mockProfileRepo{}, nil, nil)
	ctx := context.Background()

	_, _ = uc.List(ctx, domain.FilterAssigned, id(7))
	_, _ = uc.List(ctx, domain.FilterCreated, id(7))
	_, _ = uc.List(ctx, domain.FilterAll, id(7))
	_, _ = uc.List(ctx, domain.FilterAssigned, nil)
	_, _ = uc.List(ctx, domain.FilterCreated, nil)

	assert.Equal(t, []repository.TaskQuery{
		{AssignToProfileID: 7},
		{CreatedByProfileID: 7},
		{},
		{},
		{},
	}, got)
}

func TestList_AssignedWithoutProfileEqualsAll(t *testing.T) {
	rows := []domain.Task{{ID: 2, CreatedByProfileID: id(1)}, {ID: 1, AssignToProfileID: id(1)}}
	tasks := &mockTaskRepo{listFn: func(_ context.Context, q repository.TaskQuery) ([]domain.Task, error) {
		if q.AssignToProfileID != 0 || q.CreatedByProfileID != 0 {
			return nil, nil
		}
		return rows, nil
	}}
	profiles := &mockProfileRepo{listByIDsFn: func(context.Context, []int64) ([]domain.ProfileRef, error) {
		return []domain.ProfileRef{{ID: 1, Username: "jane"}}, nil
	}}
	uc := New(tasks, profiles, nil, nil)

	all, err := uc.List(context.Background(), domain.FilterAll, nil)
	require.NoError(t, err)
	assigned, err := uc.List(context.Background(), domain.FilterAssigned, nil)
	require.NoError(t, err)
	assert.Equal(t, all, assigned)
}

func TestCreate_Validation(t *testing.T) {
	var stored *domain.Task
	tasks := &mockTaskRepo{createFn: func(_ context.Context, task *domain.Task) (*domain.Task, error) {
		task.ID = 11
		task.CreatedAt = time.Now()
		stored = task
		return task, nil
	}}
	uc := New(tasks, &mockProfileRepo{}, nil, nil)
	ctx := context.Background()

	_, err := uc.Create(ctx, NewTask{Title: "  ", CreatedByProfileID: 1, AssignToProfileID: 2})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = uc.Create(ctx, NewTask{Title: "Ship it", AssignToProfileID: 2})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))

	_, err = uc.Create(ctx, NewTask{Title: "Ship it", CreatedByProfileID: 1})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = uc.Create(ctx, NewTask{Title: "Ship it", CreatedByProfileID: 1, AssignToProfileID: 2, DueDate: "2024-12-31"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	assert.Nil(t, stored)

	created, err := uc.Create(ctx, NewTask{
		Title:              " Ship it ",
		Description:        "  ",
		DueDate:            "12/31/2024",
		CreatedByProfileID: 1,
		AssignToProfileID:  2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), created.ID)
	assert.Equal(t, "Ship it", created.Title)
	assert.Nil(t, created.Description)
	assert.False(t, created.IsComplete)
	require.NotNil(t, created.DueDate)
	assert.Equal(t, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), *created.DueDate)
	assert.Equal(t, int64(2), *created.AssignToProfileID)
	assert.Equal(t, int64(1), *created.CreatedByProfileID)
}

func TestParseDueDate(t *testing.T) {
	valid := map[string]time.Time{
		"01/02/2024":  time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		" 2/29/2024 ": time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		"12/31/9999":  time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	for in, want := range valid {
		got, ok := ParseDueDate(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "2024-01-02", "13/01/2024", "02/30/2024", "02/29/2023", "1/1/999", "aa/bb/cccc", "1/1/2024/1"} {
		_, ok := ParseDueDate(in)
		assert.False(t, ok, in)
	}
}

func TestAssign(t *testing.T) {
	var gotTask, gotProfile int64
	tasks := &mockTaskRepo{assignFn: func(_ context.Context, taskID, profileID int64) error {
		gotTask, gotProfile = taskID, profileID
		return nil
	}}
	uc := New(tasks, &mockProfileRepo{}, nil, nil)

	require.NoError(t, uc.Assign(context.Background(), 4, 9))
	assert.Equal(t, int64(4), gotTask)
	assert.Equal(t, int64(9), gotProfile)

	err := uc.Assign(context.Background(), 4, 0)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

type recorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recorder) RecordAggregation(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}
