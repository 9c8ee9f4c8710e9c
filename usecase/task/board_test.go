package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

func TestBoard_LoadsOnceUntilInvalidated(t *testing.T) {
	var calls int32
	tasks := &mockTaskRepo{listFn: func(context.Context, repository.TaskQuery) ([]domain.Task, error) {
		atomic.AddInt32(&calls, 1)
		return []domain.Task{{ID: 1}}, nil
	}}
	board := New(tasks, &mockProfileRepo{}, nil, nil).NewBoard(domain.FilterAll, nil)

	assert.Equal(t, PhaseLoading, board.State().Phase)

	state := board.Get(context.Background())
	assert.Equal(t, PhaseReady, state.Phase)
	assert.Len(t, state.Tasks, 1)

	board.Get(context.Background())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	board.Invalidate()
	board.Get(context.Background())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestBoard_ErrorState(t *testing.T) {
	tasks := &mockTaskRepo{listFn: func(context.Context, repository.TaskQuery) ([]domain.Task, error) {
		return nil, errors.New("relation \"tasks\" does not exist")
	}}
	board := New(tasks, &mockProfileRepo{}, nil, nil).NewBoard(domain.FilterAll, nil)

	state := board.Refresh(context.Background())
	assert.Equal(t, PhaseError, state.Phase)
	assert.Equal(t, "relation \"tasks\" does not exist", state.Error)
	assert.Empty(t, state.Tasks)
}

func TestBoard_SetFilterInvalidatesOnChange(t *testing.T) {
	var queries []repository.TaskQuery
	tasks := &mockTaskRepo{listFn: func(_ context.Context, q repository.TaskQuery) ([]domain.Task, error) {
		queries = append(queries, q)
		return nil, nil
	}}
	board := New(tasks, &mockProfileRepo{}, nil, nil).NewBoard(domain.FilterAll, nil)
	ctx := context.Background()

	board.Get(ctx)
	board.SetFilter(domain.FilterAll, nil)
	board.Get(ctx)
	board.SetFilter(domain.FilterAssigned, id(3))
	state := board.Get(ctx)

	assert.Equal(t, domain.FilterAssigned, state.Filter)
	assert.Equal(t, []repository.TaskQuery{{}, {AssignToProfileID: 3}}, queries)
}

func TestBoard_LastResolvedRefreshWins(t *testing.T) {
	slowRelease := make(chan struct{})
	slowEntered := make(chan struct{})
	var n int32
	tasks := &mockTaskRepo{listFn: func(context.Context, repository.TaskQuery) ([]domain.Task, error) {
		if atomic.AddInt32(&n, 1) == 1 {
			close(slowEntered)
			<-slowRelease
			return []domain.Task{{ID: 1}}, nil
		}
		return []domain.Task{{ID: 2}}, nil
	}}
	board := New(tasks, &mockProfileRepo{}, nil, nil).NewBoard(domain.FilterAll, nil)

	done := make(chan BoardState)
	go func() { done <- board.Refresh(context.Background()) }()
	<-slowEntered

	fast := board.Refresh(context.Background())
	require.Len(t, fast.Tasks, 1)
	assert.Equal(t, int64(2), fast.Tasks[0].ID)
	assert.True(t, fast.Refreshing)

	close(slowRelease)
	slow := <-done
	assert.Equal(t, int64(1), slow.Tasks[0].ID)
	assert.False(t, slow.Refreshing)
	assert.Equal(t, int64(1), board.State().Tasks[0].ID)
}

func TestBoard_ResultAfterCloseIsDiscarded(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	tasks := &mockTaskRepo{listFn: func(context.Context, repository.TaskQuery) ([]domain.Task, error) {
		close(entered)
		<-release
		return []domain.Task{{ID: 1}}, nil
	}}
	board := New(tasks, &mockProfileRepo{}, nil, nil).NewBoard(domain.FilterAll, nil)

	done := make(chan struct{})
	go func() {
		board.Refresh(context.Background())
		close(done)
	}()
	<-entered
	board.Close()
	close(release)
	<-done

	assert.Equal(t, PhaseLoading, board.State().Phase)
	assert.Empty(t, board.State().Tasks)
}
