package application

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"economy/domain/entities"
	"economy/domain/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMarket struct {
	interfaces.MarketService
	views []*entities.PollView
}

func (s *stubMarket) ListOpenPolls(ctx context.Context) ([]*entities.PollView, error) {
	return s.views, nil
}

func (s *stubMarket) GetPollView(ctx context.Context, pollID int64) (*entities.PollView, error) {
	for _, v := range s.views {
		if v.Poll.ID == pollID {
			return v, nil
		}
	}
	return nil, &entities.NotFoundError{Resource: "poll", ID: pollID}
}

type recordingRenderer struct {
	mu       sync.Mutex
	rendered []int64
	failOn   int64
}

func (r *recordingRenderer) RenderPoll(ctx context.Context, view *entities.PollView) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if view.Poll.ID == r.failOn {
		return errors.New("message deleted")
	}
	r.rendered = append(r.rendered, view.Poll.ID)
	return nil
}

func pollView(id int64, withMessage bool) *entities.PollView {
	poll := &entities.Poll{ID: id, Status: entities.PollStatusOpen}
	if withMessage {
		chat, msg := int64(10), id*100
		poll.ChatID = &chat
		poll.MessageID = &msg
	}
	return &entities.PollView{Poll: poll}
}

func TestPollRefreshWorker_RefreshAll(t *testing.T) {
	market := &stubMarket{views: []*entities.PollView{
		pollView(1, true), pollView(2, false), pollView(3, true), pollView(4, true),
	}}
	renderer := &recordingRenderer{failOn: 4}
	w := NewPollRefreshWorker(market, renderer, 0)

	err := w.RefreshAll(context.Background())

	assert.Error(t, err, "render failures are reported")
	sort.Slice(renderer.rendered, func(i, j int) bool { return renderer.rendered[i] < renderer.rendered[j] })
	assert.Equal(t, []int64{1, 3}, renderer.rendered)
	assert.Equal(t, PollRefreshInterval, w.interval)
}

func TestPollRefreshWorker_RefreshPoll(t *testing.T) {
	market := &stubMarket{views: []*entities.PollView{pollView(1, true), pollView(2, false)}}
	renderer := &recordingRenderer{}
	w := NewPollRefreshWorker(market, renderer, 0)
	ctx := context.Background()

	require.NoError(t, w.RefreshPoll(ctx, 1))
	require.NoError(t, w.RefreshPoll(ctx, 2))
	assert.Equal(t, []int64{1}, renderer.rendered)

	err := w.RefreshPoll(ctx, 9)
	assert.True(t, entities.IsNotFound(err))
}
