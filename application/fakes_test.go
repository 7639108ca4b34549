package application

import (
	"context"
	"sync"
	"time"

	"economy/domain/entities"
	"economy/domain/interfaces"
)

type fakeGiveaways struct {
	interfaces.GiveawayService

	mu         sync.Mutex
	rounds     []*entities.GiveawayRound
	schedule   *time.Time
	nextDelay  time.Duration
	now        time.Time
	announced  []int64
	finalized  []int64
	result     *entities.GiveawayResult
	joinCalls  int
	announceFn func(messageID, channelID int64) error
}

func (f *fakeGiveaways) PendingRounds(ctx context.Context) ([]*entities.GiveawayRound, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var open []*entities.GiveawayRound
	for _, r := range f.rounds {
		if !r.IsFinalized() {
			open = append(open, r)
		}
	}
	return open, nil
}

func (f *fakeGiveaways) NextSchedule(ctx context.Context) (*time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.schedule == nil {
		return nil, nil
	}
	at := *f.schedule
	return &at, nil
}

func (f *fakeGiveaways) ScheduleNext(ctx context.Context) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	at := f.now.Add(f.nextDelay)
	f.schedule = &at
	return at, nil
}

func (f *fakeGiveaways) Announce(ctx context.Context, messageID, channelID int64, scheduledAt time.Time) (*entities.GiveawayRound, error) {
	if f.announceFn != nil {
		if err := f.announceFn(messageID, channelID); err != nil {
			return nil, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	round := &entities.GiveawayRound{
		ID:          int64(len(f.rounds) + 1),
		MessageID:   messageID,
		ChannelID:   channelID,
		State:       entities.GiveawayStateOpen,
		ScheduledAt: scheduledAt,
		AnnouncedAt: f.now,
		ExpiresAt:   f.now.Add(entities.GiveawayWindow),
	}
	f.rounds = append(f.rounds, round)
	f.announced = append(f.announced, messageID)
	next := f.now.Add(f.nextDelay)
	f.schedule = &next
	return round, nil
}

func (f *fakeGiveaways) Finalize(ctx context.Context, messageID int64) (*entities.GiveawayResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rounds {
		if r.MessageID != messageID {
			continue
		}
		if r.IsFinalized() {
			return &entities.GiveawayResult{Round: r, AlreadyFinalized: true}, nil
		}
		r.State = entities.GiveawayStateFinalized
		f.finalized = append(f.finalized, messageID)
		if f.result != nil {
			res := *f.result
			res.Round = r
			return &res, nil
		}
		return &entities.GiveawayResult{Round: r}, nil
	}
	return nil, &entities.NotFoundError{Resource: "giveaway", ID: messageID}
}

func (f *fakeGiveaways) Join(ctx context.Context, messageID, userID int64, displayName string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joinCalls++
	return true, nil
}

type fakePoster struct {
	mu          sync.Mutex
	nextMessage int64
	announced   []int64
	deleted     []int64
	stripped    []int64
	results     []*entities.GiveawayResult
	deleteErr   error
}

func (p *fakePoster) AnnounceGiveaway(ctx context.Context, pool int64, window time.Duration) (int64, int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextMessage++
	p.announced = append(p.announced, p.nextMessage)
	return 55, p.nextMessage, nil
}

func (p *fakePoster) DeleteMessage(ctx context.Context, channelID, messageID int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.deleteErr != nil {
		return p.deleteErr
	}
	p.deleted = append(p.deleted, messageID)
	return nil
}

func (p *fakePoster) StripJoinButton(ctx context.Context, channelID, messageID int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stripped = append(p.stripped, messageID)
	return nil
}

func (p *fakePoster) PostGiveawayResult(ctx context.Context, channelID int64, result *entities.GiveawayResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = append(p.results, result)
	return nil
}

type fakeRatings struct {
	interfaces.RatingService

	mu      sync.Mutex
	ranking []entities.RatingEntry
	boosts  map[int64]int64
}

func (f *fakeRatings) Ranking(ctx context.Context) ([]entities.RatingEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entities.RatingEntry(nil), f.ranking...), nil
}

func (f *fakeRatings) SyncBoosts(ctx context.Context, userID int64, liveCount int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.boosts == nil {
		f.boosts = make(map[int64]int64)
	}
	if f.boosts[userID] == liveCount {
		return false, nil
	}
	f.boosts[userID] = liveCount
	return true, nil
}

type countingRefresher struct {
	mu    sync.Mutex
	count int
}

func (r *countingRefresher) Trigger() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
}

func (r *countingRefresher) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}
