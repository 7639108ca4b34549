package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"economy/domain/entities"
	"economy/domain/interfaces"

	log "github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

// ErrLedgerClosed is returned for requests made after Close
var ErrLedgerClosed = errors.New("rating ledger is closed")

// RatingLedger keeps every RatingRecord in memory behind a single owner
// goroutine. Updates stage copies of the records they touch and only swap
// them in (and write them to bolt) when the callback returns nil.
type RatingLedger struct {
	db      *bolt.DB
	records map[int64]*entities.RatingRecord

	requests chan func()
	quit     chan struct{}
	stopped  chan struct{}
	once     sync.Once
}

// NewRatingLedger loads the ledger from db and starts its owner goroutine.
// A nil db keeps the ledger in memory only.
func NewRatingLedger(db *bolt.DB) *RatingLedger {
	l := &RatingLedger{
		db:       db,
		records:  make(map[int64]*entities.RatingRecord),
		requests: make(chan func()),
		quit:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	if db != nil {
		l.records = loadRatings(db)
	}
	go l.run()
	return l
}

func (l *RatingLedger) run() {
	defer close(l.stopped)
	for {
		select {
		case req := <-l.requests:
			req()
		case <-l.quit:
			return
		}
	}
}

// Close stops the owner goroutine. Pending requests fail with ErrLedgerClosed.
func (l *RatingLedger) Close() {
	l.once.Do(func() {
		close(l.quit)
	})
	<-l.stopped
}

func (l *RatingLedger) do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	select {
	case l.requests <- func() { result <- fn() }:
	case <-l.quit:
		return ErrLedgerClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// View runs fn against the current records
func (l *RatingLedger) View(ctx context.Context, fn func(interfaces.RatingView) error) error {
	return l.do(ctx, func() error {
		return fn(&ratingTx{base: l.records})
	})
}

// Update runs fn with a staging transaction and commits what it touched
func (l *RatingLedger) Update(ctx context.Context, fn func(interfaces.RatingTx) error) error {
	return l.do(ctx, func() error {
		tx := &ratingTx{base: l.records, staged: make(map[int64]*entities.RatingRecord)}
		if err := fn(tx); err != nil {
			return err
		}
		if len(tx.staged) == 0 {
			return nil
		}
		if err := l.persist(tx.staged); err != nil {
			return fmt.Errorf("failed to persist ratings: %w", err)
		}
		for id, rec := range tx.staged {
			l.records[id] = rec
		}
		return nil
	})
}

// Snapshot returns a deep copy of every record
func (l *RatingLedger) Snapshot(ctx context.Context) (map[int64]*entities.RatingRecord, error) {
	var snapshot map[int64]*entities.RatingRecord
	err := l.do(ctx, func() error {
		snapshot = make(map[int64]*entities.RatingRecord, len(l.records))
		for id, rec := range l.records {
			snapshot[id] = rec.Clone()
		}
		return nil
	})
	return snapshot, err
}

// Reset drops every record
func (l *RatingLedger) Reset(ctx context.Context) error {
	return l.do(ctx, l.reset)
}

// Rotate archives and resets in one step
func (l *RatingLedger) Rotate(ctx context.Context, fn func(map[int64]*entities.RatingRecord) error) error {
	return l.do(ctx, func() error {
		snapshot := make(map[int64]*entities.RatingRecord, len(l.records))
		for id, rec := range l.records {
			snapshot[id] = rec.Clone()
		}
		if err := fn(snapshot); err != nil {
			return err
		}
		return l.reset()
	})
}

func (l *RatingLedger) reset() error {
	if l.db != nil {
		err := l.db.Update(func(tx *bolt.Tx) error {
			if err := tx.DeleteBucket(bucketRatings); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
				return err
			}
			_, err := tx.CreateBucket(bucketRatings)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to reset ratings: %w", err)
		}
	}
	l.records = make(map[int64]*entities.RatingRecord)
	return nil
}

// Flush writes every record to bolt
func (l *RatingLedger) Flush(ctx context.Context) error {
	return l.do(ctx, func() error {
		return l.persist(l.records)
	})
}

func (l *RatingLedger) persist(records map[int64]*entities.RatingRecord) error {
	if l.db == nil {
		return nil
	}
	return l.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketRatings)
		if err != nil {
			return err
		}
		for id, rec := range records {
			data, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("failed to encode rating %d: %w", id, err)
			}
			if err := b.Put(userKey(id), data); err != nil {
				return err
			}
		}
		meta, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return err
		}
		return meta.Put(keyRatingSchema, []byte(strconv.Itoa(entities.RatingSchemaVersion)))
	})
}

type ratingTx struct {
	base   map[int64]*entities.RatingRecord
	staged map[int64]*entities.RatingRecord
}

func (t *ratingTx) Lookup(userID int64) (*entities.RatingRecord, bool) {
	if rec, ok := t.staged[userID]; ok {
		return rec, true
	}
	rec, ok := t.base[userID]
	return rec, ok
}

func (t *ratingTx) IsBanned(userID int64) bool {
	rec, ok := t.Lookup(userID)
	return ok && rec.Banned
}

func (t *ratingTx) TotalRating(userID int64) int64 {
	rec, ok := t.Lookup(userID)
	if !ok {
		return 0
	}
	return rec.TotalRating(t.IsBanned)
}

func (t *ratingTx) NeriRating(userID int64) int64 {
	rec, ok := t.Lookup(userID)
	if !ok {
		return 0
	}
	return rec.NeriRating()
}

func (t *ratingTx) Users() []int64 {
	ids := make([]int64, 0, len(t.base)+len(t.staged))
	for id := range t.base {
		ids = append(ids, id)
	}
	for id := range t.staged {
		if _, ok := t.base[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (t *ratingTx) Record(userID int64) *entities.RatingRecord {
	if rec, ok := t.staged[userID]; ok {
		return rec
	}
	var rec *entities.RatingRecord
	if existing, ok := t.base[userID]; ok {
		rec = existing.Clone()
	} else {
		rec = entities.NewRatingRecord(userID)
	}
	t.staged[userID] = rec
	return rec
}

// ratingRecordV1 is the shape written before reactor_total existed
type ratingRecordV1 struct {
	UserID         int64                            `json:"user_id"`
	AdditionalChat int64                            `json:"additional_chat"`
	AdditionalNeri int64                            `json:"additional_neri"`
	AdditionalSelf int64                            `json:"additional_self"`
	Boosts         int64                            `json:"boosts"`
	ManualRating   int64                            `json:"manual_rating"`
	ReactorCounts  map[int64]*entities.ReactorTally `json:"reactor_counts"`
	ReactorDates   []time.Time                      `json:"reactor_dates"`
	TotalReacts    int64                            `json:"total_reacts"`
	Banned         bool                             `json:"banned"`
}

func loadRatings(db *bolt.DB) map[int64]*entities.RatingRecord {
	records := make(map[int64]*entities.RatingRecord)

	err := db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRatings)
		if b == nil {
			log.Warn("Ratings bucket missing, starting with an empty ledger")
			return nil
		}

		version := 1
		if meta := tx.Bucket(bucketMeta); meta != nil {
			if raw := meta.Get(keyRatingSchema); raw != nil {
				v, err := strconv.Atoi(string(raw))
				if err != nil {
					return fmt.Errorf("unparsable schema version %q", raw)
				}
				version = v
			}
		}
		if version > entities.RatingSchemaVersion {
			return fmt.Errorf("unknown ratings schema version %d", version)
		}

		return b.ForEach(func(k, v []byte) error {
			userID, ok := userFromKey(k)
			if !ok {
				log.WithField("key", string(k)).Warn("Skipping malformed rating key")
				return nil
			}
			rec, err := decodeRating(version, v)
			if err != nil {
				log.WithError(err).WithField("userID", userID).Warn("Skipping unparsable rating record")
				return nil
			}
			rec.UserID = userID
			records[userID] = rec
			return nil
		})
	})
	if err != nil {
		log.WithError(err).Warn("Failed to load ratings, starting with an empty ledger")
		return make(map[int64]*entities.RatingRecord)
	}

	if migrated := migrateReactorTotals(records); migrated > 0 {
		log.WithField("records", migrated).Info("Migrated rating records to current schema")
	}

	return records
}

func decodeRating(version int, data []byte) (*entities.RatingRecord, error) {
	switch version {
	case 1:
		var old ratingRecordV1
		if err := json.Unmarshal(data, &old); err != nil {
			return nil, err
		}
		rec := &entities.RatingRecord{
			UserID:         old.UserID,
			AdditionalChat: old.AdditionalChat,
			AdditionalNeri: old.AdditionalNeri,
			AdditionalSelf: old.AdditionalSelf,
			Boosts:         old.Boosts,
			ManualRating:   old.ManualRating,
			ReactorCounts:  old.ReactorCounts,
			ReactorDates:   old.ReactorDates,
			TotalReacts:    old.TotalReacts,
			Banned:         old.Banned,
			// marks the record for migrateReactorTotals
			ReactorTotal: -1,
		}
		return normalizeRating(rec), nil
	default:
		var rec entities.RatingRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, err
		}
		return normalizeRating(&rec), nil
	}
}

func normalizeRating(rec *entities.RatingRecord) *entities.RatingRecord {
	if rec.ReactorCounts == nil {
		rec.ReactorCounts = make(map[int64]*entities.ReactorTally)
	}
	for id, tally := range rec.ReactorCounts {
		if tally == nil {
			delete(rec.ReactorCounts, id)
		}
	}
	if len(rec.ReactorDates) > entities.ReactorDatesCap {
		rec.ReactorDates = rec.ReactorDates[:entities.ReactorDatesCap]
	}
	return rec
}

// migrateReactorTotals rebuilds the lifetime reactor counter of v1 records from
// the tallies every author holds for them.
func migrateReactorTotals(records map[int64]*entities.RatingRecord) int {
	pending := make(map[int64]*entities.RatingRecord)
	for id, rec := range records {
		if rec.ReactorTotal < 0 {
			rec.ReactorTotal = 0
			pending[id] = rec
		}
	}
	if len(pending) == 0 {
		return 0
	}

	for _, author := range records {
		for reactorID, tally := range author.ReactorCounts {
			if rec, ok := pending[reactorID]; ok {
				rec.ReactorTotal += tally.Count
			}
		}
	}
	for _, rec := range pending {
		if dates := int64(len(rec.ReactorDates)); rec.ReactorTotal < dates {
			rec.ReactorTotal = dates
		}
	}
	return len(pending)
}
