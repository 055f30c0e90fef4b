package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"countdown-cli/internal/lib/logger/handlers/slogdiscard"
	"countdown-cli/internal/lib/logger/sl"
	"countdown-cli/internal/model"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("event not found")
	ErrDuplicateID = errors.New("duplicate event id")
)

// EventStore owns the in-memory event collection and persists the whole list to its
// slot after every mutation. Events are kept sorted by target date.
//
// EventStore is not safe for concurrent use; the TUI and CLI drive it from one goroutine.
type EventStore struct {
	slot        Slot
	log         *slog.Logger
	seedSamples bool
	now         func() time.Time
	newID       func() string

	events    []model.CountdownEvent
	observers []func([]model.CountdownEvent)
}

type Option func(*EventStore)

func WithLogger(log *slog.Logger) Option {
	return func(s *EventStore) {
		if log != nil {
			s.log = log
		}
	}
}

// WithSampleSeed makes Load fall back to two sample events instead of an empty list.
func WithSampleSeed(enabled bool) Option {
	return func(s *EventStore) { s.seedSamples = enabled }
}

func WithClock(now func() time.Time) Option {
	return func(s *EventStore) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *EventStore) {
		if newID != nil {
			s.newID = newID
		}
	}
}

func NewEventStore(slot Slot, opts ...Option) *EventStore {
	s := &EventStore{
		slot:  slot,
		log:   slogdiscard.NewDiscardLogger(),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open loads the events of the store at dir.
func Open(ctx context.Context, dir string, opts ...Option) (*EventStore, error) {
	es := NewEventStore(Store{Dir: dir}.EventsSlot(), opts...)
	if err := es.Load(ctx); err != nil {
		return nil, err
	}
	return es, nil
}

// Load replaces the in-memory list with the persisted one. A missing or malformed blob
// is "no data": the list starts empty (or with samples), and so is a slot reporting
// ErrCorruptSlot. Other slot I/O errors are returned.
func (s *EventStore) Load(ctx context.Context) error {
	const op = "store.EventStore.Load"
	log := s.log.With(slog.String("op", op))

	blob, err := s.slot.Read(ctx)
	if errors.Is(err, ErrCorruptSlot) {
		log.Warn("persisted events unreadable; starting fresh", sl.Err(err))
		blob, err = nil, nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	events, ok := DecodeEvents(blob)
	if ok {
		events, ok = normalizeLoaded(events, log)
	}
	if !ok {
		if len(blob) > 0 {
			log.Debug("persisted events unreadable; starting fresh", slog.Int("bytes", len(blob)))
		}
		events = []model.CountdownEvent{}
		if s.seedSamples {
			events = SampleEvents(s.now())
		}
	}

	s.events = events
	sortEvents(s.events)
	log.Debug("events loaded", slog.Int("count", len(s.events)))
	return nil
}

// normalizeLoaded holds every decoded entry to the same rules as Add. Missing ids are
// filled and duplicate ids are dropped (first wins); any other invalid entry makes the
// whole blob unreadable.
func normalizeLoaded(events []model.CountdownEvent, log *slog.Logger) ([]model.CountdownEvent, bool) {
	seen := make(map[string]bool, len(events))
	out := make([]model.CountdownEvent, 0, len(events))
	for _, ev := range events {
		if strings.TrimSpace(ev.ID) == "" {
			ev.ID = uuid.NewString()
		}
		ev, err := normalizeEvent(ev)
		if err != nil {
			log.Debug("persisted event invalid", slog.String("id", ev.ID), sl.Err(err))
			return nil, false
		}
		if seen[ev.ID] {
			log.Debug("dropping duplicate event id", slog.String("id", ev.ID))
			continue
		}
		seen[ev.ID] = true
		out = append(out, ev)
	}
	return out, true
}

// Save overwrites the persisted blob with the current list.
func (s *EventStore) Save(ctx context.Context) error {
	return s.persist(ctx, s.events)
}

func (s *EventStore) persist(ctx context.Context, events []model.CountdownEvent) error {
	blob, err := EncodeEvents(events)
	if err != nil {
		return fmt.Errorf("encode events: %w", err)
	}
	if err := s.slot.Write(ctx, blob); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	return nil
}

// Events returns a sorted snapshot.
func (s *EventStore) Events() []model.CountdownEvent {
	out := make([]model.CountdownEvent, len(s.events))
	copy(out, s.events)
	return out
}

func (s *EventStore) Len() int { return len(s.events) }

func (s *EventStore) Get(id string) (model.CountdownEvent, bool) {
	id = strings.TrimSpace(id)
	for _, ev := range s.events {
		if ev.ID == id {
			return ev, true
		}
	}
	return model.CountdownEvent{}, false
}

// OnChange registers fn to run after every persisted mutation with the new sorted list.
func (s *EventStore) OnChange(fn func([]model.CountdownEvent)) {
	if fn != nil {
		s.observers = append(s.observers, fn)
	}
}

// Add appends ev, assigning a new id when it has none.
func (s *EventStore) Add(ctx context.Context, ev model.CountdownEvent) (model.CountdownEvent, error) {
	ev, err := normalizeEvent(ev)
	if err != nil {
		return model.CountdownEvent{}, err
	}
	if strings.TrimSpace(ev.ID) == "" {
		ev.ID = s.newID()
	}
	if _, exists := s.Get(ev.ID); exists {
		return model.CountdownEvent{}, fmt.Errorf("%w: %s", ErrDuplicateID, ev.ID)
	}

	next := append(s.Events(), ev)
	if err := s.commit(ctx, next); err != nil {
		return model.CountdownEvent{}, err
	}
	s.log.Debug("event added", slog.String("id", ev.ID))
	return ev, nil
}

// Update replaces the stored event with the same id wholesale.
func (s *EventStore) Update(ctx context.Context, ev model.CountdownEvent) error {
	ev, err := normalizeEvent(ev)
	if err != nil {
		return err
	}
	next := s.Events()
	idx := -1
	for i := range next {
		if next[i].ID == ev.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, ev.ID)
	}
	next[idx] = ev
	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.log.Debug("event updated", slog.String("id", ev.ID))
	return nil
}

// Delete removes the event with id.
func (s *EventStore) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	next := make([]model.CountdownEvent, 0, len(s.events))
	found := false
	for _, ev := range s.events {
		if ev.ID == id {
			found = true
			continue
		}
		next = append(next, ev)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.log.Debug("event deleted", slog.String("id", id))
	return nil
}

// commit persists next and only then swaps it in, so a failed write leaves memory
// matching what is on disk.
func (s *EventStore) commit(ctx context.Context, next []model.CountdownEvent) error {
	sortEvents(next)
	if err := s.persist(ctx, next); err != nil {
		s.log.Error("failed to persist events", sl.Err(err))
		return err
	}
	s.events = next
	snapshot := s.Events()
	for _, fn := range s.observers {
		fn(snapshot)
	}
	return nil
}

func normalizeEvent(ev model.CountdownEvent) (model.CountdownEvent, error) {
	ev.ID = strings.TrimSpace(ev.ID)
	ev.Title = strings.TrimSpace(ev.Title)
	ev.Repeat = strings.TrimSpace(ev.Repeat)
	if err := model.Validate(ev); err != nil {
		return model.CountdownEvent{}, err
	}
	hex, err := model.CanonicalHex(ev.ColorHex)
	if err != nil {
		return model.CountdownEvent{}, err
	}
	ev.ColorHex = hex
	return ev, nil
}

// SortEvents orders events by target date; ties fall back to title then id so the
// order is deterministic.
func SortEvents(events []model.CountdownEvent) {
	sortEvents(events)
}

func sortEvents(events []model.CountdownEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.TargetDate.Equal(b.TargetDate) {
			return a.TargetDate.Before(b.TargetDate)
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.ID < b.ID
	})
}
