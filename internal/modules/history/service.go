// README: History service saves generated routes, tracks walks, and derives stats.
package history

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"routeroll/internal/modules/route"
	"routeroll/internal/types"
)

var (
	ErrNotFound   = errors.New("route not found")
	ErrBadRequest = errors.New("bad request")
)

// Events receives history changes. Delivery failures are logged, not returned.
type Events interface {
	RouteSaved(ctx context.Context, r *SavedRoute) error
	RouteWalked(ctx context.Context, userID types.ID, routeID string, at time.Time) error
}

type Service struct {
	store  *Store
	events Events
	loc    *time.Location
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService wires the store. events may be nil; loc decides day and period
// boundaries for stats.
func NewService(store *Store, events Events, loc *time.Location, opts ...Option) *Service {
	if loc == nil {
		loc = time.UTC
	}
	s := &Service{store: store, events: events, loc: loc, now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Save(ctx context.Context, userID types.ID, r *route.GeneratedRoute) (*SavedRoute, error) {
	if userID == "" || r == nil {
		return nil, ErrBadRequest
	}
	saved := &SavedRoute{GeneratedRoute: *r, UserID: userID}
	if err := s.store.Save(ctx, saved); err != nil {
		return nil, err
	}
	if s.events != nil {
		if err := s.events.RouteSaved(ctx, saved); err != nil {
			s.logger.Warn("publish route saved failed", "route_id", saved.ID, "error", err)
		}
	}
	return saved, nil
}

func (s *Service) List(ctx context.Context, userID types.ID) ([]SavedRoute, error) {
	if userID == "" {
		return nil, ErrBadRequest
	}
	return s.store.ListByUser(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID types.ID, id string) (*SavedRoute, error) {
	if userID == "" || id == "" {
		return nil, ErrBadRequest
	}
	return s.store.Get(ctx, userID, id)
}

func (s *Service) MarkWalked(ctx context.Context, userID types.ID, id string) error {
	if userID == "" || id == "" {
		return ErrBadRequest
	}
	at := s.now()
	if err := s.store.MarkWalked(ctx, userID, id, at); err != nil {
		return err
	}
	if s.events != nil {
		if err := s.events.RouteWalked(ctx, userID, id, at); err != nil {
			s.logger.Warn("publish route walked failed", "route_id", id, "error", err)
		}
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, userID types.ID, id string) error {
	if userID == "" || id == "" {
		return ErrBadRequest
	}
	return s.store.Delete(ctx, userID, id)
}

func (s *Service) Stats(ctx context.Context, userID types.ID) (Stats, error) {
	if userID == "" {
		return Stats{}, ErrBadRequest
	}
	walks, err := s.store.WalkedRoutes(ctx, userID)
	if err != nil {
		return Stats{}, err
	}
	return computeStats(walks, s.now(), s.loc), nil
}

// computeStats aggregates walked routes. walks must be ordered by WalkedAt descending.
func computeStats(walks []walkRecord, now time.Time, loc *time.Location) Stats {
	today := startOfDay(now, loc)
	weekStart := today.AddDate(0, 0, -int(today.Weekday()))
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)
	yearStart := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, loc)

	var st Stats
	for _, w := range walks {
		st.TotalRoutes++
		st.TotalDistanceMeters += w.DistanceM
		st.TotalTimeSeconds += w.DurationS
		if st.LastWalkDate == nil || w.WalkedAt.After(*st.LastWalkDate) {
			t := w.WalkedAt
			st.LastWalkDate = &t
		}

		day := startOfDay(w.WalkedAt, loc)
		if day.After(today) {
			continue
		}
		if day.Equal(today) {
			st.Today.add(w)
		}
		if !day.Before(weekStart) {
			st.ThisWeek.add(w)
		}
		if !day.Before(monthStart) {
			st.ThisMonth.add(w)
		}
		if !day.Before(yearStart) {
			st.ThisYear.add(w)
		}
	}
	st.CurrentStreak = streak(walks, now, loc)
	st.LongestStreak = longestStreak(walks, loc)
	return st
}

// streak counts consecutive days with at least one walk, ending today.
// A day without a walk today means no active streak.
func streak(walks []walkRecord, now time.Time, loc *time.Location) int {
	current := startOfDay(now, loc)
	n := 0
	for _, w := range walks {
		day := startOfDay(w.WalkedAt, loc)
		switch {
		case day.Equal(current):
			n++
			current = current.AddDate(0, 0, -1)
		case day.Before(current):
			return n
		}
	}
	return n
}

// longestStreak is the longest run of consecutive walk days anywhere in the history.
func longestStreak(walks []walkRecord, loc *time.Location) int {
	var (
		prev      time.Time
		run, best int
	)
	for _, w := range walks {
		day := startOfDay(w.WalkedAt, loc)
		switch {
		case run > 0 && day.Equal(prev):
			continue
		case run > 0 && day.Equal(prev.AddDate(0, 0, -1)):
			run++
		default:
			run = 1
		}
		prev = day
		if run > best {
			best = run
		}
	}
	return best
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
