// README: Route service drives the sample -> query -> evaluate attempt loop and assembles the result.
package route

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"routeroll/internal/config"
	"routeroll/internal/types"
)

var ErrInvalidInput = errors.New("invalid route request")

// Directions returns a walking path between two points. An empty path means
// the provider found nothing.
type Directions interface {
	FetchPath(ctx context.Context, origin, destination types.GeoPoint) ([]types.PathPoint, time.Duration, error)
}

type attemptState int

const (
	stateSampling attemptState = iota
	stateQuerying
	stateEvaluating
	stateAccepted
	stateRetrying
	stateExhausted
)

type Service struct {
	directions Directions
	cfg        config.RoutingConfig
	sampler    *Sampler
	rnd        RandomSource
	metrics    Metrics
	logger     *slog.Logger
	now        func() time.Time
}

type Option func(*Service)

func WithRandomSource(rnd RandomSource) Option {
	return func(s *Service) { s.rnd = rnd }
}

func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService replaces unusable routing settings with config.DefaultRouting
// values field by field, so a zero RoutingConfig behaves like the defaults.
func NewService(directions Directions, cfg config.RoutingConfig, opts ...Option) *Service {
	cfg = withRoutingDefaults(cfg)
	s := &Service{
		directions: directions,
		cfg:        cfg,
		metrics:    NopMetrics{},
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rnd == nil {
		s.rnd = newTimeSeededSource()
	}
	s.sampler = NewSampler(s.rnd, cfg.MinFraction, cfg.MaxFraction)
	return s
}

func withRoutingDefaults(cfg config.RoutingConfig) config.RoutingConfig {
	def := config.DefaultRouting()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = def.LookupTimeout
	}
	if cfg.MinFraction <= 0 || cfg.MaxFraction > 1 || cfg.MinFraction > cfg.MaxFraction {
		cfg.MinFraction, cfg.MaxFraction = def.MinFraction, def.MaxFraction
	}
	return cfg
}

// Generate returns the first candidate route that passes IsAcceptable.
// A nil route with a nil error means the attempt budget ran out.
// Only ErrInvalidInput and caller cancellation surface as errors.
func (s *Service) Generate(ctx context.Context, req Request) (*GeneratedRoute, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	started := s.now()
	cand, attempts, err := s.run(ctx, req)
	elapsed := s.now().Sub(started)

	switch {
	case err != nil:
		s.metrics.ObserveRun(RunCancelled, attempts, elapsed)
		return nil, err
	case cand == nil:
		s.metrics.ObserveRun(RunExhausted, attempts, elapsed)
		s.logger.Info("route generation exhausted", "attempts", attempts, "target_m", req.TargetDistanceMeters)
		return nil, nil
	}

	s.metrics.ObserveRun(RunAccepted, attempts, elapsed)
	r := s.assemble(req, cand)
	s.logger.Info("route generated",
		"route_id", r.ID,
		"attempts", attempts,
		"distance_m", r.DistanceMeters,
		"target_m", req.TargetDistanceMeters,
		"elapsed", elapsed,
	)
	return r, nil
}

func (s *Service) run(ctx context.Context, req Request) (*Candidate, int, error) {
	var (
		state   = stateSampling
		attempt int
		cand    Candidate
	)

	for {
		switch state {
		case stateSampling:
			if err := ctx.Err(); err != nil {
				return nil, attempt, err
			}
			attempt++
			cand = Candidate{Destination: s.sampler.Sample(req.Start, req.TargetDistanceMeters)}
			state = stateQuerying

		case stateQuerying:
			path, travel, err := s.lookup(ctx, req.Start, cand.Destination)
			if ctx.Err() != nil {
				return nil, attempt, ctx.Err()
			}
			if err != nil || len(path) == 0 {
				if err == nil {
					err = errors.New("empty path")
				}
				s.metrics.ObserveAttempt(AttemptProviderError)
				s.logger.Warn("directions lookup failed", "attempt", attempt, "error", err)
				state = stateRetrying
				continue
			}
			cand.Path, cand.TravelTime = path, travel
			state = stateEvaluating

		case stateEvaluating:
			if IsAcceptable(cand.Path, req.TargetDistanceMeters) {
				s.metrics.ObserveAttempt(AttemptAccepted)
				state = stateAccepted
				continue
			}
			s.metrics.ObserveAttempt(AttemptRejected)
			s.logger.Debug("candidate rejected",
				"attempt", attempt,
				"path_m", PathLength(cand.Path),
				"target_m", req.TargetDistanceMeters,
			)
			state = stateRetrying

		case stateRetrying:
			if attempt >= s.cfg.MaxAttempts {
				state = stateExhausted
			} else {
				state = stateSampling
			}

		case stateAccepted:
			return &cand, attempt, nil

		case stateExhausted:
			return nil, attempt, nil
		}
	}
}

// lookup bounds a single directions call; its timeout counts as a failed attempt.
func (s *Service) lookup(ctx context.Context, origin, destination types.GeoPoint) ([]types.PathPoint, time.Duration, error) {
	lctx, cancel := context.WithTimeout(ctx, s.cfg.LookupTimeout)
	defer cancel()
	return s.directions.FetchPath(lctx, origin, destination)
}

func (s *Service) assemble(req Request, cand *Candidate) *GeneratedRoute {
	distance := PathLength(cand.Path)
	return &GeneratedRoute{
		ID:              uuid.NewString(),
		Name:            RouteName(distance, req.Weather, req.Units),
		DistanceMeters:  distance,
		DurationSeconds: cand.TravelTime.Seconds(),
		Path:            cand.Path,
		Start:           req.Start,
		End:             cand.Path[len(cand.Path)-1].GeoPoint,
		Weather:         req.Weather,
		Difficulty:      ScoreDifficulty(distance),
		SafetyScore:     SafetyScore(distance, req.Weather),
		CreatedAt:       s.now(),
	}
}
