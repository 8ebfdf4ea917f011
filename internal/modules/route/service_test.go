package route

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"routeroll/internal/config"
	"routeroll/internal/types"
)

var testStart = types.GeoPoint{Lat: 25.0340, Lng: 121.5645}

// stubDirections is a test double for Directions. respond is called with the
// 1-based call number.
type stubDirections struct {
	mu      sync.Mutex
	calls   int
	respond func(ctx context.Context, call int, origin types.GeoPoint) ([]types.PathPoint, time.Duration, error)
}

func (s *stubDirections) FetchPath(ctx context.Context, origin, _ types.GeoPoint) ([]types.PathPoint, time.Duration, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.mu.Unlock()
	return s.respond(ctx, call, origin)
}

func (s *stubDirections) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// meridianPath returns a two-point path due north of origin whose haversine
// length is lengthM.
func meridianPath(origin types.GeoPoint, lengthM float64) []types.PathPoint {
	end := types.GeoPoint{Lat: origin.Lat + radiansToDegrees(lengthM/earthRadiusM), Lng: origin.Lng}
	return types.NewPath([]types.GeoPoint{origin, end})
}

type recordingMetrics struct {
	mu       sync.Mutex
	attempts map[AttemptOutcome]int
	runs     map[RunOutcome]int
	lastRun  int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{attempts: map[AttemptOutcome]int{}, runs: map[RunOutcome]int{}}
}

func (m *recordingMetrics) ObserveAttempt(o AttemptOutcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts[o]++
}

func (m *recordingMetrics) ObserveRun(o RunOutcome, attempts int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[o]++
	m.lastRun = attempts
}

func testConfig() config.RoutingConfig {
	cfg := config.DefaultRouting()
	cfg.LookupTimeout = time.Second
	return cfg
}

func newTestService(d Directions, cfg config.RoutingConfig, opts ...Option) *Service {
	base := []Option{
		WithRandomSource(NewRandomSource(42)),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return NewService(d, cfg, append(base, opts...)...)
}

func TestGenerate_AcceptsHalfTargetOnFirstAttempt(t *testing.T) {
	const target = 3000.0
	stub := &stubDirections{respond: func(_ context.Context, _ int, origin types.GeoPoint) ([]types.PathPoint, time.Duration, error) {
		return meridianPath(origin, 0.5*target), 18 * time.Minute, nil
	}}
	metrics := newRecordingMetrics()
	svc := newTestService(stub, testConfig(), WithMetrics(metrics))

	r, err := svc.Generate(context.Background(), Request{Start: testStart, TargetDistanceMeters: target})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r == nil {
		t.Fatal("expected a route, got none")
	}
	if stub.Calls() != 1 {
		t.Errorf("expected 1 directions call, got %d", stub.Calls())
	}
	if math.Abs(r.DistanceMeters-0.5*target) > 0.01 {
		t.Errorf("DistanceMeters = %f, want %f", r.DistanceMeters, 0.5*target)
	}
	if r.DurationSeconds != 18*60 {
		t.Errorf("DurationSeconds = %f, want %d", r.DurationSeconds, 18*60)
	}
	if metrics.runs[RunAccepted] != 1 || metrics.lastRun != 1 {
		t.Errorf("metrics runs = %v (attempts %d)", metrics.runs, metrics.lastRun)
	}
}

func TestGenerate_ExhaustsAfterMaxAttempts(t *testing.T) {
	const target = 2000.0
	stub := &stubDirections{respond: func(_ context.Context, _ int, origin types.GeoPoint) ([]types.PathPoint, time.Duration, error) {
		return meridianPath(origin, 1.5*target), 30 * time.Minute, nil
	}}
	metrics := newRecordingMetrics()
	cfg := testConfig()
	svc := newTestService(stub, cfg, WithMetrics(metrics))

	r, err := svc.Generate(context.Background(), Request{Start: testStart, TargetDistanceMeters: target})
	if err != nil {
		t.Fatalf("exhaustion must not be an error, got %v", err)
	}
	if r != nil {
		t.Fatalf("expected no route, got %+v", r)
	}
	if stub.Calls() != cfg.MaxAttempts {
		t.Errorf("expected %d directions calls, got %d", cfg.MaxAttempts, stub.Calls())
	}
	if metrics.attempts[AttemptRejected] != cfg.MaxAttempts {
		t.Errorf("expected %d rejected attempts, got %d", cfg.MaxAttempts, metrics.attempts[AttemptRejected])
	}
	if metrics.runs[RunExhausted] != 1 {
		t.Errorf("expected one exhausted run, got %v", metrics.runs)
	}
}

func TestGenerate_SwallowsProviderFailures(t *testing.T) {
	const target = 4000.0
	stub := &stubDirections{respond: func(_ context.Context, call int, origin types.GeoPoint) ([]types.PathPoint, time.Duration, error) {
		if call <= 2 {
			return nil, 0, errors.New("maps api error: OVER_QUERY_LIMIT")
		}
		return meridianPath(origin, 3500), 40 * time.Minute, nil
	}}
	metrics := newRecordingMetrics()
	svc := newTestService(stub, testConfig(), WithMetrics(metrics))

	r, err := svc.Generate(context.Background(), Request{Start: testStart, TargetDistanceMeters: target})
	if err != nil {
		t.Fatalf("provider errors must not surface, got %v", err)
	}
	if r == nil {
		t.Fatal("expected a route on the third attempt")
	}
	if stub.Calls() != 3 {
		t.Errorf("expected 3 calls, got %d", stub.Calls())
	}
	if metrics.attempts[AttemptProviderError] != 2 || metrics.attempts[AttemptAccepted] != 1 {
		t.Errorf("unexpected attempt metrics: %v", metrics.attempts)
	}
}

func TestGenerate_EmptyPathCountsAsFailedAttempt(t *testing.T) {
	cfg := testConfig()
	cfg.MaxAttempts = 4
	stub := &stubDirections{respond: func(context.Context, int, types.GeoPoint) ([]types.PathPoint, time.Duration, error) {
		return nil, 0, nil
	}}
	svc := newTestService(stub, cfg)

	r, err := svc.Generate(context.Background(), Request{Start: testStart, TargetDistanceMeters: 1000})
	if err != nil || r != nil {
		t.Fatalf("expected exhaustion, got route=%v err=%v", r, err)
	}
	if stub.Calls() != 4 {
		t.Errorf("expected 4 calls, got %d", stub.Calls())
	}
}

func TestGenerate_LookupTimeoutCountsAgainstBudget(t *testing.T) {
	cfg := testConfig()
	cfg.MaxAttempts = 3
	cfg.LookupTimeout = 20 * time.Millisecond
	stub := &stubDirections{respond: func(ctx context.Context, call int, origin types.GeoPoint) ([]types.PathPoint, time.Duration, error) {
		if call == 1 {
			<-ctx.Done()
			return nil, 0, ctx.Err()
		}
		return meridianPath(origin, 500), 6 * time.Minute, nil
	}}
	svc := newTestService(stub, cfg)

	r, err := svc.Generate(context.Background(), Request{Start: testStart, TargetDistanceMeters: 1000})
	if err != nil {
		t.Fatalf("timeout must not abort the run, got %v", err)
	}
	if r == nil || stub.Calls() != 2 {
		t.Fatalf("expected a route on the 2nd call, got route=%v calls=%d", r, stub.Calls())
	}
}

func TestGenerate_StopsWhenCallerCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stub := &stubDirections{respond: func(_ context.Context, call int, origin types.GeoPoint) ([]types.PathPoint, time.Duration, error) {
		if call == 2 {
			cancel()
		}
		return meridianPath(origin, 5000), time.Hour, nil
	}}
	metrics := newRecordingMetrics()
	svc := newTestService(stub, testConfig(), WithMetrics(metrics))

	r, err := svc.Generate(ctx, Request{Start: testStart, TargetDistanceMeters: 1000})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got route=%v err=%v", r, err)
	}
	if stub.Calls() != 2 {
		t.Errorf("expected no lookups after cancellation, got %d calls", stub.Calls())
	}
	if metrics.runs[RunCancelled] != 1 {
		t.Errorf("expected cancelled run metric, got %v", metrics.runs)
	}
}

func TestGenerate_AlreadyCancelledMakesNoCalls(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stub := &stubDirections{respond: func(context.Context, int, types.GeoPoint) ([]types.PathPoint, time.Duration, error) {
		t.Fatal("directions must not be called")
		return nil, 0, nil
	}}
	svc := newTestService(stub, testConfig())

	if _, err := svc.Generate(ctx, Request{Start: testStart, TargetDistanceMeters: 1000}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestGenerate_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"latitude out of range", Request{Start: types.GeoPoint{Lat: 91, Lng: 0}, TargetDistanceMeters: 1000}},
		{"longitude out of range", Request{Start: types.GeoPoint{Lat: 0, Lng: -180.5}, TargetDistanceMeters: 1000}},
		{"NaN latitude", Request{Start: types.GeoPoint{Lat: math.NaN(), Lng: 0}, TargetDistanceMeters: 1000}},
		{"zero target", Request{Start: testStart, TargetDistanceMeters: 0}},
		{"negative target", Request{Start: testStart, TargetDistanceMeters: -50}},
		{"infinite target", Request{Start: testStart, TargetDistanceMeters: math.Inf(1)}},
	}

	stub := &stubDirections{respond: func(context.Context, int, types.GeoPoint) ([]types.PathPoint, time.Duration, error) {
		return nil, 0, nil
	}}
	svc := newTestService(stub, testConfig())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := svc.Generate(context.Background(), tt.req)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got route=%v err=%v", r, err)
			}
		})
	}
	if stub.Calls() != 0 {
		t.Errorf("invalid requests must not reach directions, got %d calls", stub.Calls())
	}
}

func TestGenerate_AssemblesRouteRecord(t *testing.T) {
	now := time.Date(2026, 4, 2, 7, 30, 0, 0, time.UTC)
	path := types.NewPath([]types.GeoPoint{
		testStart,
		{Lat: 25.0360, Lng: 121.5660},
		{Lat: 25.0391, Lng: 121.5671},
	})
	stub := &stubDirections{respond: func(context.Context, int, types.GeoPoint) ([]types.PathPoint, time.Duration, error) {
		return path, 9 * time.Minute, nil
	}}
	weather := types.WeatherSnapshot{TemperatureC: 22, WindSpeedKph: 18, PrecipitationMm: 3, ConditionCode: 1000}
	svc := newTestService(stub, testConfig(), WithClock(func() time.Time { return now }))

	r, err := svc.Generate(context.Background(), Request{
		Start:                testStart,
		TargetDistanceMeters: 5000,
		Weather:              weather,
		Units:                types.UnitsMetric,
	})
	if err != nil || r == nil {
		t.Fatalf("expected route, got %v %v", r, err)
	}

	if r.ID == "" {
		t.Error("expected a generated ID")
	}
	if r.End != path[len(path)-1].GeoPoint {
		t.Errorf("End = %v, want last path point", r.End)
	}
	if r.Start != testStart {
		t.Errorf("Start = %v", r.Start)
	}
	if want := PathLength(path); r.DistanceMeters != want {
		t.Errorf("DistanceMeters = %f, want recomputed %f", r.DistanceMeters, want)
	}
	if r.Difficulty != DifficultyEasy {
		t.Errorf("Difficulty = %s", r.Difficulty)
	}
	// 85 - 10 (precip > 2) - 5 (wind > 15)
	if r.SafetyScore != 70 {
		t.Errorf("SafetyScore = %d, want 70", r.SafetyScore)
	}
	if r.Name != "☀️ 0.6km Walk" {
		t.Errorf("Name = %q", r.Name)
	}
	if !r.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", r.CreatedAt, now)
	}
}

func TestGenerate_ConcurrentRequestsShareService(t *testing.T) {
	stub := &stubDirections{respond: func(_ context.Context, _ int, origin types.GeoPoint) ([]types.PathPoint, time.Duration, error) {
		return meridianPath(origin, 800), 10 * time.Minute, nil
	}}
	svc := newTestService(stub, testConfig())

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := svc.Generate(context.Background(), Request{Start: testStart, TargetDistanceMeters: 1000})
			if err != nil || r == nil {
				errs <- errors.New("expected a route from every concurrent request")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestNewService_NilLoggerKeepsDefault(t *testing.T) {
	stub := &stubDirections{respond: func(_ context.Context, _ int, origin types.GeoPoint) ([]types.PathPoint, time.Duration, error) {
		return meridianPath(origin, 500), time.Minute, nil
	}}
	svc := NewService(stub, testConfig(), WithLogger(nil), WithRandomSource(NewRandomSource(1)))
	r, err := svc.Generate(context.Background(), Request{Start: testStart, TargetDistanceMeters: 1000})
	if err != nil || r == nil {
		t.Fatalf("Generate() = %v, %v", r, err)
	}
}

func TestNewService_ZeroConfigUsesDefaults(t *testing.T) {
	const target = 2000.0
	stub := &stubDirections{respond: func(ctx context.Context, _ int, origin types.GeoPoint) ([]types.PathPoint, time.Duration, error) {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		return meridianPath(origin, 0.7*target), 20 * time.Minute, nil
	}}
	svc := newTestService(stub, config.RoutingConfig{})

	r, err := svc.Generate(context.Background(), Request{Start: testStart, TargetDistanceMeters: target})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if r == nil {
		t.Fatal("expected a route with a zero routing config")
	}
	if stub.Calls() != 1 {
		t.Errorf("expected 1 directions call, got %d", stub.Calls())
	}
	if svc.cfg != config.DefaultRouting() {
		t.Errorf("cfg = %+v, want %+v", svc.cfg, config.DefaultRouting())
	}
}

func TestNewService_ZeroConfigKeepsDefaultBudget(t *testing.T) {
	stub := &stubDirections{respond: func(_ context.Context, _ int, origin types.GeoPoint) ([]types.PathPoint, time.Duration, error) {
		return meridianPath(origin, 5000), time.Hour, nil
	}}
	svc := newTestService(stub, config.RoutingConfig{})

	r, err := svc.Generate(context.Background(), Request{Start: testStart, TargetDistanceMeters: 1000})
	if err != nil || r != nil {
		t.Fatalf("Generate() = %v, %v; want nil, nil", r, err)
	}
	if want := config.DefaultRouting().MaxAttempts; stub.Calls() != want {
		t.Errorf("expected %d directions calls, got %d", want, stub.Calls())
	}
}

func TestWithRoutingDefaults(t *testing.T) {
	def := config.DefaultRouting()
	tests := []struct {
		name string
		in   config.RoutingConfig
		want config.RoutingConfig
	}{
		{"zero", config.RoutingConfig{}, def},
		{"valid kept", config.RoutingConfig{MaxAttempts: 3, LookupTimeout: time.Second, MinFraction: 0.5, MaxFraction: 0.9},
			config.RoutingConfig{MaxAttempts: 3, LookupTimeout: time.Second, MinFraction: 0.5, MaxFraction: 0.9}},
		{"negative attempts", config.RoutingConfig{MaxAttempts: -1, LookupTimeout: time.Second, MinFraction: 0.6, MaxFraction: 0.8},
			config.RoutingConfig{MaxAttempts: def.MaxAttempts, LookupTimeout: time.Second, MinFraction: 0.6, MaxFraction: 0.8}},
		{"inverted band", config.RoutingConfig{MaxAttempts: 5, LookupTimeout: time.Second, MinFraction: 0.9, MaxFraction: 0.1},
			config.RoutingConfig{MaxAttempts: 5, LookupTimeout: time.Second, MinFraction: def.MinFraction, MaxFraction: def.MaxFraction}},
		{"band above one", config.RoutingConfig{MaxAttempts: 5, LookupTimeout: time.Second, MinFraction: 0.6, MaxFraction: 1.5},
			config.RoutingConfig{MaxAttempts: 5, LookupTimeout: time.Second, MinFraction: def.MinFraction, MaxFraction: def.MaxFraction}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := withRoutingDefaults(tt.in)
			if got != tt.want {
				t.Errorf("withRoutingDefaults(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
			if err := got.Validate(); err != nil {
				t.Errorf("result does not validate: %v", err)
			}
		})
	}
}
