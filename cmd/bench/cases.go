// README: Benchmark cases; environment, HTTP API, live generation success rate and throughput.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"routeroll/internal/config"
	"routeroll/internal/maps"
	"routeroll/internal/modules/route"
	"routeroll/internal/types"
)

const (
	statusPass = "PASS"
	statusFail = "FAIL"
	statusSkip = "SKIP"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

// benchOrigins mixes dense grids, waterfronts and suburbs.
var benchOrigins = []struct {
	Name string
	At   types.GeoPoint
}{
	{"Taipei Xinyi", types.GeoPoint{Lat: 25.0340, Lng: 121.5645}},
	{"Manhattan Midtown", types.GeoPoint{Lat: 40.7549, Lng: -73.9840}},
	{"London Southbank", types.GeoPoint{Lat: 51.5055, Lng: -0.1160}},
	{"Sydney Harbour", types.GeoPoint{Lat: -33.8568, Lng: 151.2153}},
	{"Boulder suburbs", types.GeoPoint{Lat: 40.0150, Lng: -105.2705}},
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 3 * time.Minute},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-7s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}

	return results
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	generateBody := map[string]any{
		"lat":        benchOrigins[0].At.Lat,
		"lng":        benchOrigins[0].At.Lng,
		"distance_m": r.cfg.TargetM,
	}
	return []TestCase{
		{
			Name: "Env: Postgres connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: statusFail, Note: "db not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Env: Redis connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: statusFail, Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Migration: apply (optional)",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.ApplyMigration {
					return Result{Status: statusSkip, Note: "apply-migration=false"}
				}
				if r.db == nil {
					return Result{Status: statusFail, Note: "db not configured"}
				}
				sql, err := os.ReadFile(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				for _, s := range splitSQL(string(sql)) {
					if _, err := r.db.Exec(ctx, s); err != nil {
						return Result{Status: statusFail, Note: err.Error()}
					}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Migration: tables exist",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: statusFail, Note: "db not configured"}
				}
				tables, err := extractTables(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				for _, t := range tables {
					var exists bool
					err := r.db.QueryRow(ctx,
						"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
						t,
					).Scan(&exists)
					if err != nil {
						return Result{Status: statusFail, Note: err.Error()}
					}
					if !exists {
						return Result{Status: statusFail, Note: "missing table: " + t}
					}
				}
				return Result{Status: statusPass}
			},
		},

		httpCase("API: health", http.MethodGet, base+"/health", nil, false, []int{200}),
		httpCase("API: metrics exposed", http.MethodGet, base+"/metrics", nil, false, []int{200}),
		httpCase("API: routes require auth", http.MethodGet, base+"/api/routes", nil, false, []int{401}),
		httpCase("API: weather", http.MethodGet, base+"/api/weather?lat=25.034&lng=121.5645", nil, true, []int{200}),
		httpCase("API: weather invalid coords -> 400", http.MethodGet, base+"/api/weather?lat=123&lng=456", nil, true, []int{400}),
		httpCase("API: preferences", http.MethodGet, base+"/api/preferences", nil, true, []int{200}),
		httpCase("API: generate invalid start -> 400", http.MethodPost, base+"/api/routes/generate",
			map[string]any{"lat": 123.0, "lng": 456.0, "distance_m": 1000}, true, []int{400}),
		httpCase("API: generate", http.MethodPost, base+"/api/routes/generate", generateBody, true, []int{201, 404}),
		httpCase("API: stats", http.MethodGet, base+"/api/stats", nil, true, []int{200}),

		{
			Name: "Generation: live success rate",
			Run:  generationSuccessRate,
		},
		{
			Name: "Perf: generate throughput",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.cfg.Token == "" {
					return Result{Status: statusSkip, Note: "no token"}
				}
				return perfLoad(ctx, r, base+"/api/routes/generate", generateBody)
			},
		},
	}
}

// countingMetrics tallies attempts across concurrent runs.
type countingMetrics struct {
	mu       sync.Mutex
	outcomes map[route.AttemptOutcome]int
}

func (m *countingMetrics) ObserveAttempt(o route.AttemptOutcome) {
	m.mu.Lock()
	m.outcomes[o]++
	m.mu.Unlock()
}

func (m *countingMetrics) ObserveRun(route.RunOutcome, int, time.Duration) {}

// generationSuccessRate calls the route service directly against Google Maps.
func generationSuccessRate(ctx context.Context, r *Runner) Result {
	if r.cfg.MapsAPIKey == "" {
		return Result{Status: statusSkip, Note: "ROUTEROLL_MAPS_API_KEY not set"}
	}
	directions, err := maps.NewRouteService(r.cfg.MapsAPIKey)
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	metrics := &countingMetrics{outcomes: map[route.AttemptOutcome]int{}}
	svc := route.NewService(directions, config.DefaultRouting(), route.WithMetrics(metrics))

	var (
		mu        sync.Mutex
		ok, total int
		spent     time.Duration
		wg        sync.WaitGroup
		sem       = make(chan struct{}, r.cfg.Concurrency)
	)
	for _, o := range benchOrigins {
		for i := 0; i < r.cfg.Samples; i++ {
			wg.Add(1)
			sem <- struct{}{}
			go func(at types.GeoPoint) {
				defer func() { <-sem; wg.Done() }()
				start := time.Now()
				gen, err := svc.Generate(ctx, route.Request{Start: at, TargetDistanceMeters: r.cfg.TargetM})
				mu.Lock()
				defer mu.Unlock()
				total++
				spent += time.Since(start)
				if err == nil && gen != nil {
					ok++
				}
			}(o.At)
		}
	}
	wg.Wait()

	if total == 0 {
		return Result{Status: statusFail, Note: "no runs completed"}
	}
	attempts := 0
	for _, n := range metrics.outcomes {
		attempts += n
	}
	note := fmt.Sprintf("success=%d/%d (%.0f%%) attempts/run=%.1f rejected=%d provider_errors=%d",
		ok, total, 100*float64(ok)/float64(total),
		float64(attempts)/float64(total),
		metrics.outcomes[route.AttemptRejected],
		metrics.outcomes[route.AttemptProviderError],
	)
	status := statusPass
	if ok == 0 {
		status = statusFail
	}
	return Result{Status: status, Latency: spent / time.Duration(total), Note: note}
}

func httpCase(name, method, url string, body any, needsAuth bool, okStatuses []int) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			if needsAuth && r.cfg.Token == "" {
				return Result{Status: statusSkip, Note: "no token"}
			}
			resp, latency, err := r.do(ctx, method, url, body)
			if err != nil {
				return Result{Status: statusFail, Note: err.Error()}
			}
			note := fmt.Sprintf("status=%d", resp)
			if contains(okStatuses, resp) {
				return Result{Status: statusPass, Latency: latency, Note: note}
			}
			return Result{Status: statusFail, Latency: latency, Note: note}
		},
	}
}

func (r *Runner) do(ctx context.Context, method, url string, body any) (int, time.Duration, error) {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = strings.NewReader(string(b))
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if r.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.cfg.Token)
	}
	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, 0, err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return resp.StatusCode, time.Since(start), nil
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	end := time.Now().Add(r.cfg.Duration)
	var count, notFound, errCount int64
	var mu sync.Mutex
	wg := sync.WaitGroup{}

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				status, _, err := r.do(ctx, http.MethodPost, url, payload)
				mu.Lock()
				switch {
				case err != nil:
					errCount++
				case status == http.StatusNotFound:
					notFound++
					count++
				default:
					count++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: statusFail, Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: statusPass, Note: fmt.Sprintf("rps=%.2f no_route=%d errors=%d", rps, notFound, errCount)}
}

func contains(list []int, v int) bool {
	for _, i := range list {
		if i == v {
			return true
		}
	}
	return false
}

func extractTables(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	re := regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)
	matches := re.FindAllStringSubmatch(string(b), -1)
	tables := make([]string, 0, len(matches))
	for _, m := range matches {
		tables = append(tables, m[1])
	}
	return tables, nil
}

func splitSQL(sql string) []string {
	lines := strings.Split(sql, "\n")
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, "--") || l == "" {
			continue
		}
		filtered = append(filtered, line)
	}
	parts := strings.Split(strings.Join(filtered, "\n"), ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
