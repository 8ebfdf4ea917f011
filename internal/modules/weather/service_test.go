package weather

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"routeroll/internal/types"
)

const sampleCurrent = `{
  "location": {"name": "Taipei"},
  "current": {
    "temp_c": 31.5,
    "humidity": 74,
    "wind_kph": 12.2,
    "wind_degree": 140,
    "precip_mm": 0.3,
    "condition": {"text": "Patchy rain nearby", "code": 1063}
  }
}`

func TestClient_Current(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/current.json" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("q")
		if r.URL.Query().Get("key") != "k1" || r.URL.Query().Get("aqi") != "no" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(sampleCurrent))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL+"/", "k1")
	w, err := c.Current(context.Background(), types.GeoPoint{Lat: 25.034, Lng: 121.5645})
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if gotQuery != "25.034000,121.564500" {
		t.Errorf("q = %q", gotQuery)
	}
	want := types.WeatherSnapshot{
		TemperatureC:    31.5,
		Humidity:        74,
		WindSpeedKph:    12.2,
		WindDegree:      140,
		PrecipitationMm: 0.3,
		ConditionCode:   1063,
		Description:     "Patchy rain nearby",
	}
	if w != want {
		t.Errorf("got %+v, want %+v", w, want)
	}
}

func TestClient_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"forbidden", http.StatusForbidden, `{"error":{"code":2008}}`},
		{"garbage", http.StatusOK, `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.Client(), srv.URL, "k").Current(context.Background(), types.GeoPoint{})
			if !errors.Is(err, ErrUpstream) {
				t.Errorf("expected ErrUpstream, got %v", err)
			}
		})
	}
}

type stubProvider struct {
	calls int
	w     types.WeatherSnapshot
	err   error
}

func (p *stubProvider) Current(context.Context, types.GeoPoint) (types.WeatherSnapshot, error) {
	p.calls++
	return p.w, p.err
}

type memCache struct {
	m map[string]types.WeatherSnapshot
}

func (c *memCache) Get(_ context.Context, at types.GeoPoint) (types.WeatherSnapshot, bool, error) {
	w, ok := c.m[cacheKey(at)]
	return w, ok, nil
}

func (c *memCache) Set(_ context.Context, at types.GeoPoint, w types.WeatherSnapshot) error {
	c.m[cacheKey(at)] = w
	return nil
}

func TestService_NoProviderReturnsDefault(t *testing.T) {
	if got := NewService(nil, nil).Current(context.Background(), types.GeoPoint{}); got != Default() {
		t.Errorf("got %+v, want default", got)
	}
}

func TestService_ProviderErrorFallsBack(t *testing.T) {
	p := &stubProvider{err: ErrUpstream}
	cache := &memCache{m: map[string]types.WeatherSnapshot{}}
	got := NewService(p, cache).Current(context.Background(), types.GeoPoint{Lat: 1, Lng: 1})
	if got != Default() {
		t.Errorf("got %+v, want default", got)
	}
	if len(cache.m) != 0 {
		t.Error("default conditions should not be cached")
	}
}

func TestService_ProviderErrorLogsToInjectedLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	svc := NewService(&stubProvider{err: ErrUpstream}, nil, WithLogger(logger), WithLogger(nil))
	svc.Current(context.Background(), types.GeoPoint{Lat: 1, Lng: 1})
	if !strings.Contains(buf.String(), "using default conditions") {
		t.Errorf("expected fallback warning on injected logger, got %q", buf.String())
	}
}

func TestService_CachesNearbyLookups(t *testing.T) {
	p := &stubProvider{w: types.WeatherSnapshot{TemperatureC: 12, ConditionCode: 1183, Description: "Light rain"}}
	svc := NewService(p, &memCache{m: map[string]types.WeatherSnapshot{}})
	ctx := context.Background()

	first := svc.Current(ctx, types.GeoPoint{Lat: 51.5071, Lng: -0.1276})
	second := svc.Current(ctx, types.GeoPoint{Lat: 51.5089, Lng: -0.1251})
	if first != p.w || second != p.w {
		t.Errorf("unexpected snapshots %+v %+v", first, second)
	}
	if p.calls != 1 {
		t.Errorf("provider calls = %d, want 1", p.calls)
	}
}

func TestIcon(t *testing.T) {
	tests := map[int]string{
		1000: "☀️",
		1003: "☀️",
		1009: "☁️",
		1087: "⛈️",
		1183: "🌦️",
		1213: "❄️",
		1240: "🌦️",
		1276: "⛈️",
		1030: "☀️",
		801:  "☁️",
		0:    "🌤️",
	}
	for code, want := range tests {
		if got := Icon(code); got != want {
			t.Errorf("Icon(%d) = %s, want %s", code, got, want)
		}
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("ROUTEROLL_REDIS_ADDR")
	if addr == "" {
		t.Skip("ROUTEROLL_REDIS_ADDR not set; skipping integration test")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	at := types.GeoPoint{Lat: -89.5, Lng: 179.5}
	client.Del(ctx, cacheKey(at))
	c := NewRedisCache(client, time.Minute)

	if _, ok, err := c.Get(ctx, at); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	w := types.WeatherSnapshot{TemperatureC: -30, ConditionCode: 1213, Description: "Light snow"}
	if err := c.Set(ctx, at, w); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := c.Get(ctx, at)
	if err != nil || !ok || got != w {
		t.Fatalf("Get = %+v ok=%v err=%v", got, ok, err)
	}
	if ttl := client.TTL(ctx, cacheKey(at)).Val(); ttl <= 0 || ttl > time.Minute {
		t.Errorf("ttl = %s", ttl)
	}
}
