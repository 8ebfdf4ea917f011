// README: Weather service; cache first, then upstream, then default conditions.
package weather

import (
	"context"
	"log/slog"

	"routeroll/internal/types"
)

type Provider interface {
	Current(ctx context.Context, at types.GeoPoint) (types.WeatherSnapshot, error)
}

type Cache interface {
	Get(ctx context.Context, at types.GeoPoint) (types.WeatherSnapshot, bool, error)
	Set(ctx context.Context, at types.GeoPoint, w types.WeatherSnapshot) error
}

// Default is served when no provider is configured or the provider fails.
func Default() types.WeatherSnapshot {
	return types.WeatherSnapshot{
		TemperatureC:  20,
		Humidity:      50,
		WindSpeedKph:  10,
		ConditionCode: 1000,
		Description:   "Clear",
	}
}

type Service struct {
	provider Provider
	cache    Cache
	logger   *slog.Logger
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService accepts a nil provider (always default) and a nil cache.
func NewService(provider Provider, cache Cache, opts ...Option) *Service {
	s := &Service{provider: provider, cache: cache, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current never fails; upstream errors degrade to Default.
func (s *Service) Current(ctx context.Context, at types.GeoPoint) types.WeatherSnapshot {
	if s.provider == nil {
		return Default()
	}
	if s.cache != nil {
		w, ok, err := s.cache.Get(ctx, at)
		if err != nil {
			s.logger.Warn("weather cache read failed", "error", err)
		} else if ok {
			return w
		}
	}

	w, err := s.provider.Current(ctx, at)
	if err != nil {
		s.logger.Warn("weather lookup failed, using default conditions", "error", err)
		return Default()
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, at, w); err != nil {
			s.logger.Warn("weather cache write failed", "error", err)
		}
	}
	return w
}

// Icon maps a condition code to a display glyph.
func Icon(code int) string {
	switch types.NormalizeCondition(code) {
	case types.ConditionClear:
		return "☀️"
	case types.ConditionCloudy:
		return "☁️"
	case types.ConditionThunderstorm:
		return "⛈️"
	case types.ConditionRain:
		return "🌦️"
	case types.ConditionSnow:
		return "❄️"
	}
	return "🌤️"
}
