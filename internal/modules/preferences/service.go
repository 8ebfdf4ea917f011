// README: Preferences service; converts between typed preferences and stored strings.
package preferences

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"routeroll/internal/types"
)

var ErrBadRequest = errors.New("bad request")

type Service struct {
	store  *Store
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

func NewService(store *Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the caller's preferences; missing or unreadable keys keep their defaults.
func (s *Service) Get(ctx context.Context, userID types.ID) (Preferences, error) {
	if userID == "" {
		return Preferences{}, ErrBadRequest
	}
	kv, err := s.store.Load(ctx, userID)
	if err != nil {
		return Preferences{}, err
	}
	return decode(kv, s.logger), nil
}

func (s *Service) Update(ctx context.Context, userID types.ID, p Preferences) (Preferences, error) {
	if userID == "" {
		return Preferences{}, ErrBadRequest
	}
	if err := p.Validate(); err != nil {
		return Preferences{}, err
	}
	if err := s.store.Replace(ctx, userID, encode(p)); err != nil {
		return Preferences{}, err
	}
	return p, nil
}

func (p Preferences) Validate() error {
	switch {
	case p.PreferredDurationMin <= 0 || p.PreferredDurationMin > 600:
		return fmt.Errorf("%w: preferred_duration_min must be in 1..600", ErrBadRequest)
	case p.MorningNotificationHour < 0 || p.MorningNotificationHour > 23:
		return fmt.Errorf("%w: morning_notification_hour must be in 0..23", ErrBadRequest)
	}
	switch p.WeatherSensitivity {
	case SensitivityLow, SensitivityMedium, SensitivityHigh:
	default:
		return fmt.Errorf("%w: unknown weather_sensitivity %q", ErrBadRequest, p.WeatherSensitivity)
	}
	if p.Units != types.UnitsMetric && p.Units != types.UnitsImperial {
		return fmt.Errorf("%w: unknown units %q", ErrBadRequest, p.Units)
	}
	switch p.TemperatureUnits {
	case Celsius, Fahrenheit:
	default:
		return fmt.Errorf("%w: unknown temperature_units %q", ErrBadRequest, p.TemperatureUnits)
	}
	return nil
}

func encode(p Preferences) map[string]string {
	return map[string]string{
		keyPreferredDuration:  strconv.Itoa(p.PreferredDurationMin),
		keyAvoidHighways:      strconv.FormatBool(p.AvoidHighways),
		keyPreferShaded:       strconv.FormatBool(p.PreferShadedRoutes),
		keyPreferQuiet:        strconv.FormatBool(p.PreferQuietStreets),
		keyWeatherSensitivity: string(p.WeatherSensitivity),
		keyUnits:              string(p.Units),
		keyTemperatureUnits:   string(p.TemperatureUnits),
		keyWeatherAlerts:      strconv.FormatBool(p.EnableWeatherAlerts),
		keyMorningNotify:      strconv.FormatBool(p.EnableMorningNotifications),
		keyMorningHour:        strconv.Itoa(p.MorningNotificationHour),
	}
}

func decode(kv map[string]string, logger *slog.Logger) Preferences {
	p := Defaults()
	for k, v := range kv {
		switch k {
		case keyPreferredDuration:
			parseInt(logger, k, v, &p.PreferredDurationMin)
		case keyAvoidHighways:
			parseBool(logger, k, v, &p.AvoidHighways)
		case keyPreferShaded:
			parseBool(logger, k, v, &p.PreferShadedRoutes)
		case keyPreferQuiet:
			parseBool(logger, k, v, &p.PreferQuietStreets)
		case keyWeatherSensitivity:
			p.WeatherSensitivity = Sensitivity(v)
		case keyUnits:
			p.Units = types.ParseUnits(v)
		case keyTemperatureUnits:
			p.TemperatureUnits = TemperatureUnits(v)
		case keyWeatherAlerts:
			parseBool(logger, k, v, &p.EnableWeatherAlerts)
		case keyMorningNotify:
			parseBool(logger, k, v, &p.EnableMorningNotifications)
		case keyMorningHour:
			parseInt(logger, k, v, &p.MorningNotificationHour)
		}
	}
	if p.Validate() != nil {
		logger.Warn("stored preferences invalid, using defaults")
		return Defaults()
	}
	return p
}

func parseInt(logger *slog.Logger, key, v string, dst *int) {
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn("ignoring unreadable preference", "key", key, "value", v)
		return
	}
	*dst = n
}

func parseBool(logger *slog.Logger, key, v string, dst *bool) {
	b, err := strconv.ParseBool(v)
	if err != nil {
		logger.Warn("ignoring unreadable preference", "key", key, "value", v)
		return
	}
	*dst = b
}
