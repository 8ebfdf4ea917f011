// README: User walking preferences and their defaults.
package preferences

import "routeroll/internal/types"

type Sensitivity string

const (
	SensitivityLow    Sensitivity = "low"
	SensitivityMedium Sensitivity = "medium"
	SensitivityHigh   Sensitivity = "high"
)

type TemperatureUnits string

const (
	Celsius    TemperatureUnits = "celsius"
	Fahrenheit TemperatureUnits = "fahrenheit"
)

type Preferences struct {
	PreferredDurationMin       int              `json:"preferred_duration_min"`
	AvoidHighways              bool             `json:"avoid_highways"`
	PreferShadedRoutes         bool             `json:"prefer_shaded_routes"`
	PreferQuietStreets         bool             `json:"prefer_quiet_streets"`
	WeatherSensitivity         Sensitivity      `json:"weather_sensitivity"`
	Units                      types.Units      `json:"units"`
	TemperatureUnits           TemperatureUnits `json:"temperature_units"`
	EnableWeatherAlerts        bool             `json:"enable_weather_alerts"`
	EnableMorningNotifications bool             `json:"enable_morning_notifications"`
	MorningNotificationHour    int              `json:"morning_notification_hour"`
}

func Defaults() Preferences {
	return Preferences{
		PreferredDurationMin:    30,
		WeatherSensitivity:      SensitivityMedium,
		Units:                   types.UnitsMetric,
		TemperatureUnits:        Celsius,
		MorningNotificationHour: 8,
	}
}

// stored keys
const (
	keyPreferredDuration  = "preferred_duration"
	keyAvoidHighways      = "avoid_highways"
	keyPreferShaded       = "prefer_shaded_routes"
	keyPreferQuiet        = "prefer_quiet_streets"
	keyWeatherSensitivity = "weather_sensitivity"
	keyUnits              = "units"
	keyTemperatureUnits   = "temperature_units"
	keyWeatherAlerts      = "enable_weather_alerts"
	keyMorningNotify      = "enable_morning_notifications"
	keyMorningHour        = "morning_notification_hour"
)
