// README: Weather value object shared by the weather client and route scoring.
package types

type WeatherSnapshot struct {
	TemperatureC    float64 `json:"temperature_c"`
	Humidity        float64 `json:"humidity"`
	WindSpeedKph    float64 `json:"wind_speed_kph"`
	WindDegree      float64 `json:"wind_degree"`
	PrecipitationMm float64 `json:"precipitation_mm"`
	ConditionCode   int     `json:"condition_code"`
	Description     string  `json:"description"`
}

type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

// ParseUnits falls back to metric for anything it does not recognise.
func ParseUnits(s string) Units {
	if Units(s) == UnitsImperial {
		return UnitsImperial
	}
	return UnitsMetric
}

// Condition is a provider-neutral weather group. Values reuse the
// OpenWeatherMap group codes.
type Condition int

const (
	ConditionUnknown      Condition = 0
	ConditionThunderstorm Condition = 200
	ConditionRain         Condition = 300
	ConditionSnow         Condition = 600
	ConditionClear        Condition = 800
	ConditionCloudy       Condition = 804
)

var (
	weatherAPIThunder = map[int]bool{1087: true, 1273: true, 1276: true, 1279: true, 1282: true}
	weatherAPISnow    = map[int]bool{
		1066: true, 1069: true, 1072: true, 1114: true, 1117: true, 1168: true, 1171: true,
		1204: true, 1207: true, 1210: true, 1213: true, 1216: true, 1219: true, 1222: true,
		1225: true, 1237: true, 1249: true, 1252: true, 1255: true, 1258: true, 1261: true, 1264: true,
	}
)

// NormalizeCondition maps weatherapi.com (1000+) and OpenWeatherMap (200-804)
// condition codes onto one Condition.
func NormalizeCondition(code int) Condition {
	switch {
	case code >= 1000 && code <= 1003:
		return ConditionClear
	case code >= 1006 && code <= 1009:
		return ConditionCloudy
	case weatherAPIThunder[code]:
		return ConditionThunderstorm
	case weatherAPISnow[code]:
		return ConditionSnow
	case code >= 1063:
		return ConditionRain
	case code >= 1000:
		// mist and fog
		return ConditionClear
	case code >= 200 && code < 300:
		return ConditionThunderstorm
	case code >= 300 && code < 600:
		return ConditionRain
	case code >= 600 && code < 700:
		return ConditionSnow
	case code >= 700 && code <= 800:
		return ConditionClear
	case code > 800 && code <= 804:
		return ConditionCloudy
	}
	return ConditionUnknown
}

// Dry reports whether the condition names a fair-weather walk.
func (c Condition) Dry() bool {
	return c == ConditionClear || c == ConditionCloudy
}

func (w WeatherSnapshot) Condition() Condition {
	return NormalizeCondition(w.ConditionCode)
}
