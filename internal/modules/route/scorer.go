// README: Route scoring (difficulty, safety) and display naming.
package route

import (
	"fmt"
	"math"
	"strconv"

	"routeroll/internal/types"
)

const (
	easyLimitM     = 2000.0
	moderateLimitM = 5000.0

	baseSafetyScore = 85
	kmToMiles       = 0.621371
)

func ScoreDifficulty(distanceM float64) Difficulty {
	switch {
	case distanceM < easyLimitM:
		return DifficultyEasy
	case distanceM < moderateLimitM:
		return DifficultyModerate
	default:
		return DifficultyHard
	}
}

// SafetyScore subtracts independent weather and distance penalties from the
// base score, then clamps once to [0, 100].
func SafetyScore(distanceM float64, w types.WeatherSnapshot) int {
	score := baseSafetyScore

	switch {
	case w.PrecipitationMm > 10:
		score -= 20
	case w.PrecipitationMm > 2:
		score -= 10
	}

	switch {
	case w.WindSpeedKph > 25:
		score -= 15
	case w.WindSpeedKph > 15:
		score -= 5
	}

	if w.TemperatureC < 0 || w.TemperatureC > 35 {
		score -= 10
	}
	if distanceM > moderateLimitM {
		score -= 10
	}

	return max(0, min(100, score))
}

// RouteName renders e.g. "☀️ 2.4km Walk" or "🌧️ 1.5mi Walk".
func RouteName(distanceM float64, w types.WeatherSnapshot, units types.Units) string {
	icon := "🌧️"
	if w.Condition().Dry() {
		icon = "☀️"
	}

	km := distanceM / 1000
	if units == types.UnitsImperial {
		return fmt.Sprintf("%s %smi Walk", icon, oneDecimal(km*kmToMiles))
	}
	return fmt.Sprintf("%s %skm Walk", icon, oneDecimal(km))
}

func oneDecimal(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
}
