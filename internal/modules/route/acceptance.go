// README: Acceptance policy for candidate paths.
package route

import "routeroll/internal/types"

// IsAcceptable accepts a path whose walked length is positive and does not
// exceed targetM. No lower bound is enforced.
func IsAcceptable(path []types.PathPoint, targetM float64) bool {
	if len(path) < 2 {
		return false
	}
	actual := PathLength(path)
	return actual > 0 && actual <= targetM
}
