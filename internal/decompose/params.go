package decompose

import (
	"errors"
	"fmt"

	"traffic-analytics/internal/domain"
)

// DefaultPeriod is the cycle length in grid steps for hourly traffic data:
// one day of hourly buckets.
const DefaultPeriod = 24

// ErrInsufficientData is the sentinel matched by errors.Is for series too
// short to decompose.
var ErrInsufficientData = errors.New("insufficient data for decomposition")

// InsufficientDataError reports a series below the 2*period floor, carrying
// the required minimum so callers can state it to the user.
type InsufficientDataError struct {
	N      int
	Period int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: decomposition needs at least %d points for period %d, got %d",
		2*e.Period, e.Period, e.N)
}

func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// Required returns the minimum series length for the period.
func (e *InsufficientDataError) Required() int {
	return 2 * e.Period
}

// MakeOdd coerces k to the nearest valid odd window: clamp to >= 3, then +1
// if even. Idempotent.
func MakeOdd(k int) int {
	if k < 3 {
		k = 3
	}
	if k%2 == 0 {
		k++
	}
	return k
}

// RobustParams derives the adaptive windows for the robust method from the
// series length:
//
//	seasonal = odd(min(max(11, period), max(7, n/8)))
//	trend    = odd(min(max(35, 5*period), max(7, n/2)))
//
// Robust weighting is always enabled for this method.
func RobustParams(n, period int) domain.DecompositionParams {
	seasonal := MakeOdd(min(max(11, period), max(7, n/8)))
	trend := MakeOdd(min(max(35, 5*period), max(7, n/2)))
	return domain.DecompositionParams{
		Period:         period,
		SeasonalWindow: seasonal,
		TrendWindow:    trend,
		Robust:         true,
	}
}
