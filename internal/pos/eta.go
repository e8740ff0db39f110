package pos

import "time"

// Remaining reports the minutes left on an order's cook-time estimate.
// Minutes are rounded up so a countdown never shows zero while time
// remains. tracked is false when the order carries no estimate; overdue
// is true once the estimate has fully elapsed.
func Remaining(o *Order, now time.Time) (minutes int, overdue bool, tracked bool) {
	if o.EstimatedMinutes == nil || o.CookingStartedAt == nil {
		return 0, false, false
	}

	end := o.CookingStartedAt.Add(time.Duration(*o.EstimatedMinutes) * time.Minute)
	left := end.Sub(now)
	if left <= 0 {
		return 0, true, true
	}

	minutes = int(left / time.Minute)
	if left%time.Minute != 0 {
		minutes++
	}
	return minutes, false, true
}
