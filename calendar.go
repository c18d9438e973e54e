package borsa

import (
	"context"
	"time"
)

// EconomicCalendar returns the economic events for a day. The calendar
// is best-effort enrichment: failures yield an empty day, never an
// error, so callers can always range over the result.
func (c *Client) EconomicCalendar(ctx context.Context, day time.Time) []EconomicEvent {
	return c.calendar.Events(ctx, day)
}
