package clock

import (
	"fmt"
	"time"

	"github.com/procurehq/intake/internal/config"
	"go.uber.org/fx"
)

// Clock supplies the current time. Submission timestamps and PO number
// buckets are derived from it, so tests can pin it.
type Clock interface {
	Now() time.Time
}

type systemClock struct {
	loc *time.Location
}

func (c *systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// Module provides a Clock in the configured timezone.
var Module = fx.Provide(New)

// New returns a Clock reading the wall clock in cfg.Timezone.
func New(cfg config.Config) (Clock, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	return &systemClock{loc: loc}, nil
}
