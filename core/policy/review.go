package policy

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

const DefaultReviewSchedule = "@yearly"

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ReviewCycle computes the next review date of a policy from a cron
// schedule such as "@yearly" or "0 0 1 */6 *".
type ReviewCycle struct {
	spec     string
	schedule cron.Schedule
}

func NewReviewCycle(spec string) (ReviewCycle, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		spec = DefaultReviewSchedule
	}
	s, err := scheduleParser.Parse(spec)
	if err != nil {
		return ReviewCycle{}, fmt.Errorf("review schedule %q: %w", spec, err)
	}
	return ReviewCycle{spec: spec, schedule: s}, nil
}

func (r ReviewCycle) Spec() string { return r.spec }

// Next returns the first scheduled review strictly after from.
func (r ReviewCycle) Next(from time.Time) time.Time {
	if r.schedule == nil {
		return from.AddDate(1, 0, 0)
	}
	return r.schedule.Next(from)
}
