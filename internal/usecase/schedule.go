package usecase

import (
	"math/rand/v2"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"

	"github.com/iho/amlsynth/internal/domain"
)

// Scheduler picks event times and settlement times.
type Scheduler struct {
	rng      *rand.Rand
	calendar *cal.BusinessCalendar
}

// NewScheduler creates a Scheduler on the US federal banking calendar.
func NewScheduler(rng *rand.Rand) *Scheduler {
	c := cal.NewBusinessCalendar()
	c.AddHoliday(us.Holidays...)

	return &Scheduler{rng: rng, calendar: c}
}

// Between returns a uniformly random second in [floor, end].
func (s *Scheduler) Between(floor, end time.Time) time.Time {
	span := end.Sub(floor)
	if span <= 0 {
		return floor
	}

	secs := s.rng.Int64N(int64(span/time.Second) + 1)
	return floor.Add(time.Duration(secs) * time.Second)
}

// ForEntity returns a time in [start, end] inside the entity kind's usual
// activity hours. Companies transact on weekdays only.
func (s *Scheduler) ForEntity(start, end time.Time, kind domain.EntityKind) time.Time {
	open, closing := activityHours(kind)

	for range 20 {
		t := s.Between(start, end)
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		if kind == domain.EntityCompany && !isWeekday(day) {
			continue
		}

		secs := s.rng.Int64N(int64(closing-open) * 3600)
		candidate := day.Add(time.Duration(open)*time.Hour + time.Duration(secs)*time.Second)
		if candidate.Before(start) || candidate.After(end) {
			continue
		}

		return candidate
	}

	return s.Between(start, end)
}

// PostDate returns a settlement time strictly after ts, inside banking hours
// on a business day within PostDateWindow. When no slot is found it falls
// back to 09:00 on the next business day.
func (s *Scheduler) PostDate(ts time.Time) time.Time {
	window := int64(PostDateWindow / time.Second)

	for range postDateAttempts {
		candidate := ts.Add(time.Duration(1+s.rng.Int64N(window)) * time.Second)
		if s.IsBankingTime(candidate) {
			return candidate
		}
	}

	return s.nextBusinessMorning(ts)
}

// IsBankingTime reports whether t falls within banking hours on a business day.
func (s *Scheduler) IsBankingTime(t time.Time) bool {
	if !s.calendar.IsWorkday(t) {
		return false
	}

	h := t.Hour()
	return h >= bankOpenHour && h < bankCloseHour
}

func (s *Scheduler) nextBusinessMorning(ts time.Time) time.Time {
	day := time.Date(ts.Year(), ts.Month(), ts.Day(), bankOpenHour, 0, 0, 0, ts.Location())
	for {
		day = day.AddDate(0, 0, 1)
		if s.calendar.IsWorkday(day) {
			return day
		}
	}
}

// Lag returns a random pause between two chain hops.
func (s *Scheduler) Lag() time.Duration {
	minutes := ChainHopMinLag / time.Minute
	span := int64((ChainHopMaxLag - ChainHopMinLag) / time.Minute)
	return time.Duration(int64(minutes)+s.rng.Int64N(span+1)) * time.Minute
}

func activityHours(kind domain.EntityKind) (open, closing int) {
	if kind == domain.EntityCompany {
		return 8, 18
	}
	return 7, 22
}

func isWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}
