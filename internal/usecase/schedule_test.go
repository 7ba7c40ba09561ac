package usecase_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iho/amlsynth/internal/domain"
	"github.com/iho/amlsynth/internal/usecase"
)

func newScheduler(seed uint64) *usecase.Scheduler {
	return usecase.NewScheduler(rand.New(rand.NewPCG(seed, seed)))
}

func TestScheduler_Between(t *testing.T) {
	s := newScheduler(1)
	floor, end := ts(t, "2025-03-01 00:00:00"), ts(t, "2025-03-02 00:00:00")

	for range 500 {
		got := s.Between(floor, end)
		assert.False(t, got.Before(floor))
		assert.False(t, got.After(end))
	}

	assert.Equal(t, floor, s.Between(floor, floor))
	assert.Equal(t, end, s.Between(end, floor), "an empty range collapses to the floor")
}

func TestScheduler_IsBankingTime(t *testing.T) {
	s := newScheduler(1)

	tests := []struct {
		at   string
		want bool
	}{
		{"2025-07-07 10:00:00", true},
		{"2025-07-07 09:00:00", true},
		{"2025-07-07 08:59:59", false},
		{"2025-07-07 17:00:00", false},
		{"2025-07-05 11:00:00", false},
		{"2025-07-04 11:00:00", false},
		{"2025-12-25 11:00:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.at, func(t *testing.T) {
			assert.Equal(t, tt.want, s.IsBankingTime(ts(t, tt.at)))
		})
	}
}

func TestScheduler_PostDate(t *testing.T) {
	s := newScheduler(3)
	base := ts(t, "2025-06-27 16:59:00")

	for i := range 300 {
		at := base.Add(time.Duration(i) * 37 * time.Minute)
		post := s.PostDate(at)

		assert.True(t, post.After(at), "post date %s not after %s", post, at)
		assert.True(t, s.IsBankingTime(post), "post date %s outside banking hours", post)
	}
}

func TestScheduler_ForEntity(t *testing.T) {
	s := newScheduler(5)
	start, end := ts(t, "2025-02-01 00:00:00"), ts(t, "2025-02-28 23:59:59")

	for range 300 {
		got := s.ForEntity(start, end, domain.EntityCompany)
		assert.False(t, got.Before(start))
		assert.False(t, got.After(end))
		assert.NotEqual(t, time.Saturday, got.Weekday())
		assert.NotEqual(t, time.Sunday, got.Weekday())
		assert.GreaterOrEqual(t, got.Hour(), 8)
		assert.Less(t, got.Hour(), 18)

		p := s.ForEntity(start, end, domain.EntityPerson)
		assert.GreaterOrEqual(t, p.Hour(), 7)
		assert.Less(t, p.Hour(), 22)
	}
}

func TestScheduler_Lag(t *testing.T) {
	s := newScheduler(9)

	for range 500 {
		lag := s.Lag()
		assert.GreaterOrEqual(t, int64(lag), int64(usecase.ChainHopMinLag))
		assert.LessOrEqual(t, int64(lag), int64(usecase.ChainHopMaxLag))
		assert.Zero(t, lag%time.Minute)
	}
}
