package service

import (
	"fmt"
	"testing"

	"stackwise_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForecastZeroVelocityHitsSentinel(t *testing.T) {
	s := NewForecastService()
	totals := map[model.Domain]int{model.DomainDSA: 10}

	forecast := s.Compute(totals, nil, model.GoalEngineMetrics{}, anchor)
	require.Len(t, forecast.Domains, 1)

	d := forecast.Domains[0]
	assert.Equal(t, model.DomainDSA, d.Domain)
	assert.Equal(t, 10, d.RemainingItems)
	assert.Equal(t, ForecastUnreachable, d.EstimatedDays)
	assert.Zero(t, d.Velocity)
}

func TestForecastFinishedDomainIsZero(t *testing.T) {
	s := NewForecastService()
	totals := map[model.Domain]int{model.DomainDSA: 2}
	history := []model.GoalHistoryLog{
		completedLogAt("a", model.DomainDSA, anchor.AddDate(0, 0, -2)),
		completedLogAt("b", model.DomainDSA, anchor.AddDate(0, 0, -1)),
	}

	forecast := s.Compute(totals, history, model.GoalEngineMetrics{}, anchor)
	require.Len(t, forecast.Domains, 1)
	assert.Zero(t, forecast.Domains[0].RemainingItems)
	assert.Zero(t, forecast.Domains[0].EstimatedDays)
}

func TestForecastProjectsCalendarDays(t *testing.T) {
	s := NewForecastService()
	totals := map[model.Domain]int{model.DomainDSA: 10}

	// 最近 14 天中有 7 个活跃日，每天完成 1 项
	var history []model.GoalHistoryLog
	for d := 1; d <= 7; d++ {
		history = append(history, completedLogAt(fmt.Sprintf("it-%d", d), model.DomainDSA, anchor.AddDate(0, 0, -d)))
	}

	forecast := s.Compute(totals, history, model.GoalEngineMetrics{}, anchor)
	require.Len(t, forecast.Domains, 1)

	d := forecast.Domains[0]
	assert.Equal(t, 3, d.RemainingItems)
	// 速度 1/日，进度 70% 加成 ×1.35 → 活跃日 ETA 3，活跃占比 0.5 → 日历日 6
	assert.InDelta(t, 1.35, d.Velocity, 1e-9)
	assert.Equal(t, 6, d.EstimatedDays)
	assert.Equal(t, 7, forecast.BasedOn.TotalDone)
	// 7 项完成 / 7 个活跃日
	assert.InDelta(t, 1.0, forecast.BasedOn.AvgDailyLoad, 1e-9)
}

func TestForecastStreakMultiplier(t *testing.T) {
	s := NewForecastService()
	totals := map[model.Domain]int{model.DomainDSA: 100}
	history := []model.GoalHistoryLog{
		completedLogAt("a", model.DomainDSA, anchor.AddDate(0, 0, -1)),
	}

	base := s.Compute(totals, history, model.GoalEngineMetrics{}, anchor)
	boosted := s.Compute(totals, history, model.GoalEngineMetrics{ConsistencyStreak: 10}, anchor)

	require.Len(t, base.Domains, 1)
	require.Len(t, boosted.Domains, 1)
	assert.Greater(t, boosted.Domains[0].Velocity, base.Domains[0].Velocity)
	// 连胜加成上限 20%
	assert.LessOrEqual(t, boosted.Domains[0].Velocity, base.Domains[0].Velocity*1.2+1e-9)
}

func TestForecastOmitsEmptyDomains(t *testing.T) {
	s := NewForecastService()
	totals := map[model.Domain]int{model.DomainDSA: 5, model.DomainCore: 0}

	forecast := s.Compute(totals, nil, model.GoalEngineMetrics{}, anchor)
	require.Len(t, forecast.Domains, 1)
	assert.Equal(t, model.DomainDSA, forecast.Domains[0].Domain)
}
