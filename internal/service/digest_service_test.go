package service

import (
	"testing"
	"time"

	"stackwise_backend/internal/model"
	"stackwise_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestWeeklyWindow(t *testing.T) {
	s := NewDigestService()
	history := []model.GoalHistoryLog{
		{
			Date: util.DateOf(anchor.AddDate(0, 0, -2)),
			Actions: []model.ActionLog{
				{ID: "a", Domain: model.DomainDSA, IsCompleted: true, ScheduledStart: "09:00"},
				{ID: "b", Domain: model.DomainDSA, IsCompleted: false},
			},
		},
		{
			// 窗口之外
			Date: util.DateOf(anchor.AddDate(0, 0, -10)),
			Actions: []model.ActionLog{
				{ID: "old", Domain: model.DomainCore, IsCompleted: true},
			},
		},
	}

	digest := s.Build(history, model.TimeframeWeekly, anchor)
	assert.Equal(t, model.TimeframeWeekly, digest.Timeframe)
	assert.Equal(t, 2, digest.TotalActions)
	assert.Equal(t, 1, digest.CompletedActions)
	assert.Equal(t, 1, digest.SkippedActions)
}

func TestDigestMissedDayThreshold(t *testing.T) {
	s := NewDigestService()
	history := []model.GoalHistoryLog{
		{
			// 1/2 = 50% < 70%，算漏学日
			Date: util.DateOf(anchor.AddDate(0, 0, -1)),
			Actions: []model.ActionLog{
				{ID: "a", Domain: model.DomainDSA, IsCompleted: true},
				{ID: "b", Domain: model.DomainDSA, IsCompleted: false},
			},
		},
		{
			// 2/2 = 100%
			Date: util.DateOf(anchor.AddDate(0, 0, -2)),
			Actions: []model.ActionLog{
				{ID: "c", Domain: model.DomainDSA, IsCompleted: true},
				{ID: "d", Domain: model.DomainDSA, IsCompleted: true},
			},
		},
	}

	digest := s.Build(history, model.TimeframeWeekly, anchor)
	assert.Equal(t, 1, digest.MissedDays)
}

func TestDigestBonusAndDomainsAndMood(t *testing.T) {
	s := NewDigestService()
	history := []model.GoalHistoryLog{
		{
			Date: util.DateOf(anchor.AddDate(0, 0, -1)),
			Mood: "good",
			Actions: []model.ActionLog{
				{ID: "a", Domain: model.DomainDSA, IsCompleted: true, ScheduledStart: "09:00", TopicTitle: "Arrays"},
				{ID: "b", Domain: model.DomainDSA, IsCompleted: true, TopicTitle: "Arrays"}, // 计划外
				{ID: "c", Domain: model.DomainCore, IsCompleted: false},
			},
		},
	}

	digest := s.Build(history, model.TimeframeWeekly, anchor)
	assert.Equal(t, 1, digest.BonusActions)
	assert.Equal(t, model.DomainDSA, digest.TopDomain)
	assert.Equal(t, model.DomainCore, digest.WeakDomain)
	assert.Equal(t, "Arrays", digest.MostStudiedTopic)
	assert.Equal(t, map[string]int{"good": 1}, digest.MoodSummary)

	require.Len(t, digest.Domains, 2)
}

func TestDigestDailyOnlyToday(t *testing.T) {
	s := NewDigestService()
	history := []model.GoalHistoryLog{
		{
			Date:    util.DateOf(anchor),
			Actions: []model.ActionLog{{ID: "a", Domain: model.DomainDSA, IsCompleted: true}},
		},
		{
			Date:    util.DateOf(anchor.AddDate(0, 0, -1)),
			Actions: []model.ActionLog{{ID: "b", Domain: model.DomainDSA, IsCompleted: true}},
		},
	}

	digest := s.Build(history, model.TimeframeDaily, anchor)
	assert.Equal(t, 1, digest.TotalActions)
}

func TestAppendHourlySnapshotIsAdditive(t *testing.T) {
	s := NewDigestService()
	goal := dayGoal(util.DateOf(anchor), []model.PlannedAction{
		learnAction("a", model.DifficultyMedium),
		learnAction("b", model.DifficultyMedium),
	}, "a")
	day, err := util.ParseDate(util.DateOf(anchor))
	require.NoError(t, err)
	started, err := util.ParseClock(day, "08:30")
	require.NoError(t, err)
	log := &model.GoalHistoryLog{
		Date: util.DateOf(anchor),
		Actions: []model.ActionLog{
			{ID: "a", IsCompleted: true, StartedAt: &started, ScheduledStart: "09:00"},
			{ID: "b", WasRescheduled: true},
		},
	}

	s.AppendHourlySnapshot(log, &goal, anchor)
	s.AppendHourlySnapshot(log, &goal, anchor.Add(time.Hour))

	require.Len(t, log.HourlyStats, 2)
	snap := log.HourlyStats[0]
	assert.Equal(t, 2, snap.TotalActions)
	assert.Equal(t, 1, snap.CompletedActions)
	assert.Equal(t, 1, snap.RemainingActions)
	assert.Equal(t, 1, snap.StartedBeforePlan)
	assert.Equal(t, 1, snap.Rescheduled)
}

func TestAppendHourlySnapshotNilLog(t *testing.T) {
	s := NewDigestService()
	// 当天没有历史记录时静默跳过
	s.AppendHourlySnapshot(nil, nil, anchor)
}
