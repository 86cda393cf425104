package service

import (
	"testing"
	"time"

	"stackwise_backend/internal/config"
	"stackwise_backend/internal/model"
	"stackwise_backend/internal/util"

	"github.com/stretchr/testify/assert"
)

func testModeService() *ModeService {
	return NewModeService(config.EngineConfig{
		PreferredDailyLoad: 5,
		RevisionIntensity:  0.3,
	})
}

// recentHistory 构造最近 days 天、每天 total 项 completed 项的历史
func recentHistory(days, total, completed int, now time.Time) []model.GoalHistoryLog {
	var logs []model.GoalHistoryLog
	for d := 1; d <= days; d++ {
		log := model.GoalHistoryLog{Date: util.DateOf(now.AddDate(0, 0, -d))}
		for i := 0; i < total; i++ {
			log.Actions = append(log.Actions, model.ActionLog{
				ID:          "x",
				Domain:      model.DomainDSA,
				Type:        model.ActionLearn,
				IsCompleted: i < completed,
			})
		}
		logs = append(logs, log)
	}
	return logs
}

func TestDetermineModeTransitions(t *testing.T) {
	s := testModeService()

	tests := []struct {
		name    string
		metrics model.GoalEngineMetrics
		history []model.GoalHistoryLog
		want    model.EngineMode
	}{
		{
			name:    "无连胜且完成率低进入恢复",
			metrics: model.GoalEngineMetrics{ConsistencyStreak: 0, AvgCompletionRate: 0.3},
			want:    model.ModeRecovery,
		},
		{
			name:    "有连胜但近期乏力降低负载",
			metrics: model.GoalEngineMetrics{ConsistencyStreak: 5, AvgCompletionRate: 0.6},
			history: recentHistory(3, 5, 1, anchor),
			want:    model.ModeLowLoad,
		},
		{
			name:    "有连胜且近期全勤进入冲刺",
			metrics: model.GoalEngineMetrics{ConsistencyStreak: 5, AvgCompletionRate: 0.85},
			history: recentHistory(3, 4, 4, anchor),
			want:    model.ModeBoost,
		},
		{
			name:    "有连胜且整体良好回到常规",
			metrics: model.GoalEngineMetrics{ConsistencyStreak: 5, AvgCompletionRate: 0.85},
			history: recentHistory(3, 4, 2, anchor),
			want:    model.ModeNormal,
		},
		{
			name:    "其余情况轻量",
			metrics: model.GoalEngineMetrics{ConsistencyStreak: 0, AvgCompletionRate: 0.6},
			want:    model.ModeLight,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.DetermineOptimalMode(tt.metrics, tt.history, model.UserGoalConfig{}, anchor)
			assert.Equal(t, tt.want, got)
		})
	}
}

// futureHistory 构造生成器预建的未来记录：明天起 days 天，每天 total 项计划、零完成
func futureHistory(days, total int, now time.Time) []model.GoalHistoryLog {
	var logs []model.GoalHistoryLog
	for d := 1; d <= days; d++ {
		log := model.GoalHistoryLog{Date: util.DateOf(now.AddDate(0, 0, d))}
		for i := 0; i < total; i++ {
			log.Actions = append(log.Actions, model.ActionLog{
				ID:     "f",
				Domain: model.DomainDSA,
				Type:   model.ActionLearn,
			})
		}
		logs = append(logs, log)
	}
	return logs
}

func TestDetermineModeIgnoresFutureLogs(t *testing.T) {
	s := testModeService()

	// 生成周期会为整个 7 天窗口预建历史记录，
	// 未来几天的零完成不应把全勤用户压成低负载
	history := recentHistory(5, 4, 4, anchor)
	history = append(history, futureHistory(6, 4, anchor)...)
	metrics := model.GoalEngineMetrics{ConsistencyStreak: 5, AvgCompletionRate: 1.0}

	got := s.DetermineOptimalMode(metrics, history, model.UserGoalConfig{}, anchor)
	assert.Equal(t, model.ModeBoost, got)
}

func TestDetermineModeIsDeterministic(t *testing.T) {
	s := testModeService()
	metrics := model.GoalEngineMetrics{ConsistencyStreak: 5, AvgCompletionRate: 0.85}
	history := recentHistory(3, 4, 4, anchor)

	first := s.DetermineOptimalMode(metrics, history, model.UserGoalConfig{}, anchor)
	second := s.DetermineOptimalMode(metrics, history, model.UserGoalConfig{}, anchor)
	assert.Equal(t, first, second)
}

func TestDetermineModeHonorsManualOverride(t *testing.T) {
	s := testModeService()
	metrics := model.GoalEngineMetrics{ConsistencyStreak: 0, AvgCompletionRate: 0.3}

	cfg := model.UserGoalConfig{
		Mode:            model.ModeBoost,
		ModeSetManually: true,
		UpdatedAt:       anchor.AddDate(0, 0, -1),
	}
	assert.Equal(t, model.ModeBoost, s.DetermineOptimalMode(metrics, nil, cfg, anchor))

	// 两天过后手动选择过期，重新评估
	cfg.UpdatedAt = anchor.AddDate(0, 0, -3)
	assert.Equal(t, model.ModeRecovery, s.DetermineOptimalMode(metrics, nil, cfg, anchor))
}

func TestApplyModeDerivesSettings(t *testing.T) {
	s := testModeService()

	tests := []struct {
		mode          model.EngineMode
		wantLoad      int
		wantIntensity float64
		wantMax       model.DifficultyLevel
	}{
		{model.ModeNormal, 5, 0.3, model.DifficultyHard},
		{model.ModeBoost, 8, 0.24, model.DifficultyHard},
		{model.ModeLight, 4, 0.36, model.DifficultyHard},
		{model.ModeLowLoad, 3, 0.45, model.DifficultyEasy},
		{model.ModeRecovery, 2, 0.5, model.DifficultyEasy},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			cfg := model.UserGoalConfig{ModeSetManually: true}
			s.ApplyMode(&cfg, tt.mode, anchor)

			assert.Equal(t, tt.mode, cfg.Mode)
			assert.Equal(t, tt.wantLoad, cfg.PreferredDailyLoad)
			assert.InDelta(t, tt.wantIntensity, cfg.RevisionIntensity, 1e-9)
			assert.Equal(t, tt.wantMax, cfg.MaxDifficulty)
			assert.False(t, cfg.ModeSetManually)
			assert.Equal(t, anchor, cfg.UpdatedAt)
		})
	}
}

func TestApplyModeCapsRevisionIntensity(t *testing.T) {
	s := NewModeService(config.EngineConfig{PreferredDailyLoad: 5, RevisionIntensity: 0.8})
	cfg := model.UserGoalConfig{}
	s.ApplyMode(&cfg, model.ModeLowLoad, anchor)

	// 0.8 * 1.5 = 1.2 压回上限
	assert.InDelta(t, 0.9, cfg.RevisionIntensity, 1e-9)
}
