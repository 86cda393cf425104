package service

import (
	"math"
	"sort"
	"time"

	"stackwise_backend/internal/config"
	"stackwise_backend/internal/model"
	"stackwise_backend/internal/util"
)

const manualModeHonorDays = 2

// ModeService 模式控制器：根据指标与近期历史在五种运行模式间切换，
// 并把模式映射为负载/复习比/难度上限的派生设置
type ModeService struct {
	Engine config.EngineConfig
}

func NewModeService(engineCfg config.EngineConfig) *ModeService {
	return &ModeService{Engine: engineCfg}
}

// DetermineOptimalMode 纯函数：同样输入总是得到同一模式
// 用户在近 2 天内手动改过模式时原样保留
func (s *ModeService) DetermineOptimalMode(metrics model.GoalEngineMetrics, history []model.GoalHistoryLog, cfg model.UserGoalConfig, now time.Time) model.EngineMode {
	if cfg.ModeSetManually && now.Sub(cfg.UpdatedAt) < manualModeHonorDays*24*time.Hour {
		return cfg.Mode
	}

	hasStreak := metrics.ConsistencyStreak > 3
	poorCompletion := metrics.AvgCompletionRate < 0.5
	goodCompletion := metrics.AvgCompletionRate > 0.8
	recentRate := recentCompletionRate(history, 3, now)

	switch {
	case !hasStreak && poorCompletion:
		return model.ModeRecovery
	case hasStreak && recentRate < 0.4:
		return model.ModeLowLoad
	case hasStreak && recentRate > 0.9:
		return model.ModeBoost
	case hasStreak && goodCompletion:
		return model.ModeNormal
	default:
		return model.ModeLight
	}
}

// ApplyMode 把模式确定性地映射到配置旋钮，写入 updatedAt
// 自动切换会清掉手动标记
func (s *ModeService) ApplyMode(cfg *model.UserGoalConfig, mode model.EngineMode, now time.Time) {
	baseLoad := float64(s.Engine.PreferredDailyLoad)
	baseRevision := s.Engine.RevisionIntensity

	switch mode {
	case model.ModeBoost:
		cfg.PreferredDailyLoad = roundLoad(baseLoad * 1.5)
		cfg.RevisionIntensity = baseRevision * 0.8
		cfg.MaxDifficulty = model.DifficultyHard
	case model.ModeLight:
		cfg.PreferredDailyLoad = roundLoad(baseLoad * 0.7)
		cfg.RevisionIntensity = baseRevision * 1.2
		cfg.MaxDifficulty = model.DifficultyHard
	case model.ModeLowLoad:
		cfg.PreferredDailyLoad = roundLoad(baseLoad * 0.5)
		cfg.RevisionIntensity = baseRevision * 1.5
		cfg.MaxDifficulty = model.DifficultyEasy
	case model.ModeRecovery:
		cfg.PreferredDailyLoad = roundLoad(baseLoad * 0.3)
		cfg.RevisionIntensity = 0.5
		cfg.MaxDifficulty = model.DifficultyEasy
	default:
		cfg.PreferredDailyLoad = roundLoad(baseLoad)
		cfg.RevisionIntensity = baseRevision
		cfg.MaxDifficulty = model.DifficultyHard
	}

	if cfg.RevisionIntensity > 0.9 {
		cfg.RevisionIntensity = 0.9
	}

	cfg.Mode = mode
	cfg.ModeSetManually = false
	cfg.UpdatedAt = now
}

func roundLoad(v float64) int {
	n := int(math.Round(v))
	if n < 1 {
		n = 1
	}
	return n
}

// recentCompletionRate 截至今天最近至多 maxDays 个有记录日期的平均完成率
// 历史里为未来日期预建的记录不算近期表现
func recentCompletionRate(history []model.GoalHistoryLog, maxDays int, now time.Time) float64 {
	today := util.DateOf(now)
	logs := make([]model.GoalHistoryLog, 0, len(history))
	for _, log := range history {
		if log.Date > today {
			continue
		}
		logs = append(logs, log)
	}
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].Date > logs[j].Date
	})

	var sum float64
	n := 0
	for _, log := range logs {
		if n == maxDays {
			break
		}
		if len(log.Actions) == 0 {
			continue
		}
		sum += float64(log.CompletedCount()) / float64(len(log.Actions))
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
