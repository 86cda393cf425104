package service

import (
	"sort"
	"time"

	"stackwise_backend/internal/model"
	"stackwise_backend/internal/util"
)

const streakWindowDays = 30

// MetricsService 指标追踪器：仅从历史记录整体重算滚动性能快照
type MetricsService struct{}

func NewMetricsService() *MetricsService {
	return &MetricsService{}
}

// Compute 重算全部引擎指标
func (s *MetricsService) Compute(history []model.GoalHistoryLog, totalGoals int, currentMode model.EngineMode, now time.Time) model.GoalEngineMetrics {
	byDate := make(map[string]*model.GoalHistoryLog, len(history))
	for i := range history {
		byDate[history[i].Date] = &history[i]
	}

	streak, maxStreak := s.streaks(byDate, now)
	completionRate, skippedRate := s.completionRates(history, util.DateOf(now))
	earlyRate := s.earlyCompletionRate(history)
	avgMinutes := s.avgTimePerTask(history)

	return model.GoalEngineMetrics{
		TotalGoalsGenerated: totalGoals,
		AvgCompletionRate:   completionRate,
		ConsistencyStreak:   streak,
		MaxStreak:           maxStreak,
		CurrentMode:         currentMode,
		SkippedRate:         skippedRate,
		EarlyCompletionRate: earlyRate,
		AvgTimePerTask:      avgMinutes,
		PreferredTimesOfDay: s.preferredTimes(history),
	}
}

// streaks 从今天起向前最多回溯 30 天：连续有完成动作的天数即连胜，
// 今天还没有完成不打断；同窗口内同时求历史最长连胜
func (s *MetricsService) streaks(byDate map[string]*model.GoalHistoryLog, now time.Time) (int, int) {
	active := make([]bool, streakWindowDays) // active[0] = 今天
	for offset := 0; offset < streakWindowDays; offset++ {
		date := util.DateOf(now.AddDate(0, 0, -offset))
		if log, ok := byDate[date]; ok && log.CompletedCount() > 0 {
			active[offset] = true
		}
	}

	streak := 0
	for offset := 0; offset < streakWindowDays; offset++ {
		if active[offset] {
			streak++
			continue
		}
		if offset == 0 {
			// 今天尚无完成不算断档
			continue
		}
		break
	}

	maxStreak, run := 0, 0
	for offset := streakWindowDays - 1; offset >= 0; offset-- {
		if active[offset] {
			run++
			if run > maxStreak {
				maxStreak = run
			}
		} else {
			run = 0
		}
	}
	if streak > maxStreak {
		maxStreak = streak
	}
	return streak, maxStreak
}

// completionRates 只统计截至今天的记录，未来日期的预建记录不拉低完成率
func (s *MetricsService) completionRates(history []model.GoalHistoryLog, today string) (float64, float64) {
	total, completed := 0, 0
	for _, log := range history {
		if log.Date > today {
			continue
		}
		total += len(log.Actions)
		completed += log.CompletedCount()
	}
	if total == 0 {
		return 0, 0
	}
	rate := float64(completed) / float64(total)
	return rate, 1 - rate
}

func (s *MetricsService) earlyCompletionRate(history []model.GoalHistoryLog) float64 {
	completed, early := 0, 0
	for _, log := range history {
		date, err := util.ParseDate(log.Date)
		if err != nil {
			continue
		}
		for _, a := range log.Actions {
			if !a.IsCompleted {
				continue
			}
			completed++
			if a.StartedAt == nil || a.ScheduledStart == "" {
				continue
			}
			scheduled, err := util.ParseClock(date, a.ScheduledStart)
			if err != nil {
				continue
			}
			if a.StartedAt.Before(scheduled) {
				early++
			}
		}
	}
	if completed == 0 {
		return 0
	}
	return float64(early) / float64(completed)
}

func (s *MetricsService) avgTimePerTask(history []model.GoalHistoryLog) float64 {
	var total float64
	n := 0
	for _, log := range history {
		for _, a := range log.Actions {
			if a.StartedAt == nil || a.CompletedAt == nil {
				continue
			}
			total += a.CompletedAt.Sub(*a.StartedAt).Minutes()
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// preferredTimes 统计动作开始时刻的时段分布，返回出现最多的前两个
func (s *MetricsService) preferredTimes(history []model.GoalHistoryLog) []model.TimeOfDay {
	counts := make(map[model.TimeOfDay]int)
	for _, log := range history {
		for _, a := range log.Actions {
			if a.StartedAt == nil {
				continue
			}
			counts[bucketOf(a.StartedAt.Hour())]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	buckets := []model.TimeOfDay{model.TimeMorning, model.TimeEvening, model.TimeNight}
	sort.SliceStable(buckets, func(i, j int) bool {
		return counts[buckets[i]] > counts[buckets[j]]
	})

	top := make([]model.TimeOfDay, 0, 2)
	for _, b := range buckets {
		if counts[b] == 0 || len(top) == 2 {
			break
		}
		top = append(top, b)
	}
	return top
}

func bucketOf(hour int) model.TimeOfDay {
	switch {
	case hour < 12:
		return model.TimeMorning
	case hour < 18:
		return model.TimeEvening
	default:
		return model.TimeNight
	}
}
