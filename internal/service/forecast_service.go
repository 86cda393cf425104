package service

import (
	"math"
	"time"

	"stackwise_backend/internal/model"
	"stackwise_backend/internal/util"
)

const (
	forecastWindowDays    = 30
	activeRatioWindowDays = 14
	// ForecastUnreachable 速度为零时的 ETA 哨兵值
	ForecastUnreachable = 999
)

// ForecastService 预测计算器：按领域从完成速度和活跃天占比投影完成 ETA
type ForecastService struct{}

func NewForecastService() *ForecastService {
	return &ForecastService{}
}

// Compute 重算各领域的完成预测
func (s *ForecastService) Compute(totals map[model.Domain]int, history []model.GoalHistoryLog, metrics model.GoalEngineMetrics, now time.Time) *model.GoalForecast {
	completedByDomain, activeDaysByDomain, totalDone, activeDays := s.completionWindow(history, now)
	activeRatio := s.activeRatio(history, now)
	streakMultiplier := 1 + math.Min(0.2, float64(metrics.ConsistencyStreak)/50)

	totalItems := 0
	for _, n := range totals {
		totalItems += n
	}

	// 每活跃日平均完成数
	avgDailyLoad := 0.0
	if activeDays > 0 {
		avgDailyLoad = float64(totalDone) / float64(activeDays)
	}

	forecast := &model.GoalForecast{
		BasedOn: model.ForecastBasis{
			AvgDailyLoad: avgDailyLoad,
			Streak:       metrics.ConsistencyStreak,
			MissedDays:   missedDaysIn(history, now, activeRatioWindowDays),
			TotalItems:   totalItems,
			TotalDone:    totalDone,
		},
		GeneratedAt: now,
	}

	for _, domain := range model.AllDomains() {
		total := totals[domain]
		if total == 0 {
			continue
		}
		done := completedByDomain[domain]
		remaining := total - done
		if remaining < 0 {
			remaining = 0
		}

		velocity := 0.0
		if activeDaysByDomain[domain] > 0 {
			velocity = float64(done) / float64(activeDaysByDomain[domain])
		}

		// 学习曲线加成：进度过三成后速度按进度抬升
		progressPercent := float64(done) / float64(total) * 100
		if progressPercent > 30 {
			velocity *= 1 + progressPercent/200
		}
		velocity *= streakMultiplier

		eta := ForecastUnreachable
		if remaining == 0 {
			eta = 0
		} else if velocity > 0 {
			eta = int(math.Ceil(float64(remaining) / velocity))
			eta = applyActiveRatio(eta, activeRatio)
		}

		forecast.Domains = append(forecast.Domains, model.DomainForecast{
			Domain:         domain,
			RemainingItems: remaining,
			EstimatedDays:  eta,
			Velocity:       velocity,
		})
	}

	return forecast
}

// applyActiveRatio 把活跃日 ETA 换算成日历日 ETA
// 占比 ≥1 不变，≤0 按最坏情况放大 7 倍
func applyActiveRatio(eta int, ratio float64) int {
	switch {
	case ratio >= 1:
		return eta
	case ratio <= 0:
		return eta * 7
	default:
		return int(math.Ceil(float64(eta) / ratio))
	}
}

// completionWindow 最近 30 天内各领域完成数、活跃天数、总完成数与总活跃天数
func (s *ForecastService) completionWindow(history []model.GoalHistoryLog, now time.Time) (map[model.Domain]int, map[model.Domain]int, int, int) {
	completed := make(map[model.Domain]int)
	activeDates := make(map[model.Domain]map[string]bool)
	allDates := make(map[string]bool)
	seen := make(map[string]bool)
	totalDone := 0

	cutoff := now.AddDate(0, 0, -forecastWindowDays)
	for _, log := range history {
		date, err := util.ParseDate(log.Date)
		if err != nil || date.Before(cutoff) {
			continue
		}
		for _, a := range log.Actions {
			if !a.IsCompleted {
				continue
			}
			if !seen[a.ID] {
				seen[a.ID] = true
				completed[a.Domain]++
				totalDone++
			}
			if activeDates[a.Domain] == nil {
				activeDates[a.Domain] = make(map[string]bool)
			}
			activeDates[a.Domain][log.Date] = true
			allDates[log.Date] = true
		}
	}

	activeDays := make(map[model.Domain]int, len(activeDates))
	for domain, dates := range activeDates {
		activeDays[domain] = len(dates)
	}
	return completed, activeDays, totalDone, len(allDates)
}

// activeRatio 最近 14 天中有完成动作的天数占比
func (s *ForecastService) activeRatio(history []model.GoalHistoryLog, now time.Time) float64 {
	byDate := make(map[string]*model.GoalHistoryLog, len(history))
	for i := range history {
		byDate[history[i].Date] = &history[i]
	}

	active := 0
	for offset := 0; offset < activeRatioWindowDays; offset++ {
		date := util.DateOf(now.AddDate(0, 0, -offset))
		if log, ok := byDate[date]; ok && log.CompletedCount() > 0 {
			active++
		}
	}
	return float64(active) / float64(activeRatioWindowDays)
}

// missedDaysIn 窗口内有排期但完成率低于 70% 的天数
func missedDaysIn(history []model.GoalHistoryLog, now time.Time, windowDays int) int {
	cutoff := now.AddDate(0, 0, -windowDays)
	missed := 0
	for _, log := range history {
		date, err := util.ParseDate(log.Date)
		if err != nil || date.Before(cutoff) || date.After(now) {
			continue
		}
		if len(log.Actions) == 0 {
			continue
		}
		if float64(log.CompletedCount()) < float64(len(log.Actions))*0.7 {
			missed++
		}
	}
	return missed
}
