package service

import (
	"math"
	"sort"

	"stackwise_backend/internal/model"
)

// dayPerformance 当日表现分类
type dayPerformance int

const (
	performanceAverage dayPerformance = iota
	performanceOver
	performanceUnder
)

// RestructureService 重排引擎：动作完成后按当日表现调整尚未开始的未来日
type RestructureService struct{}

func NewRestructureService() *RestructureService {
	return &RestructureService{}
}

// Restructure 根据今天的表现重排 todayIndex 之后的目标日
// 结转只注入 todayIndex+1，一天内重复调用不会重复注入
func (s *RestructureService) Restructure(goals []model.DailyGoal, todayIndex int, metrics model.GoalEngineMetrics, history []model.GoalHistoryLog) []model.DailyGoal {
	if todayIndex < 0 || todayIndex >= len(goals) {
		return goals
	}

	today := &goals[todayIndex]
	perf := classify(today)
	difficultyAdjustment, loadAdjustment := adjustments(perf, today.TotalPlannedActions)

	// 今天未完成的动作滚入明天，前插并打结转标记
	if todayIndex+1 < len(goals) {
		s.rollIncomplete(today, &goals[todayIndex+1], loadAdjustment)
	}

	// 未来日按调整方向重排学习难度；明天之后负向调整还要收缩
	for i := todayIndex + 1; i < len(goals); i++ {
		day := &goals[i]
		sortByDifficulty(day.PlannedLearning, difficultyAdjustment)

		if i > todayIndex+1 && loadAdjustment < 0 && len(day.PlannedLearning) > 0 {
			shrink := int(math.Ceil(float64(len(day.PlannedLearning)) * 0.2))
			if shrink > -loadAdjustment {
				shrink = -loadAdjustment
			}
			if shrink >= len(day.PlannedLearning) {
				day.PlannedLearning = day.PlannedLearning[:0]
			} else {
				day.PlannedLearning = day.PlannedLearning[:len(day.PlannedLearning)-shrink]
			}
		}

		day.RecomputeTotals()
	}

	return goals
}

// classify 过度完成：全部完成且至少计划 3 项；欠完成：不足一半
func classify(today *model.DailyGoal) dayPerformance {
	if today.TotalPlannedActions >= 3 && today.PercentCompleted >= 100 {
		return performanceOver
	}
	if today.PercentCompleted < 50 {
		return performanceUnder
	}
	return performanceAverage
}

// adjustments 难度方向 ∈ {-1,0,+1}；负载调整至多当日总量的 20%，上限 2
func adjustments(perf dayPerformance, totalPlanned int) (int, int) {
	cap20 := int(math.Ceil(float64(totalPlanned) * 0.2))
	if cap20 > 2 {
		cap20 = 2
	}
	if cap20 < 1 {
		cap20 = 1
	}

	switch perf {
	case performanceOver:
		return 1, cap20
	case performanceUnder:
		return -1, -cap20
	default:
		return 0, 0
	}
}

// rollIncomplete 把今天未完成的动作前插到明天；负向调整时明天的学习
// 列表不超过调整前长度
func (s *RestructureService) rollIncomplete(today, tomorrow *model.DailyGoal, loadAdjustment int) {
	originalLen := len(tomorrow.PlannedLearning)

	existing := make(map[string]bool, tomorrow.TotalPlannedActions)
	for _, a := range tomorrow.PlannedLearning {
		existing[a.ID] = true
	}
	for _, a := range tomorrow.PlannedRevision {
		existing[a.ID] = true
	}

	var carried []model.PlannedAction
	for _, a := range today.PlannedLearning {
		if !today.HasCompleted(a.ID) && !existing[a.ID] {
			a.IsCompleted = false
			a.ScheduledStart = ""
			carried = append(carried, a)
		}
	}
	if len(carried) == 0 {
		return
	}

	tomorrow.PlannedLearning = append(carried, tomorrow.PlannedLearning...)
	if loadAdjustment < 0 && len(tomorrow.PlannedLearning) > originalLen && originalLen > 0 {
		tomorrow.PlannedLearning = tomorrow.PlannedLearning[:originalLen]
	}

	// 只给截断后仍然在场的结转条目打标记
	present := make(map[string]bool, len(tomorrow.PlannedLearning))
	for _, a := range tomorrow.PlannedLearning {
		present[a.ID] = true
	}
	for _, a := range carried {
		if present[a.ID] {
			tomorrow.CarriedFromYesterday = append(tomorrow.CarriedFromYesterday, a.ID)
		}
	}
}

// sortByDifficulty direction>0 难的在前，direction<0 简单的在前，0 不动
func sortByDifficulty(actions []model.PlannedAction, direction int) {
	if direction == 0 {
		return
	}
	sort.SliceStable(actions, func(i, j int) bool {
		if direction > 0 {
			return actions[i].Difficulty.Rank() > actions[j].Difficulty.Rank()
		}
		return actions[i].Difficulty.Rank() < actions[j].Difficulty.Rank()
	})
}
