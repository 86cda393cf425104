package service

import (
	"time"

	"stackwise_backend/internal/model"
	"stackwise_backend/internal/util"
)

// MemoryService 长期记忆：每次刷新都从历史整体重算用户行为特征
type MemoryService struct{}

func NewMemoryService() *MemoryService {
	return &MemoryService{}
}

// Refresh 重算用户特征、学习模式与上一日未完成列表
func (s *MemoryService) Refresh(history []model.GoalHistoryLog, patterns []model.TimePatternMemory, goals []model.DailyGoal, now time.Time) model.GoalMemory {
	memory := model.GoalMemory{
		UserTraits:         s.mineTraits(history),
		LearningPatterns:   topPatterns(patterns),
		LastDayUncompleted: lastDayUncompleted(goals, now),
		RefreshedAt:        now,
	}
	return memory
}

// mineTraits 从历史挖掘四个行为特征
func (s *MemoryService) mineTraits(history []model.GoalHistoryLog) model.UserTraits {
	var (
		morningRevisions, totalRevisions int
		weekdayTotal, weekdayDone        int
		weekendTotal, weekendDone        int
		earlyWeekTotal, earlyWeekDone    int
		lateWeekTotal, lateWeekDone      int
		hardTotal, hardDone              int
		easierTotal, easierDone          int
	)

	for _, log := range history {
		date, err := util.ParseDate(log.Date)
		if err != nil {
			continue
		}
		weekend := util.IsWeekend(date)
		lateWeek := date.Weekday() >= time.Friday || date.Weekday() == time.Sunday

		for _, a := range log.Actions {
			if a.Type == model.ActionRevise {
				totalRevisions++
				if a.StartedAt != nil && a.StartedAt.Hour() < 12 {
					morningRevisions++
				}
			}

			if a.Difficulty == model.DifficultyHard {
				hardTotal++
				if a.IsCompleted {
					hardDone++
				}
			} else {
				easierTotal++
				if a.IsCompleted {
					easierDone++
				}
			}

			if weekend {
				weekendTotal++
			} else {
				weekdayTotal++
			}
			if lateWeek {
				lateWeekTotal++
			} else {
				earlyWeekTotal++
			}

			if a.IsCompleted {
				if weekend {
					weekendDone++
				} else {
					weekdayDone++
				}
				if lateWeek {
					lateWeekDone++
				} else {
					earlyWeekDone++
				}
			}
		}
	}

	traits := model.UserTraits{}
	if totalRevisions >= 3 {
		traits.PrefersRevisionInMorning = float64(morningRevisions)/float64(totalRevisions) > 0.6
	}
	// 困难动作完成率显著低于其余难度视为怕难
	if hardTotal >= 5 && easierTotal >= 3 {
		hardRate := float64(hardDone) / float64(hardTotal)
		easierRate := float64(easierDone) / float64(easierTotal)
		traits.GivesUpOnHardTasks = hardRate < 0.5 && easierRate-hardRate > 0.25
	}
	if weekendTotal >= 3 && weekdayTotal >= 3 {
		weekendRate := float64(weekendDone) / float64(weekendTotal)
		weekdayRate := float64(weekdayDone) / float64(weekdayTotal)
		traits.SkipsWeekend = weekendRate < weekdayRate*0.5
	}
	if lateWeekTotal >= 3 && earlyWeekTotal >= 3 {
		lateRate := float64(lateWeekDone) / float64(lateWeekTotal)
		earlyRate := float64(earlyWeekDone) / float64(earlyWeekTotal)
		traits.FinishesStrongEndOfWeek = lateRate > earlyRate*1.2
	}
	return traits
}

// topPatterns 把每个组合成功率最高的窗口收进记忆
func topPatterns(patterns []model.TimePatternMemory) []model.LearningPattern {
	var out []model.LearningPattern
	for _, p := range patterns {
		var best *model.TimeWindow
		for i := range p.TimeWindows {
			w := &p.TimeWindows[i]
			if best == nil || w.SuccessRate > best.SuccessRate {
				best = w
			}
		}
		if best == nil {
			continue
		}
		out = append(out, model.LearningPattern{
			Domain:      p.Domain,
			ActionType:  p.ActionType,
			WindowStart: best.Start,
			WindowEnd:   best.End,
			SuccessRate: best.SuccessRate,
		})
	}
	return out
}

// lastDayUncompleted 昨天目标里尚未完成的计划条目 ID
func lastDayUncompleted(goals []model.DailyGoal, now time.Time) []string {
	yesterday := util.DateOf(now.AddDate(0, 0, -1))
	for i := range goals {
		if goals[i].Date != yesterday {
			continue
		}
		var ids []string
		for _, a := range goals[i].PlannedLearning {
			if !goals[i].HasCompleted(a.ID) {
				ids = append(ids, a.ID)
			}
		}
		return ids
	}
	return nil
}
