package service

import (
	"sort"
	"time"

	"stackwise_backend/internal/model"
	"stackwise_backend/internal/util"
)

const (
	slotBufferMinutes   = 5
	baseLearnMinutes    = 30
	baseReviseMinutes   = 20
	pullForwardMinRate  = 0.7
	weekendMorningShift = 2 // 小时
)

// dayBlock 一天内可排期的时间块
type dayBlock struct {
	startHour int
	endHour   int
}

// ScheduleService 每日排期器：结合时间模式与行为特征，
// 给当天计划的每个动作分配具体时段
type ScheduleService struct{}

func NewScheduleService() *ScheduleService {
	return &ScheduleService{}
}

// BuildPlan 为某日期的动作列表生成时段分配
// 已知限制：游标越过最后时间块后绕回当天第一个时间块，而不是滚到次日
func (s *ScheduleService) BuildPlan(date time.Time, actions []model.PlannedAction, patterns []model.TimePatternMemory, memory model.GoalMemory) model.ScheduledPlan {
	plan := model.ScheduledPlan{Date: util.DateOf(date)}
	if len(actions) == 0 {
		return plan
	}

	blocks := []dayBlock{
		{8, 12},
		{13, 17},
		{18, 22},
	}
	if util.IsWeekend(date) && memory.UserTraits.SkipsWeekend {
		blocks[0].startHour += weekendMorningShift
	}

	var learning, revision []model.PlannedAction
	for _, a := range actions {
		if a.Type == model.ActionRevise {
			revision = append(revision, a)
		} else {
			learning = append(learning, a)
		}
	}

	// 容易放弃难题的用户先排简单的，否则趁精力好先啃硬的
	easierFirst := memory.UserTraits.GivesUpOnHardTasks
	sort.SliceStable(learning, func(i, j int) bool {
		if easierFirst {
			return learning[i].Difficulty.Rank() < learning[j].Difficulty.Rank()
		}
		return learning[i].Difficulty.Rank() > learning[j].Difficulty.Rank()
	})

	ordered := make([]model.PlannedAction, 0, len(actions))
	if memory.UserTraits.PrefersRevisionInMorning {
		ordered = append(ordered, revision...)
		ordered = append(ordered, learning...)
	} else {
		ordered = append(ordered, learning...)
		ordered = append(ordered, revision...)
	}

	cursor := atHour(date, blocks[0].startHour, 0)
	for _, action := range ordered {
		cursor = normalizeCursor(cursor, date, blocks)

		pattern := FindPattern(patterns, action.Domain, action.Type)
		duration, generatedBy := estimateDuration(action, pattern, cursor)

		// 如果学到的高成功率窗口还在游标之后，把游标拉到窗口起点
		if pattern != nil {
			if target, ok := bestWindowStart(pattern, date, cursor); ok {
				cursor = target
			}
		}

		end := cursor.Add(time.Duration(duration) * time.Minute)
		plan.Slots = append(plan.Slots, model.ScheduledSlot{
			ActionID:         action.ID,
			StartTime:        util.FormatClock(cursor),
			EndTime:          util.FormatClock(end),
			ExpectedDuration: duration,
			GeneratedBy:      generatedBy,
		})

		cursor = end.Add(slotBufferMinutes * time.Minute)
	}

	return plan
}

// estimateDuration 用时估计：优先取游标所在时间窗口的平均时长，
// 没有模式数据时按基础时长乘难度系数
func estimateDuration(action model.PlannedAction, pattern *model.TimePatternMemory, cursor time.Time) (int, string) {
	if pattern != nil {
		for _, w := range pattern.TimeWindows {
			if cursor.Hour() >= w.Start && cursor.Hour() < w.End && w.AverageDuration > 0 {
				return int(w.AverageDuration), "pattern"
			}
		}
	}

	if action.Type == model.ActionRevise {
		// 复习按难度 ±50%
		switch action.Difficulty {
		case model.DifficultyEasy:
			return baseReviseMinutes / 2, "default"
		case model.DifficultyHard:
			return baseReviseMinutes + baseReviseMinutes/2, "default"
		default:
			return baseReviseMinutes, "default"
		}
	}

	// 学习按难度 ±30%
	switch action.Difficulty {
	case model.DifficultyEasy:
		return baseLearnMinutes - baseLearnMinutes*3/10, "default"
	case model.DifficultyHard:
		return baseLearnMinutes + baseLearnMinutes*3/10, "default"
	default:
		return baseLearnMinutes, "default"
	}
}

// bestWindowStart 找成功率达标且起点在游标之后的最佳窗口
func bestWindowStart(pattern *model.TimePatternMemory, date, cursor time.Time) (time.Time, bool) {
	var best *model.TimeWindow
	for i := range pattern.TimeWindows {
		w := &pattern.TimeWindows[i]
		if w.SuccessRate < pullForwardMinRate {
			continue
		}
		if best == nil || w.SuccessRate > best.SuccessRate {
			best = w
		}
	}
	if best == nil {
		return time.Time{}, false
	}
	target := atHour(date, best.Start, 0)
	if !target.After(cursor) {
		return time.Time{}, false
	}
	return target, true
}

// normalizeCursor 把游标压回时间块内：早于首块取首块起点，落在间隙跳到
// 下一块起点，越过末块绕回首块起点
func normalizeCursor(cursor, date time.Time, blocks []dayBlock) time.Time {
	first := atHour(date, blocks[0].startHour, 0)
	if cursor.Before(first) {
		return first
	}
	for _, b := range blocks {
		end := atHour(date, b.endHour, 0)
		if cursor.Before(end) {
			start := atHour(date, b.startHour, 0)
			if cursor.Before(start) {
				// 两个时间块之间的间隙
				return start
			}
			return cursor
		}
	}
	// 越过最后一个时间块，绕回当天开头
	return first
}

func atHour(date time.Time, hour, minute int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location())
}
