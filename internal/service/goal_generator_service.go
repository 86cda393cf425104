package service

import (
	"math"
	"math/rand"
	"time"

	"stackwise_backend/internal/model"
	"stackwise_backend/internal/util"
)

// GoalHorizonDays 目标生成的固定滚动窗口
const GoalHorizonDays = 7

// GoalGeneratorService 目标生成器：编排内容池与间隔重复选择器，
// 构建连续 7 天的每日目标，维持跨天全局唯一与结转语义
type GoalGeneratorService struct {
	Revision *RevisionService
	rng      *rand.Rand
}

// NewGoalGeneratorService 创建生成器；rng 为 nil 时使用时间种子
func NewGoalGeneratorService(revision *RevisionService, rng *rand.Rand) *GoalGeneratorService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &GoalGeneratorService{Revision: revision, rng: rng}
}

// Generate 生成从 startDate 起的 7 个每日目标和更新后的记忆
// 内容池为空时整体跳过，返回零个目标（调用方按无事发生处理）
func (s *GoalGeneratorService) Generate(
	pool []model.LearnableItem,
	history []model.GoalHistoryLog,
	memory model.GoalMemory,
	carried []model.PlannedAction,
	cfg model.UserGoalConfig,
	startDate time.Time,
) ([]model.DailyGoal, model.GoalMemory) {
	if len(pool) == 0 {
		return nil, memory
	}

	completed := completedIDs(history)
	poolByID := make(map[string]model.LearnableItem, len(pool))
	for _, item := range pool {
		poolByID[item.ID] = item
	}

	// 合并两个结转来源：外部传入的结转列表 + 记忆里上次未完成的 ID
	carryPool := mergeCarrySources(carried, memory.LastDayUncompleted, poolByID, completed)

	load := cfg.PreferredDailyLoad
	if load < 1 {
		load = 1
	}
	revisionLimit := int(math.Floor(float64(load) * cfg.RevisionIntensity))
	learnLimit := load - revisionLimit

	globalUsed := make(map[string]bool)
	goals := make([]model.DailyGoal, 0, GoalHorizonDays)

	for day := 0; day < GoalHorizonDays; day++ {
		date := startDate.AddDate(0, 0, day)
		goal := model.DailyGoal{
			Date:               util.DateOf(date),
			CompletedActionIDs: []string{},
		}
		dayUsed := make(map[string]bool)

		// 1) 先用结转池填充学习槽位
		carriedToday := []string{}
		for len(goal.PlannedLearning) < learnLimit && len(carryPool) > 0 {
			action := carryPool[0]
			carryPool = carryPool[1:]
			if dayUsed[action.ID] || globalUsed[action.ID] {
				continue
			}
			goal.PlannedLearning = append(goal.PlannedLearning, action)
			carriedToday = append(carriedToday, action.ID)
			dayUsed[action.ID] = true
			globalUsed[action.ID] = true
		}

		// 2) 间隔重复选择器挑复习槽位，排除全局已用与当天已计划
		exclude := make(map[string]bool, len(globalUsed)+len(dayUsed))
		for id := range globalUsed {
			exclude[id] = true
		}
		for id := range dayUsed {
			exclude[id] = true
		}
		revisions := s.Revision.Select(history, revisionLimit, exclude, date)
		for _, action := range revisions {
			goal.PlannedRevision = append(goal.PlannedRevision, action)
			dayUsed[action.ID] = true
			globalUsed[action.ID] = true
		}

		// 3) 剩余学习槽位用新内容补齐，随机打散避免位置偏置
		remaining := learnLimit - len(goal.PlannedLearning)
		if remaining > 0 {
			fresh := s.freshCandidates(pool, globalUsed, completed, cfg.MaxDifficulty)
			s.rng.Shuffle(len(fresh), func(i, j int) {
				fresh[i], fresh[j] = fresh[j], fresh[i]
			})
			if len(fresh) > remaining {
				fresh = fresh[:remaining]
			}
			for _, item := range fresh {
				action := ToPlannedAction(item)
				goal.PlannedLearning = append(goal.PlannedLearning, action)
				dayUsed[action.ID] = true
				globalUsed[action.ID] = true
			}
		}

		goal.CarriedFromYesterday = carriedToday
		goal.RecomputeTotals()
		goals = append(goals, goal)
	}

	// 结转条目的生命周期到 7 天窗口尾部为止
	updated := memory
	updated.LastDayUncompleted = []string{}
	return goals, updated
}

// freshCandidates 全局未用、未完成且不超过难度上限的新内容
func (s *GoalGeneratorService) freshCandidates(pool []model.LearnableItem, used, completed map[string]bool, maxDifficulty model.DifficultyLevel) []model.LearnableItem {
	maxRank := 3
	if maxDifficulty != "" {
		maxRank = maxDifficulty.Rank()
	}

	fresh := make([]model.LearnableItem, 0, len(pool))
	for _, item := range pool {
		if used[item.ID] || completed[item.ID] {
			continue
		}
		if item.DifficultyLevel.Rank() > maxRank {
			continue
		}
		fresh = append(fresh, item)
	}
	return fresh
}

// mergeCarrySources 按 ID 去重合并结转来源，丢弃历史中已完成的条目
func mergeCarrySources(carried []model.PlannedAction, lastUncompleted []string, poolByID map[string]model.LearnableItem, completed map[string]bool) []model.PlannedAction {
	seen := make(map[string]bool)
	merged := make([]model.PlannedAction, 0, len(carried)+len(lastUncompleted))

	for _, action := range carried {
		if seen[action.ID] || completed[action.ID] {
			continue
		}
		action.Type = model.ActionLearn
		action.IsCompleted = false
		merged = append(merged, action)
		seen[action.ID] = true
	}

	for _, id := range lastUncompleted {
		if seen[id] || completed[id] {
			continue
		}
		item, ok := poolByID[id]
		if !ok {
			// 条目已被内容模块移除
			continue
		}
		merged = append(merged, ToPlannedAction(item))
		seen[id] = true
	}

	return merged
}

func completedIDs(history []model.GoalHistoryLog) map[string]bool {
	done := make(map[string]bool)
	for _, log := range history {
		for _, a := range log.Actions {
			if a.IsCompleted {
				done[a.ID] = true
			}
		}
	}
	return done
}
