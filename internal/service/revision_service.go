package service

import (
	"sort"
	"time"

	"stackwise_backend/internal/model"
	"stackwise_backend/internal/util"
)

// 间隔重复的固定复习间隔（天），完成日距今落在任一间隔 ±1 天内即视为到期
var revisionIntervals = []int{1, 3, 7, 14, 30}

// RevisionService 间隔重复选择器：从历史中挑选到期/逾期的复习候选
type RevisionService struct{}

func NewRevisionService() *RevisionService {
	return &RevisionService{}
}

type revisionCandidate struct {
	action    model.ActionLog
	daysSince int
	due       bool
}

// Select 返回至多 limit 个复习候选，绝不包含排除集中的 ID
// 到期条目优先（距 30 天阈值越近越靠前），其余按完成时间最久远排列
func (s *RevisionService) Select(history []model.GoalHistoryLog, limit int, excludeIDs map[string]bool, now time.Time) []model.PlannedAction {
	if limit <= 0 {
		return nil
	}

	// 每个条目只保留最近一次完成
	latest := make(map[string]model.ActionLog)
	for _, log := range history {
		for _, a := range log.Actions {
			if !a.IsCompleted || a.CompletedAt == nil {
				continue
			}
			if prev, ok := latest[a.ID]; !ok || a.CompletedAt.After(*prev.CompletedAt) {
				latest[a.ID] = a
			}
		}
	}

	candidates := make([]revisionCandidate, 0, len(latest))
	for id, a := range latest {
		if excludeIDs[id] {
			continue
		}
		days := util.DaysBetween(*a.CompletedAt, now)
		if days < 0 {
			continue
		}
		candidates = append(candidates, revisionCandidate{
			action:    a,
			daysSince: days,
			due:       isDue(days),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.due != b.due {
			return a.due
		}
		if a.due {
			// 剩余到 30 天阈值的间隔越小越优先
			return 30-a.daysSince < 30-b.daysSince
		}
		// 非到期条目按最久未复习优先
		return a.daysSince > b.daysSince
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	actions := make([]model.PlannedAction, 0, len(candidates))
	for _, c := range candidates {
		actions = append(actions, model.PlannedAction{
			ID:           c.action.ID,
			Domain:       c.action.Domain,
			OriginalType: c.action.Domain.ContentKind(),
			Type:         model.ActionRevise,
			IsCompleted:  false,
		})
	}
	return actions
}

// isDue 判断完成日距今是否落在任一复习间隔 ±1 天内
func isDue(daysSince int) bool {
	for _, interval := range revisionIntervals {
		if daysSince >= interval-1 && daysSince <= interval+1 {
			return true
		}
	}
	return false
}
