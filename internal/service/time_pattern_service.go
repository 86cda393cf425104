package service

import (
	"sort"

	"stackwise_backend/internal/model"
)

const defaultWindowDuration = 30.0 // 分钟，窗口内没有完成样本时的兜底时长

// TimePatternService 时间模式分析器：把历史开始/完成时间挖掘成
// 按 (领域, 动作类型) 分组的 2 小时窗口成功率统计
type TimePatternService struct{}

func NewTimePatternService() *TimePatternService {
	return &TimePatternService{}
}

type windowAccumulator struct {
	usages        int
	completions   int
	totalDuration float64 // 分钟
}

type patternKey struct {
	domain     model.Domain
	actionType model.ActionType
}

// Analyze 重算全部时间模式；零观测的 (领域, 动作类型) 组合不产出条目
func (s *TimePatternService) Analyze(history []model.GoalHistoryLog) []model.TimePatternMemory {
	acc := make(map[patternKey]map[int]*windowAccumulator)

	for _, log := range history {
		for _, a := range log.Actions {
			if a.StartedAt == nil {
				continue
			}
			key := patternKey{domain: a.Domain, actionType: a.Type}
			windowStart := (a.StartedAt.Hour() / 2) * 2

			if acc[key] == nil {
				acc[key] = make(map[int]*windowAccumulator)
			}
			w := acc[key][windowStart]
			if w == nil {
				w = &windowAccumulator{}
				acc[key][windowStart] = w
			}

			w.usages++
			if a.IsCompleted {
				w.completions++
				if a.CompletedAt != nil {
					w.totalDuration += a.CompletedAt.Sub(*a.StartedAt).Minutes()
				}
			}
		}
	}

	patterns := make([]model.TimePatternMemory, 0, len(acc))
	for key, windows := range acc {
		starts := make([]int, 0, len(windows))
		for start := range windows {
			starts = append(starts, start)
		}
		sort.Ints(starts)

		tws := make([]model.TimeWindow, 0, len(starts))
		for _, start := range starts {
			w := windows[start]
			avg := defaultWindowDuration
			if w.completions > 0 && w.totalDuration > 0 {
				avg = w.totalDuration / float64(w.completions)
			}
			tws = append(tws, model.TimeWindow{
				Start:           start,
				End:             start + 2,
				AverageDuration: avg,
				SuccessRate:     float64(w.completions) / float64(w.usages),
				UsageCount:      w.usages,
			})
		}

		patterns = append(patterns, model.TimePatternMemory{
			Domain:      key.domain,
			ActionType:  key.actionType,
			TimeWindows: tws,
		})
	}

	// 输出顺序稳定，便于整体比较
	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Domain != patterns[j].Domain {
			return patterns[i].Domain < patterns[j].Domain
		}
		return patterns[i].ActionType < patterns[j].ActionType
	})
	return patterns
}

// FindPattern 在分析结果里查找某组合，缺失表示没有模式数据
func FindPattern(patterns []model.TimePatternMemory, domain model.Domain, actionType model.ActionType) *model.TimePatternMemory {
	for i := range patterns {
		if patterns[i].Domain == domain && patterns[i].ActionType == actionType {
			return &patterns[i]
		}
	}
	return nil
}
