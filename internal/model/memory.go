package model

import "time"

// UserTraits 从历史中挖掘出的长期行为特征
type UserTraits struct {
	PrefersRevisionInMorning bool `json:"prefersRevisionInMorning"`
	GivesUpOnHardTasks       bool `json:"givesUpOnHardTasks"`
	SkipsWeekend             bool `json:"skipsWeekend"`
	FinishesStrongEndOfWeek  bool `json:"finishesStrongEndOfWeek"`
}

// LearningPattern 某领域某动作类型的高成功率时间段
type LearningPattern struct {
	Domain      Domain     `json:"domain"`
	ActionType  ActionType `json:"actionType"`
	WindowStart int        `json:"windowStart"` // 小时
	WindowEnd   int        `json:"windowEnd"`
	SuccessRate float64    `json:"successRate"`
}

// GoalMemory 引擎的长期记忆，每次刷新整体重算
type GoalMemory struct {
	UserTraits         UserTraits        `json:"userTraits"`
	LearningPatterns   []LearningPattern `json:"learningPatterns"`
	LastDayUncompleted []string          `json:"lastDayUncompleted"`
	RefreshedAt        time.Time         `json:"refreshedAt"`
}

// TimeOfDay 一天内的粗粒度时段
type TimeOfDay string

const (
	TimeMorning TimeOfDay = "morning"
	TimeEvening TimeOfDay = "evening"
	TimeNight   TimeOfDay = "night"
)

// GoalEngineMetrics 滚动性能快照，每个周期整体重算
type GoalEngineMetrics struct {
	TotalGoalsGenerated int         `json:"totalGoalsGenerated"`
	AvgCompletionRate   float64     `json:"avgCompletionRate"`
	ConsistencyStreak   int         `json:"consistencyStreak"`
	MaxStreak           int         `json:"maxStreak"`
	CurrentMode         EngineMode  `json:"currentMode"`
	SkippedRate         float64     `json:"skippedRate"`
	EarlyCompletionRate float64     `json:"earlyCompletionRate"`
	AvgTimePerTask      float64     `json:"avgTimePerTask"` // 分钟
	PreferredTimesOfDay []TimeOfDay `json:"preferredTimesOfDay"`
}

// TimeWindow 2小时粒度的时间窗口统计
type TimeWindow struct {
	Start           int     `json:"start"` // 小时
	End             int     `json:"end"`
	AverageDuration float64 `json:"averageDuration"` // 分钟
	SuccessRate     float64 `json:"successRate"`
	UsageCount      int     `json:"usageCount"`
}

// TimePatternMemory 某 (领域, 动作类型) 的时间窗口统计，零观测的组合不产出
type TimePatternMemory struct {
	ActionType  ActionType   `json:"actionType"`
	Domain      Domain       `json:"domain"`
	TimeWindows []TimeWindow `json:"timeWindows"`
}
