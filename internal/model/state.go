package model

import (
	"time"

	"gorm.io/datatypes"
)

// StateKey 引擎状态在存储中的命名空间键
const StateKey = "stackwise:goalEngine:v1"

// StateVersion 全量导出/导入时的版本戳
const StateVersion = 1

// EngineState 引擎的全部共享状态，由编排器独占持有并整体读写
type EngineState struct {
	DailyGoals     []DailyGoal         `json:"dailyGoals"`
	HistoryLogs    []GoalHistoryLog    `json:"historyLogs"`
	Metrics        GoalEngineMetrics   `json:"metrics"`
	Memory         GoalMemory          `json:"memory"`
	ScheduledPlans []ScheduledPlan     `json:"scheduledPlans"`
	TimePatterns   []TimePatternMemory `json:"timePatterns"`
	UserConfig     UserGoalConfig      `json:"userConfig"`
	Forecast       *GoalForecast       `json:"forecast,omitempty"`
	Digest         *GoalDigest         `json:"goalDigest,omitempty"`
	LastSyncAt     time.Time           `json:"lastSyncAt"`
}

// GoalByDate 按日期查找每日目标，未找到返回 nil
func (s *EngineState) GoalByDate(date string) *DailyGoal {
	for i := range s.DailyGoals {
		if s.DailyGoals[i].Date == date {
			return &s.DailyGoals[i]
		}
	}
	return nil
}

// HistoryByDate 按日期查找历史记录，未找到返回 nil
func (s *EngineState) HistoryByDate(date string) *GoalHistoryLog {
	for i := range s.HistoryLogs {
		if s.HistoryLogs[i].Date == date {
			return &s.HistoryLogs[i]
		}
	}
	return nil
}

// PlanByDate 按日期查找时段分配，未找到返回 nil
func (s *EngineState) PlanByDate(date string) *ScheduledPlan {
	for i := range s.ScheduledPlans {
		if s.ScheduledPlans[i].Date == date {
			return &s.ScheduledPlans[i]
		}
	}
	return nil
}

// CompletedItemIDs 历史中所有完成过的条目 ID 集合
func (s *EngineState) CompletedItemIDs() map[string]bool {
	done := make(map[string]bool)
	for _, log := range s.HistoryLogs {
		for _, a := range log.Actions {
			if a.IsCompleted {
				done[a.ID] = true
			}
		}
	}
	return done
}

// EngineStateDocument 引擎状态的持久化载体：命名空间键下的单行 JSON 文档
type EngineStateDocument struct {
	ID        uint           `gorm:"primaryKey"`
	Key       string         `gorm:"size:128;uniqueIndex;not null"`
	Version   int            `gorm:"not null"`
	State     datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

func (EngineStateDocument) TableName() string {
	return "engine_states"
}

// WidgetPayload 供展示端使用的派生小组件数据
type WidgetPayload struct {
	ChartDataString   string  `json:"chartDataString"`
	StatusText        string  `json:"statusText"` // Increasing / Steady / Slowing
	DisplayPercentage float64 `json:"displayPercentage"`
}
