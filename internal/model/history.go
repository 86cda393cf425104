package model

import "time"

// ActionLog 历史记录中的一次动作，随事件就地更新
type ActionLog struct {
	ID             string          `json:"id"`
	Domain         Domain          `json:"domain"`
	Type           ActionType      `json:"type"`
	TopicTitle     string          `json:"topicTitle,omitempty"`
	Difficulty     DifficultyLevel `json:"difficulty,omitempty"`
	IsCompleted    bool            `json:"isCompleted"`
	StartedAt      *time.Time      `json:"startedAt,omitempty"`
	CompletedAt    *time.Time      `json:"completedAt,omitempty"`
	ScheduledStart string          `json:"scheduledStart,omitempty"` // HH:MM
	ScheduledEnd   string          `json:"scheduledEnd,omitempty"`   // HH:MM
	WasRescheduled bool            `json:"wasRescheduled"`
}

// HourlySnapshot 每小时一条的计划偏差快照，只追加
type HourlySnapshot struct {
	RecordedAt        time.Time `json:"recordedAt"`
	TotalActions      int       `json:"totalActions"`
	CompletedActions  int       `json:"completedActions"`
	RemainingActions  int       `json:"remainingActions"`
	StartedBeforePlan int       `json:"startedBeforePlan"`
	StartedAfterPlan  int       `json:"startedAfterPlan"`
	StartedUnplanned  int       `json:"startedUnplanned"`
	Rescheduled       int       `json:"rescheduled"`
}

// GoalHistoryLog 一个日期的动作执行记录
type GoalHistoryLog struct {
	Date        string           `json:"date"` // YYYY-MM-DD
	Actions     []ActionLog      `json:"actions"`
	HourlyStats []HourlySnapshot `json:"hourlyStats,omitempty"`
	Mood        string           `json:"mood,omitempty"`
}

// FindAction 按 ID 查找当日动作记录
func (l *GoalHistoryLog) FindAction(actionID string) *ActionLog {
	for i := range l.Actions {
		if l.Actions[i].ID == actionID {
			return &l.Actions[i]
		}
	}
	return nil
}

// CompletedCount 当日已完成动作数
func (l *GoalHistoryLog) CompletedCount() int {
	n := 0
	for _, a := range l.Actions {
		if a.IsCompleted {
			n++
		}
	}
	return n
}
