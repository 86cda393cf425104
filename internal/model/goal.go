package model

// ActionType 计划动作的类型：新学或复习
type ActionType string

const (
	ActionLearn  ActionType = "learn"
	ActionRevise ActionType = "revise"
)

// PlannedAction 某一天计划执行的一个内容单元，ID 与内容单元一致
type PlannedAction struct {
	ID             string          `json:"id"`
	Domain         Domain          `json:"domain"`
	OriginalType   string          `json:"originalType"`
	Type           ActionType      `json:"type"`
	Title          string          `json:"title,omitempty"`
	TopicTitle     string          `json:"topicTitle,omitempty"`
	Difficulty     DifficultyLevel `json:"difficulty,omitempty"`
	IsCompleted    bool            `json:"isCompleted"`
	ScheduledStart string          `json:"scheduledStart,omitempty"`
}

// GoalDayStatus 单日目标的状态
type GoalDayStatus string

const (
	GoalDayPending    GoalDayStatus = "pending"
	GoalDayInProgress GoalDayStatus = "in_progress"
	GoalDayCompleted  GoalDayStatus = "completed"
)

// DailyGoal 一个日历日的学习计划，创建后只追加不删除
type DailyGoal struct {
	Date                 string          `json:"date"` // YYYY-MM-DD
	PlannedLearning      []PlannedAction `json:"plannedLearning"`
	PlannedRevision      []PlannedAction `json:"plannedRevision"`
	CompletedActionIDs   []string        `json:"completedActionIds"`
	CarriedFromYesterday []string        `json:"carriedFromYesterday"`
	TotalPlannedActions  int             `json:"totalPlannedActions"`
	TotalCompleted       int             `json:"totalCompleted"`
	PercentCompleted     float64         `json:"percentCompleted"`
	Status               GoalDayStatus   `json:"status"`
}

// RecomputeTotals 重新计算总数与完成百分比，维持不变量
// totalPlannedActions == len(learning)+len(revision)
// percentCompleted == 100*completed/total（total 为 0 时取 0）
func (g *DailyGoal) RecomputeTotals() {
	g.TotalPlannedActions = len(g.PlannedLearning) + len(g.PlannedRevision)
	g.TotalCompleted = len(g.CompletedActionIDs)
	if g.TotalPlannedActions == 0 {
		g.PercentCompleted = 0
	} else {
		g.PercentCompleted = float64(g.TotalCompleted) / float64(g.TotalPlannedActions) * 100
	}

	switch {
	case g.TotalPlannedActions > 0 && g.TotalCompleted >= g.TotalPlannedActions:
		g.Status = GoalDayCompleted
	case g.TotalCompleted > 0:
		g.Status = GoalDayInProgress
	default:
		g.Status = GoalDayPending
	}
}

// FindAction 在当日计划里查找动作，先查学习再查复习，未找到返回 nil
func (g *DailyGoal) FindAction(actionID string) *PlannedAction {
	for i := range g.PlannedLearning {
		if g.PlannedLearning[i].ID == actionID {
			return &g.PlannedLearning[i]
		}
	}
	for i := range g.PlannedRevision {
		if g.PlannedRevision[i].ID == actionID {
			return &g.PlannedRevision[i]
		}
	}
	return nil
}

// HasCompleted 判断动作是否已记入完成列表
func (g *DailyGoal) HasCompleted(actionID string) bool {
	for _, id := range g.CompletedActionIDs {
		if id == actionID {
			return true
		}
	}
	return false
}
