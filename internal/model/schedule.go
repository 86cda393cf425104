package model

// ScheduledSlot 一个动作在当天的具体时段
type ScheduledSlot struct {
	ActionID         string `json:"actionId"`
	StartTime        string `json:"startTime"` // HH:MM
	EndTime          string `json:"endTime"`   // HH:MM
	ExpectedDuration int    `json:"expectedDuration"` // 分钟
	GeneratedBy      string `json:"generatedBy"`      // pattern / default
	WasAttempted     bool   `json:"wasAttempted"`
}

// ScheduledPlan 某日期的时段分配，按日期整体替换
type ScheduledPlan struct {
	Date  string          `json:"date"` // YYYY-MM-DD
	Slots []ScheduledSlot `json:"slots"`
}

// FindSlot 按动作 ID 查找时段
func (p *ScheduledPlan) FindSlot(actionID string) *ScheduledSlot {
	for i := range p.Slots {
		if p.Slots[i].ActionID == actionID {
			return &p.Slots[i]
		}
	}
	return nil
}
