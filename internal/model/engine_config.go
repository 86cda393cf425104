package model

import "time"

// EngineMode 引擎运行模式
type EngineMode string

const (
	ModeNormal   EngineMode = "normal"
	ModeBoost    EngineMode = "boost"
	ModeLight    EngineMode = "light"
	ModeLowLoad  EngineMode = "lowLoad"
	ModeRecovery EngineMode = "recovery"
)

// Valid 判断模式取值是否合法
func (m EngineMode) Valid() bool {
	switch m {
	case ModeNormal, ModeBoost, ModeLight, ModeLowLoad, ModeRecovery:
		return true
	}
	return false
}

// UserGoalConfig 用户可调旋钮，模式控制器也会写入派生设置
type UserGoalConfig struct {
	Mode                EngineMode      `json:"mode"`
	ModeSetManually     bool            `json:"modeSetManually"`
	AllowAutoAdjustment bool            `json:"allowAutoAdjustment"`
	ForecastEnabled     bool            `json:"forecastEnabled"`
	RevisionIntensity   float64         `json:"revisionIntensity"`
	PreferredDailyLoad  int             `json:"preferredDailyLoad"`
	MaxDifficulty       DifficultyLevel `json:"maxDifficulty"`
	StreakProtection    bool            `json:"streakProtection"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// Timeframe 摘要统计的时间范围
type Timeframe string

const (
	TimeframeDaily   Timeframe = "daily"
	TimeframeWeekly  Timeframe = "weekly"
	TimeframeMonthly Timeframe = "monthly"
)

// Valid 判断时间范围取值是否合法
func (t Timeframe) Valid() bool {
	switch t {
	case TimeframeDaily, TimeframeWeekly, TimeframeMonthly:
		return true
	}
	return false
}

// DomainForecast 单个领域的完成预测
type DomainForecast struct {
	Domain         Domain  `json:"domain"`
	RemainingItems int     `json:"remainingItems"`
	EstimatedDays  int     `json:"estimatedDays"`
	Velocity       float64 `json:"velocity"` // 每活跃日完成数
}

// ForecastBasis 预测所依据的输入快照
type ForecastBasis struct {
	AvgDailyLoad float64 `json:"avgDailyLoad"`
	Streak       int     `json:"streak"`
	MissedDays   int     `json:"missedDays"`
	TotalItems   int     `json:"totalItems"`
	TotalDone    int     `json:"totalDone"`
}

// GoalForecast 各领域 ETA 投影，按需重算
type GoalForecast struct {
	Domains     []DomainForecast `json:"domains"`
	BasedOn     ForecastBasis    `json:"basedOn"`
	GeneratedAt time.Time        `json:"generatedAt"`
}

// DomainDigestEntry 摘要中单个领域的完成率
type DomainDigestEntry struct {
	Domain         Domain  `json:"domain"`
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	CompletionRate float64 `json:"completionRate"` // 百分比
}

// GoalDigest 一个时间窗口的汇总报告
type GoalDigest struct {
	Timeframe        Timeframe           `json:"timeframe"`
	TotalActions     int                 `json:"totalActions"`
	CompletedActions int                 `json:"completedActions"`
	SkippedActions   int                 `json:"skippedActions"`
	BonusActions     int                 `json:"bonusActions"`
	MissedDays       int                 `json:"missedDays"`
	Domains          []DomainDigestEntry `json:"domains"`
	TopDomain        Domain              `json:"topDomain,omitempty"`
	WeakDomain       Domain              `json:"weakDomain,omitempty"`
	MostStudiedTopic string              `json:"mostStudiedTopic,omitempty"`
	MoodSummary      map[string]int      `json:"moodSummary,omitempty"`
	GeneratedAt      time.Time           `json:"generatedAt"`
}
