package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"stackwise_backend/internal/config"
	"stackwise_backend/internal/model"
	"stackwise_backend/internal/repository"
	"stackwise_backend/internal/util"
	"stackwise_backend/pkg/logger"
	"stackwise_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// EngineService 同步编排器：独占持有引擎状态，按固定顺序驱动各组件
// 跑完一个周期；用户触发的变更同步执行并就地重算指标/模式/重排
type EngineService struct {
	StateRepo   *repository.EngineStateRepository
	ContentPool *ContentPoolService
	Generator   *GoalGeneratorService
	Scheduler   *ScheduleService
	Patterns    *TimePatternService
	Metrics     *MetricsService
	Mode        *ModeService
	Memory      *MemoryService
	Restructure *RestructureService
	Forecast    *ForecastService
	Digest      *DigestService
	Clock       Clock
	Engine      config.EngineConfig

	mu sync.Mutex
}

func NewEngineService(
	stateRepo *repository.EngineStateRepository,
	contentPool *ContentPoolService,
	generator *GoalGeneratorService,
	scheduler *ScheduleService,
	patterns *TimePatternService,
	metrics *MetricsService,
	mode *ModeService,
	memory *MemoryService,
	restructure *RestructureService,
	forecast *ForecastService,
	digest *DigestService,
	clock Clock,
	engineCfg config.EngineConfig,
) *EngineService {
	return &EngineService{
		StateRepo:   stateRepo,
		ContentPool: contentPool,
		Generator:   generator,
		Scheduler:   scheduler,
		Patterns:    patterns,
		Metrics:     metrics,
		Mode:        mode,
		Memory:      memory,
		Restructure: restructure,
		Forecast:    forecast,
		Digest:      digest,
		Clock:       clock,
		Engine:      engineCfg,
	}
}

// RunSyncCycle 执行一个完整周期：生成→排期→指标→模式→重排→预测→摘要
// 周期之间不重叠；时间间隔不足或内容为空时是幂等空操作
// 某一步失败只中止后续步骤，已保存的前序写入保持有效
func (s *EngineService) RunSyncCycle() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	now := s.Clock.Now()

	state, err := s.StateRepo.Load()
	if err != nil {
		monitoring.SyncCycleCounter.WithLabelValues("failed").Inc()
		return fmt.Errorf("load engine state: %w", err)
	}
	s.ensureConfig(state, now)

	interval := time.Duration(s.Engine.SyncIntervalMinutes) * time.Minute
	if !state.LastSyncAt.IsZero() && now.Sub(state.LastSyncAt) < interval {
		logger.Log.Debug("Sync cycle skipped, interval not elapsed",
			zap.Time("lastSyncAt", state.LastSyncAt))
		monitoring.SyncCycleCounter.WithLabelValues("skipped").Inc()
		return nil
	}

	pool, err := s.ContentPool.Fetch(state.CompletedItemIDs())
	if err != nil {
		monitoring.SyncCycleCounter.WithLabelValues("failed").Inc()
		return fmt.Errorf("fetch content pool: %w", err)
	}
	if len(pool) == 0 {
		logger.Log.Info("Sync cycle skipped, content pool is empty")
		monitoring.SyncCycleCounter.WithLabelValues("skipped").Inc()
		return nil
	}

	runStep := func(name string, fn func() error) error {
		if err := fn(); err != nil {
			logger.Log.Error("Sync cycle step failed",
				zap.String("step", name), zap.Error(err))
			monitoring.SyncCycleCounter.WithLabelValues("failed").Inc()
			return fmt.Errorf("sync step %s: %w", name, err)
		}
		return s.StateRepo.Save(state)
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"generate", func() error { return s.stepGenerate(state, pool, now) }},
		{"schedule", func() error { return s.stepSchedule(state, now) }},
		{"metrics", func() error { s.recomputeMetrics(state, now); return nil }},
		{"mode", func() error { s.reevaluateMode(state, now); return nil }},
		{"memory", func() error { s.refreshMemory(state, now); return nil }},
		{"restructure", func() error { s.restructureFuture(state, now); return nil }},
		{"forecast", func() error { return s.stepForecast(state, now) }},
		{"digest", func() error { s.stepDigest(state, now); return nil }},
	}
	for _, step := range steps {
		if err := runStep(step.name, step.fn); err != nil {
			return err
		}
	}

	state.LastSyncAt = now
	if err := s.StateRepo.Save(state); err != nil {
		monitoring.SyncCycleCounter.WithLabelValues("failed").Inc()
		return fmt.Errorf("persist engine state: %w", err)
	}

	monitoring.SyncCycleCounter.WithLabelValues("completed").Inc()
	monitoring.SyncCycleDuration.Observe(time.Since(start).Seconds())
	logger.Log.Info("Sync cycle completed",
		zap.String("mode", string(state.UserConfig.Mode)),
		zap.Int("goals", len(state.DailyGoals)))
	return nil
}

// stepGenerate 今天还没有目标时生成 7 天窗口，按日期去重后追加
func (s *EngineService) stepGenerate(state *model.EngineState, pool []model.LearnableItem, now time.Time) error {
	today := util.DateOf(now)
	if state.GoalByDate(today) != nil {
		return nil
	}

	carried := s.carriedFromYesterday(state, now)
	goals, memory := s.Generator.Generate(pool, state.HistoryLogs, state.Memory, carried, state.UserConfig, now)
	state.Memory = memory

	added := 0
	for _, goal := range goals {
		if state.GoalByDate(goal.Date) != nil {
			continue
		}
		state.DailyGoals = append(state.DailyGoals, goal)
		added++

		if state.HistoryByDate(goal.Date) == nil {
			state.HistoryLogs = append(state.HistoryLogs, newHistoryLog(goal))
		}
	}
	sort.Slice(state.DailyGoals, func(i, j int) bool {
		return state.DailyGoals[i].Date < state.DailyGoals[j].Date
	})

	if added > 0 {
		monitoring.GoalsGenerated.Add(float64(added))
		logger.Log.Info("Daily goals generated", zap.Int("days", added))
	}
	return nil
}

// stepSchedule 重算时间模式并为今天的目标分配时段
func (s *EngineService) stepSchedule(state *model.EngineState, now time.Time) error {
	state.TimePatterns = s.Patterns.Analyze(state.HistoryLogs)

	today := util.DateOf(now)
	goal := state.GoalByDate(today)
	if goal == nil {
		return nil
	}

	actions := append([]model.PlannedAction{}, goal.PlannedLearning...)
	actions = append(actions, goal.PlannedRevision...)
	date, err := util.ParseDate(today)
	if err != nil {
		return err
	}
	plan := s.Scheduler.BuildPlan(date, actions, state.TimePatterns, state.Memory)
	s.replacePlan(state, plan)
	s.applyPlanToRecords(state, goal, &plan)
	return nil
}

func (s *EngineService) recomputeMetrics(state *model.EngineState, now time.Time) {
	state.Metrics = s.Metrics.Compute(state.HistoryLogs, len(state.DailyGoals), state.UserConfig.Mode, now)
}

func (s *EngineService) reevaluateMode(state *model.EngineState, now time.Time) {
	mode := s.Mode.DetermineOptimalMode(state.Metrics, state.HistoryLogs, state.UserConfig, now)
	if state.UserConfig.AllowAutoAdjustment && !(state.UserConfig.ModeSetManually && mode == state.UserConfig.Mode) {
		if mode != state.UserConfig.Mode || state.UserConfig.MaxDifficulty == "" {
			s.Mode.ApplyMode(&state.UserConfig, mode, now)
		}
	}
	state.Metrics.CurrentMode = state.UserConfig.Mode
}

func (s *EngineService) refreshMemory(state *model.EngineState, now time.Time) {
	memory := s.Memory.Refresh(state.HistoryLogs, state.TimePatterns, state.DailyGoals, now)
	// 生成器尚未消费的结转种子保留
	if len(state.Memory.LastDayUncompleted) > 0 && len(memory.LastDayUncompleted) == 0 {
		memory.LastDayUncompleted = state.Memory.LastDayUncompleted
	}
	state.Memory = memory
}

func (s *EngineService) restructureFuture(state *model.EngineState, now time.Time) {
	idx := s.todayIndex(state, now)
	if idx < 0 {
		return
	}
	state.DailyGoals = s.Restructure.Restructure(state.DailyGoals, idx, state.Metrics, state.HistoryLogs)
}

func (s *EngineService) stepForecast(state *model.EngineState, now time.Time) error {
	if !state.UserConfig.ForecastEnabled {
		return nil
	}
	totals, err := s.ContentPool.CountByDomain()
	if err != nil {
		return err
	}
	state.Forecast = s.Forecast.Compute(totals, state.HistoryLogs, state.Metrics, now)
	return nil
}

func (s *EngineService) stepDigest(state *model.EngineState, now time.Time) {
	state.Digest = s.Digest.Build(state.HistoryLogs, model.TimeframeWeekly, now)

	today := util.DateOf(now)
	s.Digest.AppendHourlySnapshot(state.HistoryByDate(today), state.GoalByDate(today), now)
}

// MarkActionCompleted 把动作记入完成并就地重算指标/模式/重排
// 未知 ID 或重复调用是无状态变化的空操作
func (s *EngineService) MarkActionCompleted(date, actionID string) (*model.DailyGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Clock.Now()
	state, err := s.StateRepo.Load()
	if err != nil {
		return nil, err
	}
	s.ensureConfig(state, now)

	goal := state.GoalByDate(date)
	if goal == nil {
		logger.Log.Debug("Completion ignored, no goal for date", zap.String("date", date))
		return nil, nil
	}
	action := goal.FindAction(actionID)
	if action == nil {
		logger.Log.Debug("Completion ignored, unknown action",
			zap.String("date", date), zap.String("actionId", actionID))
		return goal, nil
	}
	if goal.HasCompleted(actionID) {
		return goal, nil
	}

	action.IsCompleted = true
	goal.CompletedActionIDs = append(goal.CompletedActionIDs, actionID)
	goal.RecomputeTotals()

	log := s.ensureHistory(state, date)
	entry := log.FindAction(actionID)
	if entry == nil {
		log.Actions = append(log.Actions, actionLogFrom(*action))
		entry = &log.Actions[len(log.Actions)-1]
	}
	entry.IsCompleted = true
	entry.CompletedAt = &now

	// 完成事件立刻驱动一轮指标/模式/重排
	s.recomputeMetrics(state, now)
	s.reevaluateMode(state, now)
	if idx := s.indexOfDate(state, date); idx >= 0 {
		state.DailyGoals = s.Restructure.Restructure(state.DailyGoals, idx, state.Metrics, state.HistoryLogs)
		goal = state.GoalByDate(date)
	}

	if err := s.StateRepo.Save(state); err != nil {
		return nil, err
	}
	return goal, nil
}

// MarkActionStarted 记录动作开始时间并把对应时段标记为已尝试
func (s *EngineService) MarkActionStarted(date, actionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Clock.Now()
	state, err := s.StateRepo.Load()
	if err != nil {
		return err
	}

	goal := state.GoalByDate(date)
	if goal == nil || goal.FindAction(actionID) == nil {
		logger.Log.Debug("Start ignored, unknown action",
			zap.String("date", date), zap.String("actionId", actionID))
		return nil
	}

	log := s.ensureHistory(state, date)
	entry := log.FindAction(actionID)
	if entry == nil {
		log.Actions = append(log.Actions, actionLogFrom(*goal.FindAction(actionID)))
		entry = &log.Actions[len(log.Actions)-1]
	}
	if entry.StartedAt == nil {
		entry.StartedAt = &now
	}

	if plan := state.PlanByDate(date); plan != nil {
		if slot := plan.FindSlot(actionID); slot != nil {
			slot.WasAttempted = true
		}
	}

	return s.StateRepo.Save(state)
}

// RescheduleAction 用户把动作改到新时刻，时段与历史记录同步更新
func (s *EngineService) RescheduleAction(date, actionID, newTime string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.StateRepo.Load()
	if err != nil {
		return err
	}
	day, err := util.ParseDate(date)
	if err != nil {
		return err
	}
	startAt, err := util.ParseClock(day, newTime)
	if err != nil {
		return err
	}

	goal := state.GoalByDate(date)
	if goal == nil || goal.FindAction(actionID) == nil {
		logger.Log.Debug("Reschedule ignored, unknown action",
			zap.String("date", date), zap.String("actionId", actionID))
		return nil
	}
	goal.FindAction(actionID).ScheduledStart = newTime

	if plan := state.PlanByDate(date); plan != nil {
		if slot := plan.FindSlot(actionID); slot != nil {
			slot.StartTime = newTime
			slot.EndTime = util.FormatClock(startAt.Add(time.Duration(slot.ExpectedDuration) * time.Minute))
		}
	}

	log := s.ensureHistory(state, date)
	if entry := log.FindAction(actionID); entry != nil {
		entry.ScheduledStart = newTime
		entry.WasRescheduled = true
	}

	return s.StateRepo.Save(state)
}

// SetMood 记录某天的学习心情，摘要用
func (s *EngineService) SetMood(date, mood string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.StateRepo.Load()
	if err != nil {
		return err
	}
	log := s.ensureHistory(state, date)
	log.Mood = mood
	return s.StateRepo.Save(state)
}

// --- 只读访问 ---

// GoalForDate 某日期的目标；nil 表示该日期没有计划
func (s *EngineService) GoalForDate(date string) (*model.DailyGoal, error) {
	state, err := s.StateRepo.Load()
	if err != nil {
		return nil, err
	}
	return state.GoalByDate(date), nil
}

// TodayGoal 今天的目标
func (s *EngineService) TodayGoal() (*model.DailyGoal, error) {
	return s.GoalForDate(util.DateOf(s.Clock.Now()))
}

// CurrentMetrics 最近一次重算的指标快照
func (s *EngineService) CurrentMetrics() (model.GoalEngineMetrics, error) {
	state, err := s.StateRepo.Load()
	if err != nil {
		return model.GoalEngineMetrics{}, err
	}
	return state.Metrics, nil
}

// CurrentForecast 最近一次重算的预测；可能为 nil
func (s *EngineService) CurrentForecast() (*model.GoalForecast, error) {
	state, err := s.StateRepo.Load()
	if err != nil {
		return nil, err
	}
	return state.Forecast, nil
}

// BuildDigest 按需生成时间窗口摘要
func (s *EngineService) BuildDigest(timeframe model.Timeframe) (*model.GoalDigest, error) {
	state, err := s.StateRepo.Load()
	if err != nil {
		return nil, err
	}
	return s.Digest.Build(state.HistoryLogs, timeframe, s.Clock.Now()), nil
}

// PlanForDate 某日期的时段分配
func (s *EngineService) PlanForDate(date string) (*model.ScheduledPlan, error) {
	state, err := s.StateRepo.Load()
	if err != nil {
		return nil, err
	}
	return state.PlanByDate(date), nil
}

// MemorySnapshot 当前长期记忆
func (s *EngineService) MemorySnapshot() (model.GoalMemory, error) {
	state, err := s.StateRepo.Load()
	if err != nil {
		return model.GoalMemory{}, err
	}
	return state.Memory, nil
}

// GetConfig 当前引擎配置
func (s *EngineService) GetConfig() (model.UserGoalConfig, error) {
	state, err := s.StateRepo.Load()
	if err != nil {
		return model.UserGoalConfig{}, err
	}
	s.ensureConfig(state, s.Clock.Now())
	return state.UserConfig, nil
}

// UpdateConfigRequest 用户更新引擎旋钮的请求
type UpdateConfigRequest struct {
	Mode                *model.EngineMode `json:"mode"`
	AllowAutoAdjustment *bool             `json:"allowAutoAdjustment"`
	ForecastEnabled     *bool             `json:"forecastEnabled"`
	RevisionIntensity   *float64          `json:"revisionIntensity"`
	PreferredDailyLoad  *int              `json:"preferredDailyLoad"`
	StreakProtection    *bool             `json:"streakProtection"`
}

// UpdateConfig 应用用户改动；手动选择模式会在两天内压过自动切换
func (s *EngineService) UpdateConfig(req UpdateConfigRequest) (model.UserGoalConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Clock.Now()
	state, err := s.StateRepo.Load()
	if err != nil {
		return model.UserGoalConfig{}, err
	}
	s.ensureConfig(state, now)

	cfg := &state.UserConfig
	if req.Mode != nil {
		if !req.Mode.Valid() {
			return model.UserGoalConfig{}, util.ErrInvalidMode
		}
		s.Mode.ApplyMode(cfg, *req.Mode, now)
		cfg.ModeSetManually = true
	}
	if req.AllowAutoAdjustment != nil {
		cfg.AllowAutoAdjustment = *req.AllowAutoAdjustment
	}
	if req.ForecastEnabled != nil {
		cfg.ForecastEnabled = *req.ForecastEnabled
	}
	if req.RevisionIntensity != nil && *req.RevisionIntensity > 0 && *req.RevisionIntensity < 1 {
		cfg.RevisionIntensity = *req.RevisionIntensity
	}
	if req.PreferredDailyLoad != nil && *req.PreferredDailyLoad > 0 {
		cfg.PreferredDailyLoad = *req.PreferredDailyLoad
	}
	if req.StreakProtection != nil {
		cfg.StreakProtection = *req.StreakProtection
	}
	cfg.UpdatedAt = now

	if err := s.StateRepo.Save(state); err != nil {
		return model.UserGoalConfig{}, err
	}
	return *cfg, nil
}

// BuildWidgetPayload 展示端小组件数据
func (s *EngineService) BuildWidgetPayload() (*model.WidgetPayload, error) {
	state, err := s.StateRepo.Load()
	if err != nil {
		return nil, err
	}
	now := s.Clock.Now()

	totals, err := s.ContentPool.CountByDomain()
	if err != nil {
		return nil, err
	}
	totalItems := 0
	for _, n := range totals {
		totalItems += n
	}
	return BuildWidget(state, totalItems, now), nil
}

// BuildWidget 从状态推导小组件数据，纯函数便于测试
func BuildWidget(state *model.EngineState, totalItems int, now time.Time) *model.WidgetPayload {
	byDate := make(map[string]*model.GoalHistoryLog, len(state.HistoryLogs))
	for i := range state.HistoryLogs {
		byDate[state.HistoryLogs[i].Date] = &state.HistoryLogs[i]
	}

	// 近 30 天每日完成数，从最早到今天
	counts := make([]int, 0, 30)
	for offset := 29; offset >= 0; offset-- {
		date := util.DateOf(now.AddDate(0, 0, -offset))
		n := 0
		if log, ok := byDate[date]; ok {
			n = log.CompletedCount()
		}
		counts = append(counts, n)
	}
	parts := make([]string, len(counts))
	for i, n := range counts {
		parts[i] = strconv.Itoa(n)
	}

	recent := avgTail(counts, 3)
	prior := avgTail(counts[:len(counts)-3], 3)
	status := "Steady"
	if recent > prior {
		status = "Increasing"
	} else if recent < prior {
		status = "Slowing"
	}

	lifetime := len(state.CompletedItemIDs())
	denominator := totalItems
	if lifetime > denominator {
		denominator = lifetime
	}
	percentage := 0.0
	if denominator > 0 {
		percentage = float64(lifetime) / float64(denominator) * 100
	}

	return &model.WidgetPayload{
		ChartDataString:   strings.Join(parts, ","),
		StatusText:        status,
		DisplayPercentage: percentage,
	}
}

func avgTail(counts []int, n int) float64 {
	if len(counts) == 0 || n <= 0 {
		return 0
	}
	if n > len(counts) {
		n = len(counts)
	}
	sum := 0
	for _, v := range counts[len(counts)-n:] {
		sum += v
	}
	return float64(sum) / float64(n)
}

// --- 内部辅助 ---

// ensureConfig 新状态的配置旋钮用应用配置兜底
func (s *EngineService) ensureConfig(state *model.EngineState, now time.Time) {
	if state.UserConfig.Mode.Valid() {
		return
	}
	state.UserConfig = model.UserGoalConfig{
		Mode:                model.ModeNormal,
		AllowAutoAdjustment: s.Engine.AllowAutoAdjustment,
		ForecastEnabled:     s.Engine.ForecastEnabled,
		RevisionIntensity:   s.Engine.RevisionIntensity,
		PreferredDailyLoad:  s.Engine.PreferredDailyLoad,
		MaxDifficulty:       model.DifficultyHard,
		StreakProtection:    s.Engine.StreakProtection,
		UpdatedAt:           now,
	}
}

// carriedFromYesterday 昨天目标里未完成的学习动作，作为外部结转来源
func (s *EngineService) carriedFromYesterday(state *model.EngineState, now time.Time) []model.PlannedAction {
	yesterday := state.GoalByDate(util.DateOf(now.AddDate(0, 0, -1)))
	if yesterday == nil {
		return nil
	}
	var carried []model.PlannedAction
	for _, a := range yesterday.PlannedLearning {
		if !yesterday.HasCompleted(a.ID) {
			carried = append(carried, a)
		}
	}
	return carried
}

func (s *EngineService) todayIndex(state *model.EngineState, now time.Time) int {
	return s.indexOfDate(state, util.DateOf(now))
}

func (s *EngineService) indexOfDate(state *model.EngineState, date string) int {
	for i := range state.DailyGoals {
		if state.DailyGoals[i].Date == date {
			return i
		}
	}
	return -1
}

func (s *EngineService) ensureHistory(state *model.EngineState, date string) *model.GoalHistoryLog {
	if log := state.HistoryByDate(date); log != nil {
		return log
	}
	state.HistoryLogs = append(state.HistoryLogs, model.GoalHistoryLog{Date: date})
	return &state.HistoryLogs[len(state.HistoryLogs)-1]
}

func (s *EngineService) replacePlan(state *model.EngineState, plan model.ScheduledPlan) {
	for i := range state.ScheduledPlans {
		if state.ScheduledPlans[i].Date == plan.Date {
			state.ScheduledPlans[i] = plan
			return
		}
	}
	state.ScheduledPlans = append(state.ScheduledPlans, plan)
}

// applyPlanToRecords 把时段回写到目标动作与历史记录
func (s *EngineService) applyPlanToRecords(state *model.EngineState, goal *model.DailyGoal, plan *model.ScheduledPlan) {
	log := s.ensureHistory(state, goal.Date)
	for _, slot := range plan.Slots {
		if action := goal.FindAction(slot.ActionID); action != nil {
			action.ScheduledStart = slot.StartTime
		}
		if entry := log.FindAction(slot.ActionID); entry != nil {
			entry.ScheduledStart = slot.StartTime
			entry.ScheduledEnd = slot.EndTime
		}
	}
}

func newHistoryLog(goal model.DailyGoal) model.GoalHistoryLog {
	log := model.GoalHistoryLog{Date: goal.Date}
	for _, a := range goal.PlannedLearning {
		log.Actions = append(log.Actions, actionLogFrom(a))
	}
	for _, a := range goal.PlannedRevision {
		log.Actions = append(log.Actions, actionLogFrom(a))
	}
	return log
}

func actionLogFrom(a model.PlannedAction) model.ActionLog {
	return model.ActionLog{
		ID:         a.ID,
		Domain:     a.Domain,
		Type:       a.Type,
		TopicTitle: a.TopicTitle,
		Difficulty: a.Difficulty,
	}
}
