package service

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"stackwise_backend/internal/config"
	"stackwise_backend/internal/model"
	"stackwise_backend/internal/repository"
	"stackwise_backend/internal/util"
	"stackwise_backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

func testEngine(t *testing.T, itemCount int) *EngineService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "engine.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.LearnableItem{}, &model.EngineStateDocument{}))

	itemRepo := repository.NewItemRepository(db)
	domains := model.AllDomains()
	for i := 0; i < itemCount; i++ {
		require.NoError(t, itemRepo.Create(&model.LearnableItem{
			ID:              fmt.Sprintf("seed-%02d", i),
			Domain:          domains[i%len(domains)],
			TopicTitle:      "Arrays",
			Title:           fmt.Sprintf("Seed %02d", i),
			DifficultyLevel: model.DifficultyMedium,
		}))
	}

	engineCfg := config.EngineConfig{
		PreferredDailyLoad:  4,
		RevisionIntensity:   0.3,
		SyncIntervalMinutes: 60,
		AllowAutoAdjustment: true,
		ForecastEnabled:     true,
	}
	revision := NewRevisionService()

	return NewEngineService(
		repository.NewEngineStateRepository(db),
		NewContentPoolService(itemRepo),
		NewGoalGeneratorService(revision, rand.New(rand.NewSource(7))),
		NewScheduleService(),
		NewTimePatternService(),
		NewMetricsService(),
		NewModeService(engineCfg),
		NewMemoryService(),
		NewRestructureService(),
		NewForecastService(),
		NewDigestService(),
		FixedClock{T: anchor},
		engineCfg,
	)
}

func TestRunSyncCycleColdStartWithEmptyPool(t *testing.T) {
	e := testEngine(t, 0)
	require.NoError(t, e.RunSyncCycle())

	state, err := e.StateRepo.Load()
	require.NoError(t, err)
	assert.Empty(t, state.DailyGoals)
	assert.True(t, state.LastSyncAt.IsZero())
}

func TestRunSyncCycleGeneratesWeekAndSchedule(t *testing.T) {
	e := testEngine(t, 12)
	require.NoError(t, e.RunSyncCycle())

	state, err := e.StateRepo.Load()
	require.NoError(t, err)
	require.Len(t, state.DailyGoals, GoalHorizonDays)
	assert.Equal(t, anchor.Unix(), state.LastSyncAt.Unix())

	today := util.DateOf(anchor)
	goal := state.GoalByDate(today)
	require.NotNil(t, goal)
	require.NotEmpty(t, goal.PlannedLearning)

	plan := state.PlanByDate(today)
	require.NotNil(t, plan)
	assert.Len(t, plan.Slots, goal.TotalPlannedActions)
	assert.NotEmpty(t, goal.PlannedLearning[0].ScheduledStart)

	assert.Equal(t, GoalHorizonDays, state.Metrics.TotalGoalsGenerated)
	assert.NotNil(t, state.Forecast)
	assert.NotNil(t, state.Digest)
	require.NotNil(t, state.HistoryByDate(today))
	assert.Len(t, state.HistoryByDate(today).HourlyStats, 1)
}

func TestRunSyncCycleSkipsWithinInterval(t *testing.T) {
	e := testEngine(t, 12)
	require.NoError(t, e.RunSyncCycle())

	before, err := e.StateRepo.Load()
	require.NoError(t, err)

	// 间隔不足，第二次触发是幂等空操作
	require.NoError(t, e.RunSyncCycle())
	after, err := e.StateRepo.Load()
	require.NoError(t, err)

	assert.Equal(t, before.LastSyncAt.Unix(), after.LastSyncAt.Unix())
	assert.Equal(t, len(before.DailyGoals), len(after.DailyGoals))
}

func TestMarkActionCompletedIsIdempotent(t *testing.T) {
	e := testEngine(t, 12)
	require.NoError(t, e.RunSyncCycle())

	today := util.DateOf(anchor)
	goal, err := e.GoalForDate(today)
	require.NoError(t, err)
	require.NotEmpty(t, goal.PlannedLearning)
	actionID := goal.PlannedLearning[0].ID

	first, err := e.MarkActionCompleted(today, actionID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.TotalCompleted)

	second, err := e.MarkActionCompleted(today, actionID)
	require.NoError(t, err)
	assert.Equal(t, 1, second.TotalCompleted)

	state, err := e.StateRepo.Load()
	require.NoError(t, err)
	entry := state.HistoryByDate(today).FindAction(actionID)
	require.NotNil(t, entry)
	assert.True(t, entry.IsCompleted)
	require.NotNil(t, entry.CompletedAt)
}

func TestMarkActionCompletedUnknownIDIsNoOp(t *testing.T) {
	e := testEngine(t, 12)
	require.NoError(t, e.RunSyncCycle())

	today := util.DateOf(anchor)
	before, err := e.GoalForDate(today)
	require.NoError(t, err)

	after, err := e.MarkActionCompleted(today, "no-such-action")
	require.NoError(t, err)
	assert.Equal(t, before.TotalCompleted, after.TotalCompleted)

	_, err = e.MarkActionCompleted("2099-01-01", "whatever")
	require.NoError(t, err)
}

func TestRescheduleActionUpdatesSlotAndHistory(t *testing.T) {
	e := testEngine(t, 12)
	require.NoError(t, e.RunSyncCycle())

	today := util.DateOf(anchor)
	goal, err := e.GoalForDate(today)
	require.NoError(t, err)
	actionID := goal.PlannedLearning[0].ID

	require.NoError(t, e.RescheduleAction(today, actionID, "20:15"))

	state, err := e.StateRepo.Load()
	require.NoError(t, err)
	slot := state.PlanByDate(today).FindSlot(actionID)
	require.NotNil(t, slot)
	assert.Equal(t, "20:15", slot.StartTime)

	entry := state.HistoryByDate(today).FindAction(actionID)
	require.NotNil(t, entry)
	assert.True(t, entry.WasRescheduled)
	assert.Equal(t, "20:15", entry.ScheduledStart)
}

func TestMarkActionStartedStampsSlot(t *testing.T) {
	e := testEngine(t, 12)
	require.NoError(t, e.RunSyncCycle())

	today := util.DateOf(anchor)
	goal, err := e.GoalForDate(today)
	require.NoError(t, err)
	actionID := goal.PlannedLearning[0].ID

	require.NoError(t, e.MarkActionStarted(today, actionID))

	state, err := e.StateRepo.Load()
	require.NoError(t, err)
	entry := state.HistoryByDate(today).FindAction(actionID)
	require.NotNil(t, entry)
	require.NotNil(t, entry.StartedAt)

	slot := state.PlanByDate(today).FindSlot(actionID)
	require.NotNil(t, slot)
	assert.True(t, slot.WasAttempted)
}

func TestUpdateConfigManualModeOverride(t *testing.T) {
	e := testEngine(t, 12)

	mode := model.ModeBoost
	cfg, err := e.UpdateConfig(UpdateConfigRequest{Mode: &mode})
	require.NoError(t, err)

	assert.Equal(t, model.ModeBoost, cfg.Mode)
	assert.True(t, cfg.ModeSetManually)
	// boost 派生负载 4×1.5
	assert.Equal(t, 6, cfg.PreferredDailyLoad)
}
