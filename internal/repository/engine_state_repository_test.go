package repository

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"stackwise_backend/internal/model"
	"stackwise_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.LearnableItem{}, &model.EngineStateDocument{}))
	return db
}

func TestLoadReturnsEmptyStateWhenMissing(t *testing.T) {
	repo := NewEngineStateRepository(testDB(t))

	state, err := repo.Load()
	require.NoError(t, err)
	assert.Empty(t, state.DailyGoals)
	assert.True(t, state.LastSyncAt.IsZero())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	repo := NewEngineStateRepository(testDB(t))

	state := &model.EngineState{
		DailyGoals: []model.DailyGoal{
			{Date: "2026-03-11", TotalPlannedActions: 3},
		},
		UserConfig: model.UserGoalConfig{Mode: model.ModeNormal, PreferredDailyLoad: 5},
	}
	require.NoError(t, repo.Save(state))

	loaded, err := repo.Load()
	require.NoError(t, err)
	require.Len(t, loaded.DailyGoals, 1)
	assert.Equal(t, "2026-03-11", loaded.DailyGoals[0].Date)
	assert.Equal(t, model.ModeNormal, loaded.UserConfig.Mode)
}

func TestSaveOverwritesSingleRow(t *testing.T) {
	db := testDB(t)
	repo := NewEngineStateRepository(db)

	require.NoError(t, repo.Save(&model.EngineState{}))
	require.NoError(t, repo.Save(&model.EngineState{
		DailyGoals: []model.DailyGoal{{Date: "2026-03-12"}},
	}))

	var count int64
	db.Model(&model.EngineStateDocument{}).Count(&count)
	assert.EqualValues(t, 1, count)

	loaded, err := repo.Load()
	require.NoError(t, err)
	require.Len(t, loaded.DailyGoals, 1)
}

func TestExportCarriesVersionStamp(t *testing.T) {
	repo := NewEngineStateRepository(testDB(t))
	require.NoError(t, repo.Save(&model.EngineState{}))

	doc, err := repo.Export()
	require.NoError(t, err)
	assert.Equal(t, model.StateKey, doc.Key)
	assert.Equal(t, model.StateVersion, doc.Version)
}

func TestImportRejectsCorruptedPayload(t *testing.T) {
	repo := NewEngineStateRepository(testDB(t))

	err := repo.Import(json.RawMessage(`{"dailyGoals": "not-a-list"}`))
	assert.ErrorIs(t, err, util.ErrStateCorrupted)

	err = repo.Import(json.RawMessage(`{"dailyGoals": []}`))
	assert.NoError(t, err)
}
