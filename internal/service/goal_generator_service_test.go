package service

import (
	"fmt"
	"math/rand"
	"testing"

	"stackwise_backend/internal/model"
	"stackwise_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPool(n int) []model.LearnableItem {
	domains := model.AllDomains()
	items := make([]model.LearnableItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, model.LearnableItem{
			ID:              fmt.Sprintf("item-%02d", i),
			Domain:          domains[i%len(domains)],
			Title:           fmt.Sprintf("Item %02d", i),
			DifficultyLevel: model.DifficultyMedium,
		})
	}
	return items
}

func testGenerator() *GoalGeneratorService {
	return NewGoalGeneratorService(NewRevisionService(), rand.New(rand.NewSource(1)))
}

func defaultConfig() model.UserGoalConfig {
	return model.UserGoalConfig{
		Mode:               model.ModeNormal,
		RevisionIntensity:  0.3,
		PreferredDailyLoad: 4,
		MaxDifficulty:      model.DifficultyHard,
	}
}

func TestGenerateSevenConsecutiveDays(t *testing.T) {
	g := testGenerator()
	goals, _ := g.Generate(testPool(40), nil, model.GoalMemory{}, nil, defaultConfig(), anchor)

	require.Len(t, goals, GoalHorizonDays)
	for i, goal := range goals {
		assert.Equal(t, util.DateOf(anchor.AddDate(0, 0, i)), goal.Date)
	}
}

func TestGenerateEmptyPoolSkips(t *testing.T) {
	g := testGenerator()
	goals, memory := g.Generate(nil, nil, model.GoalMemory{LastDayUncompleted: []string{"x"}}, nil, defaultConfig(), anchor)

	assert.Empty(t, goals)
	assert.Equal(t, []string{"x"}, memory.LastDayUncompleted)
}

func TestGenerateGlobalUniqueness(t *testing.T) {
	g := testGenerator()
	history := []model.GoalHistoryLog{
		completedLogAt("item-00", model.DomainDSA, anchor.AddDate(0, 0, -7)),
		completedLogAt("item-01", model.DomainCore, anchor.AddDate(0, 0, -3)),
	}
	goals, _ := g.Generate(testPool(40), history, model.GoalMemory{}, nil, defaultConfig(), anchor)

	seen := make(map[string]bool)
	for _, goal := range goals {
		for _, a := range append(goal.PlannedLearning, goal.PlannedRevision...) {
			assert.False(t, seen[a.ID], "item %s planned twice in the horizon", a.ID)
			seen[a.ID] = true
		}
	}
}

func TestGenerateTotalsMatchPlannedActions(t *testing.T) {
	g := testGenerator()
	goals, _ := g.Generate(testPool(40), nil, model.GoalMemory{}, nil, defaultConfig(), anchor)

	for _, goal := range goals {
		assert.Equal(t, len(goal.PlannedLearning)+len(goal.PlannedRevision), goal.TotalPlannedActions)
		assert.Zero(t, goal.TotalCompleted)
		assert.Zero(t, goal.PercentCompleted)
		assert.Equal(t, model.GoalDayPending, goal.Status)
	}
}

func TestGenerateCarriedItemsFillFirstDay(t *testing.T) {
	g := testGenerator()
	carried := []model.PlannedAction{
		{ID: "carry-1", Domain: model.DomainDSA, Type: model.ActionLearn, Difficulty: model.DifficultyMedium},
	}
	goals, _ := g.Generate(testPool(40), nil, model.GoalMemory{}, carried, defaultConfig(), anchor)

	require.NotEmpty(t, goals)
	first := goals[0]
	require.NotEmpty(t, first.PlannedLearning)
	assert.Equal(t, "carry-1", first.PlannedLearning[0].ID)
	assert.Contains(t, first.CarriedFromYesterday, "carry-1")
}

func TestGenerateMemoryCarrySeedsConsumed(t *testing.T) {
	g := testGenerator()
	memory := model.GoalMemory{LastDayUncompleted: []string{"item-03"}}
	goals, updated := g.Generate(testPool(40), nil, memory, nil, defaultConfig(), anchor)

	require.NotEmpty(t, goals)
	require.NotEmpty(t, goals[0].PlannedLearning)
	assert.Equal(t, "item-03", goals[0].PlannedLearning[0].ID)
	assert.Empty(t, updated.LastDayUncompleted)
}

func TestGenerateRespectsMaxDifficulty(t *testing.T) {
	g := testGenerator()
	pool := testPool(20)
	for i := range pool {
		if i%2 == 0 {
			pool[i].DifficultyLevel = model.DifficultyHard
		} else {
			pool[i].DifficultyLevel = model.DifficultyEasy
		}
	}
	cfg := defaultConfig()
	cfg.MaxDifficulty = model.DifficultyEasy

	goals, _ := g.Generate(pool, nil, model.GoalMemory{}, nil, cfg, anchor)
	for _, goal := range goals {
		for _, a := range goal.PlannedLearning {
			assert.Equal(t, model.DifficultyEasy, a.Difficulty)
		}
	}
}

func TestGenerateSkipsCompletedItems(t *testing.T) {
	g := testGenerator()
	history := []model.GoalHistoryLog{
		completedLogAt("item-00", model.DomainDSA, anchor.AddDate(0, 0, -20)),
	}
	cfg := defaultConfig()
	cfg.RevisionIntensity = 0 // 只看学习槽位

	goals, _ := g.Generate(testPool(10), history, model.GoalMemory{}, nil, cfg, anchor)
	for _, goal := range goals {
		for _, a := range goal.PlannedLearning {
			assert.NotEqual(t, "item-00", a.ID)
		}
	}
}

func TestGenerateDeterministicWithFixedSeed(t *testing.T) {
	pool := testPool(40)
	a, _ := testGenerator().Generate(pool, nil, model.GoalMemory{}, nil, defaultConfig(), anchor)
	b, _ := testGenerator().Generate(pool, nil, model.GoalMemory{}, nil, defaultConfig(), anchor)
	assert.Equal(t, a, b)
}
