package service

import (
	"testing"

	"stackwise_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dayGoal(date string, learning []model.PlannedAction, completed ...string) model.DailyGoal {
	goal := model.DailyGoal{
		Date:               date,
		PlannedLearning:    learning,
		CompletedActionIDs: completed,
	}
	goal.RecomputeTotals()
	return goal
}

func underPerformedGoals() []model.DailyGoal {
	return []model.DailyGoal{
		dayGoal("2026-03-11", []model.PlannedAction{
			learnAction("l1", model.DifficultyMedium),
			learnAction("l2", model.DifficultyMedium),
			learnAction("l3", model.DifficultyHard),
			learnAction("l4", model.DifficultyEasy),
		}, "l1"), // 25% 欠完成
		dayGoal("2026-03-12", []model.PlannedAction{
			learnAction("m1", model.DifficultyMedium),
			learnAction("m2", model.DifficultyMedium),
			learnAction("m3", model.DifficultyMedium),
		}),
		dayGoal("2026-03-13", []model.PlannedAction{
			learnAction("n1", model.DifficultyMedium),
			learnAction("n2", model.DifficultyMedium),
			learnAction("n3", model.DifficultyMedium),
		}),
	}
}

func TestRestructureRollsIncompleteIntoTomorrow(t *testing.T) {
	s := NewRestructureService()
	goals := s.Restructure(underPerformedGoals(), 0, model.GoalEngineMetrics{}, nil)

	tomorrow := goals[1]
	// 欠完成时明天的学习列表不超过调整前长度，结转前插后按易到难重排
	require.Len(t, tomorrow.PlannedLearning, 3)
	ids := []string{
		tomorrow.PlannedLearning[0].ID,
		tomorrow.PlannedLearning[1].ID,
		tomorrow.PlannedLearning[2].ID,
	}
	assert.Equal(t, []string{"l4", "l2", "l3"}, ids)
	assert.ElementsMatch(t, []string{"l2", "l3", "l4"}, tomorrow.CarriedFromYesterday)
	assert.Equal(t, tomorrow.TotalPlannedActions, len(tomorrow.PlannedLearning)+len(tomorrow.PlannedRevision))
}

func TestRestructureShrinksDaysBeyondTomorrow(t *testing.T) {
	s := NewRestructureService()
	goals := s.Restructure(underPerformedGoals(), 0, model.GoalEngineMetrics{}, nil)

	// 后天收缩 min(ceil(3*0.2), 1) = 1 项
	assert.Len(t, goals[2].PlannedLearning, 2)
	assert.Equal(t, 2, goals[2].TotalPlannedActions)
}

func TestRestructureCarryIsIdempotent(t *testing.T) {
	s := NewRestructureService()
	goals := s.Restructure(underPerformedGoals(), 0, model.GoalEngineMetrics{}, nil)
	firstPass := append([]model.PlannedAction{}, goals[1].PlannedLearning...)

	goals = s.Restructure(goals, 0, model.GoalEngineMetrics{}, nil)
	assert.Equal(t, firstPass, goals[1].PlannedLearning)
}

func TestRestructureOverPerformanceSortsHarderFirst(t *testing.T) {
	s := NewRestructureService()
	goals := []model.DailyGoal{
		dayGoal("2026-03-11", []model.PlannedAction{
			learnAction("a", model.DifficultyEasy),
			learnAction("b", model.DifficultyEasy),
			learnAction("c", model.DifficultyEasy),
		}, "a", "b", "c"), // 100% 且 ≥3 项，过度完成
		dayGoal("2026-03-12", []model.PlannedAction{
			learnAction("easy", model.DifficultyEasy),
			learnAction("hard", model.DifficultyHard),
		}),
	}

	goals = s.Restructure(goals, 0, model.GoalEngineMetrics{}, nil)
	require.Len(t, goals[1].PlannedLearning, 2)
	assert.Equal(t, "hard", goals[1].PlannedLearning[0].ID)
}

func TestRestructureAverageDayLeavesFutureAlone(t *testing.T) {
	s := NewRestructureService()
	goals := []model.DailyGoal{
		dayGoal("2026-03-11", []model.PlannedAction{
			learnAction("a", model.DifficultyMedium),
			learnAction("b", model.DifficultyMedium),
		}, "a"), // 50%，不过不欠
		dayGoal("2026-03-12", []model.PlannedAction{
			learnAction("m1", model.DifficultyMedium),
			learnAction("m2", model.DifficultyMedium),
		}),
	}

	goals = s.Restructure(goals, 0, model.GoalEngineMetrics{}, nil)
	// b 未完成仍然结转，但没有负载收缩
	require.Len(t, goals[1].PlannedLearning, 3)
	assert.Equal(t, "b", goals[1].PlannedLearning[0].ID)
}

func TestRestructureIndexOutOfRange(t *testing.T) {
	s := NewRestructureService()
	goals := underPerformedGoals()
	assert.Equal(t, goals, s.Restructure(goals, -1, model.GoalEngineMetrics{}, nil))
	assert.Equal(t, goals, s.Restructure(goals, 5, model.GoalEngineMetrics{}, nil))
}
