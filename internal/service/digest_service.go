package service

import (
	"time"

	"stackwise_backend/internal/model"
	"stackwise_backend/internal/util"
)

// DigestService 摘要生成器：聚合一个时间窗口的历史为汇总报告，
// 并负责追加每小时的计划偏差快照
type DigestService struct{}

func NewDigestService() *DigestService {
	return &DigestService{}
}

// Build 生成时间窗口摘要：daily=仅今天，weekly=近7天，monthly=近1个月
func (s *DigestService) Build(history []model.GoalHistoryLog, timeframe model.Timeframe, now time.Time) *model.GoalDigest {
	var cutoff time.Time
	switch timeframe {
	case model.TimeframeDaily:
		cutoff = now
	case model.TimeframeMonthly:
		cutoff = now.AddDate(0, -1, 0)
	default:
		cutoff = now.AddDate(0, 0, -7)
	}
	cutoffDate := util.DateOf(cutoff)
	todayDate := util.DateOf(now)

	digest := &model.GoalDigest{
		Timeframe:   timeframe,
		MoodSummary: map[string]int{},
		GeneratedAt: now,
	}

	type domainAgg struct{ total, completed int }
	domains := make(map[model.Domain]*domainAgg)
	topicCounts := make(map[string]int)

	for _, log := range history {
		if log.Date < cutoffDate || log.Date > todayDate {
			continue
		}

		completedToday := 0
		for _, a := range log.Actions {
			digest.TotalActions++
			agg := domains[a.Domain]
			if agg == nil {
				agg = &domainAgg{}
				domains[a.Domain] = agg
			}
			agg.total++

			if a.IsCompleted {
				digest.CompletedActions++
				agg.completed++
				completedToday++
				if a.ScheduledStart == "" {
					// 计划之外额外完成的
					digest.BonusActions++
				}
			}
		}

		if len(log.Actions) > 0 && float64(completedToday) < float64(len(log.Actions))*0.7 {
			digest.MissedDays++
		}
		if log.Mood != "" {
			digest.MoodSummary[log.Mood]++
		}
	}
	digest.SkippedActions = digest.TotalActions - digest.CompletedActions

	// 各领域完成率排序：最高为强项，有内容的最低为弱项
	var best, worst *model.DomainDigestEntry
	for _, domain := range model.AllDomains() {
		agg, ok := domains[domain]
		if !ok || agg.total == 0 {
			continue
		}
		entry := model.DomainDigestEntry{
			Domain:         domain,
			Total:          agg.total,
			Completed:      agg.completed,
			CompletionRate: float64(agg.completed) / float64(agg.total) * 100,
		}
		digest.Domains = append(digest.Domains, entry)
		idx := len(digest.Domains) - 1
		if best == nil || entry.CompletionRate > best.CompletionRate {
			best = &digest.Domains[idx]
		}
		if worst == nil || entry.CompletionRate < worst.CompletionRate {
			worst = &digest.Domains[idx]
		}
	}
	if best != nil {
		digest.TopDomain = best.Domain
	}
	if worst != nil {
		digest.WeakDomain = worst.Domain
	}

	digest.MostStudiedTopic = mostFrequentTopic(history, cutoffDate, todayDate, topicCounts)

	return digest
}

// mostFrequentTopic 窗口内完成次数最多的主题标题
func mostFrequentTopic(history []model.GoalHistoryLog, cutoffDate, todayDate string, counts map[string]int) string {
	for _, log := range history {
		if log.Date < cutoffDate || log.Date > todayDate {
			continue
		}
		for _, a := range log.Actions {
			if !a.IsCompleted {
				continue
			}
			topic := a.TopicTitle
			if topic == "" {
				// 老记录没有主题，退回领域名
				topic = string(a.Domain)
			}
			counts[topic]++
		}
	}
	best, bestN := "", 0
	for topic, n := range counts {
		if n > bestN {
			best, bestN = topic, n
		}
	}
	return best
}

// AppendHourlySnapshot 给某日期追加一条计划偏差快照，只增不改
func (s *DigestService) AppendHourlySnapshot(log *model.GoalHistoryLog, goal *model.DailyGoal, now time.Time) {
	if log == nil {
		return
	}

	snapshot := model.HourlySnapshot{RecordedAt: now}
	if goal != nil {
		snapshot.TotalActions = goal.TotalPlannedActions
		snapshot.CompletedActions = goal.TotalCompleted
		snapshot.RemainingActions = goal.TotalPlannedActions - goal.TotalCompleted
	}

	date, err := util.ParseDate(log.Date)
	if err != nil {
		return
	}
	for _, a := range log.Actions {
		if a.WasRescheduled {
			snapshot.Rescheduled++
		}
		if a.StartedAt == nil {
			continue
		}
		if a.ScheduledStart == "" {
			snapshot.StartedUnplanned++
			continue
		}
		scheduled, err := util.ParseClock(date, a.ScheduledStart)
		if err != nil {
			continue
		}
		if a.StartedAt.Before(scheduled) {
			snapshot.StartedBeforePlan++
		} else {
			snapshot.StartedAfterPlan++
		}
	}

	log.HourlyStats = append(log.HourlyStats, snapshot)
}
