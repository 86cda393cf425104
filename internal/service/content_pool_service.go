package service

import (
	"stackwise_backend/internal/model"
	"stackwise_backend/internal/repository"
)

// ContentPoolService 内容池适配器：把各领域的内容单元拍平成一个可选池
// 每次生成目标时重新读取，不做缓存
type ContentPoolService struct {
	ItemRepo *repository.ItemRepository
}

func NewContentPoolService(itemRepo *repository.ItemRepository) *ContentPoolService {
	return &ContentPoolService{ItemRepo: itemRepo}
}

// Fetch 返回排除集之外的全部内容单元
func (s *ContentPoolService) Fetch(excludeIDs map[string]bool) ([]model.LearnableItem, error) {
	items, err := s.ItemRepo.FindAll()
	if err != nil {
		return nil, err
	}
	if len(excludeIDs) == 0 {
		return items, nil
	}

	pool := make([]model.LearnableItem, 0, len(items))
	for _, item := range items {
		if !excludeIDs[item.ID] {
			pool = append(pool, item)
		}
	}
	return pool, nil
}

// CountByDomain 各领域内容总数，预测计算用
func (s *ContentPoolService) CountByDomain() (map[model.Domain]int, error) {
	return s.ItemRepo.CountByDomain()
}

// ToPlannedAction 把内容单元转成一个学习动作
func ToPlannedAction(item model.LearnableItem) model.PlannedAction {
	return model.PlannedAction{
		ID:           item.ID,
		Domain:       item.Domain,
		OriginalType: item.Domain.ContentKind(),
		Type:         model.ActionLearn,
		Title:        item.Title,
		TopicTitle:   item.TopicTitle,
		Difficulty:   item.DifficultyLevel,
		IsCompleted:  false,
	}
}
