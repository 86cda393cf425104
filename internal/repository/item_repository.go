package repository

import (
	"stackwise_backend/internal/model"

	"gorm.io/gorm"
)

// ItemRepository 处理可学习内容单元的数据访问

type ItemRepository struct {
	DB *gorm.DB
}

func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{DB: db}
}

// Create 录入新的内容单元
func (r *ItemRepository) Create(item *model.LearnableItem) error {
	return r.DB.Create(item).Error
}

// Delete 删除内容单元
func (r *ItemRepository) Delete(id string) error {
	return r.DB.Delete(&model.LearnableItem{}, "id = ?", id).Error
}

// FindByID 按 ID 查找内容单元
func (r *ItemRepository) FindByID(id string) (*model.LearnableItem, error) {
	var item model.LearnableItem
	err := r.DB.First(&item, "id = ?", id).Error
	return &item, err
}

// FindAll 返回全部内容单元，按领域和录入顺序排列
func (r *ItemRepository) FindAll() ([]model.LearnableItem, error) {
	var items []model.LearnableItem
	err := r.DB.Order("domain, created_at").Find(&items).Error
	return items, err
}

// FindByDomain 返回某领域的全部内容单元
func (r *ItemRepository) FindByDomain(domain model.Domain) ([]model.LearnableItem, error) {
	var items []model.LearnableItem
	err := r.DB.Where("domain = ?", domain).Order("created_at").Find(&items).Error
	return items, err
}

// CountByDomain 各领域的内容单元总数
func (r *ItemRepository) CountByDomain() (map[model.Domain]int, error) {
	type row struct {
		Domain model.Domain
		N      int
	}
	var rows []row
	err := r.DB.Model(&model.LearnableItem{}).
		Select("domain, count(*) as n").
		Group("domain").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[model.Domain]int, len(rows))
	for _, rw := range rows {
		counts[rw.Domain] = rw.N
	}
	return counts, nil
}
