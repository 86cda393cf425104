package repository

import (
	"encoding/json"
	"errors"
	"time"

	"stackwise_backend/internal/model"
	"stackwise_backend/internal/util"

	"gorm.io/gorm"
)

// EngineStateRepository 把引擎全量状态作为单行 JSON 文档读写
// 命名空间键固定为 model.StateKey，保存始终整体覆盖

type EngineStateRepository struct {
	DB *gorm.DB
}

func NewEngineStateRepository(db *gorm.DB) *EngineStateRepository {
	return &EngineStateRepository{DB: db}
}

// Load 读取引擎状态；不存在时返回空状态而不是错误
func (r *EngineStateRepository) Load() (*model.EngineState, error) {
	var doc model.EngineStateDocument
	err := r.DB.Where("key = ?", model.StateKey).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.EngineState{}, nil
	}
	if err != nil {
		return nil, err
	}

	var state model.EngineState
	if err := json.Unmarshal(doc.State, &state); err != nil {
		return nil, util.ErrStateCorrupted
	}
	return &state, nil
}

// Save 整体写回引擎状态
func (r *EngineStateRepository) Save(state *model.EngineState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}

	var doc model.EngineStateDocument
	err = r.DB.Where("key = ?", model.StateKey).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		doc = model.EngineStateDocument{
			Key:     model.StateKey,
			Version: model.StateVersion,
			State:   raw,
		}
		return r.DB.Create(&doc).Error
	}
	if err != nil {
		return err
	}

	return r.DB.Model(&doc).Updates(map[string]interface{}{
		"version":    model.StateVersion,
		"state":      raw,
		"updated_at": time.Now(),
	}).Error
}

// Export 导出带版本戳的全量状态文档
func (r *EngineStateRepository) Export() (*model.EngineStateDocument, error) {
	var doc model.EngineStateDocument
	err := r.DB.Where("key = ?", model.StateKey).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		empty, _ := json.Marshal(model.EngineState{})
		return &model.EngineStateDocument{Key: model.StateKey, Version: model.StateVersion, State: empty}, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Import 用导入的文档整体替换当前状态，导入前校验可解析
func (r *EngineStateRepository) Import(raw json.RawMessage) error {
	var state model.EngineState
	if err := json.Unmarshal(raw, &state); err != nil {
		return util.ErrStateCorrupted
	}
	return r.Save(&state)
}
