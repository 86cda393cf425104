package model

import "time"

// Domain 内容领域，四个封闭取值
type Domain string

const (
	DomainDSA          Domain = "dsa"
	DomainCore         Domain = "core"
	DomainInterview    Domain = "interview"
	DomainSystemDesign Domain = "systemDesign"
)

// AllDomains 按固定顺序列出全部内容领域
func AllDomains() []Domain {
	return []Domain{DomainDSA, DomainCore, DomainInterview, DomainSystemDesign}
}

// Valid 判断领域取值是否合法
func (d Domain) Valid() bool {
	switch d {
	case DomainDSA, DomainCore, DomainInterview, DomainSystemDesign:
		return true
	}
	return false
}

// ContentKind 返回该领域下内容单元的原始类型
func (d Domain) ContentKind() string {
	switch d {
	case DomainDSA:
		return "problem"
	case DomainInterview:
		return "question"
	default:
		return "subtopic"
	}
}

// DifficultyLevel 内容难度
type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

// Rank 难度序值，easy=1 hard=3，未知按中等处理
func (d DifficultyLevel) Rank() int {
	switch d {
	case DifficultyEasy:
		return 1
	case DifficultyMedium:
		return 2
	case DifficultyHard:
		return 3
	}
	return 2
}

// LearnableItem 可学习的内容单元（题目/子主题/问题），由内容模块维护，引擎只读
type LearnableItem struct {
	ID              string          `gorm:"primaryKey;size:64" json:"id"`
	Domain          Domain          `gorm:"size:32;index;not null" json:"domain"`
	TopicID         string          `gorm:"size:64;index" json:"topicId"`
	TopicTitle      string          `gorm:"size:255" json:"topicTitle"`
	CategoryID      string          `gorm:"size:64" json:"categoryId"`
	Title           string          `gorm:"size:255;not null" json:"title"`
	DifficultyLevel DifficultyLevel `gorm:"size:16;default:'medium'" json:"difficultyLevel"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func (LearnableItem) TableName() string {
	return "learnable_items"
}
