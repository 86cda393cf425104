package database

import (
	"log"
	"os"
	"path/filepath"

	"stackwise_backend/internal/config"
	"stackwise_backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			os.MkdirAll(dir, 0755)
		}
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.LearnableItem{},
		&model.EngineStateDocument{},
	)
	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	seedItems(db)

	return db, nil
}

// seedItems 内容池为空时插入各领域的起始内容
func seedItems(db *gorm.DB) {
	var count int64
	db.Model(&model.LearnableItem{}).Count(&count)
	if count > 0 {
		return
	}

	type seed struct {
		domain     model.Domain
		topicTitle string
		title      string
		difficulty model.DifficultyLevel
	}
	seeds := []seed{
		{model.DomainDSA, "Arrays", "Two Sum", model.DifficultyEasy},
		{model.DomainDSA, "Arrays", "Maximum Subarray", model.DifficultyMedium},
		{model.DomainDSA, "Linked Lists", "Reverse Linked List", model.DifficultyEasy},
		{model.DomainDSA, "Trees", "Binary Tree Level Order Traversal", model.DifficultyMedium},
		{model.DomainDSA, "Graphs", "Course Schedule", model.DifficultyHard},
		{model.DomainCore, "Operating Systems", "Process vs Thread", model.DifficultyEasy},
		{model.DomainCore, "Operating Systems", "Deadlock Conditions", model.DifficultyMedium},
		{model.DomainCore, "Networks", "TCP Handshake", model.DifficultyEasy},
		{model.DomainCore, "Databases", "Indexing Internals", model.DifficultyHard},
		{model.DomainInterview, "Behavioral", "Tell Me About a Conflict", model.DifficultyEasy},
		{model.DomainInterview, "Coding", "Whiteboard a Rate Limiter", model.DifficultyMedium},
		{model.DomainSystemDesign, "Fundamentals", "Design a URL Shortener", model.DifficultyMedium},
		{model.DomainSystemDesign, "Scaling", "Design a News Feed", model.DifficultyHard},
	}

	for _, s := range seeds {
		db.Create(&model.LearnableItem{
			ID:              uuid.NewString(),
			Domain:          s.domain,
			TopicID:         uuid.NewString(),
			TopicTitle:      s.topicTitle,
			Title:           s.title,
			DifficultyLevel: s.difficulty,
		})
	}

	log.Printf("Seeded %d learnable items", len(seeds))
}
