package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/agenthub/agenthub/internal/models"
	"github.com/agenthub/agenthub/internal/store"
)

// testDB opens an isolated in-memory database. A single pooled connection
// keeps the shared-cache database alive and serializes concurrent writes
// the way the production store's transaction isolation does.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("access pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func createUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{Email: email, PasswordHash: "x", Name: "Test User"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func createAgent(t *testing.T, db *gorm.DB, userID string) models.Agent {
	t.Helper()
	agent := models.Agent{
		UserID:       userID,
		Name:         "Support Bot",
		SystemPrompt: "You are a helpful assistant.",
		LLMProvider:  "anthropic",
		LLMModel:     "claude-sonnet-4-20250514",
	}
	if err := db.Create(&agent).Error; err != nil {
		t.Fatalf("create agent: %v", err)
	}
	return agent
}

func createConversation(t *testing.T, db *gorm.DB, agent models.Agent) models.Conversation {
	t.Helper()
	conv := models.Conversation{
		AgentID: agent.ID,
		UserID:  agent.UserID,
		Status:  models.ConversationActive,
	}
	if err := db.Create(&conv).Error; err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	return conv
}

func messageRows(t *testing.T, db *gorm.DB, conversationID string) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.Message{}).Where("conversation_id = ?", conversationID).Count(&n).Error; err != nil {
		t.Fatalf("count messages: %v", err)
	}
	return n
}

func storedCount(t *testing.T, db *gorm.DB, conversationID string) int {
	t.Helper()
	var conv models.Conversation
	if err := db.Where("id = ?", conversationID).First(&conv).Error; err != nil {
		t.Fatalf("load conversation: %v", err)
	}
	return conv.MessageCount
}

var testCtx = context.Background()
