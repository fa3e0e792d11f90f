package services

import (
	"fmt"
	"sync"
	"testing"

	"github.com/Mojelloul/doqcm/internal/models"
	"github.com/Mojelloul/doqcm/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var initLogger sync.Once

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	initLogger.Do(logger.Init)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// a single connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Document{},
		&models.Question{},
		&models.Choice{},
		&models.DocumentShare{},
		&models.UserQuestionAssignment{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         "Test User",
		PasswordHash: "not-a-real-hash",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// seedQuiz creates a document owned by owner with questionCount questions of
// three choices each (the first choice is the correct one), plus a share with
// a null score and a full question assignment for the recipient.
func seedQuiz(t *testing.T, db *gorm.DB, owner, recipient models.User, questionCount int) (models.Document, []models.Question) {
	t.Helper()

	document := models.Document{
		ID:      uuid.NewString(),
		Title:   "Seeded Document",
		Content: "seeded content",
		Summary: "seeded summary",
		OwnerID: owner.ID,
	}
	require.NoError(t, db.Create(&document).Error)

	var questions []models.Question
	for i := 0; i < questionCount; i++ {
		question := models.Question{
			ID:         uuid.NewString(),
			DocumentID: document.ID,
			Text:       fmt.Sprintf("Question %d?", i+1),
		}
		require.NoError(t, db.Create(&question).Error)

		for j := 0; j < 3; j++ {
			choice := models.Choice{
				ID:         uuid.NewString(),
				QuestionID: question.ID,
				Text:       fmt.Sprintf("Choice %d of question %d", j+1, i+1),
				IsCorrect:  j == 0,
			}
			require.NoError(t, db.Create(&choice).Error)
			question.Choices = append(question.Choices, choice)
		}

		require.NoError(t, db.Create(&models.UserQuestionAssignment{
			UserID:     recipient.ID,
			QuestionID: question.ID,
		}).Error)

		questions = append(questions, question)
	}

	require.NoError(t, db.Create(&models.DocumentShare{
		EmployeeID: recipient.ID,
		DocumentID: document.ID,
	}).Error)

	return document, questions
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Count(&count).Error)
	return count
}
