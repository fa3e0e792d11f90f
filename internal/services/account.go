package services

import (
	"time"

	"github.com/Mojelloul/doqcm/internal/models"
	"github.com/Mojelloul/doqcm/pkg/logger"

	"gorm.io/gorm"
)

type AccountService struct {
	db *gorm.DB
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db}
}

type ExportedUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type AccountExport struct {
	User            ExportedUser           `json:"user"`
	Documents       []models.Document      `json:"documents"`
	SharedDocuments []models.DocumentShare `json:"shared_documents"`
	QCMQuestions    []models.Question      `json:"qcm_questions"`
}

// ExportData collects everything stored about the user: the account row,
// owned documents, received shares and the quizzes of owned documents.
func (s *AccountService) ExportData(userID string) (*AccountExport, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, ErrNotFound
	}

	var documents []models.Document
	if err := s.db.Where("owner_id = ?", userID).Find(&documents).Error; err != nil {
		return nil, &StorageError{Op: "load documents", Err: err}
	}

	var shares []models.DocumentShare
	if err := s.db.Where("employee_id = ?", userID).Find(&shares).Error; err != nil {
		return nil, &StorageError{Op: "load shares", Err: err}
	}

	documentIDs := make([]string, 0, len(documents))
	for _, d := range documents {
		documentIDs = append(documentIDs, d.ID)
	}

	var questions []models.Question
	if len(documentIDs) > 0 {
		err := s.db.Preload("Choices").Where("document_id IN ?", documentIDs).Find(&questions).Error
		if err != nil {
			return nil, &StorageError{Op: "load questions", Err: err}
		}
	}

	return &AccountExport{
		User: ExportedUser{
			ID:        user.ID,
			Email:     user.Email,
			Name:      user.Name,
			CreatedAt: user.CreatedAt,
		},
		Documents:       documents,
		SharedDocuments: shares,
		QCMQuestions:    questions,
	}, nil
}

// DeleteAccount removes the user's owned documents with their quizzes and
// shares, the user's own shares and assignments, and finally the user row.
func (s *AccountService) DeleteAccount(userID string) error {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return ErrNotFound
	}

	var documentIDs []string
	err := s.db.Model(&models.Document{}).Where("owner_id = ?", userID).Pluck("id", &documentIDs).Error
	if err != nil {
		return &StorageError{Op: "load owned documents", Err: err}
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return &StorageError{Op: "begin transaction", Err: tx.Error}
	}

	for _, documentID := range documentIDs {
		if err := deleteDocumentRows(tx, documentID); err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Where("employee_id = ?", userID).Delete(&models.DocumentShare{}).Error; err != nil {
		tx.Rollback()
		return &StorageError{Op: "delete own shares", Err: err}
	}
	if err := tx.Where("user_id = ?", userID).Delete(&models.UserQuestionAssignment{}).Error; err != nil {
		tx.Rollback()
		return &StorageError{Op: "delete own assignments", Err: err}
	}
	if err := tx.Where("id = ?", userID).Delete(&models.User{}).Error; err != nil {
		tx.Rollback()
		return &StorageError{Op: "delete user", Err: err}
	}

	if err := tx.Commit().Error; err != nil {
		return &StorageError{Op: "commit account delete", Err: err}
	}

	logger.Sugar.Infow("account deleted", "user_id", userID, "documents", len(documentIDs))
	return nil
}
