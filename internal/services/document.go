package services

import (
	"time"

	"github.com/Mojelloul/doqcm/internal/models"
	"github.com/Mojelloul/doqcm/pkg/logger"

	"gorm.io/gorm"
)

type DocumentService struct {
	db *gorm.DB
}

func NewDocumentService(db *gorm.DB) *DocumentService {
	return &DocumentService{db: db}
}

type SharedDocument struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
	Score     *float64  `json:"score"`
}

// GetSharedDocuments lists the documents distributed to the given recipient,
// newest first, with their current score state.
func (s *DocumentService) GetSharedDocuments(userID string) ([]SharedDocument, error) {
	var shared []SharedDocument
	err := s.db.Table("documents").
		Select("documents.id, documents.title, documents.summary, documents.created_at, employees_documents.score").
		Joins("JOIN employees_documents ON employees_documents.document_id = documents.id").
		Where("employees_documents.employee_id = ?", userID).
		Order("documents.created_at DESC").
		Scan(&shared).Error
	if err != nil {
		return nil, &StorageError{Op: "list shared documents", Err: err}
	}
	return shared, nil
}

func (s *DocumentService) GetOwnedDocuments(ownerID string) ([]models.Document, error) {
	var documents []models.Document
	err := s.db.Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&documents).Error
	if err != nil {
		return nil, &StorageError{Op: "list owned documents", Err: err}
	}
	return documents, nil
}

// OwnsDocument reports whether the document exists and belongs to the user.
func (s *DocumentService) OwnsDocument(ownerID, documentID string) bool {
	var count int64
	s.db.Model(&models.Document{}).
		Where("id = ? AND owner_id = ?", documentID, ownerID).
		Count(&count)
	return count > 0
}

type RecipientResult struct {
	UserID       string   `json:"user_id"`
	Email        string   `json:"email"`
	Score        *float64 `json:"score"`
	HasTakenTest bool     `json:"has_taken_test"`
}

type DocumentResults struct {
	DocumentID string            `json:"document_id"`
	Title      string            `json:"title"`
	CreatedAt  time.Time         `json:"created_at"`
	Results    []RecipientResult `json:"results"`
}

// GetDocumentResults returns per-recipient completion and scores for a
// document the caller owns.
func (s *DocumentService) GetDocumentResults(ownerID, documentID string) (*DocumentResults, error) {
	var document models.Document
	err := s.db.Where("id = ? AND owner_id = ?", documentID, ownerID).First(&document).Error
	if err != nil {
		return nil, ErrNotFound
	}

	var shares []models.DocumentShare
	if err := s.db.Where("document_id = ?", documentID).Find(&shares).Error; err != nil {
		return nil, &StorageError{Op: "load shares", Err: err}
	}

	results := &DocumentResults{
		DocumentID: document.ID,
		Title:      document.Title,
		CreatedAt:  document.CreatedAt,
	}

	if len(shares) == 0 {
		return results, nil
	}

	userIDs := make([]string, 0, len(shares))
	for _, share := range shares {
		userIDs = append(userIDs, share.EmployeeID)
	}

	var users []models.User
	if err := s.db.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, &StorageError{Op: "load recipients", Err: err}
	}
	emailByID := make(map[string]string, len(users))
	for _, u := range users {
		emailByID[u.ID] = u.Email
	}

	for _, share := range shares {
		email, ok := emailByID[share.EmployeeID]
		if !ok {
			email = "unknown user"
		}
		results.Results = append(results.Results, RecipientResult{
			UserID:       share.EmployeeID,
			Email:        email,
			Score:        share.Score,
			HasTakenTest: share.Score != nil,
		})
	}

	return results, nil
}

// DeleteDocument removes an owned document and everything hanging off it:
// question assignments, choices, questions and shares, in one transaction.
func (s *DocumentService) DeleteDocument(ownerID, documentID string) error {
	var document models.Document
	err := s.db.Where("id = ? AND owner_id = ?", documentID, ownerID).First(&document).Error
	if err != nil {
		return ErrNotFound
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return &StorageError{Op: "begin transaction", Err: tx.Error}
	}

	if err := deleteDocumentRows(tx, documentID); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return &StorageError{Op: "commit document delete", Err: err}
	}

	logger.Sugar.Infow("document deleted", "document_id", documentID, "owner_id", ownerID)
	return nil
}

func deleteDocumentRows(tx *gorm.DB, documentID string) error {
	questionFilter := tx.Model(&models.Question{}).Select("id").Where("document_id = ?", documentID)

	if err := tx.Where("question_id IN (?)", questionFilter).Delete(&models.UserQuestionAssignment{}).Error; err != nil {
		return &StorageError{Op: "delete question assignments", Err: err}
	}
	if err := tx.Where("question_id IN (?)", questionFilter).Delete(&models.Choice{}).Error; err != nil {
		return &StorageError{Op: "delete choices", Err: err}
	}
	if err := tx.Where("document_id = ?", documentID).Delete(&models.Question{}).Error; err != nil {
		return &StorageError{Op: "delete questions", Err: err}
	}
	if err := tx.Where("document_id = ?", documentID).Delete(&models.DocumentShare{}).Error; err != nil {
		return &StorageError{Op: "delete shares", Err: err}
	}
	if err := tx.Where("id = ?", documentID).Delete(&models.Document{}).Error; err != nil {
		return &StorageError{Op: "delete document", Err: err}
	}
	return nil
}
