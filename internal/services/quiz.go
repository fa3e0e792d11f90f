package services

import (
	"errors"

	"github.com/Mojelloul/doqcm/internal/models"
	"github.com/Mojelloul/doqcm/pkg/logger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuizService struct {
	db *gorm.DB
}

func NewQuizService(db *gorm.DB) *QuizService {
	return &QuizService{db: db}
}

type QuizChoice struct {
	ID   string `json:"id"`
	Text string `json:"choice"`
}

type QuizQuestion struct {
	ID      string       `json:"id"`
	Text    string       `json:"question"`
	Choices []QuizChoice `json:"choices"`
}

type QuizView struct {
	DocumentID string         `json:"document_id"`
	Title      string         `json:"title"`
	Summary    string         `json:"summary"`
	Completed  bool           `json:"completed"`
	Score      *float64       `json:"score,omitempty"`
	Questions  []QuizQuestion `json:"questions,omitempty"`
}

type SubmitResult struct {
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// GetQuiz loads the quiz view for a recipient. Once a score exists the view
// is terminal: it carries the stored score and no questions. Correctness
// flags never leave this package.
func (s *QuizService) GetQuiz(userID, documentID string) (*QuizView, error) {
	share, err := s.loadShare(userID, documentID)
	if err != nil {
		return nil, err
	}

	var document models.Document
	if err := s.db.First(&document, "id = ?", documentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, &StorageError{Op: "load document", Err: err}
	}

	view := &QuizView{
		DocumentID: document.ID,
		Title:      document.Title,
		Summary:    document.Summary,
	}

	if share.Score != nil {
		view.Completed = true
		view.Score = share.Score
		return view, nil
	}

	questions, err := s.loadAssignedQuestions(userID, documentID)
	if err != nil {
		return nil, err
	}

	for _, q := range questions {
		quizQuestion := QuizQuestion{ID: q.ID, Text: q.Text}
		for _, c := range q.Choices {
			quizQuestion.Choices = append(quizQuestion.Choices, QuizChoice{ID: c.ID, Text: c.Text})
		}
		view.Questions = append(view.Questions, quizQuestion)
	}

	return view, nil
}

// SubmitAnswers scores one selected choice per assigned question and records
// the percentage on the share row. The write is a single upsert keyed on
// (employee_id, document_id), so a racing duplicate submission can never
// produce a second row.
func (s *QuizService) SubmitAnswers(userID, documentID string, answers map[string]string) (*SubmitResult, error) {
	share, err := s.loadShare(userID, documentID)
	if err != nil {
		return nil, err
	}
	if share.Score != nil {
		return nil, ErrAlreadyCompleted
	}

	questions, err := s.loadAssignedQuestions(userID, documentID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrNotFound
	}

	answered := 0
	correct := 0
	for _, q := range questions {
		choiceID, ok := answers[q.ID]
		if !ok {
			continue
		}
		var selected *models.Choice
		for i := range q.Choices {
			if q.Choices[i].ID == choiceID {
				selected = &q.Choices[i]
				break
			}
		}
		if selected == nil {
			return nil, validationErrorf("selected choice does not belong to question %s", q.ID)
		}
		answered++
		if selected.IsCorrect {
			correct++
		}
	}

	if answered < len(questions) {
		return nil, validationErrorf("please answer all questions (%d/%d answered)", answered, len(questions))
	}

	percentage := float64(correct) / float64(len(questions)) * 100

	updated := models.DocumentShare{
		EmployeeID: userID,
		DocumentID: documentID,
		Score:      &percentage,
	}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "employee_id"}, {Name: "document_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score"}),
	}).Create(&updated).Error
	if err != nil {
		return nil, &StorageError{Op: "record score", Err: err}
	}

	logger.Sugar.Infow("quiz submitted",
		"document_id", documentID,
		"employee_id", userID,
		"correct", correct,
		"total", len(questions),
		"score", percentage,
	)

	return &SubmitResult{
		Correct:    correct,
		Total:      len(questions),
		Percentage: percentage,
	}, nil
}

func (s *QuizService) loadShare(userID, documentID string) (*models.DocumentShare, error) {
	var share models.DocumentShare
	err := s.db.Where("employee_id = ? AND document_id = ?", userID, documentID).First(&share).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccessDenied
		}
		return nil, &StorageError{Op: "load share", Err: err}
	}
	return &share, nil
}

// loadAssignedQuestions returns the recipient's personal subset. Documents
// distributed before assignments existed have no rows in users_questions;
// for those the full question set is used.
func (s *QuizService) loadAssignedQuestions(userID, documentID string) ([]models.Question, error) {
	var assignedIDs []string
	err := s.db.Model(&models.UserQuestionAssignment{}).
		Joins("JOIN qcm_questions ON qcm_questions.id = users_questions.question_id").
		Where("users_questions.user_id = ? AND qcm_questions.document_id = ?", userID, documentID).
		Pluck("users_questions.question_id", &assignedIDs).Error
	if err != nil {
		return nil, &StorageError{Op: "load question assignments", Err: err}
	}

	query := s.db.Preload("Choices").Where("document_id = ?", documentID)
	if len(assignedIDs) > 0 {
		query = query.Where("id IN ?", assignedIDs)
	}

	var questions []models.Question
	if err := query.Order("id ASC").Find(&questions).Error; err != nil {
		return nil, &StorageError{Op: "load questions", Err: err}
	}
	return questions, nil
}
