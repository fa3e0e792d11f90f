package services

import (
	"context"
	"errors"
	"math/rand"
	"regexp"
	"unicode/utf8"

	"github.com/Mojelloul/doqcm/internal/gemini"
	"github.com/Mojelloul/doqcm/internal/models"
	"github.com/Mojelloul/doqcm/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	minTextLength    = 100
	maxTextLength    = 3000
	maxSummaryLength = 250
	maxRecipients    = 3

	// Each recipient answers a personal subset of this many questions. When
	// the document has fewer, every question is assigned.
	assignedQuestionsPerRecipient = 3
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// QuizGenerator is the AI collaborator the pipeline calls once per submission.
type QuizGenerator interface {
	GenerateQuiz(ctx context.Context, text, title, summary string, questionCount int) (*gemini.QCMResponse, error)
}

type AnalysisService struct {
	db            *gorm.DB
	generator     QuizGenerator
	questionCount int
}

func NewAnalysisService(db *gorm.DB, generator QuizGenerator, questionCount int) *AnalysisService {
	return &AnalysisService{
		db:            db,
		generator:     generator,
		questionCount: questionCount,
	}
}

type AnalysisInput struct {
	Title      string
	Text       string
	Summary    string
	Recipients []string
	Consent    bool
}

type AnalysisResult struct {
	DocumentID    string   `json:"document_id"`
	QuestionCount int      `json:"question_count"`
	Recipients    []string `json:"recipients"`
}

// Analyze turns a submitted document into a persisted, distributed quiz:
// validate, resolve recipients, generate the quiz, then write the document,
// its questions and choices, the per-recipient question assignments and the
// share rows in one transaction. Nothing is persisted on any failure.
func (s *AnalysisService) Analyze(ctx context.Context, ownerID string, input AnalysisInput) (*AnalysisResult, error) {
	if err := validateAnalysisInput(input); err != nil {
		return nil, err
	}

	var owner models.User
	if err := s.db.First(&owner, "id = ?", ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &AuthenticationError{Reason: "you must be signed in to submit an analysis"}
		}
		return nil, &StorageError{Op: "load owner", Err: err}
	}

	recipients, err := s.resolveRecipients(input.Recipients)
	if err != nil {
		return nil, err
	}

	quiz, err := s.generator.GenerateQuiz(ctx, input.Text, input.Title, input.Summary, s.questionCount)
	if err != nil {
		logger.Sugar.Errorf("quiz generation failed for owner %s: %v", ownerID, err)
		return nil, &GenerationError{Err: err}
	}

	document := models.Document{
		ID:      uuid.NewString(),
		Title:   input.Title,
		Content: input.Text,
		Summary: input.Summary,
		OwnerID: owner.ID,
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, &StorageError{Op: "begin transaction", Err: tx.Error}
	}

	if err := tx.Create(&document).Error; err != nil {
		tx.Rollback()
		return nil, &StorageError{Op: "create document", Err: err}
	}

	questionIDs := make([]string, 0, len(quiz.QCM))
	for _, q := range quiz.QCM {
		question := models.Question{
			ID:         uuid.NewString(),
			DocumentID: document.ID,
			Text:       q.Question,
		}
		if err := tx.Create(&question).Error; err != nil {
			tx.Rollback()
			return nil, &StorageError{Op: "create question", Err: err}
		}
		questionIDs = append(questionIDs, question.ID)

		for _, lc := range q.Labeled() {
			choice := models.Choice{
				ID:         uuid.NewString(),
				QuestionID: question.ID,
				Text:       lc.Text,
				IsCorrect:  lc.IsCorrect,
			}
			if err := tx.Create(&choice).Error; err != nil {
				tx.Rollback()
				return nil, &StorageError{Op: "create choice", Err: err}
			}
		}
	}

	emails := make([]string, 0, len(recipients))
	for _, recipient := range recipients {
		for _, questionID := range pickAssignment(questionIDs) {
			assignment := models.UserQuestionAssignment{
				UserID:     recipient.ID,
				QuestionID: questionID,
			}
			if err := tx.Create(&assignment).Error; err != nil {
				tx.Rollback()
				return nil, &StorageError{Op: "create question assignment", Err: err}
			}
		}

		share := models.DocumentShare{
			EmployeeID: recipient.ID,
			DocumentID: document.ID,
		}
		if err := tx.Create(&share).Error; err != nil {
			tx.Rollback()
			return nil, &StorageError{Op: "create document share", Err: err}
		}
		emails = append(emails, recipient.Email)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, &StorageError{Op: "commit analysis", Err: err}
	}

	logger.Sugar.Infow("document analyzed and distributed",
		"document_id", document.ID,
		"owner_id", owner.ID,
		"questions", len(questionIDs),
		"recipients", len(recipients),
	)

	return &AnalysisResult{
		DocumentID:    document.ID,
		QuestionCount: len(questionIDs),
		Recipients:    emails,
	}, nil
}

func validateAnalysisInput(input AnalysisInput) error {
	if input.Title == "" {
		return validationErrorf("title is required")
	}
	if n := utf8.RuneCountInString(input.Text); n < minTextLength || n > maxTextLength {
		return validationErrorf("text must be between %d and %d characters (got %d)", minTextLength, maxTextLength, n)
	}
	if n := utf8.RuneCountInString(input.Summary); n > maxSummaryLength {
		return validationErrorf("summary must not exceed %d characters (got %d)", maxSummaryLength, n)
	}
	if len(input.Recipients) == 0 {
		return validationErrorf("at least one recipient email is required")
	}
	if len(input.Recipients) > maxRecipients {
		return validationErrorf("no more than %d recipient emails are allowed", maxRecipients)
	}
	for _, email := range input.Recipients {
		if !emailPattern.MatchString(email) {
			return validationErrorf("invalid recipient email address: %s", email)
		}
	}
	if !input.Consent {
		return validationErrorf("consent to external AI processing is required")
	}
	return nil
}

// resolveRecipients maps the submitted addresses to registered users. Any
// unresolved address aborts the distribution.
func (s *AnalysisService) resolveRecipients(emails []string) ([]models.User, error) {
	var users []models.User
	if err := s.db.Where("email IN ?", emails).Find(&users).Error; err != nil {
		return nil, &StorageError{Op: "resolve recipients", Err: err}
	}

	found := make(map[string]bool, len(users))
	for _, u := range users {
		found[u.Email] = true
	}

	var unresolved []string
	for _, email := range emails {
		if !found[email] {
			unresolved = append(unresolved, email)
		}
	}
	if len(users) == 0 {
		return nil, &RecipientResolutionError{}
	}
	if len(unresolved) > 0 {
		return nil, &RecipientResolutionError{Unresolved: unresolved}
	}

	return users, nil
}

// pickAssignment draws an independent random subset per recipient, so two
// recipients may get overlapping or disjoint questions. The top-level rand
// functions are locked, so concurrent submissions can share them.
func pickAssignment(questionIDs []string) []string {
	if len(questionIDs) <= assignedQuestionsPerRecipient {
		return questionIDs
	}
	picked := make([]string, 0, assignedQuestionsPerRecipient)
	for _, i := range rand.Perm(len(questionIDs))[:assignedQuestionsPerRecipient] {
		picked = append(picked, questionIDs[i])
	}
	return picked
}
