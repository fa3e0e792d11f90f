package services

import (
	"testing"

	"github.com/Mojelloul/doqcm/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func correctChoice(q models.Question) string { return q.Choices[0].ID }
func wrongChoice(q models.Question) string   { return q.Choices[1].ID }

func TestGetQuizReturnsAssignedQuestionsWithoutCorrectness(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	recipient := createTestUser(t, db, "a@example.com")
	document, questions := seedQuiz(t, db, owner, recipient, 3)

	svc := NewQuizService(db)

	view, err := svc.GetQuiz(recipient.ID, document.ID)
	require.NoError(t, err)
	assert.False(t, view.Completed)
	assert.Nil(t, view.Score)
	assert.Equal(t, document.Title, view.Title)
	require.Len(t, view.Questions, len(questions))
	for _, q := range view.Questions {
		assert.Len(t, q.Choices, 3)
	}
}

func TestGetQuizFiltersToAssignment(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	recipient := createTestUser(t, db, "a@example.com")
	document, questions := seedQuiz(t, db, owner, recipient, 3)

	// drop one assignment: the recipient's quiz shrinks to the remaining two
	require.NoError(t, db.Where("user_id = ? AND question_id = ?", recipient.ID, questions[0].ID).
		Delete(&models.UserQuestionAssignment{}).Error)

	svc := NewQuizService(db)
	view, err := svc.GetQuiz(recipient.ID, document.ID)
	require.NoError(t, err)
	require.Len(t, view.Questions, 2)
	for _, q := range view.Questions {
		assert.NotEqual(t, questions[0].ID, q.ID)
	}
}

func TestGetQuizWithoutShare(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	recipient := createTestUser(t, db, "a@example.com")
	stranger := createTestUser(t, db, "stranger@example.com")
	document, _ := seedQuiz(t, db, owner, recipient, 3)

	svc := NewQuizService(db)
	_, err := svc.GetQuiz(stranger.ID, document.ID)
	require.ErrorIs(t, err, ErrAccessDenied)
}

func TestSubmitAnswersRequiresAllQuestions(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	recipient := createTestUser(t, db, "a@example.com")
	document, questions := seedQuiz(t, db, owner, recipient, 3)

	svc := NewQuizService(db)

	_, err := svc.SubmitAnswers(recipient.ID, document.ID, map[string]string{
		questions[0].ID: correctChoice(questions[0]),
	})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Error(), "1/3 answered")

	// nothing recorded
	var share models.DocumentShare
	require.NoError(t, db.Where("employee_id = ? AND document_id = ?", recipient.ID, document.ID).First(&share).Error)
	assert.Nil(t, share.Score)
}

func TestSubmitAnswersRejectsForeignChoice(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	recipient := createTestUser(t, db, "a@example.com")
	document, questions := seedQuiz(t, db, owner, recipient, 3)

	svc := NewQuizService(db)

	// choice of question 2 submitted for question 1
	_, err := svc.SubmitAnswers(recipient.ID, document.ID, map[string]string{
		questions[0].ID: correctChoice(questions[1]),
		questions[1].ID: correctChoice(questions[1]),
		questions[2].ID: correctChoice(questions[2]),
	})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestSubmitAnswersScoresAndPersists(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	recipient := createTestUser(t, db, "a@example.com")
	document, questions := seedQuiz(t, db, owner, recipient, 3)

	svc := NewQuizService(db)

	result, err := svc.SubmitAnswers(recipient.ID, document.ID, map[string]string{
		questions[0].ID: correctChoice(questions[0]),
		questions[1].ID: wrongChoice(questions[1]),
		questions[2].ID: correctChoice(questions[2]),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Correct)
	assert.Equal(t, 3, result.Total)
	assert.InDelta(t, 200.0/3.0, result.Percentage, 1e-9)

	var share models.DocumentShare
	require.NoError(t, db.Where("employee_id = ? AND document_id = ?", recipient.ID, document.ID).First(&share).Error)
	require.NotNil(t, share.Score)
	assert.InDelta(t, 200.0/3.0, *share.Score, 1e-9)

	// the flow is now terminal: the view carries the score, not the questions
	view, err := svc.GetQuiz(recipient.ID, document.ID)
	require.NoError(t, err)
	assert.True(t, view.Completed)
	require.NotNil(t, view.Score)
	assert.InDelta(t, 200.0/3.0, *view.Score, 1e-9)
	assert.Empty(t, view.Questions)
}

func TestSubmitAnswersTwice(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	recipient := createTestUser(t, db, "a@example.com")
	document, questions := seedQuiz(t, db, owner, recipient, 3)

	svc := NewQuizService(db)

	answers := map[string]string{
		questions[0].ID: correctChoice(questions[0]),
		questions[1].ID: correctChoice(questions[1]),
		questions[2].ID: correctChoice(questions[2]),
	}

	first, err := svc.SubmitAnswers(recipient.ID, document.ID, answers)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, first.Percentage, 1e-9)

	_, err = svc.SubmitAnswers(recipient.ID, document.ID, answers)
	require.ErrorIs(t, err, ErrAlreadyCompleted)

	// still exactly one share row, score unchanged
	var shares []models.DocumentShare
	require.NoError(t, db.Where("employee_id = ? AND document_id = ?", recipient.ID, document.ID).Find(&shares).Error)
	require.Len(t, shares, 1)
	require.NotNil(t, shares[0].Score)
	assert.InDelta(t, 100.0, *shares[0].Score, 1e-9)
}

func TestSubmitAnswersWithoutShare(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	recipient := createTestUser(t, db, "a@example.com")
	stranger := createTestUser(t, db, "stranger@example.com")
	document, questions := seedQuiz(t, db, owner, recipient, 3)

	svc := NewQuizService(db)
	_, err := svc.SubmitAnswers(stranger.ID, document.ID, map[string]string{
		questions[0].ID: correctChoice(questions[0]),
	})
	require.ErrorIs(t, err, ErrAccessDenied)

	assert.EqualValues(t, 1, countRows(t, db, &models.DocumentShare{}))
}
