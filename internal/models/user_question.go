package models

// UserQuestionAssignment marks a question as part of a recipient's personal
// quiz subset for the question's document.
type UserQuestionAssignment struct {
	UserID     string `gorm:"type:uuid;primaryKey" json:"user_id"`
	QuestionID string `gorm:"type:uuid;primaryKey" json:"question_id"`
}

func (UserQuestionAssignment) TableName() string { return "users_questions" }
