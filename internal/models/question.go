package models

type Question struct {
	ID         string   `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentID string   `gorm:"type:uuid;not null;index" json:"document_id"`
	Text       string   `gorm:"column:question;type:text;not null" json:"question"`
	Choices    []Choice `gorm:"foreignKey:QuestionID" json:"choices,omitempty"`
}

func (Question) TableName() string { return "qcm_questions" }
