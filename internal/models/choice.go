package models

type Choice struct {
	ID         string `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID string `gorm:"type:uuid;not null;index" json:"question_id"`
	Text       string `gorm:"column:choice;size:500;not null" json:"choice"`
	IsCorrect  bool   `gorm:"not null;default:false" json:"is_correct"`
}

func (Choice) TableName() string { return "qcm_choices" }
