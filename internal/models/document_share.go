package models

// DocumentShare links a recipient to a document they must take the quiz for.
// Score stays null until the recipient submits their answers.
type DocumentShare struct {
	EmployeeID string   `gorm:"type:uuid;primaryKey" json:"employee_id"`
	DocumentID string   `gorm:"type:uuid;primaryKey" json:"document_id"`
	Score      *float64 `json:"score"`
}

func (DocumentShare) TableName() string { return "employees_documents" }
