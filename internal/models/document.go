package models

import "time"

type Document struct {
	ID        string     `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string     `gorm:"size:255;not null" json:"title"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	Summary   string     `gorm:"size:250" json:"summary"`
	OwnerID   string     `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner     User       `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	Questions []Question `gorm:"foreignKey:DocumentID" json:"questions,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (Document) TableName() string { return "documents" }
