package domain

import "github.com/google/uuid"

// Label is a user-scoped tag referenced by id from Card.Labels
type Label struct {
	BaseModel
	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_labels_user_id" json:"userId"`
	Name   string    `gorm:"type:varchar(100);not null" json:"name"`
	Color  string    `gorm:"type:varchar(20);not null" json:"color"`
}

// TableName specifies the table name for Label
func (Label) TableName() string {
	return "board_labels"
}
