package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Email        string     `gorm:"column:email;uniqueIndex;not null"`
	Nickname     string     `gorm:"column:nickname"`
	FirstName    string     `gorm:"column:first_name"`
	LastName     string     `gorm:"column:last_name"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	Function     int        `gorm:"column:function;not null;default:0"`
	PatrolID     *uuid.UUID `gorm:"column:patrol_id;type:uuid"`
	IsActive     bool       `gorm:"column:is_active;default:true"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
}

func (User) TableName() string {
	return "users"
}
