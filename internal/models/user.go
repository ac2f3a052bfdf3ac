package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name         string         `json:"name" gorm:"not null"`
	Email        string         `json:"email" gorm:"type:varchar(191);uniqueIndex;not null"`
	PasswordHash string         `json:"-" gorm:"not null"`
	Phone        string         `json:"phone"`
	Role         UserRole       `json:"role" gorm:"type:varchar(20);not null"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleUser  UserRole = "USER"
)
