package domain

import "time"

// Setting is one admin-mutable configuration row. Values are stored as
// strings and parsed into a settings snapshot at request time.
type Setting struct {
	Key       string    `json:"key" gorm:"primaryKey;type:varchar(64)"`
	Value     string    `json:"value" gorm:"type:text"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string { return "settings" }
