package model

import "time"

// Exchange is one answered /infer request.
type Exchange struct {
	ID           uint      `gorm:"primaryKey"`
	Prompt       string    `gorm:"type:text;not null"`
	Response     string    `gorm:"type:text"`
	HistoryTurns int       `gorm:"not null;default:0"`
	UsedFAQ      bool      `gorm:"column:used_faq;index"`
	FAQAnswer    string    `gorm:"column:faq_answer;type:text"`
	LatencyMs    int64     `gorm:"not null;default:0"`
	CreatedAt    time.Time `gorm:"index"`
}

func (Exchange) TableName() string { return "exchanges" }
