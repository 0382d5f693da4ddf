package models

import (
	"gorm.io/gorm"
)

// ScheduleEntry is a single departure time belonging to exactly one line.
// Entries are replaced wholesale on every line update.
type ScheduleEntry struct {
	gorm.Model

	Time   string `json:"time" binding:"required"` // "06:00"
	Days   string `json:"days"`                    // "weekday", "saturday", ...
	LineID uint   `json:"line_id" gorm:"index"`
}
