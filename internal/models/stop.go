package models

import (
	"gorm.io/gorm"
)

// Stop is a physical bus stop. Stops are independently owned: a stop may be
// referenced by any number of lines and survives their deletion.
type Stop struct {
	gorm.Model

	Name      string  `json:"name" binding:"required"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	Lines []Line `gorm:"many2many:line_stops;" json:"lines,omitempty"`
}
