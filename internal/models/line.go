package models

import (
	"gorm.io/gorm"
)

// Line represents a bus line with its departure schedule and served stops.
// Schedule entries are owned children and live only as long as the line;
// the stop relation is a plain join table.
type Line struct {
	gorm.Model

	Number         string `json:"number" binding:"required"`
	Name           string `json:"name" binding:"required"`
	Direction      string `json:"direction"`
	Color          string `json:"color"`
	Fare           string `json:"fare"`
	OperatingHours string `json:"operatingHours"`

	// Optional path geometry stored as WKB (LINESTRING, SRID 4326).
	// The API speaks GeoJSON; conversion happens at the controller edge.
	Geometry []byte `gorm:"type:bytea" json:"-"`

	ScheduleEntries []ScheduleEntry `gorm:"foreignKey:LineID" json:"scheduleEntries,omitempty"`
	Stops           []Stop          `gorm:"many2many:line_stops;" json:"stops,omitempty"`
}
