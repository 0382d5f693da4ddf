package controllers

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"busao_api/internal/httperr"
	"busao_api/internal/models"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
)

// LineController maintains a line together with its schedule entries and
// stop associations as one consistent unit. Every multi-step write runs in
// a single transaction.
type LineController struct {
	DB *gorm.DB
}

func NewLineController(db *gorm.DB) *LineController {
	return &LineController{DB: db}
}

type scheduleEntryInput struct {
	Time string `json:"time" binding:"required"`
	Days string `json:"days"`
}

// lineInput is the request body for both create and update. Stop references
// are integer ids only; anything else is rejected at bind time.
type lineInput struct {
	Number          string               `json:"number" binding:"required"`
	Name            string               `json:"name" binding:"required"`
	Direction       string               `json:"direction"`
	Color           string               `json:"color"`
	Fare            string               `json:"fare"`
	OperatingHours  string               `json:"operatingHours"`
	Geometry        string               `json:"geometry"` // GeoJSON LineString, optional
	ScheduleEntries []scheduleEntryInput `json:"scheduleEntries"`
	Stops           []uint               `json:"stops"`
}

// LineResponse mirrors models.Line but renders geometry as GeoJSON.
type LineResponse struct {
	ID              uint                   `json:"id"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
	Number          string                 `json:"number"`
	Name            string                 `json:"name"`
	Direction       string                 `json:"direction"`
	Color           string                 `json:"color"`
	Fare            string                 `json:"fare"`
	OperatingHours  string                 `json:"operatingHours"`
	Geometry        string                 `json:"geometry"`
	ScheduleEntries []models.ScheduleEntry `json:"scheduleEntries"`
	Stops           []models.Stop          `json:"stops"`
}

func toLineResponse(line models.Line) LineResponse {
	jsonGeom, err := convertWKBToGeoJSON(line.Geometry)
	if err != nil {
		logrus.WithError(err).WithField("line_id", line.ID).Warn("stored geometry is not valid WKB")
	}
	entries := line.ScheduleEntries
	if entries == nil {
		entries = []models.ScheduleEntry{}
	}
	stops := line.Stops
	if stops == nil {
		stops = []models.Stop{}
	}
	return LineResponse{
		ID:              line.ID,
		CreatedAt:       line.CreatedAt,
		UpdatedAt:       line.UpdatedAt,
		Number:          line.Number,
		Name:            line.Name,
		Direction:       line.Direction,
		Color:           line.Color,
		Fare:            line.Fare,
		OperatingHours:  line.OperatingHours,
		Geometry:        jsonGeom,
		ScheduleEntries: entries,
		Stops:           stops,
	}
}

// parseAndConvertGeometry parses a GeoJSON string into a geom.T and returns WKB bytes
func parseAndConvertGeometry(raw string) ([]byte, error) {
	if raw == "" {
		return nil, nil
	}
	var g geom.T
	if err := gjson.Unmarshal([]byte(raw), &g); err != nil {
		return nil, err
	}
	return wkb.Marshal(g, binary.LittleEndian)
}

// convertWKBToGeoJSON converts WKB bytes into a GeoJSON string
func convertWKBToGeoJSON(wkbBytes []byte) (string, error) {
	if len(wkbBytes) == 0 {
		return "", nil
	}
	g, err := wkb.Unmarshal(wkbBytes)
	if err != nil {
		return "", err
	}
	b, err := gjson.Marshal(g)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// resolveStops validates the referenced stop ids and returns the records.
// Duplicate ids collapse to one association.
func resolveStops(db *gorm.DB, ids []uint) ([]models.Stop, error) {
	unique := make([]uint, 0, len(ids))
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	if len(unique) == 0 {
		return []models.Stop{}, nil
	}

	var stops []models.Stop
	if err := db.Where("id IN ?", unique).Find(&stops).Error; err != nil {
		return nil, httperr.Wrap(httperr.Internal, "could not resolve stops", err)
	}
	if len(stops) != len(unique) {
		found := make(map[uint]bool, len(stops))
		for _, s := range stops {
			found[s.ID] = true
		}
		for _, id := range unique {
			if !found[id] {
				return nil, httperr.New(httperr.Validation, fmt.Sprintf("stop %d does not exist", id))
			}
		}
	}
	return stops, nil
}

// List returns every line with schedules and stops eagerly attached.
func (lc *LineController) List(c *gin.Context) {
	var lines []models.Line
	if err := lc.DB.Preload("ScheduleEntries").Preload("Stops").Find(&lines).Error; err != nil {
		logrus.WithError(err).Error("ListLines: query failed")
		respondError(c, httperr.New(httperr.Internal, "could not list lines"))
		return
	}

	responses := make([]LineResponse, 0, len(lines))
	for _, l := range lines {
		responses = append(responses, toLineResponse(l))
	}
	c.JSON(http.StatusOK, responses)
}

// Get returns a single line with its relations.
func (lc *LineController) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var line models.Line
	if err := lc.DB.Preload("ScheduleEntries").Preload("Stops").First(&line, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, httperr.New(httperr.NotFound, "line not found"))
		} else {
			logrus.WithError(err).Error("GetLine: query failed")
			respondError(c, httperr.New(httperr.Internal, "could not fetch line"))
		}
		return
	}

	c.JSON(http.StatusOK, toLineResponse(line))
}

// Create inserts the line, its schedule entries and its stop associations
// in one transaction.
func (lc *LineController) Create(c *gin.Context) {
	var input lineInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, httperr.New(httperr.Validation, "invalid input: "+err.Error()))
		return
	}

	stops, err := resolveStops(lc.DB, input.Stops)
	if err != nil {
		respondError(c, err)
		return
	}

	wkbGeom, err := parseAndConvertGeometry(input.Geometry)
	if err != nil {
		respondError(c, httperr.New(httperr.Validation, "invalid geometry: "+err.Error()))
		return
	}

	line := models.Line{
		Number:         input.Number,
		Name:           input.Name,
		Direction:      input.Direction,
		Color:          input.Color,
		Fare:           input.Fare,
		OperatingHours: input.OperatingHours,
		Geometry:       wkbGeom,
	}

	tx := lc.DB.Begin()
	if tx.Error != nil {
		respondError(c, httperr.New(httperr.Internal, "could not start transaction"))
		return
	}

	if err := tx.Create(&line).Error; err != nil {
		tx.Rollback()
		logrus.WithError(err).Error("CreateLine: insert failed")
		respondError(c, httperr.New(httperr.Internal, "could not create line"))
		return
	}

	for _, e := range input.ScheduleEntries {
		entry := models.ScheduleEntry{Time: e.Time, Days: e.Days, LineID: line.ID}
		if err := tx.Create(&entry).Error; err != nil {
			tx.Rollback()
			logrus.WithError(err).Error("CreateLine: schedule entry insert failed")
			respondError(c, httperr.New(httperr.Internal, "could not create schedule entries"))
			return
		}
	}

	if len(stops) > 0 {
		if err := tx.Model(&line).Association("Stops").Append(&stops); err != nil {
			tx.Rollback()
			logrus.WithError(err).Error("CreateLine: stop association failed")
			respondError(c, httperr.New(httperr.Internal, "could not associate stops"))
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		logrus.WithError(err).Error("CreateLine: commit failed")
		respondError(c, httperr.New(httperr.Internal, "could not create line"))
		return
	}

	lc.DB.Preload("ScheduleEntries").Preload("Stops").First(&line, line.ID)
	c.JSON(http.StatusCreated, toLineResponse(line))
}

// Update rewrites the line fields and fully replaces both the schedule set
// and the stop-association set, atomically.
func (lc *LineController) Update(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var input lineInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, httperr.New(httperr.Validation, "invalid input: "+err.Error()))
		return
	}

	var line models.Line
	if err := lc.DB.First(&line, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, httperr.New(httperr.NotFound, "line not found"))
		} else {
			logrus.WithError(err).Error("UpdateLine: query failed")
			respondError(c, httperr.New(httperr.Internal, "could not fetch line"))
		}
		return
	}

	stops, err := resolveStops(lc.DB, input.Stops)
	if err != nil {
		respondError(c, err)
		return
	}

	wkbGeom, err := parseAndConvertGeometry(input.Geometry)
	if err != nil {
		respondError(c, httperr.New(httperr.Validation, "invalid geometry: "+err.Error()))
		return
	}

	line.Number = input.Number
	line.Name = input.Name
	line.Direction = input.Direction
	line.Color = input.Color
	line.Fare = input.Fare
	line.OperatingHours = input.OperatingHours
	line.Geometry = wkbGeom

	tx := lc.DB.Begin()
	if tx.Error != nil {
		respondError(c, httperr.New(httperr.Internal, "could not start transaction"))
		return
	}

	if err := tx.Save(&line).Error; err != nil {
		tx.Rollback()
		logrus.WithError(err).Error("UpdateLine: save failed")
		respondError(c, httperr.New(httperr.Internal, "could not update line"))
		return
	}

	// Full replace: discard the old schedule set, insert the new one.
	if err := tx.Where("line_id = ?", line.ID).Delete(&models.ScheduleEntry{}).Error; err != nil {
		tx.Rollback()
		logrus.WithError(err).Error("UpdateLine: schedule delete failed")
		respondError(c, httperr.New(httperr.Internal, "could not replace schedule entries"))
		return
	}
	for _, e := range input.ScheduleEntries {
		entry := models.ScheduleEntry{Time: e.Time, Days: e.Days, LineID: line.ID}
		if err := tx.Create(&entry).Error; err != nil {
			tx.Rollback()
			logrus.WithError(err).Error("UpdateLine: schedule entry insert failed")
			respondError(c, httperr.New(httperr.Internal, "could not replace schedule entries"))
			return
		}
	}

	// Replace, not merge: the association set becomes exactly the supplied ids.
	if err := tx.Model(&line).Association("Stops").Replace(&stops); err != nil {
		tx.Rollback()
		logrus.WithError(err).Error("UpdateLine: stop association replace failed")
		respondError(c, httperr.New(httperr.Internal, "could not replace stop associations"))
		return
	}

	if err := tx.Commit().Error; err != nil {
		logrus.WithError(err).Error("UpdateLine: commit failed")
		respondError(c, httperr.New(httperr.Internal, "could not update line"))
		return
	}

	lc.DB.Preload("ScheduleEntries").Preload("Stops").First(&line, line.ID)
	c.JSON(http.StatusOK, toLineResponse(line))
}

// Delete removes the line, its schedule entries and its stop associations.
// The stops themselves are untouched.
func (lc *LineController) Delete(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var line models.Line
	if err := lc.DB.First(&line, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, httperr.New(httperr.NotFound, "line not found"))
		} else {
			logrus.WithError(err).Error("DeleteLine: query failed")
			respondError(c, httperr.New(httperr.Internal, "could not fetch line"))
		}
		return
	}

	tx := lc.DB.Begin()
	if tx.Error != nil {
		respondError(c, httperr.New(httperr.Internal, "could not start transaction"))
		return
	}

	if err := tx.Model(&line).Association("Stops").Clear(); err != nil {
		tx.Rollback()
		logrus.WithError(err).Error("DeleteLine: stop association clear failed")
		respondError(c, httperr.New(httperr.Internal, "could not delete line"))
		return
	}

	if err := tx.Where("line_id = ?", line.ID).Delete(&models.ScheduleEntry{}).Error; err != nil {
		tx.Rollback()
		logrus.WithError(err).Error("DeleteLine: schedule delete failed")
		respondError(c, httperr.New(httperr.Internal, "could not delete line"))
		return
	}

	if err := tx.Delete(&line).Error; err != nil {
		tx.Rollback()
		logrus.WithError(err).WithField("line_id", line.ID).Error("DeleteLine: delete failed")
		respondError(c, httperr.New(httperr.Internal, "could not delete line"))
		return
	}

	if err := tx.Commit().Error; err != nil {
		logrus.WithError(err).Error("DeleteLine: commit failed")
		respondError(c, httperr.New(httperr.Internal, "could not delete line"))
		return
	}

	c.Status(http.StatusNoContent)
}
