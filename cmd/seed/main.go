// Seeds the database with the default admin user and, when the table is
// still empty, one sample line with its stops and schedule. Safe to run
// repeatedly.
package main

import (
	"errors"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"busao_api/internal/config"
	"busao_api/internal/models"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	db, err := config.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("database error: %v", err)
	}

	if err := seedAdmin(db); err != nil {
		log.Fatalf("seeding admin failed: %v", err)
	}
	if err := seedSampleLine(db); err != nil {
		log.Fatalf("seeding sample data failed: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func seedAdmin(db *gorm.DB) error {
	email := getEnv("ADMIN_EMAIL", "admin@example.com")
	password := getEnv("ADMIN_PASSWORD", "senha123")

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		log.Println("admin user already exists")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Name:     "Administrador",
		Email:    email,
		Password: string(hash),
		Role:     "admin",
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Printf("admin user created: %s", admin.Email)
	return nil
}

func seedSampleLine(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Line{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("lines already present, skipping sample data")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		stops := []models.Stop{
			{Name: "Ponto Central", Address: "Av. Principal, 100", Latitude: -23.5505, Longitude: -46.6333},
			{Name: "Ponto Bairro", Address: "Rua das Flores, 200", Latitude: -23.5522, Longitude: -46.63},
		}
		if err := tx.Create(&stops).Error; err != nil {
			return err
		}

		line := models.Line{
			Number:         "101",
			Name:           "Centro - Bairro",
			Direction:      "ida",
			Color:          "azul",
			Fare:           "4.50",
			OperatingHours: "05:00 - 22:00",
		}
		if err := tx.Create(&line).Error; err != nil {
			return err
		}

		entries := []models.ScheduleEntry{
			{Time: "06:00", Days: "weekday", LineID: line.ID},
			{Time: "12:00", Days: "weekday", LineID: line.ID},
		}
		if err := tx.Create(&entries).Error; err != nil {
			return err
		}

		if err := tx.Model(&line).Association("Stops").Append(&stops); err != nil {
			return err
		}

		log.Printf("sample line created: %s", line.Number)
		return nil
	})
}

func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}
