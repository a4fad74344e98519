package client

import (
	"log"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"tcg-nakama/internal/model"
)

func InitSqliteClient(databasePath string) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(databasePath), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal(err)
	}

	// sqlite tolerates a single writer only
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&model.Banner{},
		&model.ProductCost{},
		&model.ProductGrade{},
		&model.SearchLog{},
		&model.PriceSnapshot{},
		&model.SystemSetting{},
	); err != nil {
		log.Fatal(err)
	}

	return db
}
