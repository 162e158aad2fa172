package db

import (
	"fmt"

	"musicfy/config"
	"musicfy/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Migrate connects with GORM and auto-migrates the schema for all model
// structs. Repositories stay on database/sql; GORM is used here only to own
// the table definitions so they do not drift from the structs.
func Migrate(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Warn),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect database with GORM: %w", err)
	}

	if err := gdb.AutoMigrate(
		&model.User{},
		&model.Song{},
		&model.Playlist{},
		&model.PlaylistSong{},
		&model.LikedSong{},
	); err != nil {
		return fmt.Errorf("failed to auto migrate models: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
