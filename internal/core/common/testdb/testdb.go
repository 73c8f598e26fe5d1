// Package testdb opens an in-memory SQLite database with the catalog schema for
// repository and handler tests.
package testdb

import (
	"fmt"
	"sync/atomic"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	categoryDatamodel "github.com/frahmantamala/catalog-management/internal/core/datamodel/category"
	productDatamodel "github.com/frahmantamala/catalog-management/internal/core/datamodel/product"
	userDatamodel "github.com/frahmantamala/catalog-management/internal/core/datamodel/user"
)

var seq atomic.Int64

// Open returns a fresh database. Each call gets its own named in-memory store, so
// tests never see each other's rows.
func Open() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:catalog_%d?mode=memory&cache=shared&_foreign_keys=on", seq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&categoryDatamodel.Category{},
		&productDatamodel.Product{},
		&userDatamodel.Role{},
		&userDatamodel.User{},
	)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Close releases the connection, which drops the in-memory store.
func Close(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// SeedCategories inserts the given names and returns the rows in insertion order.
func SeedCategories(db *gorm.DB, names ...string) ([]categoryDatamodel.Category, error) {
	rows := make([]categoryDatamodel.Category, 0, len(names))
	for _, name := range names {
		rows = append(rows, categoryDatamodel.Category{Name: name})
	}
	if len(rows) == 0 {
		return rows, nil
	}
	return rows, db.Create(&rows).Error
}

// SeedRoles inserts ROLE_OPERATOR (id 1) and ROLE_ADMIN (id 2).
func SeedRoles(db *gorm.DB) ([]userDatamodel.Role, error) {
	roles := []userDatamodel.Role{
		{ID: 1, Authority: "ROLE_OPERATOR"},
		{ID: 2, Authority: "ROLE_ADMIN"},
	}
	return roles, db.Create(&roles).Error
}
