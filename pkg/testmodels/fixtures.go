package testmodels

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/glebarez/sqlite"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"gorm.io/gorm"
	gormlog "gorm.io/gorm/logger"
)

var seedTime = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

// SeedUsers are the three accounts every fixture database starts with.
func SeedUsers() []*User {
	return []*User{
		{ID: 1, Name: "John Doe", Email: "john@example.com", Role: "admin", Age: 34, CreatedAt: seedTime},
		{ID: 2, Name: "Jane Smith", Email: "jane@example.com", Role: "editor", Age: 28, CreatedAt: seedTime.AddDate(0, 0, 1)},
		{ID: 3, Name: "Bob Wilson", Email: "bob@example.com", Role: "viewer", Age: 45, CreatedAt: seedTime.AddDate(0, 0, 2)},
	}
}

func SeedPosts() []*Post {
	return []*Post{
		{ID: 1, UserID: 1, Title: "Getting started with Go", Body: "Install the toolchain", Status: "published", Views: 120, CreatedAt: seedTime},
		{ID: 2, UserID: 1, Title: "Advanced SQL joins", Body: "Inner and outer joins", Status: "draft", Views: 15, CreatedAt: seedTime.AddDate(0, 0, 3)},
		{ID: 3, UserID: 2, Title: "Designing APIs", Body: "Resources and verbs", Status: "published", Views: 300, CreatedAt: seedTime.AddDate(0, 0, 5)},
		{ID: 4, UserID: 3, Title: "Garden notes", Body: "Tomatoes in spring", Status: "archived", Views: 5, CreatedAt: seedTime.AddDate(0, 0, 8)},
	}
}

func SeedComments() []*Comment {
	return []*Comment{
		{ID: 1, PostID: 1, UserID: 2, Body: "Great intro", CreatedAt: seedTime.AddDate(0, 0, 1)},
		{ID: 2, PostID: 3, UserID: 1, Body: "Very helpful", CreatedAt: seedTime.AddDate(0, 0, 6)},
		{ID: 3, PostID: 3, UserID: 3, Body: "Thanks Jane", CreatedAt: seedTime.AddDate(0, 0, 7)},
	}
}

// memoryDSN names a private in-memory database so parallel fixtures never
// share rows.
func memoryDSN(name string) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.NewReplacer("/", "_", " ", "_").Replace(name))
}

// NewGormDB opens an in-memory sqlite database through GORM, migrates the test
// models and loads the seed rows.
func NewGormDB(name string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(memoryDSN(name)), &gorm.Config{
		Logger: gormlog.Default.LogMode(gormlog.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&User{}, &Post{}, &Comment{}); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	for _, rows := range []interface{}{SeedUsers(), SeedPosts(), SeedComments()} {
		if err := db.Create(rows).Error; err != nil {
			return nil, fmt.Errorf("failed to seed: %w", err)
		}
	}
	return db, nil
}

// sqliteDriver is the database/sql name registered by glebarez/go-sqlite, the
// same driver the gorm dialector opens.
const sqliteDriver = "sqlite"

// NewBunDB is the bun counterpart of NewGormDB.
func NewBunDB(ctx context.Context, name string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteDriver, memoryDSN(name))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Keep one connection so the in-memory database outlives idle pool churn.
	sqldb.SetMaxIdleConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	for _, model := range []interface{}{(*User)(nil), (*Post)(nil), (*Comment)(nil)} {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return nil, fmt.Errorf("failed to create table: %w", err)
		}
	}

	users, posts, comments := SeedUsers(), SeedPosts(), SeedComments()
	for _, rows := range []interface{}{&users, &posts, &comments} {
		if _, err := db.NewInsert().Model(rows).Exec(ctx); err != nil {
			return nil, fmt.Errorf("failed to seed: %w", err)
		}
	}
	return db, nil
}
