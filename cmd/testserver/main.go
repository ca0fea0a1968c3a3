package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
	gormlog "gorm.io/gorm/logger"

	"github.com/bitechdev/QuerySpec/pkg/config"
	"github.com/bitechdev/QuerySpec/pkg/httpapi"
	"github.com/bitechdev/QuerySpec/pkg/logger"
	"github.com/bitechdev/QuerySpec/pkg/queryspec"
	"github.com/bitechdev/QuerySpec/pkg/testmodels"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	dsn := flag.String("db", "test.db", "sqlite database file")
	seed := flag.Bool("seed", true, "load demo rows into an empty database")
	flag.Parse()

	fmt.Println("QuerySpec test server starting")
	logger.Init(true)
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load config: %v", err)
		os.Exit(1)
	}

	db, err := initDB(*dsn, *seed)
	if err != nil {
		logger.Error("Failed to initialize database: %+v", err)
		os.Exit(1)
	}

	handler := httpapi.NewHandlerWithGORM(db, cfg)
	if err := registerEndpoints(handler); err != nil {
		logger.Error("Failed to register endpoints: %v", err)
		os.Exit(1)
	}

	r := mux.NewRouter()
	httpapi.SetupMuxRoutes(r, handler)

	logger.Info("Starting server on %s", *addr)
	if err := http.ListenAndServe(*addr, r); err != nil {
		logger.Error("Server failed to start: %v", err)
		os.Exit(1)
	}
}

func registerEndpoints(h *httpapi.Handler) error {
	if err := h.Register("users", testmodels.User{}, func(p *queryspec.Pipeline) {
		p.Searchable("name", "email", "posts.title").
			Sortable("name", "age", "created_at").
			DefaultSort("name", "asc").
			Filters(
				queryspec.Equals("role", "role"),
				queryspec.Range("age", "age"),
			)
	}); err != nil {
		return err
	}

	if err := h.Register("posts", testmodels.Post{}, func(p *queryspec.Pipeline) {
		p.Searchable("title", "body", "user.name").
			Sortable("title", "views", "created_at", "user.name").
			DefaultSort("created_at", "desc").
			Filters(
				queryspec.In("status", "status"),
				queryspec.Range("views", "views"),
				queryspec.Equals("user_id", "user_id"),
			).
			Preload("User")
	}); err != nil {
		return err
	}

	return h.Register("comments", testmodels.Comment{}, func(p *queryspec.Pipeline) {
		p.Searchable("body", "post.title", "user.name").
			Sortable("created_at").
			DefaultSort("created_at", "desc").
			Filters(queryspec.Equals("post_id", "post_id"))
	})
}

func initDB(dsn string, seed bool) (*gorm.DB, error) {
	newLogger := gormlog.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlog.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlog.Info,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: newLogger})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(testmodels.GetTestModels()...); err != nil {
		return nil, err
	}

	if !seed {
		return db, nil
	}

	var count int64
	if err := db.Model(&testmodels.User{}).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return db, nil
	}
	for _, rows := range []interface{}{testmodels.SeedUsers(), testmodels.SeedPosts(), testmodels.SeedComments()} {
		if err := db.Create(rows).Error; err != nil {
			return nil, err
		}
	}
	return db, nil
}
