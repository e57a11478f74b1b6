package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"github.com/pageza/vinoteca/backend/config"
	"github.com/pageza/vinoteca/backend/internal/database"
	"github.com/pageza/vinoteca/backend/internal/logger"
	"go.uber.org/zap"
)

func main() {
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	dir := flag.String("dir", "migrations", "Directory holding the SQL migrations")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, "console")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if *rollback {
		name, err := database.Rollback(db, *dir, log)
		if err != nil {
			log.Fatal("rollback failed", zap.Error(err))
		}
		log.Info("successfully rolled back migration", zap.String("name", name))
		return
	}

	applied, err := database.RunMigrations(db, *dir, log)
	if err != nil {
		log.Fatal("migration failed", zap.Int("applied", applied), zap.Error(err))
	}
	log.Info("all migrations applied", zap.Int("applied", applied))
}
