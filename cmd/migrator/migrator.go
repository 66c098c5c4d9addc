package main

import (
	"flag"
	"os"

	"github.com/NordCoder/nodeping/internal/obs"
	"github.com/NordCoder/nodeping/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

func main() {
	dsn := flag.String("dsn", os.Getenv("DB_DSN"), "postgres DSN (defaults to $DB_DSN)")
	down := flag.Bool("down", false, "roll back the last migration instead of applying all")
	flag.Parse()

	log, err := obs.NewLogger(obs.LogConfig{Level: "info", App: "nodeping-migrator"})
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if *dsn == "" {
		log.Fatal("DB_DSN is empty")
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal("set dialect", zap.Error(err))
	}
	db, err := goose.OpenDBWithDriver("pgx", *dsn)
	if err != nil {
		log.Fatal("open db", zap.Error(err))
	}
	defer db.Close()

	if *down {
		if err := goose.Down(db, "."); err != nil {
			log.Fatal("migrate down", zap.Error(err))
		}
		log.Info("migrations: down OK")
		return
	}
	if err := goose.Up(db, "."); err != nil {
		log.Fatal("migrate up", zap.Error(err))
	}
	log.Info("migrations: up OK")
}
