package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"

	"github.com/bepeace/telemed/config"
)

func main() {
	_ = godotenv.Load()

	var (
		cfgPath = flag.String("config", "config.yaml", "path to config file")
		dir     = flag.String("dir", "migrations", "path to migration files")
		down    = flag.Bool("down", false, "roll back one migration instead of migrating up")
	)
	flag.Parse()

	if env := os.Getenv("CONFIG_PATH"); env != "" && *cfgPath == "config.yaml" {
		*cfgPath = env
	}

	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	m, err := migrate.New("file://"+*dir, cfg.Database.URL())
	if err != nil {
		log.Fatalf("init migrate: %v", err)
	}
	defer m.Close()

	if *down {
		err = m.Steps(-1)
	} else {
		err = m.Up()
	}
	if errors.Is(err, migrate.ErrNoChange) {
		log.Println("no migrations to apply")
		return
	}
	if err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("migrations applied")
}
