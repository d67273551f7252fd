package main

import (
	"database/sql"
	"flag"
	"os"

	"twitch_poll_client/db/migrations"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"

	_ "github.com/lib/pq"
)

const (
	dialect      = "postgres"
	migrationDir = "."
)

func main() {
	// Load .env if present, don't fail if missing
	_ = godotenv.Load()

	var (
		downFlag   = flag.Bool("down", false, "Roll back the latest migration instead of applying")
		statusFlag = flag.Bool("status", false, "Print the migration status and exit")
		dbConn     = os.Getenv("DB_CONN")
	)
	flag.Parse()

	if dbConn == "" {
		logrus.Fatal("DB_CONN environment variable is required")
	}

	db, err := sql.Open(dialect, dbConn)
	if err != nil {
		logrus.Fatalf("cannot open %s db connection: %v", dialect, err)
	}
	defer db.Close()

	if err := runMigrations(db, *downFlag, *statusFlag); err != nil {
		logrus.Fatalf("Migration failed: %+v", err)
	}
}

func runMigrations(db *sql.DB, migrateDown, status bool) error {
	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect(dialect); err != nil {
		return errors.Errorf("cannot set %s dialect: %v", dialect, err)
	}

	switch {
	case status:
		return errors.Wrap(goose.Status(db, migrationDir), "Status")
	case migrateDown:
		if err := goose.Down(db, migrationDir); err != nil {
			return errors.Errorf("cannot down %s migrations: %v", dialect, err)
		}
		logrus.Info("Migrations rolled back successfully")
		return nil
	}

	if err := goose.Up(db, migrationDir, goose.WithAllowMissing()); err != nil {
		return errors.Errorf("cannot up %s migrations: %v", dialect, err)
	}
	logrus.Info("Migrations applied successfully")
	return nil
}
