package repository

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	_ "github.com/lib/pq"
)

type DBRepository struct {
	db *sqlx.DB
}

func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{
		db: db,
	}
}

// Connect opens and pings a postgres connection.
func Connect(dbConn string) (*DBRepository, error) {
	db, err := sqlx.Connect("postgres", dbConn)
	if err != nil {
		return nil, errors.Wrap(err, "cannot connect to db")
	}

	return NewDBRepository(db), nil
}

func (dbr *DBRepository) Close() error {
	return dbr.db.Close()
}
