package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

func (dbr *DBRepository) SaveSessionState(ctx context.Context, clientID string, state []byte) (err error) {

	query := `
		insert into twitch_sessions (client_id, state)
			values ($1, $2)
		on conflict (client_id)
			do update
			set (state, updated_at) = ($2, now());
	`

	res, err := dbr.db.ExecContext(ctx, query, clientID, string(state))
	if err != nil {
		return errors.Wrap(err, "SaveSessionState ExecContext")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if n < 1 {
		return errors.New("no rows insert")
	}

	return
}

// LoadSessionState returns nil when nothing was saved for clientID.
func (dbr *DBRepository) LoadSessionState(ctx context.Context, clientID string) (state []byte, err error) {

	query := `
		select
			ts.state
		from twitch_sessions ts
		where ts.client_id = $1;
	`

	var raw string
	err = dbr.db.GetContext(ctx, &raw, query, clientID)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "LoadSessionState GetContext")
	}

	return []byte(raw), nil
}
