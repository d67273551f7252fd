package main

import (
	"context"

	dbRepository "twitch_poll_client/db/repository"
	fileClient "twitch_poll_client/internal/client/file"
	"twitch_poll_client/internal/config"
	twitch_session "twitch_poll_client/internal/service/twitch-session"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type app struct {
	cfg     *config.Config
	store   twitch_session.StateStore
	session *twitch_session.Session
	close   func()
}

// newApp loads the configuration and the saved session, if any. Snapshots go
// to postgres when DB_CONN is set and to TWITCH_STATE_PATH otherwise.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "config.Load")
	}
	cfg.SetupLogging()

	a := &app{
		cfg:     cfg,
		session: twitch_session.NewSession(cfg.Session()),
		close:   func() {},
	}

	if cfg.DBConn != "" {
		dbRepo, err := dbRepository.Connect(cfg.DBConn)
		if err != nil {
			return nil, err
		}
		a.store = dbRepo
		a.close = func() {
			if err := dbRepo.Close(); err != nil {
				logrus.Infof("cannot close db: %v", err)
			}
		}
	} else {
		a.store = fileClient.NewFileClient(cfg.StatePath)
	}

	loaded, err := a.session.Load(ctx, a.store)
	if err != nil {
		a.close()
		return nil, errors.Wrap(err, "Load")
	}
	if loaded {
		identity, _ := a.session.Identity()
		logrus.Debugf("restored session for %s", identity.Login)
	}

	return a, nil
}

// authorized returns the session or an error pointing at the auth command.
func (a *app) authorized() (*twitch_session.Session, error) {
	if !a.session.HasToken() {
		return nil, errors.Wrap(twitch_session.ErrNoToken, "run `twitch-poll auth` first")
	}
	if _, ok := a.session.Identity(); !ok {
		return nil, errors.Wrap(twitch_session.ErrNoIdentity, "run `twitch-poll auth` first")
	}
	return a.session, nil
}
