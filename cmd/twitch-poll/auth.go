package main

import (
	"context"
	"fmt"

	"twitch_poll_client/internal/models"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize as the broadcaster through the browser",
	Long: `Opens the Twitch consent page and waits on the redirect URI for the
answer. The token and the broadcaster identity are saved for later commands.`,
	RunE: runAuth,
}

var (
	authForce      bool
	whoamiValidate bool
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the saved broadcaster identity",
	RunE:  runWhoami,
}

func init() {
	authCmd.Flags().BoolVar(&authForce, "force", false, "Authorize again even if the saved token looks valid")
	whoamiCmd.Flags().BoolVar(&whoamiValidate, "validate", false, "Check the saved token against Twitch")
}

func runAuth(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if authForce {
		a.session.ForgetToken()
	}

	srv, err := a.session.RequestAuthorization(ctx, models.PollRead, models.PollManage, models.AnnouncementManage)
	if err != nil {
		return errors.Wrap(err, "RequestAuthorization")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "If the browser did not open, visit:\n%s\n", srv.AuthURL())

	if _, err := srv.Wait(ctx); err != nil {
		return errors.Wrap(err, "authorization")
	}

	identity, err := fetchIdentity(ctx, a)
	if err != nil {
		return err
	}

	if err := a.session.Save(ctx, a.store); err != nil {
		return errors.Wrap(err, "Save")
	}

	logrus.Infof("authorized as %s (%s)", identity.Login, identity.ID)
	fmt.Fprintf(cmd.OutOrStdout(), "Authorized as %s\n", identity.DisplayName)

	return nil
}

func fetchIdentity(ctx context.Context, a *app) (models.Identity, error) {
	var identity models.Identity

	call, err := a.session.FetchIdentity(ctx, func(got models.Identity, err error) {
		identity = got
	})
	if err != nil {
		return models.Identity{}, errors.Wrap(err, "FetchIdentity")
	}

	if _, err := call.Wait(ctx); err != nil {
		return models.Identity{}, errors.Wrap(err, "FetchIdentity")
	}

	return identity, nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	session, err := a.authorized()
	if err != nil {
		return err
	}

	identity, _ := session.Identity()
	fmt.Fprintf(cmd.OutOrStdout(), "%s (login %s, id %s)\n", identity.DisplayName, identity.Login, identity.ID)
	if !session.CanCreatePoll() {
		fmt.Fprintln(cmd.OutOrStdout(), "polls need an affiliate or partner channel")
	}

	if !whoamiValidate {
		return nil
	}

	validation, err := session.ValidateToken(ctx)
	if err != nil {
		return errors.Wrap(err, "ValidateToken")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "token valid for %ds, scopes: %v\n", validation.ExpiresIn, validation.Scopes)

	return nil
}
