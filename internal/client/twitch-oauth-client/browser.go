package twitch_oauth_client

import (
	"context"
	"os/exec"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// LaunchBrowser opens url with the platform's default handler and does not
// wait for the browser to exit.
func LaunchBrowser(ctx context.Context, url string) error {
	var args []string
	switch runtime.GOOS {
	case "darwin":
		args = []string{"open"}
	case "linux", "freebsd", "openbsd":
		args = []string{"xdg-open"}
	case "windows":
		args = []string{"rundll32", "url.dll,FileProtocolHandler"}
	default:
		return errors.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	args = append(args, url)
	logrus.Debugf("launching a browser using command '%s'", strings.Join(args, " "))

	return exec.Command(args[0], args[1:]...).Start()
}
