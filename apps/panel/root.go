package main

import (
	"context"
	"fmt"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trezcool/coursepanel/core"
	"github.com/trezcool/coursepanel/core/session"
	"github.com/trezcool/coursepanel/services/instructorapi"
	sessionsvc "github.com/trezcool/coursepanel/services/session"
)

var readPasswordFunc = term.ReadPassword // mockable

// app holds what every command needs; it is filled in by the root command before any RunE.
type app struct {
	conf   *core.Config
	logger core.Logger

	apiURL   string
	timeout  time.Duration
	username string
	token    string

	client *instructorapi.Client
	creds  session.Provider
}

func newRootCmd(conf *core.Config, logger core.Logger) *cobra.Command {
	a := &app{conf: conf, logger: logger}

	root := &cobra.Command{
		Use:           "panel",
		Short:         "Administer the courses you teach",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			client, err := instructorapi.NewClient(a.apiURL, a.timeout)
			if err != nil {
				return err
			}
			a.client = client
			return nil
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&a.apiURL, "api", conf.Panel.APIBaseURL, "base URL of the remote API")
	flags.DurationVar(&a.timeout, "timeout", conf.Panel.RequestTimeout, "timeout of each API request")
	flags.StringVarP(&a.username, "username", "u", conf.Panel.Username, "log in as this user; the password is prompted")
	flags.StringVar(&a.token, "token", conf.Panel.Token, "use this API token instead of logging in")

	root.AddCommand(newViewsCmd(a))
	root.AddCommand(newViewCmd(a))
	root.AddCommand(newModelsCmd(a))
	root.AddCommand(newCourseCmd(a))
	root.AddCommand(newSetModelCmd(a))

	return root
}

// credentials logs in (or wraps the configured token) on first use.
func (a *app) credentials(cmd *cobra.Command) (session.Provider, error) {
	if a.creds != nil {
		return a.creds, nil
	}

	var err error
	switch {
	case a.token != "":
		a.creds, err = sessionsvc.NewProvider(a.token, a.client)
	case a.username != "":
		var pwd string
		if pwd, err = promptPassword(cmd); err != nil {
			return nil, err
		}
		a.creds, err = sessionsvc.Login(cmd.Context(), a.client, a.username, pwd)
	default:
		err = core.NewAuthError(errors.Wrap(core.ErrNotAuthenticated, "--username or --token required"))
	}
	if err != nil {
		return nil, err
	}
	return a.creds, nil
}

func promptPassword(cmd *cobra.Command) (string, error) {
	_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	_, _ = fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	return string(pwd), nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
