package cli

import (
	"context"
	"io"
	"strings"

	"github.com/dmitrijs2005/vimesta/internal/buildinfo"
	"github.com/dmitrijs2005/vimesta/internal/client/config"
	"github.com/dmitrijs2005/vimesta/internal/logging"
	"github.com/spf13/cobra"
)

// Shell runs the interactive shell until the user exits or ctx is done.
func (a *App) Shell(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.println("Welcome to Vimesta (type 'help' for commands)")
	if u := a.auth.CurrentUser(); u != nil {
		a.printf("Signed in as %s\n", u.DisplayName())
		if a.config.DropDir != "" {
			if err := a.Watch(ctx, []string{a.config.DropDir}); err != nil {
				a.println(ErrorMessage(err))
			}
		}
	} else {
		a.println("Not logged in, use 'login' to sign in")
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
	return nil
}

// NewRootCommand builds the vimesta command tree. Without a subcommand it
// starts the shell; every shell command except the queue controls is also
// available as a one-shot subcommand that waits for its uploads.
//
// args are pre-scanned for -c/--config so the file is loaded before flags
// are bound with its values as defaults.
func NewRootCommand(args []string, in io.Reader, out, errOut io.Writer) (*cobra.Command, error) {
	cfg, err := config.Load(args)
	if err != nil {
		return nil, err
	}

	var app *App

	root := &cobra.Command{
		Use:           "vimesta",
		Short:         "Vimesta cloud storage client",
		Long:          "Command line client for the Vimesta file storage service: log in through Telegram, upload, list, share and download files.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !needsApp(cmd) {
				return nil
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			log := logging.New(cfg.LogLevel, cfg.LogFormat, errOut)
			a, err := NewApp(cmd.Context(), cfg, log, in, out)
			if err != nil {
				return err
			}
			app = a
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer app.Close()
			return app.Shell(cmd.Context())
		},
	}

	config.BindFlags(root.PersistentFlags(), cfg)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	for _, c := range commands() {
		if c.shell {
			continue
		}
		root.AddCommand(&cobra.Command{
			Use:   strings.TrimSpace(c.name + " " + c.args),
			Short: c.summary,
			Args:  cobra.MinimumNArgs(c.minArgs),
			RunE: func(cmd *cobra.Command, args []string) error {
				defer app.Close()

				ctx := cmd.Context()
				if err := app.dispatch(ctx, c.name, args); err != nil {
					return err
				}
				if c.name == "watch" {
					<-ctx.Done()
					return nil
				}
				return app.uploads.Wait(ctx)
			},
		})
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	})

	return root, nil
}

func needsApp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "version", "help", "completion":
			return false
		}
	}
	return true
}

// Execute builds the command tree for args and runs it.
func Execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	root, err := NewRootCommand(args, in, out, errOut)
	if err != nil {
		return err
	}
	return root.ExecuteContext(ctx)
}
