package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/vimesta/internal/client/client"
	"github.com/dmitrijs2005/vimesta/internal/common"
)

var (
	errUnknownCommand = errors.New("unknown command")
	errUsage          = errors.New("usage")
)

type command struct {
	name    string
	args    string
	summary string
	// auth commands are refused while logged out.
	auth bool
	// shell commands only make sense inside a running shell.
	shell   bool
	minArgs int
	run     func(a *App, ctx context.Context, args []string) error
}

func commands() []command {
	return []command{
		{name: "login", args: "[phone]", summary: "log in with a code sent via Telegram", run: (*App).Login},
		{name: "login-telegram", args: "<payload.json>", summary: "log in with a Telegram login widget payload", minArgs: 1, run: (*App).LoginTelegram},
		{name: "logout", summary: "forget the saved session", run: (*App).Logout},
		{name: "whoami", summary: "show the current user", auth: true, run: (*App).WhoAmI},
		{name: "ls", args: "[type]", summary: "list files, optionally of one type", auth: true, run: (*App).List},
		{name: "folders", args: "[parent-id]", summary: "list folders", auth: true, run: (*App).Folders},
		{name: "mkdir", args: "<name> [parent-id]", summary: "create a folder", auth: true, minArgs: 1, run: (*App).Mkdir},
		{name: "rmdir", args: "<folder-id>", summary: "delete a folder", auth: true, minArgs: 1, run: (*App).Rmdir},
		{name: "cd", shell: true, args: "[folder-id]", summary: "set the folder new uploads go to", auth: true, run: (*App).ChangeFolder},
		{name: "upload", args: "<path>...", summary: "queue files or directories for upload", auth: true, minArgs: 1, run: (*App).Upload},
		{name: "status", shell: true, summary: "show the upload queue", run: (*App).Status},
		{name: "cancel", shell: true, summary: "cancel the current upload", run: (*App).Cancel},
		{name: "cancel-all", shell: true, summary: "cancel the current upload and drop the queue", run: (*App).CancelAll},
		{name: "wait", shell: true, summary: "wait until the upload queue is empty", run: (*App).Wait},
		{name: "watch", args: "<dir> | stop <dir>", summary: "upload files dropped into a directory", auth: true, minArgs: 1, run: (*App).Watch},
		{name: "rm", args: "<file-id>", summary: "delete a file", auth: true, minArgs: 1, run: (*App).Remove},
		{name: "share", args: "<file-id>", summary: "create a public link", auth: true, minArgs: 1, run: (*App).Share},
		{name: "download", args: "<file-id|share-link> [dir]", summary: "download a file", minArgs: 1, run: (*App).Download},
		{name: "storage", summary: "show storage usage", auth: true, run: (*App).Storage},
		{name: "history", args: "[count] | clear", summary: "show recent uploads", run: (*App).History},
	}
}

func lookup(name string) (command, bool) {
	for _, c := range commands() {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func (a *App) dispatch(ctx context.Context, name string, args []string) error {
	c, ok := lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", errUnknownCommand, name)
	}
	if len(args) < c.minArgs {
		return fmt.Errorf("%w: %s %s", errUsage, c.name, c.args)
	}
	if c.auth && !a.isLoggedIn() {
		return common.ErrNotAuthenticated
	}
	return c.run(a, ctx, args)
}

func (a *App) help() string {
	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, c := range commands() {
		if c.auth && !a.isLoggedIn() {
			continue
		}
		fmt.Fprintf(&b, "  %-40s %s\n", strings.TrimSpace(c.name+" "+c.args), c.summary)
	}
	fmt.Fprintf(&b, "  %-40s %s\n", "help", "show this list")
	fmt.Fprintf(&b, "  %-40s %s\n", "exit", "leave the shell")
	return b.String()
}

// ErrorMessage renders err for the terminal.
func ErrorMessage(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, errUsage):
		return "Usage: " + strings.TrimPrefix(err.Error(), errUsage.Error()+": ")
	case errors.Is(err, errUnknownCommand):
		return "Unknown command: " + strings.TrimPrefix(err.Error(), errUnknownCommand.Error()+": ")
	case errors.Is(err, client.ErrUnauthorized):
		return "Session expired, please log in again"
	case errors.Is(err, common.ErrNotAuthenticated):
		return "Please log in first"
	case errors.Is(err, client.ErrUnavailable):
		return "Server unavailable, try again later"
	case errors.As(err, &apiErr):
		return apiErr.Error()
	}
	return err.Error()
}
