package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/dmitrijs2005/vimesta/internal/client/transport"
	"github.com/dmitrijs2005/vimesta/internal/filex"
	"github.com/dmitrijs2005/vimesta/internal/sizex"
)

// Upload queues the given files and directories; directories are walked
// recursively. It returns as soon as the files are queued.
func (a *App) Upload(_ context.Context, args []string) error {
	local, err := filex.Expand(args)
	if err != nil {
		return err
	}
	if len(local) == 0 {
		a.println("Nothing to upload")
		return nil
	}

	files := make([]transport.File, 0, len(local))
	for _, f := range local {
		files = append(files, f)
	}

	a.mu.Lock()
	folder := a.folderID
	a.mu.Unlock()

	queued := 0
	for _, o := range a.Submit(files, folder) {
		if o.Accepted {
			queued++
		}
	}
	a.printf("Queued %d of %d file(s)\n", queued, len(files))
	return nil
}

func (a *App) Status(_ context.Context, _ []string) error {
	st := a.uploads.Status()
	if !st.Draining {
		a.println("No uploads in progress")
		return nil
	}

	a.printf("Uploading %s (%d%%), %d in queue\n", st.CurrentFile, st.CurrentProgress, st.QueueLength)
	a.table(func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "NAME\tSIZE\tSTATUS\tPROGRESS")
		for _, t := range a.uploads.Tasks() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d%%\n", t.Name, sizex.Format(t.Size), t.Status, t.Progress)
		}
	})
	return nil
}

func (a *App) Cancel(_ context.Context, _ []string) error {
	if !a.uploads.CancelCurrent() {
		a.println("Nothing to cancel")
	}
	return nil
}

func (a *App) CancelAll(_ context.Context, _ []string) error {
	n := a.uploads.CancelAll()
	a.printf("Dropped %d queued upload(s)\n", n)
	return nil
}

func (a *App) Wait(ctx context.Context, _ []string) error {
	return a.uploads.Wait(ctx)
}

// Watch starts or stops polling a drop directory.
func (a *App) Watch(ctx context.Context, args []string) error {
	if args[0] == "stop" {
		if len(args) < 2 {
			return fmt.Errorf("%w: watch stop <dir>", errUsage)
		}
		dir, err := filepath.Abs(args[1])
		if err != nil {
			return err
		}
		if !a.stopWatch(dir) {
			a.printf("Not watching %s\n", dir)
			return nil
		}
		a.printf("Stopped watching %s\n", dir)
		return nil
	}

	dir, err := filex.EnsureDir(args[0])
	if err != nil {
		return err
	}
	if !a.startWatch(ctx, dir) {
		a.printf("Already watching %s\n", dir)
		return nil
	}
	a.printf("Watching %s\n", dir)
	return nil
}

// History prints recent uploads, or clears them with "history clear".
func (a *App) History(ctx context.Context, args []string) error {
	if len(args) > 0 && args[0] == "clear" {
		if err := a.history.Clear(ctx); err != nil {
			return err
		}
		a.println("History cleared")
		return nil
	}

	limit := 20
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: history [count] | clear", errUsage)
		}
		limit = n
	}

	recs, err := a.history.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		a.println("No uploads yet")
		return nil
	}

	a.table(func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "FINISHED\tNAME\tSIZE\tSTATUS\tDETAIL")
		for _, r := range recs {
			detail := r.Message
			if detail == "" {
				detail = r.RemoteID
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				r.FinishedAt.Local().Format("2006-01-02 15:04:05"), r.Filename, sizex.Format(r.Size), r.Status, detail)
		}
	})
	return nil
}
