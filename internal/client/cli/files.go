package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/vimesta/internal/common"
	"github.com/dmitrijs2005/vimesta/internal/sizex"
)

func (a *App) table(write func(w *tabwriter.Writer)) {
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	write(tw)
	tw.Flush()
}

func (a *App) List(ctx context.Context, args []string) error {
	var fileType string
	if len(args) > 0 {
		fileType = strings.ToLower(args[0])
	}

	files, err := a.files.List(ctx, fileType)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		a.println("No files")
		return nil
	}

	a.table(func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "ID\tNAME\tTYPE\tSIZE\tUPLOADED\tSHARED")
		for _, f := range files {
			shared := ""
			if f.IsPublic {
				shared = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				f.ID, f.OriginalFilename, f.FileType, sizex.Format(f.FileSize), f.UploadDate, shared)
		}
	})
	a.printf("%d file(s)\n", len(files))
	return nil
}

func (a *App) Remove(ctx context.Context, args []string) error {
	if err := a.files.Delete(ctx, args[0]); err != nil {
		return err
	}
	a.printf("Deleted %s\n", args[0])
	return nil
}

func (a *App) Share(ctx context.Context, args []string) error {
	link, err := a.files.Share(ctx, args[0])
	if err != nil {
		return err
	}
	a.println(link)
	return nil
}

// Download accepts a file id (needs a session) or a public share link
// (does not).
func (a *App) Download(ctx context.Context, args []string) error {
	dir := a.config.DownloadDir
	if len(args) > 1 {
		dir = args[1]
	}

	var (
		path string
		err  error
	)
	if strings.Contains(args[0], "/share/") {
		path, err = a.files.DownloadShared(ctx, args[0], dir)
	} else {
		if !a.isLoggedIn() {
			return common.ErrNotAuthenticated
		}
		path, err = a.files.Download(ctx, args[0], dir)
	}
	if err != nil {
		return err
	}
	a.printf("Saved %s\n", path)
	return nil
}

func (a *App) Storage(ctx context.Context, _ []string) error {
	st, err := a.users.Storage(ctx)
	if err != nil {
		return err
	}

	a.printf("%d file(s), %s\n", st.TotalFiles, st.TotalSizeFormatted)
	if len(st.ByType) == 0 {
		return nil
	}

	types := make([]string, 0, len(st.ByType))
	for t := range st.ByType {
		types = append(types, t)
	}
	sort.Strings(types)

	a.table(func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "TYPE\tFILES\tSIZE")
		for _, t := range types {
			s := st.ByType[t]
			fmt.Fprintf(w, "%s\t%d\t%s\n", t, s.Count, sizex.Format(s.Size))
		}
	})
	return nil
}
