package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
)

func (a *App) Folders(ctx context.Context, args []string) error {
	var parent string
	if len(args) > 0 {
		parent = args[0]
	}

	folders, err := a.folders.List(ctx, parent)
	if err != nil {
		return err
	}
	if len(folders) == 0 {
		a.println("No folders")
		return nil
	}

	a.table(func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "ID\tNAME\tCREATED")
		for _, f := range folders {
			fmt.Fprintf(w, "%s\t%s\t%s\n", f.ID, f.Name, f.CreatedAt)
		}
	})
	return nil
}

func (a *App) Mkdir(ctx context.Context, args []string) error {
	var parent string
	if len(args) > 1 {
		parent = args[1]
	}

	f, err := a.folders.Create(ctx, args[0], parent)
	if err != nil {
		return err
	}
	a.printf("Created folder %s (%s)\n", f.Name, f.ID)
	return nil
}

func (a *App) Rmdir(ctx context.Context, args []string) error {
	if err := a.folders.Delete(ctx, args[0]); err != nil {
		return err
	}

	a.mu.Lock()
	if a.folderID == args[0] {
		a.folderID = ""
	}
	a.mu.Unlock()

	a.printf("Deleted folder %s\n", args[0])
	return nil
}

// ChangeFolder sets the folder used by upload and watch. No argument goes
// back to the root.
func (a *App) ChangeFolder(_ context.Context, args []string) error {
	var id string
	if len(args) > 0 && args[0] != "/" {
		id = args[0]
	}

	a.mu.Lock()
	a.folderID = id
	a.mu.Unlock()

	if id == "" {
		a.println("Uploading to the root folder")
	} else {
		a.printf("Uploading to folder %s\n", id)
	}
	return nil
}
