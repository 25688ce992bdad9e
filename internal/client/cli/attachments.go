package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/todokeeper/internal/filex"
	"github.com/dmitrijs2005/todokeeper/internal/netx"
)

// Attach uploads a local file as the todo's attachment through a presigned
// URL. The bytes never pass through the API server.
func (a *App) Attach(ctx context.Context, args []string) error {
	id, err := a.idArg(args, "Enter todo id")
	if err != nil {
		return err
	}

	var path string
	if len(args) > 1 {
		path = args[1]
	} else if path, err = getSimpleText(a.reader, "Enter file path", os.Stdout); err != nil {
		return err
	}
	if path == "" {
		return errors.New("file path is required")
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return err
	}

	p, err := a.api.AttachmentUploadURL(ctx, id)
	if err != nil {
		return err
	}

	if err := netx.UploadToPresignedURL(ctx, p.URL, f, fi.Size()); err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Uploaded %s (%d bytes)", fi.Name(), fi.Size()))
	return nil
}

// Download saves the todo's attachment into the configured download
// directory, named after the todo id.
func (a *App) Download(ctx context.Context, args []string) error {
	id, err := a.idArg(args, "Enter todo id")
	if err != nil {
		return err
	}

	p, err := a.api.AttachmentDownloadURL(ctx, id)
	if err != nil {
		return err
	}

	dir, err := filex.EnsureDir(a.config.DownloadDir)
	if err != nil {
		return err
	}
	f, err := filex.CreateExclusive(dir, id)
	if err != nil {
		return err
	}

	n, err := netx.DownloadFromPresignedURL(ctx, p.URL, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return err
	}

	printlnFn(fmt.Sprintf("Saved %s (%d bytes)", f.Name(), n))
	return nil
}
