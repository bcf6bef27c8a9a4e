// Package fetch downloads package artifacts.
package fetch

import (
	"context"
	"net/http"
	"net/url"
	"os"

	"github.com/hashicorp/go-getter"
	"github.com/hashicorp/go-hclog"
	"lab47.dev/dpm/pkg/cleanhttp"
	"lab47.dev/dpm/pkg/storage"
)

// Downloader copies single files from http, https or file urls to local
// paths. Artifacts are stored as-is; nothing is unpacked.
type Downloader struct {
	Client   *http.Client
	Progress getter.ProgressTracker

	logger hclog.Logger
}

func (d *Downloader) L() hclog.Logger {
	if d.logger != nil {
		return d.logger
	}

	d.logger = hclog.L()

	return d.logger
}

func (d *Downloader) SetLogger(logger hclog.Logger) {
	d.logger = logger
}

func (d *Downloader) getters() map[string]getter.Getter {
	client := d.Client
	if client == nil {
		client = cleanhttp.NewClient()
	}

	hg := &getter.HttpGetter{
		Client: client,
	}

	return map[string]getter.Getter{
		"http":  hg,
		"https": hg,
		"file":  &getter.FileGetter{Copy: true},
	}
}

// Download fetches src into the file dst, creating parent directories as
// needed, and returns the size of the written file.
func (d *Downloader) Download(ctx context.Context, src, dst string) (int64, error) {
	kind := storage.ErrNetwork

	if u, err := url.Parse(src); err == nil && u.Scheme == "file" {
		kind = storage.ErrIO
	}

	d.L().Debug("downloading artifact", "url", src, "path", dst)

	// go-getter resumes into a non-empty dst when the server accepts ranges.
	err := os.Remove(dst)
	if err != nil && !os.IsNotExist(err) {
		return 0, storage.NewError(storage.ErrIO, dst, err)
	}

	gc := &getter.Client{
		Ctx:              ctx,
		Src:              src,
		Dst:              dst,
		Mode:             getter.ClientModeFile,
		Getters:          d.getters(),
		Decompressors:    map[string]getter.Decompressor{},
		ProgressListener: d.Progress,
	}

	err = gc.Get()
	if err != nil {
		return 0, storage.NewError(kind, src, err)
	}

	fi, err := os.Stat(dst)
	if err != nil {
		return 0, storage.NewError(storage.ErrIO, dst, err)
	}

	d.L().Debug("downloaded artifact", "url", src, "size", fi.Size())

	return fi.Size(), nil
}
