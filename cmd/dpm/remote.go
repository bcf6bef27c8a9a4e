package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"lab47.dev/dpm/pkg/cleanhttp"
	"lab47.dev/dpm/pkg/config"
	"lab47.dev/dpm/pkg/fetch"
	"lab47.dev/dpm/pkg/humanize"
	"lab47.dev/dpm/pkg/progress"
	"lab47.dev/dpm/pkg/repo"
	"lab47.dev/dpm/pkg/storage"
)

func newRemote(ctx context.Context, L hclog.Logger, ri *repo.RepoInfo) *repo.Remote {
	client := cleanhttp.NewClient()

	dl := &fetch.Downloader{
		Client: client,
	}
	dl.SetLogger(L)

	// A nil *Tracker must not end up as a non-nil interface.
	if tr := progress.Downloads(ctx); tr != nil {
		dl.Progress = tr
	}

	rem := repo.NewRemote(ri, client)
	rem.Downloader = dl
	rem.SetLogger(L)

	return rem
}

func withTimeout(ctx context.Context, cfg *config.Config) (context.Context, context.CancelFunc, error) {
	d, err := cfg.Timeout()
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, d)

	return ctx, cancel, nil
}

func syncF(ctx context.Context, opts struct {
	URL string `long:"url" description:"index url, defaults to the configured index-url"`
}) error {
	cfg, L, err := setup(ctx)
	if err != nil {
		return err
	}

	indexURL := opts.URL
	if indexURL == "" {
		indexURL = cfg.IndexURL
	}

	if indexURL == "" {
		return fmt.Errorf("no index url, use --url or set index-url in %s", cfg.Path())
	}

	var count int

	err = mutateRegistry(ctx, cfg, func(ri *repo.RepoInfo) error {
		ctx, cancel, err := withTimeout(ctx, cfg)
		if err != nil {
			return err
		}

		defer cancel()

		err = newRemote(ctx, L, ri).Refresh(ctx, indexURL)
		if err != nil {
			return err
		}

		count = ri.Len()

		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("Synced %d packages from %s\n", count, indexURL)

	return nil
}

func infoF(ctx context.Context, opts struct {
	Pos struct {
		Name string `positional-arg-name:"name" required:"yes"`
	} `positional-args:"yes"`
}) error {
	cfg, L, err := setup(ctx)
	if err != nil {
		return err
	}

	ri, err := loadRegistry(cfg)
	if err != nil {
		return err
	}

	ctx, cancel, err := withTimeout(ctx, cfg)
	if err != nil {
		return err
	}

	defer cancel()

	info, err := newRemote(ctx, L, ri).PackageInfo(ctx, opts.Pos.Name)
	if err != nil {
		return err
	}

	b, err := storage.Encode(info)
	if err != nil {
		return err
	}

	os.Stdout.Write(b)

	return nil
}

func fetchF(ctx context.Context, opts struct {
	Dir string `long:"dir" description:"directory to download into, defaults to download-dir"`

	Pos struct {
		Names []string `positional-arg-name:"name" required:"1"`
	} `positional-args:"yes"`
}) error {
	cfg, L, err := setup(ctx)
	if err != nil {
		return err
	}

	ri, err := loadRegistry(cfg)
	if err != nil {
		return err
	}

	dir := opts.Dir
	if dir == "" {
		dir = cfg.DownloadPath()
	}

	rem := newRemote(ctx, L, ri)

	pg := progress.Count(ctx, int64(len(opts.Pos.Names)), "fetch")
	defer pg.Close()

	for _, name := range opts.Pos.Names {
		pg.On(name)

		err := fetchOne(ctx, cfg, rem, name, dir)
		if err != nil {
			return err
		}

		pg.Tick()
	}

	return nil
}

func fetchOne(ctx context.Context, cfg *config.Config, rem *repo.Remote, name, dir string) error {
	ctx, cancel, err := withTimeout(ctx, cfg)
	if err != nil {
		return err
	}

	defer cancel()

	info, path, err := rem.FetchPackage(ctx, name, dir)
	if err != nil {
		return err
	}

	var size string

	if fi, err := os.Stat(path); err == nil {
		size = humanize.Format(fi.Size())
	}

	fmt.Printf("Fetched %s %s to %s (%s)\n", info.PackageName, info.Version, path, size)

	return nil
}
