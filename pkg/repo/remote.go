package repo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"lab47.dev/dpm/pkg/data"
	"lab47.dev/dpm/pkg/fetch"
	"lab47.dev/dpm/pkg/storage"
)

// Remote syncs a registry with the index and package files published on a
// server. Every call makes its own requests; nothing is cached or retried.
//
// Client serves the index and package info requests. Artifacts go through
// Downloader; when it is nil a default one is built that reuses Client only
// if it is an *http.Client, so set Downloader when Client is any other Doer.
type Remote struct {
	Repo       *RepoInfo
	Client     storage.Doer
	Downloader *fetch.Downloader

	logger hclog.Logger
}

func NewRemote(ri *RepoInfo, client storage.Doer) *Remote {
	return &Remote{
		Repo:   ri,
		Client: client,
	}
}

func (r *Remote) L() hclog.Logger {
	if r.logger != nil {
		return r.logger
	}

	r.logger = hclog.L()

	return r.logger
}

func (r *Remote) SetLogger(logger hclog.Logger) {
	r.logger = logger
}

func (r *Remote) repo() (*RepoInfo, error) {
	if r.Repo == nil {
		return nil, errors.WithStack(ErrNoRepo)
	}

	return r.Repo, nil
}

// Refresh replaces every package in the registry with the contents of the
// index at indexURL. On failure the registry is left untouched.
func (r *Remote) Refresh(ctx context.Context, indexURL string) error {
	dst, err := r.repo()
	if err != nil {
		return err
	}

	ri, err := storage.FromURL[RepoInfo](ctx, r.Client, indexURL)
	if err != nil {
		return err
	}

	r.L().Debug("refreshed registry", "url", indexURL, "before", dst.Len(), "after", ri.Len())

	dst.packages = ri.packages
	dst.init()

	return nil
}

// InfoURL is where the full package info of name is published: the
// src/<name>/packageInfo.json document next to the artifact. name is a
// single escaped path segment, so it can never climb out of src/.
func InfoURL(pkg data.PackageBasicInfo, name string) (string, error) {
	if name == "" || name == "." || name == ".." {
		return "", errors.Errorf("package name %q can not be used in a url", name)
	}

	u, err := url.Parse(pkg.URL)
	if err != nil {
		return "", errors.Wrapf(err, "parsing url of package %s", name)
	}

	ref, err := url.Parse("src/" + url.PathEscape(name) + "/packageInfo.json")
	if err != nil {
		return "", errors.Wrapf(err, "building info url of package %s", name)
	}

	return u.ResolveReference(ref).String(), nil
}

// PackageInfo fetches the full info of a registered package.
func (r *Remote) PackageInfo(ctx context.Context, name string) (data.PackageInfo, error) {
	ri, err := r.repo()
	if err != nil {
		return data.PackageInfo{}, err
	}

	pkg, err := ri.GetPackage(name)
	if err != nil {
		return data.PackageInfo{}, err
	}

	infoURL, err := InfoURL(pkg, name)
	if err != nil {
		return data.PackageInfo{}, err
	}

	r.L().Debug("fetching package info", "package", name, "url", infoURL)

	return storage.FromURL[data.PackageInfo](ctx, r.Client, infoURL)
}

// FetchPackage fetches the full info of a registered package and downloads
// its artifact into dir, named after the package's file name. An empty dir
// means the OS temp directory. It returns the info and the artifact path.
func (r *Remote) FetchPackage(ctx context.Context, name, dir string) (data.PackageInfo, string, error) {
	info, err := r.PackageInfo(ctx, name)
	if err != nil {
		return data.PackageInfo{}, "", err
	}

	pkg, err := r.Repo.GetPackage(name)
	if err != nil {
		return data.PackageInfo{}, "", err
	}

	if dir == "" {
		dir = os.TempDir()
	}

	fileName := filepath.Base(filepath.Clean("/" + pkg.FileName))
	if fileName == "/" || fileName == "." {
		return data.PackageInfo{}, "", errors.Errorf("package %s has no usable file name: %q", name, pkg.FileName)
	}

	dst := filepath.Join(dir, fileName)

	dl := r.Downloader
	if dl == nil {
		dl = &fetch.Downloader{}
		dl.SetLogger(r.L())

		if hc, ok := r.Client.(*http.Client); ok {
			dl.Client = hc
		} else if r.Client != nil {
			r.L().Debug("client is not an *http.Client, downloading artifact with a default client",
				"package", name, "client", fmt.Sprintf("%T", r.Client))
		}
	}

	_, err = dl.Download(ctx, pkg.URL, dst)
	if err != nil {
		return data.PackageInfo{}, "", errors.Wrapf(err, "fetching package %s", name)
	}

	return info, dst, nil
}
