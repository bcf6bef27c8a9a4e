package repo

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lab47.dev/dpm/pkg/cleanhttp"
	"lab47.dev/dpm/pkg/data"
	"lab47.dev/dpm/pkg/storage"
)

const (
	testIndex = `{
		"packages": {
			"left-pad": {
				"url": "{{host}}/pkgs/left-pad.tar",
				"file_name": "left-pad.tar",
				"version": "1.0.0",
				"hash": "deadbeef",
				"dependencies": null
			}
		}
	}`

	testInfo = `{
		"package_name": "left-pad",
		"file_name": "left-pad.tar",
		"version": "1.0.0",
		"description": "pads on the left",
		"hash": "deadbeef",
		"dependencies": [{"name": "pad-core", "version": "0.1.0"}]
	}`

	testArtifact = "left-pad artifact bytes"
)

func newTestServer(t *testing.T) *httptest.Server {
	var srv *httptest.Server

	mux := http.NewServeMux()
	mux.HandleFunc("/index.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.ReplaceAll(testIndex, "{{host}}", srv.URL)))
	})
	mux.HandleFunc("/pkgs/src/left-pad/packageInfo.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testInfo))
	})
	mux.HandleFunc("/pkgs/left-pad.tar", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testArtifact))
	})
	mux.HandleFunc("/pkgs/src/ghost/packageInfo.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testInfo))
	})
	mux.HandleFunc("/broken.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not valid"))
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func TestInfoURL(t *testing.T) {
	cases := []struct {
		name, url, expected string
	}{
		{"left-pad", "https://x/pkgs/left-pad.tar", "https://x/pkgs/src/left-pad/packageInfo.json"},
		{"left-pad", "https://x/left-pad", "https://x/src/left-pad/packageInfo.json"},
		{"left-pad", "https://x/pkgs/", "https://x/pkgs/src/left-pad/packageInfo.json"},
	}

	for _, c := range cases {
		t.Run(c.url, func(t *testing.T) {
			u, err := InfoURL(data.PackageBasicInfo{URL: c.url}, c.name)
			require.NoError(t, err)

			assert.Equal(t, c.expected, u)
		})
	}

	t.Run("bad url", func(t *testing.T) {
		_, err := InfoURL(data.PackageBasicInfo{URL: "://nope"}, "a")
		assert.Error(t, err)
	})

	t.Run("keeps names inside src", func(t *testing.T) {
		u, err := InfoURL(data.PackageBasicInfo{URL: "https://x/pkgs/a.tar"}, "../x")
		require.NoError(t, err)

		assert.Equal(t, "https://x/pkgs/src/..%2Fx/packageInfo.json", u)

		for _, name := range []string{"", ".", ".."} {
			_, err := InfoURL(data.PackageBasicInfo{URL: "https://x/pkgs/a.tar"}, name)
			assert.Error(t, err, name)
		}
	})
}

type doerFunc func(req *http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestRemote(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	client := cleanhttp.NewClient()

	t.Run("refresh replaces the packages", func(t *testing.T) {
		r := New()
		r.AddPackage("stale", "u", "f", "1", "h", nil)

		rem := NewRemote(r, client)

		require.NoError(t, rem.Refresh(ctx, srv.URL+"/index.json"))

		assert.False(t, r.HasPackage("stale"))
		assert.Equal(t, []string{"left-pad"}, r.Names())

		pkg, err := r.GetPackage("left-pad")
		require.NoError(t, err)

		assert.Equal(t, srv.URL+"/pkgs/left-pad.tar", pkg.URL)
	})

	t.Run("failed refresh leaves the registry alone", func(t *testing.T) {
		r := New()
		r.AddPackage("kept", "u", "f", "1", "h", nil)

		rem := NewRemote(r, client)

		err := rem.Refresh(ctx, srv.URL+"/broken.json")
		assert.True(t, errors.Is(err, storage.ErrParse))

		err = rem.Refresh(ctx, srv.URL+"/missing.json")
		assert.True(t, errors.Is(err, storage.ErrNetwork))

		assert.Equal(t, []string{"kept"}, r.Names())
	})

	t.Run("fetches package info", func(t *testing.T) {
		r := New()
		rem := NewRemote(r, client)
		require.NoError(t, rem.Refresh(ctx, srv.URL+"/index.json"))

		info, err := rem.PackageInfo(ctx, "left-pad")
		require.NoError(t, err)

		assert.Equal(t, data.NewPackageInfo(
			"left-pad", "left-pad.tar", "1.0.0", "pads on the left", "deadbeef",
			[]data.Dependency{data.NewDependency("pad-core", "0.1.0")},
		), info)
	})

	t.Run("unknown packages are not fetched", func(t *testing.T) {
		rem := NewRemote(New(), client)

		_, err := rem.PackageInfo(ctx, "nope")
		assert.True(t, errors.Is(err, ErrNotFound))

		_, _, err = rem.FetchPackage(ctx, "nope", t.TempDir())
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("fetches the artifact", func(t *testing.T) {
		r := New()
		rem := NewRemote(r, client)
		require.NoError(t, rem.Refresh(ctx, srv.URL+"/index.json"))

		dir := t.TempDir()

		info, path, err := rem.FetchPackage(ctx, "left-pad", dir)
		require.NoError(t, err)

		assert.Equal(t, "left-pad", info.PackageName)
		assert.Equal(t, filepath.Join(dir, "left-pad.tar"), path)

		b, err := os.ReadFile(path)
		require.NoError(t, err)

		assert.Equal(t, testArtifact, string(b))
	})

	t.Run("keeps artifacts inside dir", func(t *testing.T) {
		r := New()
		r.AddPackage("left-pad", srv.URL+"/pkgs/left-pad.tar", "../../left-pad.tar", "1.0.0", "h", nil)

		dir := t.TempDir()

		_, path, err := NewRemote(r, client).FetchPackage(ctx, "left-pad", dir)
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(dir, "left-pad.tar"), path)
	})

	t.Run("reports a failed download", func(t *testing.T) {
		r := New()
		r.AddPackage("ghost", srv.URL+"/pkgs/ghost.tar", "ghost.tar", "1.0.0", "h", nil)

		_, _, err := NewRemote(r, client).FetchPackage(ctx, "ghost", t.TempDir())
		require.Error(t, err)

		assert.True(t, errors.Is(err, storage.ErrNetwork))
		assert.Contains(t, err.Error(), "ghost")
	})

	t.Run("logs when the artifact client falls back", func(t *testing.T) {
		r := New()
		rem := NewRemote(r, client)
		require.NoError(t, rem.Refresh(ctx, srv.URL+"/index.json"))

		var calls int

		rem.Client = doerFunc(func(req *http.Request) (*http.Response, error) {
			calls++
			return client.Do(req)
		})

		var buf bytes.Buffer

		rem.SetLogger(hclog.New(&hclog.LoggerOptions{
			Level:  hclog.Debug,
			Output: &buf,
		}))

		_, path, err := rem.FetchPackage(ctx, "left-pad", t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, 1, calls)
		assert.FileExists(t, path)
		assert.Contains(t, buf.String(), "downloading artifact with a default client")
	})

	t.Run("requires a registry", func(t *testing.T) {
		rem := &Remote{Client: client}

		err := rem.Refresh(ctx, srv.URL+"/index.json")
		assert.True(t, errors.Is(err, ErrNoRepo))

		_, _, err = rem.FetchPackage(ctx, "left-pad", t.TempDir())
		assert.True(t, errors.Is(err, ErrNoRepo))
	})

	t.Run("rejects an empty file name", func(t *testing.T) {
		r := New()
		r.AddPackage("ghost", srv.URL+"/pkgs/ghost.tar", "", "1.0.0", "h", nil)

		_, _, err := NewRemote(r, client).FetchPackage(ctx, "ghost", t.TempDir())
		assert.Error(t, err)
	})
}
