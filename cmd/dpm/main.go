package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/pkg/errors"
	"lab47.dev/dpm/pkg/cmd"
	"lab47.dev/dpm/pkg/config"
	"lab47.dev/dpm/pkg/data"
	"lab47.dev/dpm/pkg/lockfile"
	"lab47.dev/dpm/pkg/repo"
	"lab47.dev/dpm/pkg/storage"
)

func main() {
	c := cli.NewCLI("dpm", "0.1.0")
	c.Args = os.Args[1:]
	c.Commands = map[string]cli.CommandFactory{
		"init": func() (cli.Command, error) {
			return cmd.New("init", "Create an empty registry file", initF), nil
		},
		"add": func() (cli.Command, error) {
			return cmd.New("add", "Add or replace a package in the registry", addF), nil
		},
		"import": func() (cli.Command, error) {
			return cmd.New("import", "Add a package from a JSON record", importF), nil
		},
		"update": func() (cli.Command, error) {
			return cmd.New("update", "Change fields of a registered package", updateF), nil
		},
		"rm": func() (cli.Command, error) {
			return cmd.New("rm", "Remove a package from the registry", rmF), nil
		},
		"show": func() (cli.Command, error) {
			return cmd.New("show", "Show a registered package", showF), nil
		},
		"list": func() (cli.Command, error) {
			return cmd.New("list", "List registered packages", listF), nil
		},
		"sync": func() (cli.Command, error) {
			return cmd.New("sync", "Replace the registry with a remote index", syncF), nil
		},
		"info": func() (cli.Command, error) {
			return cmd.New("info", "Fetch the published info of a package", infoF), nil
		},
		"fetch": func() (cli.Command, error) {
			return cmd.New("fetch", "Download package artifacts", fetchF), nil
		},
		"config": func() (cli.Command, error) {
			return cmd.New("config", "Output the effective configuration", configF), nil
		},
		"debug": func() (cli.Command, error) {
			return cmd.New("debug", "Dump the registry's internal state", debugF), nil
		},
	}

	exitStatus, err := c.Run()
	if err != nil {
		log.Println(err)
	}

	os.Exit(exitStatus)
}

// setup loads the config and applies its log level to the command logger.
func setup(ctx context.Context) (*config.Config, hclog.Logger, error) {
	L := hclog.FromContext(ctx)

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "unable to load configuration")
	}

	L.SetLevel(cfg.Level())

	L.Debug("loaded config", "path", cfg.Path(), "registry", cfg.Registry)

	return cfg, L, nil
}

func loadRegistry(cfg *config.Config) (*repo.RepoInfo, error) {
	ri, err := storage.FromJSON[*repo.RepoInfo](cfg.Registry)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrapf(err, "no registry (run 'dpm init' first)")
		}

		return nil, err
	}

	if ri == nil {
		ri = repo.New()
	}

	return ri, nil
}

// mutateRegistry runs f on the registry under the registry lock and writes
// the result back when f succeeds.
func mutateRegistry(ctx context.Context, cfg *config.Config, f func(ri *repo.RepoInfo) error) error {
	var showLock bool

	lk, err := lockfile.Take(ctx, lockfile.PathFor(cfg.Registry), func() {
		if !showLock {
			fmt.Printf("Lock detected, waiting...\n")
			showLock = true
		}
	})
	if err != nil {
		return err
	}

	defer lk.Release()

	ri, err := loadRegistry(cfg)
	if err != nil {
		return err
	}

	err = f(ri)
	if err != nil {
		return err
	}

	return storage.ToJSON(ri, cfg.Registry)
}

// parseDeps reads dependencies given as name@version. The last @ splits, so
// scoped names like @scope/pkg@1.0.0 work.
func parseDeps(specs []string) ([]data.Dependency, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	deps := make([]data.Dependency, 0, len(specs))

	for _, s := range specs {
		idx := strings.LastIndexByte(s, '@')
		if idx <= 0 || idx == len(s)-1 {
			return nil, fmt.Errorf("invalid dependency, expected name@version: %s", s)
		}

		deps = append(deps, data.NewDependency(s[:idx], s[idx+1:]))
	}

	return deps, nil
}
