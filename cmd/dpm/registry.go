package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/davecgh/go-spew/spew"
	"github.com/morikuni/aec"
	"github.com/pkg/errors"
	"lab47.dev/dpm/pkg/data"
	"lab47.dev/dpm/pkg/digest"
	"lab47.dev/dpm/pkg/repo"
	"lab47.dev/dpm/pkg/storage"
)

func initF(ctx context.Context, opts struct {
	Force bool `short:"f" long:"force" description:"replace an existing registry"`
}) error {
	cfg, L, err := setup(ctx)
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfg.Registry); err == nil && !opts.Force {
		return fmt.Errorf("registry already exists: %s", cfg.Registry)
	}

	err = os.MkdirAll(filepath.Dir(cfg.Registry), 0755)
	if err != nil {
		return err
	}

	err = storage.ToJSON(repo.New(), cfg.Registry)
	if err != nil {
		return err
	}

	L.Info("created registry", "path", cfg.Registry)

	return nil
}

func addF(ctx context.Context, opts struct {
	URL         string   `long:"url" required:"yes" description:"where the artifact is fetched from"`
	File        string   `long:"file" description:"artifact file name (defaults to the base name of --artifact)"`
	Version     string   `long:"version" required:"yes" description:"package version"`
	Hash        string   `long:"hash" description:"artifact hash"`
	Artifact    string   `long:"artifact" description:"local artifact to compute the hash and file name from"`
	Deps        []string `short:"d" long:"dep" description:"dependency as name@version, repeatable"`
	Entry       string   `long:"entry" description:"entry point inside the artifact"`
	Description string   `long:"description" description:"short description"`
	Strict      bool     `long:"strict" description:"fail if the package is already registered"`

	Pos struct {
		Name string `positional-arg-name:"name" required:"yes"`
	} `positional-args:"yes"`
}) error {
	cfg, L, err := setup(ctx)
	if err != nil {
		return err
	}

	deps, err := parseDeps(opts.Deps)
	if err != nil {
		return err
	}

	info := data.PackageBasicInfo{
		URL:          opts.URL,
		FileName:     opts.File,
		Version:      opts.Version,
		Hash:         opts.Hash,
		Dependencies: deps,
		Entry:        opts.Entry,
		Description:  opts.Description,
	}

	if opts.Artifact != "" {
		if info.Hash == "" {
			info.Hash, err = digest.File(opts.Artifact)
			if err != nil {
				return err
			}
		}

		if info.FileName == "" {
			info.FileName = filepath.Base(opts.Artifact)
		}
	}

	if info.FileName == "" {
		return fmt.Errorf("a file name is required, use --file or --artifact")
	}

	name := opts.Pos.Name

	err = mutateRegistry(ctx, cfg, func(ri *repo.RepoInfo) error {
		if opts.Strict {
			return ri.InsertPackage(name, info)
		}

		if ri.HasPackage(name) {
			L.Info("replacing package", "package", name)
		}

		ri.AddPackageWithInfo(name, info)

		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("Added %s %s\n", name, info.Version)

	return nil
}

func importF(ctx context.Context, opts struct {
	JSON     string `long:"json" description:"registry record as a JSON string"`
	InfoFile string `long:"info-file" description:"path to a packageInfo.json to import"`
	URL      string `long:"url" description:"artifact url, required with --info-file"`

	Pos struct {
		Name string `positional-arg-name:"name"`
	} `positional-args:"yes"`
}) error {
	cfg, _, err := setup(ctx)
	if err != nil {
		return err
	}

	var (
		name string
		info data.PackageBasicInfo
	)

	switch {
	case opts.JSON != "" && opts.InfoFile != "":
		return fmt.Errorf("use only one of --json or --info-file")
	case opts.JSON != "":
		if opts.Pos.Name == "" {
			return fmt.Errorf("a package name is required with --json")
		}

		info, err = storage.FromString[data.PackageBasicInfo](opts.JSON)
		if err != nil {
			return err
		}

		name = opts.Pos.Name
	case opts.InfoFile != "":
		if opts.URL == "" {
			return fmt.Errorf("--url is required with --info-file")
		}

		pi, err := storage.FromJSON[data.PackageInfo](opts.InfoFile)
		if err != nil {
			return err
		}

		name = pi.PackageName
		if opts.Pos.Name != "" {
			name = opts.Pos.Name
		}

		info = pi.BasicInfo(opts.URL)
	default:
		return fmt.Errorf("one of --json or --info-file is required")
	}

	err = mutateRegistry(ctx, cfg, func(ri *repo.RepoInfo) error {
		ri.AddPackageWithInfo(name, info)
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("Imported %s %s\n", name, info.Version)

	return nil
}

func updateF(ctx context.Context, opts struct {
	URL         string   `long:"url" description:"new artifact url"`
	File        string   `long:"file" description:"new artifact file name"`
	Version     string   `long:"version" description:"new version"`
	Hash        string   `long:"hash" description:"new artifact hash"`
	Deps        []string `short:"d" long:"dep" description:"replace dependencies, name@version, repeatable"`
	Entry       string   `long:"entry" description:"new entry point"`
	Description string   `long:"description" description:"new description"`

	Pos struct {
		Name string `positional-arg-name:"name" required:"yes"`
	} `positional-args:"yes"`
}) error {
	cfg, _, err := setup(ctx)
	if err != nil {
		return err
	}

	deps, err := parseDeps(opts.Deps)
	if err != nil {
		return err
	}

	str := func(s string) *string {
		if s == "" {
			return nil
		}

		return &s
	}

	up := repo.PackageUpdate{
		URL:          str(opts.URL),
		FileName:     str(opts.File),
		Version:      str(opts.Version),
		Hash:         str(opts.Hash),
		Dependencies: deps,
		Entry:        str(opts.Entry),
		Description:  str(opts.Description),
	}

	err = mutateRegistry(ctx, cfg, func(ri *repo.RepoInfo) error {
		return ri.PatchPackage(opts.Pos.Name, up)
	})
	if err != nil {
		return err
	}

	fmt.Printf("Updated %s\n", opts.Pos.Name)

	return nil
}

func rmF(ctx context.Context, opts struct {
	Pos struct {
		Name string `positional-arg-name:"name" required:"yes"`
	} `positional-args:"yes"`
}) error {
	cfg, _, err := setup(ctx)
	if err != nil {
		return err
	}

	var (
		removed data.PackageBasicInfo
		ok      bool
	)

	err = mutateRegistry(ctx, cfg, func(ri *repo.RepoInfo) error {
		removed, ok = ri.RemovePackage(opts.Pos.Name)
		return nil
	})
	if err != nil {
		return err
	}

	if !ok {
		fmt.Printf("%s is not registered\n", opts.Pos.Name)
		return nil
	}

	fmt.Printf("Removed %s %s\n", opts.Pos.Name, removed.Version)

	return nil
}

func showF(ctx context.Context, opts struct {
	JSON bool `long:"json" description:"output the record as JSON"`

	Pos struct {
		Name string `positional-arg-name:"name" required:"yes"`
	} `positional-args:"yes"`
}) error {
	cfg, _, err := setup(ctx)
	if err != nil {
		return err
	}

	ri, err := loadRegistry(cfg)
	if err != nil {
		return err
	}

	pkg, err := ri.GetPackage(opts.Pos.Name)
	if err != nil {
		return err
	}

	if opts.JSON {
		b, err := storage.Encode(pkg)
		if err != nil {
			return err
		}

		os.Stdout.Write(b)
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 4, 2, 1, ' ', 0)
	defer tw.Flush()

	fmt.Fprintf(tw, "%s\t%s\n", aec.Bold.Apply("Name:"), opts.Pos.Name)
	fmt.Fprintf(tw, "%s\t%s\n", aec.Bold.Apply("Version:"), pkg.Version)
	fmt.Fprintf(tw, "%s\t%s\n", aec.Bold.Apply("URL:"), pkg.URL)
	fmt.Fprintf(tw, "%s\t%s\n", aec.Bold.Apply("File:"), pkg.FileName)
	fmt.Fprintf(tw, "%s\t%s\n", aec.Bold.Apply("Hash:"), pkg.Hash)

	if pkg.Entry != "" {
		fmt.Fprintf(tw, "%s\t%s\n", aec.Bold.Apply("Entry:"), pkg.Entry)
	}

	if pkg.Description != "" {
		fmt.Fprintf(tw, "%s\t%s\n", aec.Bold.Apply("Description:"), pkg.Description)
	}

	if pkg.Dependencies != nil {
		fmt.Fprintf(tw, "%s\n", aec.Bold.Apply("Dependencies:"))

		for _, d := range pkg.Dependencies {
			fmt.Fprintf(tw, "  %s\t%s\n", d.Name, d.Version)
		}
	}

	return nil
}

func listF(ctx context.Context, opts struct{}) error {
	cfg, _, err := setup(ctx)
	if err != nil {
		return err
	}

	ri, err := loadRegistry(cfg)
	if err != nil {
		return err
	}

	pkgs := ri.Packages()

	tw := tabwriter.NewWriter(os.Stdout, 4, 2, 1, ' ', 0)
	defer tw.Flush()

	for _, name := range ri.Names() {
		pkg := pkgs[name]
		fmt.Fprintf(tw, "%s\t%s\t%s\n", aec.Bold.Apply(name), pkg.Version, pkg.URL)
	}

	return nil
}

func configF(ctx context.Context, opts struct{}) error {
	cfg, _, err := setup(ctx)
	if err != nil {
		return err
	}

	b, err := storage.Encode(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("Config File: %s\n", cfg.Path())
	os.Stdout.Write(b)

	return nil
}

func debugF(ctx context.Context, opts struct {
	Registry string `long:"registry" description:"registry file to dump instead of the configured one"`
}) error {
	cfg, _, err := setup(ctx)
	if err != nil {
		return err
	}

	if opts.Registry != "" {
		cfg.Registry = opts.Registry
	}

	ri, err := loadRegistry(cfg)
	if err != nil {
		return errors.Wrapf(err, "loading %s", cfg.Registry)
	}

	spew.Dump(ri.Packages())

	return nil
}
