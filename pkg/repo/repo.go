// Package repo holds the registry: the mapping from package name to the
// metadata needed to fetch that package.
package repo

import (
	"encoding/json"
	"sort"

	"github.com/pkg/errors"
	"lab47.dev/dpm/pkg/data"
)

var (
	ErrNotFound = errors.New("package not found")
	ErrExists   = errors.New("package already exists")
	ErrNoRepo   = errors.New("remote has no registry")
)

// RepoInfo maps package names to their basic info. The key is the
// authoritative name. Records are copied in and out, so nothing outside
// the registry aliases its state.
//
// RepoInfo does no locking. Callers that share one across goroutines must
// serialize access themselves.
type RepoInfo struct {
	packages map[string]data.PackageBasicInfo
}

func New() *RepoInfo {
	return &RepoInfo{
		packages: make(map[string]data.PackageBasicInfo),
	}
}

func (r *RepoInfo) init() {
	if r.packages == nil {
		r.packages = make(map[string]data.PackageBasicInfo)
	}
}

func (r *RepoInfo) HasPackage(name string) bool {
	_, ok := r.packages[name]
	return ok
}

// AddPackage builds a record from the given fields and stores it under
// name, replacing any existing entry.
func (r *RepoInfo) AddPackage(
	name, url, fileName, version, hash string,
	deps []data.Dependency,
) {
	r.AddPackageWithInfo(name, data.PackageBasicInfo{
		URL:          url,
		FileName:     fileName,
		Version:      version,
		Hash:         hash,
		Dependencies: deps,
	})
}

// AddPackageWithInfo stores info under name, replacing any existing entry.
func (r *RepoInfo) AddPackageWithInfo(name string, info data.PackageBasicInfo) {
	r.init()
	r.packages[name] = info.Clone()
}

// InsertPackage stores info under name only if name is not registered yet.
func (r *RepoInfo) InsertPackage(name string, info data.PackageBasicInfo) error {
	if r.HasPackage(name) {
		return errors.Wrapf(ErrExists, "package %s", name)
	}

	r.AddPackageWithInfo(name, info)

	return nil
}

func (r *RepoInfo) GetPackage(name string) (data.PackageBasicInfo, error) {
	pkg, ok := r.packages[name]
	if !ok {
		return data.PackageBasicInfo{}, errors.Wrapf(ErrNotFound, "package %s", name)
	}

	return pkg.Clone(), nil
}

// RemovePackage deletes name and returns the record it held. The bool is
// false, and nothing changes, when name was not registered.
func (r *RepoInfo) RemovePackage(name string) (data.PackageBasicInfo, bool) {
	pkg, ok := r.packages[name]
	if !ok {
		return data.PackageBasicInfo{}, false
	}

	delete(r.packages, name)

	return pkg, true
}

// UpdatePackage replaces the record of an existing package. Unlike the Add
// methods it never creates an entry.
func (r *RepoInfo) UpdatePackage(name string, info data.PackageBasicInfo) error {
	if !r.HasPackage(name) {
		return errors.Wrapf(ErrNotFound, "package %s", name)
	}

	r.packages[name] = info.Clone()

	return nil
}

// PackageUpdate lists the fields PatchPackage should replace. Nil fields
// are left alone.
type PackageUpdate struct {
	URL          *string
	FileName     *string
	Version      *string
	Hash         *string
	Dependencies []data.Dependency
	Entry        *string
	Description  *string
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// PatchPackage changes only the fields set in up on an existing package.
func (r *RepoInfo) PatchPackage(name string, up PackageUpdate) error {
	pkg, ok := r.packages[name]
	if !ok {
		return errors.Wrapf(ErrNotFound, "package %s", name)
	}

	setIf(&pkg.URL, up.URL)
	setIf(&pkg.FileName, up.FileName)
	setIf(&pkg.Version, up.Version)
	setIf(&pkg.Hash, up.Hash)
	setIf(&pkg.Entry, up.Entry)
	setIf(&pkg.Description, up.Description)

	if up.Dependencies != nil {
		pkg.Dependencies = up.Dependencies
	}

	r.packages[name] = pkg.Clone()

	return nil
}

// Packages returns a copy of the whole mapping.
func (r *RepoInfo) Packages() map[string]data.PackageBasicInfo {
	out := make(map[string]data.PackageBasicInfo, len(r.packages))

	for name, pkg := range r.packages {
		out[name] = pkg.Clone()
	}

	return out
}

// Names returns the registered package names in sorted order.
func (r *RepoInfo) Names() []string {
	names := make([]string, 0, len(r.packages))

	for name := range r.packages {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func (r *RepoInfo) Len() int {
	return len(r.packages)
}

type repoInfoJSON struct {
	Packages *map[string]data.PackageBasicInfo `json:"packages"`
}

func (r RepoInfo) MarshalJSON() ([]byte, error) {
	pkgs := r.packages
	if pkgs == nil {
		pkgs = map[string]data.PackageBasicInfo{}
	}

	return json.Marshal(repoInfoJSON{Packages: &pkgs})
}

func (r *RepoInfo) UnmarshalJSON(b []byte) error {
	var rj repoInfoJSON

	err := json.Unmarshal(b, &rj)
	if err != nil {
		return err
	}

	if rj.Packages == nil {
		return errors.New("missing field packages")
	}

	r.packages = *rj.Packages

	return nil
}
