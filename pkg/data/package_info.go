package data

// PackageInfo is the full, standalone description of a package as
// published next to its artifact.
type PackageInfo struct {
	PackageName  string       `json:"package_name"`
	FileName     string       `json:"file_name"`
	Version      string       `json:"version"`
	Description  string       `json:"description"`
	Hash         string       `json:"hash"`
	Dependencies []Dependency `json:"dependencies"`
}

// NewPackageInfo builds a PackageInfo from all of its fields. No field is
// validated.
func NewPackageInfo(
	packageName, fileName, version, description, hash string,
	deps []Dependency,
) PackageInfo {
	return PackageInfo{
		PackageName:  packageName,
		FileName:     fileName,
		Version:      version,
		Description:  description,
		Hash:         hash,
		Dependencies: copyDeps(deps),
	}
}
