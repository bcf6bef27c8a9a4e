package data

// PackageBasicInfo is what the registry stores per package. The package
// name is not part of the record, it is the registry key.
type PackageBasicInfo struct {
	URL          string       `json:"url"`
	FileName     string       `json:"file_name"`
	Version      string       `json:"version"`
	Hash         string       `json:"hash"`
	Dependencies []Dependency `json:"dependencies"`

	Entry       string `json:"entry,omitempty"`
	Description string `json:"description,omitempty"`
}

// Clone returns a copy that shares no memory with p.
func (p PackageBasicInfo) Clone() PackageBasicInfo {
	p.Dependencies = copyDeps(p.Dependencies)
	return p
}

// BasicInfo reduces a PackageInfo to the registry record, attaching the
// fetch url.
func (p PackageInfo) BasicInfo(url string) PackageBasicInfo {
	return PackageBasicInfo{
		URL:          url,
		FileName:     p.FileName,
		Version:      p.Version,
		Hash:         p.Hash,
		Dependencies: copyDeps(p.Dependencies),
		Description:  p.Description,
	}
}
