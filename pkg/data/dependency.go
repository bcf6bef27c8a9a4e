package data

// Dependency is a declared dependency of a package. Entries are not
// deduplicated; the same name may appear more than once.
type Dependency struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func NewDependency(name, version string) Dependency {
	return Dependency{
		Name:    name,
		Version: version,
	}
}

func copyDeps(deps []Dependency) []Dependency {
	if deps == nil {
		return nil
	}

	out := make([]Dependency, len(deps))
	copy(out, deps)

	return out
}
