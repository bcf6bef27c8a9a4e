package data

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackageInfo(t *testing.T) {
	t.Run("constructor keeps every field", func(t *testing.T) {
		deps := []Dependency{NewDependency("serde", "1.0.0")}

		pi := NewPackageInfo("test_package", "test_file.zip", "1.0.0", "A test package", "hash123", deps)

		assert.Equal(t, "test_package", pi.PackageName)
		assert.Equal(t, "test_file.zip", pi.FileName)
		assert.Equal(t, "1.0.0", pi.Version)
		assert.Equal(t, "A test package", pi.Description)
		assert.Equal(t, "hash123", pi.Hash)
		assert.Equal(t, deps, pi.Dependencies)

		deps[0].Version = "2.0.0"
		assert.Equal(t, "1.0.0", pi.Dependencies[0].Version)
	})

	t.Run("uses the wire field names", func(t *testing.T) {
		pi := NewPackageInfo("test_package", "test_file.zip", "1.0.0", "A test package", "hash123", nil)

		b, err := json.Marshal(pi)
		require.NoError(t, err)

		assert.JSONEq(t, `{
			"package_name": "test_package",
			"file_name": "test_file.zip",
			"version": "1.0.0",
			"description": "A test package",
			"hash": "hash123",
			"dependencies": null
		}`, string(b))
	})

	t.Run("reduces to a basic info", func(t *testing.T) {
		pi := NewPackageInfo("a", "a.tar", "0.1.0", "desc", "h", []Dependency{NewDependency("b", "1")})

		bi := pi.BasicInfo("https://x/a.tar")

		assert.Equal(t, "https://x/a.tar", bi.URL)
		assert.Equal(t, "a.tar", bi.FileName)
		assert.Equal(t, "0.1.0", bi.Version)
		assert.Equal(t, "h", bi.Hash)
		assert.Equal(t, "desc", bi.Description)
		assert.Equal(t, []Dependency{{Name: "b", Version: "1"}}, bi.Dependencies)
	})
}

func TestPackageBasicInfo(t *testing.T) {
	t.Run("omits empty client fields", func(t *testing.T) {
		bi := PackageBasicInfo{
			URL:      "https://x/left-pad",
			FileName: "left-pad.tar",
			Version:  "1.0.0",
			Hash:     "deadbeef",
		}

		b, err := json.Marshal(bi)
		require.NoError(t, err)

		assert.JSONEq(t, `{
			"url": "https://x/left-pad",
			"file_name": "left-pad.tar",
			"version": "1.0.0",
			"hash": "deadbeef",
			"dependencies": null
		}`, string(b))
	})

	t.Run("clone does not share dependencies", func(t *testing.T) {
		bi := PackageBasicInfo{
			Dependencies: []Dependency{NewDependency("a", "1")},
		}

		cl := bi.Clone()
		cl.Dependencies[0].Name = "b"

		assert.Equal(t, "a", bi.Dependencies[0].Name)
	})

	t.Run("clone keeps absent and empty apart", func(t *testing.T) {
		assert.Nil(t, PackageBasicInfo{}.Clone().Dependencies)

		empty := PackageBasicInfo{Dependencies: []Dependency{}}.Clone()
		assert.NotNil(t, empty.Dependencies)
		assert.Len(t, empty.Dependencies, 0)
	})
}
