package installer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ManifestName is the loader manifest generated into every dependency
// archive. Its presence at the install root is the install marker.
const ManifestName = "loader.json"

// manifestBasePath is the manifest field holding the base-path expression
// the loader resolves dependency files against. The archive is built on a
// different filesystem layout, so the generated value is wrong here until
// rewritten.
const manifestBasePath = "paths.base"

// ManifestPath returns where the loader manifest lives under root.
func ManifestPath(root string) string {
	return filepath.Join(root, ManifestName)
}

// ManifestExists reports whether the install marker is present. File
// presence is the sole cross-process source of truth for "already
// installed in this container".
func ManifestExists(root string) bool {
	st, err := os.Stat(ManifestPath(root))
	return err == nil && !st.IsDir()
}

// FixupManifest rewrites the manifest's embedded base path to the absolute
// install root. It is the default post-extraction fix-up.
func FixupManifest(root string) error {
	path := ManifestPath(root)
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	if !gjson.ValidBytes(b) {
		return fmt.Errorf("manifest %s is not valid JSON", path)
	}
	if !gjson.GetBytes(b, manifestBasePath).Exists() {
		return fmt.Errorf("manifest %s has no %s field", path, manifestBasePath)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve install root: %w", err)
	}

	patched, err := sjson.SetBytes(b, manifestBasePath, abs)
	if err != nil {
		return fmt.Errorf("patch manifest: %w", err)
	}

	if err := os.WriteFile(path, patched, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	return nil
}
