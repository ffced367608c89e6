// ABOUTME: Resolves template, static, and content directories for each deployment variant.
// ABOUTME: The vercel variant anchors paths to this source file so the working directory does not matter.
package site

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// AssetDirs are the directories the server reads at startup and on reload.
type AssetDirs struct {
	Templates string
	Static    string
	Content   string
}

// localRoot is the package directory as seen from the repository root.
const localRoot = "site"

// ResolveAssetDirs fills in the variant's default directories for any field
// left empty in cfg, then checks that the template and static directories
// exist. The content directory is optional.
func ResolveAssetDirs(cfg Config) (AssetDirs, error) {
	root, err := variantRoot(cfg.Variant)
	if err != nil {
		return AssetDirs{}, err
	}

	dirs := AssetDirs{
		Templates: pick(cfg.TemplateDir, filepath.Join(root, "templates")),
		Static:    pick(cfg.StaticDir, filepath.Join(root, "static")),
		Content:   pick(cfg.ContentDir, filepath.Join(root, "content")),
	}

	if !dirExists(dirs.Templates) {
		return AssetDirs{}, fmt.Errorf("template directory %s not found", dirs.Templates)
	}
	if !dirExists(dirs.Static) {
		return AssetDirs{}, fmt.Errorf("static directory %s not found", dirs.Static)
	}
	return dirs, nil
}

func variantRoot(v Variant) (string, error) {
	switch v {
	case VariantLocal:
		return localRoot, nil
	case VariantVercel:
		return sourceDir()
	default:
		return "", fmt.Errorf("unknown variant %q", v)
	}
}

// Swapped in tests. Under -trimpath the caller's file is module-relative.
var (
	callerFile = func() (string, bool) {
		_, file, _, ok := runtime.Caller(0)
		return file, ok
	}
	executablePath = os.Executable
)

// sourceDir returns the absolute directory holding this file. When the
// binary was built without absolute source paths it falls back to a site/
// directory next to the executable, or the executable's own directory.
func sourceDir() (string, error) {
	thisFile, ok := callerFile()
	if !ok {
		return "", fmt.Errorf("cannot determine source location")
	}
	if dir := filepath.Dir(thisFile); filepath.IsAbs(dir) {
		return dir, nil
	}

	exe, err := executablePath()
	if err != nil {
		return "", fmt.Errorf("source path %s is not absolute and executable is unknown: %w", thisFile, err)
	}
	base := filepath.Dir(exe)
	for _, c := range []string{filepath.Join(base, localRoot), base} {
		if dirExists(filepath.Join(c, "templates")) {
			return c, nil
		}
	}
	return "", fmt.Errorf("source path %s is not absolute and no templates found next to %s", thisFile, exe)
}

func pick(explicit, fallback string) string {
	if explicit != "" {
		return explicit
	}
	return fallback
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
