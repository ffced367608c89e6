// ABOUTME: Site configuration: variant defaults, optional YAML file, and AURAE_* environment overrides.
// ABOUTME: Flags are applied by the caller after LoadConfig; Validate checks the merged result.
package site

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Variant selects a deployment flavour. Variants differ only in how asset
// directories are resolved and in the displayed server location.
type Variant string

const (
	// VariantLocal resolves asset directories relative to the working directory.
	VariantLocal Variant = "local"
	// VariantVercel resolves asset directories from this package's source location.
	VariantVercel Variant = "vercel"
)

// DefaultAddr is the loopback address used by the development server.
const DefaultAddr = "127.0.0.1:8000"

var locations = map[Variant]string{
	VariantLocal:  "São Paulo, BR",
	VariantVercel: "São Paulo, BR (Vercel)",
}

// ParseVariant maps a name to a known Variant.
func ParseVariant(name string) (Variant, error) {
	v := Variant(name)
	if _, ok := locations[v]; !ok {
		return "", fmt.Errorf("unknown variant %q (want %q or %q)", name, VariantLocal, VariantVercel)
	}
	return v, nil
}

// Location returns the fixed display string for the variant.
func (v Variant) Location() string {
	return locations[v]
}

// Config holds everything needed to build a Server.
// Empty directory fields are filled in by ResolveAssetDirs from the variant.
type Config struct {
	Addr        string  `yaml:"addr"`
	Variant     Variant `yaml:"variant"`
	Location    string  `yaml:"location"`
	TemplateDir string  `yaml:"template_dir"`
	StaticDir   string  `yaml:"static_dir"`
	ContentDir  string  `yaml:"content_dir"`
	Reload      bool    `yaml:"reload"`
}

// DefaultConfig returns the configuration for a variant with no overrides.
func DefaultConfig(v Variant) Config {
	return Config{
		Addr:     DefaultAddr,
		Variant:  v,
		Location: v.Location(),
	}
}

// LoadConfig builds a Config from variant defaults, then the YAML file at
// path (skipped when path is empty), then AURAE_* environment variables.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig(VariantLocal)

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("opening config: %w", err)
		}
		defer f.Close()
		if err := decodeConfig(f, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decodeConfig overlays YAML onto cfg. A variant change in the file also
// resets the location unless the file sets one explicitly.
func decodeConfig(r io.Reader, cfg *Config) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	var file Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	if file.Variant != "" {
		if _, err := ParseVariant(string(file.Variant)); err != nil {
			return err
		}
		cfg.Variant = file.Variant
		cfg.Location = file.Variant.Location()
	}
	if file.Addr != "" {
		cfg.Addr = file.Addr
	}
	if file.Location != "" {
		cfg.Location = file.Location
	}
	if file.TemplateDir != "" {
		cfg.TemplateDir = file.TemplateDir
	}
	if file.StaticDir != "" {
		cfg.StaticDir = file.StaticDir
	}
	if file.ContentDir != "" {
		cfg.ContentDir = file.ContentDir
	}
	cfg.Reload = cfg.Reload || file.Reload
	return nil
}

func applyEnv(cfg *Config) error {
	if name := os.Getenv("AURAE_VARIANT"); name != "" {
		v, err := ParseVariant(name)
		if err != nil {
			return fmt.Errorf("AURAE_VARIANT: %w", err)
		}
		cfg.Variant = v
		cfg.Location = v.Location()
	}
	if addr := os.Getenv("AURAE_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if loc := os.Getenv("AURAE_LOCATION"); loc != "" {
		cfg.Location = loc
	}
	if dir := os.Getenv("AURAE_TEMPLATE_DIR"); dir != "" {
		cfg.TemplateDir = dir
	}
	if dir := os.Getenv("AURAE_STATIC_DIR"); dir != "" {
		cfg.StaticDir = dir
	}
	if dir := os.Getenv("AURAE_CONTENT_DIR"); dir != "" {
		cfg.ContentDir = dir
	}
	return nil
}

// Validate reports the first problem with cfg.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if _, err := ParseVariant(string(c.Variant)); err != nil {
		return err
	}
	if c.Location == "" {
		return fmt.Errorf("location must not be empty")
	}
	return nil
}
