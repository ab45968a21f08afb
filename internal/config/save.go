package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SaveAtomic validates cfg, writes it next to path and swaps it in, keeping the previous
// file as path+".bak".
func SaveAtomic(path string, cfg Config) error {
	normalized, vr := NormalizeAndValidate(cfg)
	if !vr.OK() {
		return vr
	}

	b, err := yaml.Marshal(&normalized)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	bak := path + ".bak"

	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}

	_ = os.Remove(bak)
	_ = os.Rename(path, bak)

	return os.Rename(tmp, path)
}
