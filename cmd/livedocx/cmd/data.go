package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeptools/gw-livedocx/conf"
)

// loadValues merges data files in order, then key=value pairs. Later entries win
func loadValues(files []string, sets []string) (map[string]any, error) {
	values := make(map[string]any)
	for _, path := range files {
		data, err := decodeDataFile(path)
		if err != nil {
			return nil, err
		}
		for k, v := range data {
			values[k] = v
		}
	}
	for _, set := range sets {
		key, value, ok := strings.Cut(set, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("--set %q: want key=value", set)
		}
		values[key] = value
	}
	return values, nil
}

// decodeDataFile reads merge values from JSON, YAML or TOML.
// JSON numbers are kept as written
func decodeDataFile(path string) (map[string]any, error) {
	var values map[string]any
	if strings.ToLower(filepath.Ext(path)) != ".json" {
		if err := conf.DecodeFile(path, &values); err != nil {
			return nil, err
		}
		return values, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err = dec.Decode(&values); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return values, nil
}

// writeOutput refuses to replace an existing file unless force is set
func writeOutput(path string, data []byte, force bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%s exists. use --force to overwrite", path)
		}
		return err
	}
	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// outputName replaces the extension of template with format
func outputName(template string, format string) string {
	base := filepath.Base(template)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "." + strings.ToLower(format)
}
