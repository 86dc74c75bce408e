package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// loadRecordFile reads a flat policy record from a YAML or JSON file and
// returns each value as form input text, so file values go through the
// same coercion as typed input.
func loadRecordFile(path string) (map[string]string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "yaml", "yml", "json":
	default:
		return nil, fmt.Errorf("record file %s: unsupported format %q (want yaml or json)", path, ext)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(ext)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading record file %s: %w", path, err)
	}

	fields := make(map[string]string)
	for _, key := range v.AllKeys() {
		if v.Get(key) == nil {
			fields[key] = ""
			continue
		}
		fields[key] = v.GetString(key)
	}
	return fields, nil
}
