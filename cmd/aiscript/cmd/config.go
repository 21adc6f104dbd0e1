package cmd

import (
	"os"

	"github.com/goccy/go-yaml"
)

// ProjectConfig is the optional `aiscript.yaml` a project can keep at
// its root, grounded on go-dws's own CLI config conventions (a small
// YAML file next to the script tree rather than a flag for every
// setting) but adapted to AIScript's module-path resolution (spec
// §4.6) in place of go-dws's unit-search-path equivalent.
type ProjectConfig struct {
	ModulePath []string `yaml:"module_path"`
	Stdlib     struct {
		DisableHTTP  bool `yaml:"disable_http"`
		DisableSQL   bool `yaml:"disable_sql"`
		DisableRedis bool `yaml:"disable_redis"`
	} `yaml:"stdlib"`
}

// loadProjectConfig reads aiscript.yaml from dir if present. A missing
// file is not an error — most projects have none — but a malformed one
// is, so a typo doesn't silently run with defaults.
func loadProjectConfig(dir string) (*ProjectConfig, error) {
	path := dir + string(os.PathSeparator) + "aiscript.yaml"
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ProjectConfig{}, nil
		}
		return nil, err
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
