package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// envBindings lets deployments override a handful of keys without editing YAML.
var envBindings = map[string]string{
	"app.http_addr":          "BRACKETBUDDY_HTTP_ADDR",
	"app.log_level":          "BRACKETBUDDY_LOG_LEVEL",
	"predictions.base_url":   "BRACKETBUDDY_PREDICTIONS_BASE_URL",
	"store.path":             "BRACKETBUDDY_STORE_PATH",
	"chart.lenient_coercion": "BRACKETBUDDY_LENIENT_COERCION",
}

// Load reads path plus its include chain, applies env overrides, defaults and validation.
func Load(path string) (*Config, error) {
	files, err := resolveConfigIncludes(path)
	if err != nil {
		return nil, err
	}
	v := viper.New()
	v.SetConfigType("yaml")
	for _, file := range files {
		if err := mergeConfigFile(v, file); err != nil {
			return nil, fmt.Errorf("reading config file failed (%s): %w", file, err)
		}
	}
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding env %s failed: %w", env, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "toml"
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	setKeys := make(keySet)
	collectSettingsKeys(v.AllSettings(), setKeys)
	cfg.applyDefaults(setKeys)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func mergeConfigFile(v *viper.Viper, path string) error {
	tmp := viper.New()
	tmp.SetConfigFile(path)
	if err := tmp.ReadInConfig(); err != nil {
		return err
	}
	return v.MergeConfigMap(tmp.AllSettings())
}

func resolveConfigIncludes(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("config path cannot be empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	stack := make(map[string]bool)
	files, err := collectConfigFiles(abs, seen, stack)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return []string{abs}, nil
	}
	return files, nil
}

func collectConfigFiles(path string, seen, stack map[string]bool) ([]string, error) {
	path = filepath.Clean(path)
	if stack[path] {
		return nil, fmt.Errorf("include cycle detected: %s", path)
	}
	if seen[path] {
		return nil, nil
	}
	stack[path] = true
	includes, err := parseIncludeList(path)
	if err != nil {
		return nil, fmt.Errorf("parsing include failed (%s): %w", path, err)
	}
	dir := filepath.Dir(path)
	var ordered []string
	for _, inc := range includes {
		inc = strings.TrimSpace(inc)
		if inc == "" {
			continue
		}
		incPath := inc
		if !filepath.IsAbs(inc) {
			incPath = filepath.Join(dir, inc)
		}
		sub, err := collectConfigFiles(incPath, seen, stack)
		if err != nil {
			return nil, err
		}
		if len(sub) > 0 {
			ordered = append(ordered, sub...)
		}
	}
	delete(stack, path)
	seen[path] = true
	ordered = append(ordered, path)
	return ordered, nil
}

// parseIncludeList reads the top-level include key; a single string is
// treated as a one-element list.
func parseIncludeList(path string) ([]string, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	if !v.IsSet("include") {
		return nil, nil
	}
	switch v.Get("include").(type) {
	case string, []any, []string:
	default:
		return nil, fmt.Errorf("include must be a string or a list of strings")
	}
	var out []string
	for _, inc := range v.GetStringSlice("include") {
		if inc = strings.TrimSpace(inc); inc != "" {
			out = append(out, inc)
		}
	}
	return out, nil
}

// collectSettingsKeys marks every leaf path of viper's merged settings.
// Lists count as leaves, so an explicit empty list still overrides a default.
func collectSettingsKeys(settings map[string]any, dest keySet) {
	for key, val := range settings {
		path := strings.ToLower(strings.TrimSpace(key))
		if path == "" {
			continue
		}
		if nested, ok := val.(map[string]any); ok {
			prefixed := make(map[string]any, len(nested))
			for k, v := range nested {
				prefixed[path+"."+k] = v
			}
			collectSettingsKeys(prefixed, dest)
			continue
		}
		dest.mark(path)
	}
}
