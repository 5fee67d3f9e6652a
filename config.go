package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk configuration. Anything it leaves out keeps
// its built-in default.
type fileConfig struct {
	Format        string  `yaml:"format"`
	Options       Options `yaml:"options"`
	Browser       string  `yaml:"browser"`
	Timeout       string  `yaml:"timeout"`
	LoripsumURL   string  `yaml:"loripsumURL"`
	MarkdownumURL string  `yaml:"markdownumURL"`
}

func defaultConfig() fileConfig {
	return fileConfig{
		Format:        string(FormatPlaintext),
		Options:       defaultOptions(),
		Browser:       "native",
		Timeout:       "30s",
		LoripsumURL:   defaultLoripsumURL,
		MarkdownumURL: defaultMarkdownumURL,
	}
}

// defaultConfigPath returns ~/.loremtext/config.yaml.
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".loremtext", "config.yaml")
}

// loadConfig reads path over the defaults and then applies environment
// overrides. A missing file is only an error when it was asked for
// explicitly.
func loadConfig(path string, explicit bool, getenv func(string) string) (fileConfig, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if v := strings.TrimSpace(getenv("LOREMTEXT_LORIPSUM_URL")); v != "" {
		cfg.LoripsumURL = v
	}
	if v := strings.TrimSpace(getenv("LOREMTEXT_MARKDOWNUM_URL")); v != "" {
		cfg.MarkdownumURL = v
	}
	if v := strings.TrimSpace(getenv("LOREMTEXT_BROWSER")); v != "" {
		cfg.Browser = v
	}
	if v := strings.TrimSpace(getenv("LOREMTEXT_TIMEOUT")); v != "" {
		cfg.Timeout = v
	}
	return cfg, nil
}

// clientConfig converts the file settings into client settings.
func (c fileConfig) clientConfig() (clientConfig, error) {
	timeout := c.Timeout
	if timeout == "" {
		timeout = "30s"
	}
	dur, err := time.ParseDuration(timeout)
	if err != nil {
		return clientConfig{}, fmt.Errorf("invalid timeout %q: %w", timeout, err)
	}
	return clientConfig{
		Browser:       c.Browser,
		Timeout:       dur,
		LoripsumURL:   c.LoripsumURL,
		MarkdownumURL: c.MarkdownumURL,
	}, nil
}
