// Loads the site configuration and applies named variants
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the site configuration filename.
const DefaultFile = "bake.yaml"

// Blog is one dated content stream.
type Blog struct {
	Key string `yaml:"key"`
	Dir string `yaml:"dir"` // source subdir holding the dated posts
}

// Config is the site configuration from bake.yaml.
type Config struct {
	Title        string `yaml:"title"`
	Description  string `yaml:"description"`
	BaseURL      string `yaml:"baseURL"`
	PostsPerPage int    `yaml:"postsPerPage"`

	PagesDir    string `yaml:"pagesDir"`
	OutputDir   string `yaml:"outputDir"`
	CacheDir    string `yaml:"cacheDir"`
	TemplateDir string `yaml:"templateDir"`
	StaticDir   string `yaml:"staticDir"`

	Blogs []Blog `yaml:"blogs"`

	// Pre-declared composite tag keys, as "/"-joined tag names.
	TagCombinations []string `yaml:"tagCombinations"`

	Author struct {
		Name string `yaml:"name"`
		URL  string `yaml:"url"`
	} `yaml:"author"`

	// Named configuration overlays applied before a run.
	Variants map[string]map[string]interface{} `yaml:"variants"`
}

// Default returns the configuration defaults.
func Default() *Config {
	return &Config{
		Title:        "Bake Site",
		PostsPerPage: 10,
		PagesDir:     "pages",
		OutputDir:    "public",
		CacheDir:     ".bake-cache",
		TemplateDir:  "templates",
		StaticDir:    "static",
		Blogs:        []Blog{{Key: "blog", Dir: "posts"}},
	}
}

// Load reads bake.yaml from the given path. A missing file yields defaults;
// a malformed file is a configuration error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("malformed %s: %w", path, err)
	}

	cfg.validate()
	return cfg, nil
}

// ApplyVariant overlays a named variant onto the configuration. Referencing
// a variant that does not exist is a configuration error.
func (c *Config) ApplyVariant(name string) error {
	if name == "" {
		return nil
	}
	overlay, ok := c.Variants[name]
	if !ok {
		return fmt.Errorf("configuration variant %q does not exist", name)
	}

	data, err := yaml.Marshal(overlay)
	if err != nil {
		return fmt.Errorf("malformed variant %q: %w", name, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("malformed variant %q: %w", name, err)
	}

	c.validate()
	return nil
}

// validate ensures configuration values are within reasonable bounds
func (c *Config) validate() {
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
	if c.PostsPerPage < 1 {
		c.PostsPerPage = 1
	}
	if c.PostsPerPage > 100 {
		c.PostsPerPage = 100
	}
	if c.OutputDir == "" {
		c.OutputDir = "public"
	}
	if c.CacheDir == "" {
		c.CacheDir = ".bake-cache"
	}
	if c.TemplateDir == "" {
		c.TemplateDir = "templates"
	}
	if len(c.Blogs) == 0 {
		c.Blogs = []Blog{{Key: "blog", Dir: "posts"}}
	}
	for i := range c.Blogs {
		if c.Blogs[i].Key == "" {
			c.Blogs[i].Key = "blog"
		}
		if c.Blogs[i].Dir == "" {
			c.Blogs[i].Dir = filepath.Join("posts", c.Blogs[i].Key)
		}
	}
}

// CanonicalBytes returns the yaml form of the effective configuration,
// variants excluded, for signature computation.
func (c *Config) CanonicalBytes() []byte {
	clone := *c
	clone.Variants = nil
	data, err := yaml.Marshal(&clone)
	if err != nil {
		return nil
	}
	return data
}
