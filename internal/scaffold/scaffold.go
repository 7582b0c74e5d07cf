// Package scaffold creates new projects and new dated posts.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kettleworks/bake/baker/config"
	"github.com/kettleworks/bake/baker/utils"
)

const defaultConfig = `# Site Configuration
title: "My Bake Site"
description: "A site baked with bake"
baseURL: "http://localhost:2604"

author:
  name: "Author Name"
  url: "https://example.com"

postsPerPage: 10

blogs:
  - key: "blog"
    dir: "posts"

# Composite tag listings to pre-generate, members joined with "/"
tagCombinations: []

variants:
  production:
    baseURL: "https://example.com"
`

const defaultLayout = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{ .TabTitle }}</title>
</head>
<body>
  <main>{{ .Content }}</main>
</body>
</html>
`

const defaultIndex = `<!DOCTYPE html>
<html>
<head><title>{{ .TabTitle }}</title></head>
<body>
  <main>{{ .Content }}</main>
  <ul>
  {{ range .Pagination.Posts }}
    <li><a href="{{ .URI }}">{{ .Title }}</a>{{ .Excerpt }}</li>
  {{ end }}
  </ul>
  {{ if .Pagination.HasPrevious }}<a href="{{ .Pagination.PreviousURI }}">newer</a>{{ end }}
  {{ if .Pagination.HasNext }}<a href="{{ .Pagination.NextURI }}">older</a>{{ end }}
</body>
</html>
`

const defaultListing = `<!DOCTYPE html>
<html>
<head><title>{{ .TabTitle }}</title></head>
<body>
  <h1>{{ .Title }}</h1>
  <ul>
  {{ range .Pagination.Posts }}
    <li><a href="{{ .URI }}">{{ .Title }}</a></li>
  {{ end }}
  </ul>
</body>
</html>
`

const firstPost = `---
title: "Hello World"
description: "The first post"
tags: ["welcome"]
category: "general"
---

Welcome to your new site.

<!--more-->

Everything below the marker stays off the listing pages.
`

const firstPage = `---
title: "Home"
paginate: true
---

# Welcome
`

// Init lays out a fresh project in the current directory. Existing files are
// left alone.
func Init() error {
	fmt.Println("🌱 Initializing new project...")

	for _, dir := range []string{"pages", "posts", "templates", "static", "public"} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
		fmt.Printf("   📁 Created %s/\n", dir)
	}

	files := map[string]string{
		config.DefaultFile:        defaultConfig,
		"templates/layout.html":   defaultLayout,
		"templates/index.html":    defaultIndex,
		"templates/tag.html":      defaultListing,
		"templates/category.html": defaultListing,
		"pages/index.md":          firstPage,
	}
	files[filepath.Join("posts", time.Now().Format("2006-01-02")+"_hello-world.md")] = firstPost

	for path, content := range files {
		if _, err := os.Stat(path); err == nil {
			fmt.Printf("   ⚠️ %s already exists, skipping\n", path)
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		fmt.Printf("   📄 Created %s\n", path)
	}

	fmt.Println("\n✅ Project initialized. Run `bake build` to bake it.")
	return nil
}

// NewPost creates a dated post file for the given blog from a title.
func NewPost(cfg *config.Config, blogKey, title string) error {
	slug := utils.Slugify(title)
	if slug == "" {
		return fmt.Errorf("title %q produces an empty slug", title)
	}

	dir := ""
	for _, blog := range cfg.Blogs {
		if blog.Key == blogKey {
			dir = blog.Dir
			break
		}
	}
	if dir == "" {
		return fmt.Errorf("no blog %q in configuration", blogKey)
	}

	filename := filepath.Join(dir, fmt.Sprintf("%s_%s.md", time.Now().Format("2006-01-02"), slug))
	if _, err := os.Stat(filename); err == nil {
		return fmt.Errorf("file already exists: %s", filename)
	}

	content := fmt.Sprintf(`---
title: %q
description: ""
tags: []
category: ""
---

Start writing here...
`, title)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	fmt.Printf("✅ Created %s\n", filename)
	return nil
}
