// Package generators emits the site-wide XML artifacts (sitemap, RSS feed)
// from the full post list after a bake.
package generators

import (
	"encoding/xml"
	"time"

	"github.com/spf13/afero"

	"github.com/kettleworks/bake/baker/models"
)

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	Urls    []urlEntry
}

type urlEntry struct {
	XMLName xml.Name `xml:"url"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod,omitempty"`
}

// WriteSitemap emits sitemap.xml at the output root covering the site root
// and every post URI.
func WriteSitemap(destFs afero.Fs, baseURL string, posts []models.Post) error {
	urls := []urlEntry{{Loc: baseURL + "/", LastMod: time.Now().Format("2006-01-02")}}
	for _, p := range posts {
		urls = append(urls, urlEntry{
			Loc:     baseURL + p.URI,
			LastMod: p.Date.Format("2006-01-02"),
		})
	}

	set := urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		Urls:  urls,
	}
	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return err
	}
	return afero.WriteFile(destFs, "sitemap.xml", []byte(xml.Header+string(out)), 0644)
}
