package generators

import (
	"encoding/xml"
	"time"

	"github.com/spf13/afero"

	"github.com/kettleworks/bake/baker/models"
)

type rss struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel channel  `xml:"channel"`
}

type channel struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Items       []item `xml:"item"`
}

type item struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	Guid        string `xml:"guid"`
}

const feedLimit = 20

// WriteRSS emits rss.xml at the output root with the newest posts.
func WriteRSS(destFs afero.Fs, title, description, baseURL string, posts []models.Post) error {
	var items []item
	for i, p := range posts {
		if i >= feedLimit {
			break
		}
		link := baseURL + p.URI
		items = append(items, item{
			Title:       p.Title,
			Link:        link,
			Description: p.Description,
			PubDate:     p.Date.Format(time.RFC1123),
			Guid:        link,
		})
	}

	feed := rss{
		Version: "2.0",
		Channel: channel{
			Title:       title,
			Link:        baseURL,
			Description: description,
			Items:       items,
		},
	}
	out, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return err
	}
	return afero.WriteFile(destFs, "rss.xml", []byte(xml.Header+string(out)), 0644)
}
