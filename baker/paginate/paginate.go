// Package paginate slices ordered post collections into fixed-size windows
// with navigation metadata.
package paginate

import (
	"fmt"

	"github.com/kettleworks/bake/baker/models"
)

// Window is one contiguous page of an ordered post collection.
type Window struct {
	Posts       []models.Post
	PageNumber  int
	TotalPages  int
	HasPrevious bool
	HasNext     bool
	PreviousURI string
	NextURI     string
}

// WindowOf returns the pageNumber-th window of posts (newest first), perPage
// items per window. baseURI is the unsuffixed URI of the first page; page n
// (n >= 2) lives at baseURI + "/n", and the previous window of page 2 points
// back to the unsuffixed base.
func WindowOf(posts []models.Post, pageNumber, perPage int, baseURI string) (Window, error) {
	if pageNumber < 1 {
		return Window{}, fmt.Errorf("page number must be >= 1, got %d", pageNumber)
	}
	if perPage < 1 {
		return Window{}, fmt.Errorf("posts per page must be > 0, got %d", perPage)
	}

	total := len(posts)
	totalPages := (total + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}

	start := (pageNumber - 1) * perPage
	end := start + perPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	w := Window{
		Posts:       posts[start:end],
		PageNumber:  pageNumber,
		TotalPages:  totalPages,
		HasPrevious: pageNumber > 1,
		HasNext:     end < total,
	}
	if w.HasPrevious {
		if pageNumber == 2 {
			w.PreviousURI = baseURI
		} else {
			w.PreviousURI = fmt.Sprintf("%s/%d", baseURI, pageNumber-1)
		}
	}
	if w.HasNext {
		w.NextURI = fmt.Sprintf("%s/%d", baseURI, pageNumber+1)
	}
	return w, nil
}

// PageCount returns how many windows a collection of the given size yields.
// An empty collection still has one (empty) page.
func PageCount(totalPosts, perPage int) int {
	if perPage < 1 {
		return 1
	}
	n := (totalPosts + perPage - 1) / perPage
	if n == 0 {
		n = 1
	}
	return n
}
