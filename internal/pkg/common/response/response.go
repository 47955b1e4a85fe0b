package response

import (
	"net/url"
	"strconv"
)

// Response is the uniform JSON envelope for API replies. Detail carries an
// error message; list replies fill Count/Previous/Next/Results.
type Response struct {
	Count    int    `json:"count,omitempty"`
	Previous string `json:"previous,omitempty"`
	Next     string `json:"next,omitempty"`
	Results  any    `json:"results,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// BuildPageLinks derives previous/next page URLs from the request URL by
// rewriting the page query parameter. Empty string means no such page.
func BuildPageLinks(u *url.URL, page, pageSize, total int) (prev, next string) {
	if u == nil || pageSize <= 0 {
		return "", ""
	}
	withPage := func(p int) string {
		cp := *u
		q := cp.Query()
		q.Set("page", strconv.Itoa(p))
		q.Set("page_size", strconv.Itoa(pageSize))
		cp.RawQuery = q.Encode()
		return cp.String()
	}
	if page > 1 {
		prev = withPage(page - 1)
	}
	if page*pageSize < total {
		next = withPage(page + 1)
	}
	return prev, next
}
