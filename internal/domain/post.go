package domain

// Post is a blog content file and its links to external publishing platforms.
// Empty platform URLs mean the post was not cross-posted there.
type Post struct {
	File      string
	Slug      string
	MediumURL string
	DevtoURL  string
}

// DevtoStats holds the lifetime engagement of one blog platform article.
type DevtoStats struct {
	Views     int `json:"views"`
	Comments  int `json:"comments"`
	Reactions int `json:"reactions"`
}

// PostStats holds the views of one post on every platform.
type PostStats struct {
	Slug   string `json:"slug"`
	Site   int    `json:"site"`
	Medium int    `json:"medium"`
	Devto  int    `json:"devto"`
}

// Total is the sum of views across platforms.
func (p PostStats) Total() int {
	return p.Site + p.Medium + p.Devto
}
