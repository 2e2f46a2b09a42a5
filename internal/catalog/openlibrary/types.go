package openlibrary

// searchResponse is the wire shape of /search.json.
type searchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []searchDoc `json:"docs"`
}

type searchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	NumberOfPages    int      `json:"number_of_pages_median"`
	ISBN             []string `json:"isbn"`
	CoverID          int      `json:"cover_i"`
	Subject          []string `json:"subject"`
}

// BookResult is one catalog hit, normalized for the API layer.
type BookResult struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Author        string `json:"author,omitempty"`
	FirstPublishY int    `json:"firstPublishYear,omitempty"`
	TotalPages    int    `json:"totalPages,omitempty"`
	ISBN          string `json:"isbn,omitempty"`
	Subject       string `json:"subject,omitempty"`
	CoverURL      string `json:"coverUrl,omitempty"`
}
