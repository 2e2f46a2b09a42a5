package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// SearchParams configures a search query.
type SearchParams struct {
	Query string   // User's search query
	Types []string // Document types to include (empty = all)

	// Pagination
	Limit  int
	Offset int

	// Options
	Highlight bool // Include match highlighting
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:     20,
		Offset:    0,
		Highlight: true,
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string      `json:"query"`
	Total  uint64      `json:"total"`
	TookMs int64       `json:"took_ms"`
	Hits   []SearchHit `json:"hits"`
}

// SearchHit represents a single search result.
type SearchHit struct {
	ID         string            `json:"id"`
	Type       DocType           `json:"type"`
	Score      float64           `json:"score"`
	Name       string            `json:"name"`
	Author     string            `json:"author,omitempty"`
	Genre      string            `json:"genre,omitempty"`
	Status     string            `json:"status,omitempty"`
	BookID     string            `json:"bookId,omitempty"`
	Kind       string            `json:"kind,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// Search executes a search query. A non-positive limit falls back to
// the default page size.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	if params.Limit <= 0 {
		params.Limit = DefaultSearchParams().Limit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildSearchQuery(params)

	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)
	searchRequest.SortBy([]string{"-_score"})

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("name")
		searchRequest.Highlight.AddField("author")
		searchRequest.Highlight.AddField("content")
	}

	searchRequest.Fields = []string{
		"id", "type", "name", "author", "genre", "status", "book_id", "kind",
	}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		searchHit := SearchHit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if t, ok := hit.Fields["type"].(string); ok {
			searchHit.Type = DocType(t)
		}
		if n, ok := hit.Fields["name"].(string); ok {
			searchHit.Name = n
		}
		if a, ok := hit.Fields["author"].(string); ok {
			searchHit.Author = a
		}
		if g, ok := hit.Fields["genre"].(string); ok {
			searchHit.Genre = g
		}
		if st, ok := hit.Fields["status"].(string); ok {
			searchHit.Status = st
		}
		if b, ok := hit.Fields["book_id"].(string); ok {
			searchHit.BookID = b
		}
		if k, ok := hit.Fields["kind"].(string); ok {
			searchHit.Kind = k
		}

		if len(hit.Fragments) > 0 {
			searchHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					searchHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, searchHit)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params. Titles are
// boosted over authors and note content; a fuzzy query adds typo
// tolerance and a prefix query serves autocomplete.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	if params.Query != "" {
		textQueries := []query.Query{}

		nameMatch := bleve.NewMatchQuery(params.Query)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)
		textQueries = append(textQueries, nameMatch)

		authorMatch := bleve.NewMatchQuery(params.Query)
		authorMatch.SetField("author")
		authorMatch.SetBoost(2.0)
		textQueries = append(textQueries, authorMatch)

		contentMatch := bleve.NewMatchQuery(params.Query)
		contentMatch.SetField("content")
		textQueries = append(textQueries, contentMatch)

		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("name")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		if len(params.Query) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixQuery.SetField("name")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if len(params.Types) > 0 {
		typeQueries := make([]query.Query, len(params.Types))
		for i, t := range params.Types {
			tq := bleve.NewTermQuery(t)
			tq.SetField("type")
			typeQueries[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(typeQueries...))
	}

	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}
