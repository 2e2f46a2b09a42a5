package openlibrary

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const defaultLimit = 10

// SearchBooks searches Open Library for books matching the query.
func (c *Client) SearchBooks(ctx context.Context, query string) ([]BookResult, error) {
	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", fmt.Sprintf("%d", defaultLimit))
	params.Set("fields", "key,title,author_name,first_publish_year,number_of_pages_median,isbn,cover_i,subject")

	searchURL := c.baseURL + "/search.json?" + params.Encode()

	if c.logger != nil {
		c.logger.Debug("searching Open Library",
			"query", query,
			"url", searchURL,
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search failed: status %d", resp.StatusCode)
	}

	var searchResp searchResponse
	if err := json.UnmarshalRead(resp.Body, &searchResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug("Open Library search results",
			"query", query,
			"count", searchResp.NumFound,
		)
	}

	results := make([]BookResult, 0, len(searchResp.Docs))
	for i := range searchResp.Docs {
		doc := &searchResp.Docs[i]

		result := BookResult{
			ID:            strings.TrimPrefix(doc.Key, "/works/"),
			Title:         doc.Title,
			FirstPublishY: doc.FirstPublishYear,
			TotalPages:    doc.NumberOfPages,
			CoverURL:      CoverURL(doc.CoverID),
		}
		if len(doc.AuthorName) > 0 {
			result.Author = strings.Join(doc.AuthorName, ", ")
		}
		if len(doc.ISBN) > 0 {
			result.ISBN = doc.ISBN[0]
		}
		if len(doc.Subject) > 0 {
			result.Subject = doc.Subject[0]
		}

		results = append(results, result)
	}

	return results, nil
}

// SearchByTitleAndAuthor searches using both title and author for
// better matching.
func (c *Client) SearchByTitleAndAuthor(ctx context.Context, title, author string) ([]BookResult, error) {
	query := strings.TrimSpace(title)
	if author != "" {
		query = query + " " + strings.TrimSpace(author)
	}
	return c.SearchBooks(ctx, query)
}

// CoverURL builds the large cover image URL for a cover ID, or empty
// when the work has no cover.
func CoverURL(coverID int) string {
	if coverID <= 0 {
		return ""
	}
	return fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-L.jpg", coverID)
}
