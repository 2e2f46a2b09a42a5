package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for search
// documents: English stemming on titles, authors and note content,
// exact keyword matching for type/status/kind filters, and numeric
// timestamps for recency sorting.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// --- Text fields (full-text searchable) ---

	// Name - primary search target
	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = en.AnalyzerName
	nameFieldMapping.Store = true
	nameFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	authorFieldMapping := bleve.NewTextFieldMapping()
	authorFieldMapping.Analyzer = en.AnalyzerName
	authorFieldMapping.Store = true
	authorFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("author", authorFieldMapping)

	// Description - searchable but not stored
	descFieldMapping := bleve.NewTextFieldMapping()
	descFieldMapping.Analyzer = en.AnalyzerName
	descFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("description", descFieldMapping)

	// Note content - searchable, stored for excerpts
	contentFieldMapping := bleve.NewTextFieldMapping()
	contentFieldMapping.Analyzer = en.AnalyzerName
	contentFieldMapping.Store = true
	contentFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("content", contentFieldMapping)

	genreFieldMapping := bleve.NewTextFieldMapping()
	genreFieldMapping.Analyzer = en.AnalyzerName
	genreFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("genre", genreFieldMapping)

	// --- Keyword fields (exact match) ---

	typeFieldMapping := bleve.NewTextFieldMapping()
	typeFieldMapping.Analyzer = keyword.Name
	typeFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("type", typeFieldMapping)

	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	statusFieldMapping := bleve.NewTextFieldMapping()
	statusFieldMapping.Analyzer = keyword.Name
	statusFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("status", statusFieldMapping)

	kindFieldMapping := bleve.NewTextFieldMapping()
	kindFieldMapping.Analyzer = keyword.Name
	kindFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("kind", kindFieldMapping)

	bookIDFieldMapping := bleve.NewTextFieldMapping()
	bookIDFieldMapping.Analyzer = keyword.Name
	bookIDFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("book_id", bookIDFieldMapping)

	// --- Numeric fields (sorting) ---

	createdAtFieldMapping := bleve.NewNumericFieldMapping()
	createdAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAtFieldMapping)

	updatedAtFieldMapping := bleve.NewNumericFieldMapping()
	updatedAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("updated_at", updatedAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
