package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the mapping for player documents.
//
// name and nickname keep their accents for display; folded carries the
// accent-free lower-case text every query runs against.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = simple.Name

	docMapping := bleve.NewDocumentMapping()

	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = simple.Name
	nameFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	nicknameFieldMapping := bleve.NewTextFieldMapping()
	nicknameFieldMapping.Analyzer = simple.Name
	nicknameFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("nickname", nicknameFieldMapping)

	foldedFieldMapping := bleve.NewTextFieldMapping()
	foldedFieldMapping.Analyzer = simple.Name
	foldedFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("folded", foldedFieldMapping)

	// Keyword fields for exact filtering.
	statusFieldMapping := bleve.NewTextFieldMapping()
	statusFieldMapping.Analyzer = keyword.Name
	statusFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("status", statusFieldMapping)

	levelFieldMapping := bleve.NewTextFieldMapping()
	levelFieldMapping.Analyzer = keyword.Name
	levelFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("level", levelFieldMapping)

	xpFieldMapping := bleve.NewNumericFieldMapping()
	xpFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("xp", xpFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}
