package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/dominopro/dominopro-server/internal/domain"
	"github.com/dominopro/dominopro-server/internal/normalize"
)

const defaultLimit = 10

// Params configures a player search.
type Params struct {
	Query           string
	Limit           int
	IncludeArchived bool
}

// Hit is one matching player.
type Hit struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Nickname string  `json:"nickname,omitempty"`
	Level    string  `json:"level"`
	Score    float64 `json:"score"`
}

// Search finds players whose name or nickname matches the query, ignoring
// accents and case. An empty query matches every player.
func (s *PlayerIndex) Search(ctx context.Context, params Params) ([]Hit, error) {
	if params.Limit <= 0 {
		params.Limit = defaultLimit
	}

	req := bleve.NewSearchRequestOptions(buildQuery(params), params.Limit, 0, false)
	req.SortBy([]string{"-_score", "-xp"})
	req.Fields = []string{"name", "nickname", "level"}

	s.mu.RLock()
	res, err := s.index.SearchInContext(ctx, req)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hit := Hit{ID: h.ID, Score: h.Score}
		if v, ok := h.Fields["name"].(string); ok {
			hit.Name = v
		}
		if v, ok := h.Fields["nickname"].(string); ok {
			hit.Nickname = v
		}
		if v, ok := h.Fields["level"].(string); ok {
			hit.Level = v
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// buildQuery matches the folded text exactly, by prefix of the last word
// (typing-as-you-go) and with one edit of typo tolerance.
func buildQuery(params Params) query.Query {
	var queries []query.Query

	folded := normalize.Fold(params.Query)
	if folded != "" {
		match := bleve.NewMatchQuery(folded)
		match.SetField("folded")
		match.SetBoost(3.0)

		words := strings.Fields(folded)
		last := words[len(words)-1]

		prefix := bleve.NewPrefixQuery(last)
		prefix.SetField("folded")
		prefix.SetBoost(1.5)

		textQueries := []query.Query{match, prefix}
		if len(last) >= 3 {
			fuzzy := bleve.NewFuzzyQuery(last)
			fuzzy.SetField("folded")
			fuzzy.SetFuzziness(1)
			fuzzy.SetBoost(0.8)
			textQueries = append(textQueries, fuzzy)
		}
		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if !params.IncludeArchived {
		active := bleve.NewTermQuery(string(domain.PlayerActive))
		active.SetField("status")
		queries = append(queries, active)
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	default:
		return bleve.NewConjunctionQuery(queries...)
	}
}
