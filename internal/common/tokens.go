package common

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

var wordRe = regexp.MustCompile(`[a-z0-9_]+`)

// Tokenize lowercases text and splits it into alphanumeric tokens.
// Underscores and hyphens act as separators so compound labels like
// "red_suv" match the query tokens "red" and "suv".
func Tokenize(text string) []string {
	normalized := strings.ToLower(text)
	normalized = strings.ReplaceAll(normalized, "_", " ")
	normalized = strings.ReplaceAll(normalized, "-", " ")
	return wordRe.FindAllString(normalized, -1)
}

// OverlapScore returns the fraction of query tokens present in the
// semantic token set, bounded to [0,1].
func OverlapScore(queryTokens, semanticTokens []string) float64 {
	if len(queryTokens) == 0 {
		return 0.0
	}
	semantic := make(map[string]struct{}, len(semanticTokens))
	for _, token := range semanticTokens {
		semantic[token] = struct{}{}
	}
	query := make(map[string]struct{}, len(queryTokens))
	matched := 0
	for _, token := range queryTokens {
		if _, seen := query[token]; seen {
			continue
		}
		query[token] = struct{}{}
		if _, ok := semantic[token]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(query))
}

// StableID builds a deterministic, content-addressed identifier from
// arbitrary parts. Identical inputs always yield identical ids, which keeps
// repeated runs byte-for-byte reproducible.
func StableID(prefix string, parts ...any) string {
	strs := make([]string, len(parts))
	for i, part := range parts {
		strs[i] = fmt.Sprint(part)
	}
	digest := sha1.Sum([]byte(strings.Join(strs, "|")))
	return prefix + "_" + hex.EncodeToString(digest[:])[:10]
}
