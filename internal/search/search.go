/*
Copyright © 2025 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package search finds module ids in a workspace by regex or, failing
// that, fuzzy match, and ranks near-misses so a mistyped entry
// id gets a helpful suggestion instead of a bare "not found".
package search

import (
	"regexp"
	"sort"
	"strings"

	"github.com/agext/levenshtein"
	"github.com/gosimple/slug"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Match is one module id that satisfied a search query.
type Match struct {
	ModuleID string
	Score    int
}

// FindModules searches ids for query, treating query as a
// case-insensitive regular expression first and falling back to a fuzzy
// substring match (scored by fuzzy.RankMatchNormalized) when the regex
// fails to compile or matches nothing. Results are sorted by ascending
// score (regex matches score 0; a fuzzy rank is a distance, so lower is
// closer), then lexically by module id for a stable order on ties.
func FindModules(ids []string, query string) []Match {
	if query == "" {
		matches := make([]Match, len(ids))
		for i, id := range ids {
			matches[i] = Match{ModuleID: id, Score: 0}
		}
		sort.Slice(matches, func(i, j int) bool { return matches[i].ModuleID < matches[j].ModuleID })
		return matches
	}

	if re, err := regexp.Compile("(?i)" + query); err == nil {
		var matches []Match
		for _, id := range ids {
			if re.MatchString(id) {
				matches = append(matches, Match{ModuleID: id, Score: 0})
			}
		}
		if len(matches) > 0 {
			sortMatches(matches)
			return matches
		}
	}

	var matches []Match
	for _, id := range ids {
		if rank := fuzzy.RankMatchNormalized(strings.ToLower(query), strings.ToLower(id)); rank >= 0 {
			matches = append(matches, Match{ModuleID: id, Score: rank})
		}
	}
	sortMatches(matches)
	return matches
}

func sortMatches(matches []Match) {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score < matches[j].Score
		}
		return matches[i].ModuleID < matches[j].ModuleID
	})
}

// ClosestModule returns the module id in ids with the smallest Levenshtein
// distance to query, for "did you mean" suggestions when a missing entry
// id is requested outright rather than searched for.
func ClosestModule(ids []string, query string) (string, bool) {
	if len(ids) == 0 {
		return "", false
	}
	best := ids[0]
	bestDist := levenshtein.Distance(query, best, nil)
	for _, id := range ids[1:] {
		if dist := levenshtein.Distance(query, id, nil); dist < bestDist {
			bestDist = dist
			best = id
		}
	}
	return best, true
}

// Slugify derives a filesystem- and URL-safe name from a module id,
// used by the dev server when it needs a stable key for a module outside
// of its original path (e.g. a websocket topic name).
func Slugify(moduleID string) string {
	return slug.Make(moduleID)
}
