package standup

import (
	"regexp"
	"strings"
)

// generatedID matches store-generated work item ids.
var generatedID = regexp.MustCompile(`\bwi-[0-9a-f]+\b`)

// ExtractItemIDs returns the work item ids mentioned in text, in order of
// first mention. Generated ids (wi-xxxxxx) always match; any other word is
// included when known reports it as an existing id. known may be nil.
func ExtractItemIDs(text string, known func(id string) bool) []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, word := range strings.FieldsFunc(text, isSeparator) {
		word = strings.Trim(word, ".-_")
		switch {
		case word == "":
		case generatedID.MatchString(word) && generatedID.FindString(word) == word:
			add(word)
		case known != nil && known(word):
			add(word)
		}
	}
	return ids
}

func isSeparator(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	case r == '-' || r == '_' || r == '.':
		return false
	}
	return true
}
