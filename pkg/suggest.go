package pkg

import "github.com/sahilm/fuzzy"

// MaxSuggestions limits the candidates returned by [Suggest].
const MaxSuggestions = 3

// Suggest returns up to [MaxSuggestions] candidates that fuzzy-match word,
// best match first.
func Suggest(word string, candidates []string) []string {
	if word == "" || len(candidates) == 0 {
		return nil
	}

	matches := fuzzy.Find(word, candidates)
	if len(matches) > MaxSuggestions {
		matches = matches[:MaxSuggestions]
	}

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Str
	}

	return out
}
