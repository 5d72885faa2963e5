package naming

import (
	"github.com/jinzhu/inflection"
)

// Pluralize converts a singular word to its plural form.
// Custom overrides win over the inflection rules.
func (n *Namer) Pluralize(word string) string {
	if override, ok := lookupOverride(n.config.PluralOverrides, word); ok {
		return override
	}
	return inflection.Plural(word)
}

// Singularize converts a plural word to its singular form.
// Custom overrides win over the inflection rules.
func (n *Namer) Singularize(word string) string {
	if override, ok := lookupOverride(n.config.SingularOverrides, word); ok {
		return override
	}
	return inflection.Singular(word)
}

// lookupOverride matches the word exactly, then with its first letter
// lowered, so "Person" and "person" share one configured override while the
// caller's leading case is kept.
func lookupOverride(overrides map[string]string, word string) (string, bool) {
	if len(overrides) == 0 || word == "" {
		return "", false
	}
	if override, ok := overrides[word]; ok {
		return override, true
	}
	lowered := lowerFirst(word)
	if override, ok := overrides[lowered]; ok {
		if lowered != word {
			return upperFirst(override), true
		}
		return override, true
	}
	return "", false
}
