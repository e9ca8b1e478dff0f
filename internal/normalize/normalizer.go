package normalize

import "fmt"

// Normalizer maps raw sheet labels to canonical field names through a static
// correction table. It is immutable after construction and safe for
// concurrent use.
type Normalizer struct {
	corrections map[string]string
}

// NewNormalizer builds the correction table from canonical names and their
// known spellings. Keys are stored in cleaned form, so a variant matches
// regardless of zero-width joiners, Arabic letter forms or digit glyphs.
// Every canonical name also maps to itself.
func NewNormalizer(variants map[string][]string) (*Normalizer, error) {
	corrections := make(map[string]string)
	add := func(raw, canonical string) error {
		key, ok := Label(raw)
		if !ok {
			return fmt.Errorf("empty label for %q", canonical)
		}
		if prev, exists := corrections[key]; exists && prev != canonical {
			return fmt.Errorf("label %q maps to both %q and %q", key, prev, canonical)
		}
		corrections[key] = canonical
		return nil
	}

	for canonical, spellings := range variants {
		if err := add(canonical, canonical); err != nil {
			return nil, err
		}
		for _, s := range spellings {
			if err := add(s, canonical); err != nil {
				return nil, err
			}
		}
	}

	return &Normalizer{corrections: corrections}, nil
}

// Normalize returns the canonical name for a raw label, or the cleaned label
// unchanged when the table does not know it. The boolean is false when the
// label is absent after cleaning.
func (n *Normalizer) Normalize(raw string) (string, bool) {
	label, ok := Label(raw)
	if !ok {
		return "", false
	}
	if canonical, found := n.corrections[label]; found {
		return canonical, true
	}
	return label, true
}

// Len returns the number of known spellings, canonical names included
func (n *Normalizer) Len() int {
	return len(n.corrections)
}
