package corpus

import (
	"encoding/json"
	"fmt"
	"io"
)

type caseJSON struct {
	Value     *string  `json:"value"`
	Category  Category `json:"category"`
	Rationale string   `json:"rationale"`
}

// Load reads a corpus from a JSON array of {"value", "category", "rationale"} objects.
// "value" is required; it may be the empty string.
func Load(r io.Reader) (*Corpus, error) {
	var items []caseJSON
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("%w: malformed corpus JSON: %w", ErrCorpusBuild, err)
	}
	cases := make([]Case, 0, len(items))
	for i, item := range items {
		if item.Value == nil {
			return nil, fmt.Errorf("%w: item %d has no value", ErrCorpusBuild, i)
		}
		if _, err := item.Category.Outcome(); err != nil {
			return nil, fmt.Errorf("%w: item %d: %w", ErrCorpusBuild, i, err)
		}
		cases = append(cases, NewCase(item.Category, *item.Value, item.Rationale))
	}
	return New(cases...)
}
