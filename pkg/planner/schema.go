package planner

import (
	"slices"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

var itemListSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	s, err := jsonschema.For[itemList](&jsonschema.ForOptions{})
	if err != nil {
		return nil, err
	}
	return strictSchema(s), nil
})

// strictSchema closes every object and marks every property required, as
// strict structured output demands. Nullable types come out of
// jsonschema.For as Types ["null", T]; they are dispatched on T.
func strictSchema(s *jsonschema.Schema) *jsonschema.Schema {
	if s == nil {
		return nil
	}
	typ := s.Type
	if typ == "" {
		for _, t := range s.Types {
			if t != "null" {
				typ = t
				break
			}
		}
	}
	switch typ {
	case "array":
		s.Items = strictSchema(s.Items)
	case "object":
		s.AdditionalProperties = &jsonschema.Schema{Not: &jsonschema.Schema{}}
		required := make([]string, 0, len(s.Properties))
		for name, prop := range s.Properties {
			required = append(required, name)
			s.Properties[name] = strictSchema(prop)
		}
		slices.Sort(required)
		s.Required = required
	}
	return s
}
