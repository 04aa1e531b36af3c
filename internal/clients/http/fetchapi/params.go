package fetchapi

import (
	"fmt"
	"net/url"

	"github.com/oapi-codegen/runtime"
)

// Query encodes the parameters as form/explode query values. Multi-valued
// filters are repeated: breeds=A&breeds=B. Unset fields are omitted.
func (p SearchParams) Query() (url.Values, error) {
	values := url.Values{}
	add := func(name string, value any) error {
		fragment, err := runtime.StyleParamWithLocation("form", true, name, runtime.ParamLocationQuery, value)
		if err != nil {
			return fmt.Errorf("style %s: %w", name, err)
		}
		parsed, err := url.ParseQuery(fragment)
		if err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		for key, vals := range parsed {
			for _, v := range vals {
				values.Add(key, v)
			}
		}
		return nil
	}

	if len(p.Breeds) > 0 {
		if err := add("breeds", p.Breeds); err != nil {
			return nil, err
		}
	}
	if len(p.ZipCodes) > 0 {
		if err := add("zipCodes", p.ZipCodes); err != nil {
			return nil, err
		}
	}
	if p.AgeMin != nil {
		if err := add("ageMin", *p.AgeMin); err != nil {
			return nil, err
		}
	}
	if p.AgeMax != nil {
		if err := add("ageMax", *p.AgeMax); err != nil {
			return nil, err
		}
	}
	if p.Sort != nil && *p.Sort != "" {
		if err := add("sort", *p.Sort); err != nil {
			return nil, err
		}
	}
	if p.From != nil && *p.From != "" {
		if err := add("from", *p.From); err != nil {
			return nil, err
		}
	}
	if p.Size != nil && *p.Size > 0 {
		if err := add("size", *p.Size); err != nil {
			return nil, err
		}
	}
	return values, nil
}
