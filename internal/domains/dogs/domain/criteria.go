package domain

import (
	"regexp"
	"slices"
	"strings"
)

const (
	DefaultSort     = "breed:asc"
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// BreedOptions is the fixed list offered as breed filters.
var BreedOptions = []string{
	"Labrador Retriever",
	"Golden Retriever",
	"German Shepherd",
	"Bulldog",
	"Poodle",
	"Beagle",
	"Rottweiler",
	"Yorkshire Terrier",
	"Dachshund",
	"Siberian Husky",
}

// SortOptions lists the supported sort keys.
var SortOptions = []string{
	"breed:asc", "breed:desc",
	"name:asc", "name:desc",
	"age:asc", "age:desc",
}

// PageSizeOptions lists the page sizes offered to visitors.
var PageSizeOptions = []int{10, 25, 50, 100}

var zipCodePattern = regexp.MustCompile(`^\d{5}$`)

// Criteria is an immutable search snapshot. Every method returns a new
// value and never aliases the receiver's slices.
type Criteria struct {
	Breeds   []string `json:"breeds"`
	ZipCodes []string `json:"zipCodes"`
	AgeMin   *int     `json:"ageMin,omitempty"`
	AgeMax   *int     `json:"ageMax,omitempty"`
	Sort     string   `json:"sort"`
	Size     int      `json:"size"`
}

// DefaultCriteria is the state after load and after clearing filters.
func DefaultCriteria() Criteria {
	return Criteria{
		Breeds:   []string{},
		ZipCodes: []string{},
		Sort:     DefaultSort,
		Size:     DefaultPageSize,
	}
}

// Clone returns a deep copy.
func (c Criteria) Clone() Criteria {
	out := c
	out.Breeds = append([]string{}, c.Breeds...)
	out.ZipCodes = append([]string{}, c.ZipCodes...)
	out.AgeMin = cloneInt(c.AgeMin)
	out.AgeMax = cloneInt(c.AgeMax)
	return out
}

// Normalize fills zero values with defaults and drops duplicates.
func (c Criteria) Normalize() Criteria {
	out := c.Clone()
	out.Breeds = dedupe(out.Breeds)
	out.ZipCodes = dedupe(out.ZipCodes)
	if out.Sort == "" {
		out.Sort = DefaultSort
	}
	if out.Size <= 0 {
		out.Size = DefaultPageSize
	}
	return out
}

// HasBreed reports whether breed is an active filter.
func (c Criteria) HasBreed(breed string) bool {
	return slices.Contains(c.Breeds, breed)
}

// ToggleBreed adds breed when absent and removes it when present.
func (c Criteria) ToggleBreed(breed string) Criteria {
	out := c.Clone()
	breed = strings.TrimSpace(breed)
	if breed == "" {
		return out
	}
	if i := slices.Index(out.Breeds, breed); i >= 0 {
		out.Breeds = slices.Delete(out.Breeds, i, i+1)
		return out
	}
	out.Breeds = append(out.Breeds, breed)
	return out
}

// AddZipCode appends a five digit zip code. Duplicates leave the criteria unchanged.
func (c Criteria) AddZipCode(zip string) (Criteria, error) {
	zip = strings.TrimSpace(zip)
	if !ValidZipCode(zip) {
		return c.Clone(), ErrInvalidZipCode
	}
	out := c.Clone()
	if !slices.Contains(out.ZipCodes, zip) {
		out.ZipCodes = append(out.ZipCodes, zip)
	}
	return out, nil
}

// RemoveZipCode drops zip if present.
func (c Criteria) RemoveZipCode(zip string) Criteria {
	out := c.Clone()
	if i := slices.Index(out.ZipCodes, strings.TrimSpace(zip)); i >= 0 {
		out.ZipCodes = slices.Delete(out.ZipCodes, i, i+1)
	}
	return out
}

// WithAgeRange sets either bound. nil clears it. An inverted range is
// passed through as is.
func (c Criteria) WithAgeRange(ageMin, ageMax *int) (Criteria, error) {
	if (ageMin != nil && *ageMin < 0) || (ageMax != nil && *ageMax < 0) {
		return c.Clone(), ErrInvalidAge
	}
	out := c.Clone()
	out.AgeMin = cloneInt(ageMin)
	out.AgeMax = cloneInt(ageMax)
	return out, nil
}

// WithSort replaces the sort key.
func (c Criteria) WithSort(sort string) (Criteria, error) {
	if !slices.Contains(SortOptions, sort) {
		return c.Clone(), ErrInvalidSort
	}
	out := c.Clone()
	out.Sort = sort
	return out, nil
}

// WithSize replaces the page size.
func (c Criteria) WithSize(size int) (Criteria, error) {
	if size < 1 || size > MaxPageSize {
		return c.Clone(), ErrInvalidPageSize
	}
	out := c.Clone()
	out.Size = size
	return out, nil
}

// ValidZipCode reports whether zip is exactly five digits.
func ValidZipCode(zip string) bool {
	return zipCodePattern.MatchString(zip)
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
