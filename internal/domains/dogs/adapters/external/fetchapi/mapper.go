package fetchapi

import (
	fetchclient "github.com/Apurer/pawmatch/internal/clients/http/fetchapi"
	"github.com/Apurer/pawmatch/internal/domains/dogs/domain"
)

// ToSearchParams translates criteria and an optional cursor into query
// parameters. Empty filters are omitted.
func ToSearchParams(criteria domain.Criteria, cursor string) fetchclient.SearchParams {
	c := criteria.Normalize()
	params := fetchclient.SearchParams{
		Breeds:   c.Breeds,
		ZipCodes: c.ZipCodes,
		AgeMin:   c.AgeMin,
		AgeMax:   c.AgeMax,
		Sort:     &c.Sort,
		Size:     &c.Size,
	}
	if cursor != "" {
		params.From = &cursor
	}
	return params
}

// FromSearchResponse builds a page, extracting cursors from the next/prev links.
func FromSearchResponse(resp *fetchclient.SearchResponse) *domain.Page {
	if resp == nil {
		page := domain.EmptyPage()
		return &page
	}
	ids := append([]string{}, resp.ResultIDs...)
	return &domain.Page{
		ResultIDs: ids,
		Total:     resp.Total,
		Next:      domain.NextCursor(resp.Next),
		Prev:      domain.PrevCursor(resp.Prev),
	}
}

// FromDogs converts wire records.
func FromDogs(records []fetchclient.Dog) []domain.Dog {
	dogs := make([]domain.Dog, 0, len(records))
	for _, r := range records {
		dogs = append(dogs, domain.Dog{
			ID:       r.ID,
			ImageURL: r.Img,
			Name:     r.Name,
			AgeYears: r.Age,
			ZipCode:  r.ZipCode,
			Breed:    r.Breed,
		})
	}
	return dogs
}
