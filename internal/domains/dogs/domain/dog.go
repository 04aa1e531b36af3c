package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// Dog is an adoptable animal as returned by the service.
type Dog struct {
	ID       string `json:"id"`
	ImageURL string `json:"img"`
	Name     string `json:"name"`
	AgeYears int    `json:"age"`
	ZipCode  string `json:"zipCode"`
	Breed    string `json:"breed"`
}

// Page is one page of search results. Next and Prev are nil when there is no
// page in that direction.
type Page struct {
	ResultIDs []string `json:"resultIds"`
	Total     int      `json:"total"`
	Next      *Cursor  `json:"next,omitempty"`
	Prev      *Cursor  `json:"prev,omitempty"`
}

// Cursor positions a search. An empty From addresses the first page.
type Cursor struct {
	From string `json:"from"`
}

// EmptyPage is the cleared result state.
func EmptyPage() Page {
	return Page{ResultIDs: []string{}}
}

func (p Page) HasNext() bool { return p.Next != nil }
func (p Page) HasPrev() bool { return p.Prev != nil }

// NextCursor reads a next link such as "/dogs/search?size=25&from=25". A
// link without a from parameter yields no next page.
func NextCursor(link *string) *Cursor {
	if link == nil {
		return nil
	}
	from, ok := fromParam(*link)
	if !ok || from == "" {
		return nil
	}
	return &Cursor{From: from}
}

// PrevCursor reads a prev link. A link without a from parameter still
// yields a cursor, addressing the first page.
func PrevCursor(link *string) *Cursor {
	if link == nil || strings.TrimSpace(*link) == "" {
		return nil
	}
	from, _ := fromParam(*link)
	return &Cursor{From: from}
}

func fromParam(link string) (string, bool) {
	_, rawQuery, ok := strings.Cut(strings.TrimSpace(link), "?")
	if !ok {
		return "", false
	}
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "", false
	}
	return values.Get("from"), values.Has("from")
}

// MatchResult is the service's choice out of the submitted ids.
type MatchResult struct {
	MatchedID string `json:"matchedId"`
}

// MatchOutcome resolves a match against the dogs currently shown. Dog is nil
// when the matched id is not on the current page.
type MatchOutcome struct {
	MatchedID string `json:"matchedId"`
	Dog       *Dog   `json:"dog,omitempty"`
}

// Available reports whether the matched dog's details are known.
func (o MatchOutcome) Available() bool { return o.Dog != nil }

// Message is the notification shown after a successful match.
func (o MatchOutcome) Message() string {
	if o.Dog == nil {
		return fmt.Sprintf("You've been matched with dog %s! Its details are not on the current page.", o.MatchedID)
	}
	return fmt.Sprintf("You've been matched with %s! Contact the shelter to proceed with adoption.", o.Dog.Name)
}
