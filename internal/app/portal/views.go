package portal

import (
	dogsapp "github.com/Apurer/pawmatch/internal/domains/dogs/application"
	dogsdomain "github.com/Apurer/pawmatch/internal/domains/dogs/domain"
)

type loginRequest struct {
	Name      string `json:"name" form:"name"`
	Email     string `json:"email" form:"email"`
	ReturnURL string `json:"returnUrl" form:"returnUrl"`
}

type zipCodeRequest struct {
	ZipCode string `json:"zipCode" form:"zipCode" binding:"required"`
}

type ageRequest struct {
	AgeMin *int `json:"ageMin"`
	AgeMax *int `json:"ageMax"`
}

type sortRequest struct {
	Sort string `json:"sort" form:"sort" binding:"required"`
}

type sizeRequest struct {
	Size int `json:"size" form:"size" binding:"required"`
}

type loginFormView struct {
	ReturnURL     string   `json:"returnUrl"`
	Authenticated bool     `json:"authenticated"`
	Fields        []string `json:"fields"`
}

type pageView struct {
	ResultIDs []string `json:"resultIds"`
	Total     int      `json:"total"`
	HasNext   bool     `json:"hasNext"`
	HasPrev   bool     `json:"hasPrev"`
}

type optionsView struct {
	Breeds    []string `json:"breeds"`
	Sorts     []string `json:"sorts"`
	PageSizes []int    `json:"pageSizes"`
}

type searchView struct {
	Criteria dogsdomain.Criteria `json:"criteria"`
	Page     pageView            `json:"page"`
	Dogs     []dogsdomain.Dog    `json:"dogs"`
	Selected []string            `json:"selected"`
	Options  optionsView         `json:"options"`
}

type matchView struct {
	MatchedID string          `json:"matchedId"`
	Dog       *dogsdomain.Dog `json:"dog,omitempty"`
	Message   string          `json:"message"`
}

func fromState(state dogsapp.BrowserState) searchView {
	return searchView{
		Criteria: state.Criteria,
		Page: pageView{
			ResultIDs: state.Page.ResultIDs,
			Total:     state.Page.Total,
			HasNext:   state.Page.HasNext(),
			HasPrev:   state.Page.HasPrev(),
		},
		Dogs:     state.Dogs,
		Selected: state.Selected,
		Options: optionsView{
			Breeds:    dogsdomain.BreedOptions,
			Sorts:     dogsdomain.SortOptions,
			PageSizes: dogsdomain.PageSizeOptions,
		},
	}
}

func fromOutcome(o *dogsdomain.MatchOutcome) matchView {
	return matchView{MatchedID: o.MatchedID, Dog: o.Dog, Message: o.Message()}
}
