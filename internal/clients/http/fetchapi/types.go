package fetchapi

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SearchParams carries the query parameters of GET /dogs/search.
type SearchParams struct {
	Breeds   []string
	ZipCodes []string
	AgeMin   *int
	AgeMax   *int
	Sort     *string
	Size     *int
	From     *string
}

// SearchResponse is the body returned by GET /dogs/search.
type SearchResponse struct {
	ResultIDs []string `json:"resultIds"`
	Total     int      `json:"total"`
	Next      *string  `json:"next,omitempty"`
	Prev      *string  `json:"prev,omitempty"`
}

// Dog is a single record returned by POST /dogs.
type Dog struct {
	ID      string `json:"id"`
	Img     string `json:"img"`
	Name    string `json:"name"`
	Age     int    `json:"age"`
	ZipCode string `json:"zip_code"`
	Breed   string `json:"breed"`
}

// MatchResponse is the body returned by POST /dogs/match.
type MatchResponse struct {
	Match string `json:"match"`
}

type errorBody struct {
	Message *string `json:"message,omitempty"`
}
