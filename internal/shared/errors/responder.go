package errors

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the media type of every error body the portal writes.
const ContentTypeProblemJSON = "application/problem+json"

// ErrorMapper turns a domain error into a problem. It reports false for
// errors it does not recognise.
type ErrorMapper func(err error) (ProblemDetail, bool)

// Responder writes problem+json bodies. Errors are offered to the mappers in
// order; an error no mapper claims becomes a 500.
type Responder struct {
	baseURI string
	mappers []ErrorMapper
}

// NewResponder prefixes relative problem types with baseURI when it is set.
func NewResponder(baseURI string, mappers ...ErrorMapper) *Responder {
	return &Responder{baseURI: baseURI, mappers: mappers}
}

func (r *Responder) Respond(c *gin.Context, problem ProblemDetail) {
	if r.baseURI != "" && len(problem.Type) > 0 && problem.Type[0] == '/' {
		problem.Type = r.baseURI + problem.Type
	}
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.JSON(problem.Status, problem)
}

func (r *Responder) RespondError(c *gin.Context, err error) {
	for _, mapper := range r.mappers {
		if problem, ok := mapper(err); ok {
			r.Respond(c, problem)
			return
		}
	}
	var problem ProblemDetail
	if errors.As(err, &problem) {
		r.Respond(c, problem)
		return
	}
	r.Respond(c, ErrInternal.WithDetail(err.Error()))
}

func (r *Responder) BadRequest(c *gin.Context, detail string) {
	r.Respond(c, ErrBadRequest.WithDetail(detail))
}

func (r *Responder) InternalError(c *gin.Context, detail string) {
	r.Respond(c, ErrInternal.WithDetail(detail))
}

// NotFound answers a request no route matched.
func (r *Responder) NotFound(c *gin.Context) {
	r.Respond(c, NewRouteNotFoundProblem(c.Request.Method, c.Request.URL.Path))
}

// Redirect sends a See Other to location with a login-required body.
func (r *Responder) Redirect(c *gin.Context, location string) {
	c.Header("Location", location)
	r.Respond(c, NewLoginRequiredProblem(location))
}
