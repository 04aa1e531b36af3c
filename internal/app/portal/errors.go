package portal

import (
	"errors"

	fetchclient "github.com/Apurer/pawmatch/internal/clients/http/fetchapi"
	authapp "github.com/Apurer/pawmatch/internal/domains/auth/application"
	authdomain "github.com/Apurer/pawmatch/internal/domains/auth/domain"
	dogsdomain "github.com/Apurer/pawmatch/internal/domains/dogs/domain"
	sharederrors "github.com/Apurer/pawmatch/internal/shared/errors"
)

func newResponder() *sharederrors.Responder {
	return sharederrors.NewResponder("",
		mapLoginError,
		mapDogsError,
		mapUpstreamError,
	)
}

func mapLoginError(err error) (sharederrors.ProblemDetail, bool) {
	if errors.Is(err, authapp.ErrInvalidInput) {
		field := "email"
		if errors.Is(err, authdomain.ErrEmptyName) {
			field = "name"
		}
		msg := authapp.UserMessage(err)
		return sharederrors.NewValidationProblem(map[string]string{field: msg}).WithDetail(msg), true
	}
	var authErr *authdomain.AuthError
	if !errors.As(err, &authErr) {
		return sharederrors.ProblemDetail{}, false
	}
	var problem sharederrors.ProblemDetail
	switch authErr.Kind {
	case authdomain.AuthMalformedInput:
		problem = sharederrors.ErrBadRequest
	case authdomain.AuthRateLimited:
		problem = sharederrors.ErrRateLimited
	case authdomain.AuthServerError:
		problem = sharederrors.ErrUpstream
	case authdomain.AuthConnectivity:
		problem = sharederrors.ErrUnavailable
	default:
		problem = sharederrors.ErrAuthFailed
	}
	return problem.WithDetail(authErr.UserMessage()).WithExtension("kind", authErr.Kind.String()), true
}

func mapDogsError(err error) (sharederrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, dogsdomain.ErrInvalidZipCode):
		return sharederrors.NewValidationProblem(map[string]string{"zipCode": dogsdomain.UserMessage(err)}).WithDetail(dogsdomain.UserMessage(err)), true
	case errors.Is(err, dogsdomain.ErrInvalidAge):
		return sharederrors.NewValidationProblem(map[string]string{"age": dogsdomain.UserMessage(err)}).WithDetail(dogsdomain.UserMessage(err)), true
	case errors.Is(err, dogsdomain.ErrInvalidSort),
		errors.Is(err, dogsdomain.ErrInvalidPageSize),
		errors.Is(err, dogsdomain.ErrEmptySelection),
		errors.Is(err, dogsdomain.ErrNoNextPage),
		errors.Is(err, dogsdomain.ErrNoPrevPage):
		return sharederrors.ErrBadRequest.WithDetail(dogsdomain.UserMessage(err)), true
	}
	var qe *dogsdomain.QueryError
	if errors.As(err, &qe) {
		problem := sharederrors.ErrUpstream
		if errors.Is(err, fetchclient.ErrUnavailable) {
			problem = sharederrors.ErrUnavailable
		}
		return problem.WithDetail(qe.UserMessage()).WithExtension("op", qe.Op), true
	}
	return sharederrors.ProblemDetail{}, false
}

func mapUpstreamError(err error) (sharederrors.ProblemDetail, bool) {
	if errors.Is(err, fetchclient.ErrUnavailable) {
		return sharederrors.ErrUnavailable.WithDetail("The dog service is unavailable. Please try again."), true
	}
	return sharederrors.ProblemDetail{}, false
}

// needsLogin reports errors answered with a redirect to the login page.
func needsLogin(err error) bool {
	return errors.Is(err, authdomain.ErrSessionExpired) || errors.Is(err, dogsdomain.ErrNotAuthenticated)
}
