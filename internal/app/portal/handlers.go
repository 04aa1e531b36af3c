package portal

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authdomain "github.com/Apurer/pawmatch/internal/domains/auth/domain"
	dogsapp "github.com/Apurer/pawmatch/internal/domains/dogs/application"
	sharederrors "github.com/Apurer/pawmatch/internal/shared/errors"
)

const visitorKey = "portal.visitor"

// API wires HTTP transport with the visitor workspaces.
type API struct {
	sessions  *Sessions
	responder *sharederrors.Responder
	logger    *slog.Logger
}

func NewAPI(sessions *Sessions, logger *slog.Logger) *API {
	if logger == nil {
		logger = sessions.logger
	}
	return &API{sessions: sessions, responder: newResponder(), logger: logger}
}

// Get /auth
// Describes the login form and where a successful login returns to.
func (api *API) LoginForm(c *gin.Context) {
	v := visitor(c)
	c.JSON(http.StatusOK, loginFormView{
		ReturnURL:     authdomain.SafeReturnURL(c.Query("returnUrl"), authdomain.DefaultLandingPath),
		Authenticated: v.Workspace.Gate.Authenticated(),
		Fields:        []string{"name", "email"},
	})
}

// Post /auth/login
// Logs in with name and email, then sends the visitor to the return path.
func (api *API) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	v := visitor(c)
	if err := v.Workspace.Auth.Login(c.Request.Context(), req.Name, req.Email); err != nil {
		api.responder.RespondError(c, err)
		return
	}
	target := authdomain.SafeReturnURL(req.ReturnURL, authdomain.DefaultLandingPath)
	c.Redirect(http.StatusSeeOther, target)
}

// Get /search
// Shows the current page of dogs.
func (api *API) Search(c *gin.Context) {
	api.respondState(c, visitor(c))
}

// Post /search/breeds/:breed/toggle
func (api *API) ToggleBreed(c *gin.Context) {
	api.mutate(c, func(ctx context.Context, b *dogsapp.Browser) error {
		return b.Query.ToggleBreed(ctx, c.Param("breed"))
	})
}

// Post /search/zip-codes
func (api *API) AddZipCode(c *gin.Context) {
	var req zipCodeRequest
	if err := c.ShouldBind(&req); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	api.mutate(c, func(ctx context.Context, b *dogsapp.Browser) error {
		return b.Query.AddZipCode(ctx, req.ZipCode)
	})
}

// Delete /search/zip-codes/:zip
func (api *API) RemoveZipCode(c *gin.Context) {
	api.mutate(c, func(ctx context.Context, b *dogsapp.Browser) error {
		return b.Query.RemoveZipCode(ctx, c.Param("zip"))
	})
}

// Put /search/age
func (api *API) SetAgeRange(c *gin.Context) {
	var req ageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	api.mutate(c, func(ctx context.Context, b *dogsapp.Browser) error {
		return b.Query.SetAgeRange(ctx, req.AgeMin, req.AgeMax)
	})
}

// Put /search/sort
func (api *API) SetSort(c *gin.Context) {
	var req sortRequest
	if err := c.ShouldBind(&req); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	api.mutate(c, func(ctx context.Context, b *dogsapp.Browser) error {
		return b.Query.SetSort(ctx, req.Sort)
	})
}

// Put /search/size
func (api *API) SetPageSize(c *gin.Context) {
	var req sizeRequest
	if err := c.ShouldBind(&req); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	api.mutate(c, func(ctx context.Context, b *dogsapp.Browser) error {
		return b.Query.SetPageSize(ctx, req.Size)
	})
}

// Delete /search/filters
func (api *API) ClearFilters(c *gin.Context) {
	api.mutate(c, func(ctx context.Context, b *dogsapp.Browser) error {
		return b.Query.Clear(ctx)
	})
}

// Post /search/next
func (api *API) NextPage(c *gin.Context) {
	api.mutate(c, func(ctx context.Context, b *dogsapp.Browser) error {
		return b.Query.NextPage(ctx)
	})
}

// Post /search/prev
func (api *API) PrevPage(c *gin.Context) {
	api.mutate(c, func(ctx context.Context, b *dogsapp.Browser) error {
		return b.Query.PrevPage(ctx)
	})
}

// Post /selection/:id/toggle
func (api *API) ToggleSelection(c *gin.Context) {
	v := visitor(c)
	v.Workspace.Browser.Results.ToggleSelection(c.Param("id"))
	api.respondState(c, v)
}

// Delete /selection
func (api *API) ClearSelection(c *gin.Context) {
	v := visitor(c)
	v.Workspace.Browser.Results.ClearSelection()
	api.respondState(c, v)
}

// Post /match
// Asks the service to pick one of the selected dogs.
func (api *API) Match(c *gin.Context) {
	v := visitor(c)
	outcome, err := v.Workspace.Browser.Matcher.Match(c.Request.Context())
	if err != nil {
		api.respondError(c, v, err)
		return
	}
	c.JSON(http.StatusOK, fromOutcome(outcome))
}

// Get /healthz
func (api *API) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": api.sessions.Live()})
}

func (api *API) mutate(c *gin.Context, fn func(context.Context, *dogsapp.Browser) error) {
	v := visitor(c)
	if err := fn(c.Request.Context(), v.Workspace.Browser); err != nil {
		api.respondError(c, v, err)
		return
	}
	api.respondState(c, v)
}

func (api *API) respondState(c *gin.Context, v *Visitor) {
	c.JSON(http.StatusOK, fromState(v.Workspace.Browser.State()))
}

func (api *API) respondError(c *gin.Context, v *Visitor, err error) {
	if needsLogin(err) {
		redirect := authdomain.NewRedirect(v.Workspace.Gate.ReturnURL())
		api.responder.Redirect(c, redirect.Location())
		return
	}
	api.logger.LogAttrs(c.Request.Context(), slog.LevelWarn, "portal request failed",
		slog.String("route", c.FullPath()), slog.String("error", err.Error()))
	api.responder.RespondError(c, err)
}

func visitor(c *gin.Context) *Visitor {
	return c.MustGet(visitorKey).(*Visitor)
}
