package portal

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	authdomain "github.com/Apurer/pawmatch/internal/domains/auth/domain"
	"github.com/Apurer/pawmatch/internal/platform/observability"
)

// NewRouter registers the portal routes on a fresh gin engine.
func NewRouter(api *API, metrics *observability.Collector, serviceName string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observeRequests(metrics))

	router.NoRoute(api.responder.NotFound)

	router.GET("/healthz", api.Health)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	session := router.Group("/", api.withVisitor)
	session.GET("/auth", api.LoginForm)
	session.POST("/auth/login", api.Login)

	protected := session.Group("/", api.requireLogin)
	protected.GET("/search", api.Search)
	protected.POST("/search/breeds/:breed/toggle", api.ToggleBreed)
	protected.POST("/search/zip-codes", api.AddZipCode)
	protected.DELETE("/search/zip-codes/:zip", api.RemoveZipCode)
	protected.PUT("/search/age", api.SetAgeRange)
	protected.PUT("/search/sort", api.SetSort)
	protected.PUT("/search/size", api.SetPageSize)
	protected.DELETE("/search/filters", api.ClearFilters)
	protected.POST("/search/next", api.NextPage)
	protected.POST("/search/prev", api.PrevPage)
	protected.POST("/selection/:id/toggle", api.ToggleSelection)
	protected.DELETE("/selection", api.ClearSelection)
	protected.POST("/match", api.Match)

	return router
}

// withVisitor attaches the visitor, issues the cookie for new sessions and
// persists a snapshot once the handler is done.
func (api *API) withVisitor(c *gin.Context) {
	ctx := c.Request.Context()
	v, created, err := api.sessions.Acquire(ctx, c.Request)
	if err != nil {
		api.responder.InternalError(c, "failed to start session")
		c.Abort()
		return
	}
	if created {
		if err := api.sessions.Issue(c.Writer, v); err != nil {
			api.responder.InternalError(c, "failed to issue session cookie")
			c.Abort()
			return
		}
	}
	c.Set(visitorKey, v)
	c.Next()

	if err := api.sessions.Persist(ctx, v); err != nil {
		api.logger.LogAttrs(ctx, slog.LevelWarn, "failed to persist portal session",
			slog.String("session.id", v.ID), slog.String("error", err.Error()))
	}
}

// requireLogin enters the gate for the protected view. An unauthenticated
// visitor is sent to the login page with the requested path as returnUrl.
func (api *API) requireLogin(c *gin.Context) {
	v := visitor(c)
	path := authdomain.DefaultLandingPath
	if c.Request.Method == http.MethodGet {
		path = c.Request.URL.RequestURI()
	}
	decision := v.Workspace.Gate.Enter(c.Request.Context(), path)
	if decision.State != authdomain.GateAuthenticated {
		location := authdomain.LoginPath
		if decision.Redirect != nil {
			location = decision.Redirect.Location()
		}
		api.responder.Redirect(c, location)
		c.Abort()
		return
	}
	c.Next()
}

func observeRequests(metrics *observability.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(started))
	}
}
