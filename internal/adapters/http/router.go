package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Composite/internal/adapters/livekit"
	"github.com/dkeye/Composite/internal/adapters/signal"
	"github.com/dkeye/Composite/internal/app/orch"
	"github.com/dkeye/Composite/internal/config"
)

const (
	sessionName    = "CompositeSessions"
	clientTokenKey = "client_token"
	defaultMaxAge  = 3600 * 24 * 7
)

type Deps struct {
	Orch    *orch.Orchestrator
	WS      *signal.StateWSController
	Limiter *signal.IntentRateLimiter
	// LiveKit is optional; the webhook and token routes are left out without it.
	LiveKit *livekit.Hub
}

func genClientToken() string {
	idStr := uuid.NewString()
	return idStr
}

// ClientTokenMiddleware pins every browser to one session id kept in the
// signed cookie session.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		token, _ := session.Get(clientTokenKey).(string)
		if token == "" {
			token = genClientToken()
			session.Set(clientTokenKey, token)
			if err := session.Save(); err != nil {
				log.Error().Err(err).Str("module", "adapters.http").Msg("session save")
			}
		}
		c.Set(clientTokenKey, token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	maxAge := cfg.SessionMaxAge
	if maxAge <= 0 {
		maxAge = defaultMaxAge
	}
	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: maxAge, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	a := &api{orch: deps.Orch, limiter: deps.Limiter, livekit: deps.LiveKit}

	g := r.Group("/api")
	g.GET("/state", a.state)
	g.GET("/state/events", a.events)
	g.POST("/actions", a.action)
	g.GET("/participants", a.participants)
	g.PUT("/participants/:id/view-data", a.viewData)
	g.DELETE("/session", a.release)

	if deps.WS != nil {
		g.GET("/ws/state", func(c *gin.Context) {
			log.Info().Str("module", "adapters.http").Str("sid", c.GetString(clientTokenKey)).Msg("ws state endpoint hit")
			deps.WS.HandleState(ctx, c)
		})
	}
	if deps.LiveKit != nil {
		g.POST("/hooks/livekit", a.livekitHook)
		g.GET("/livekit/token", a.livekitToken)
	}

	return r
}

// Handler wraps the engine with the CORS policy of cfg.
func Handler(cfg *config.Config, r http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)
}
