package router

import (
	"inpstories/internal/auth"
	"inpstories/internal/config"
	"inpstories/internal/handlers"
	"inpstories/internal/logger"
	"inpstories/internal/middleware"
	"inpstories/internal/realtime"
	"inpstories/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

type Deps struct {
	Config       *config.Config
	DB           *gorm.DB
	Tokens       *auth.JWTManager
	Auth         *services.AuthService
	Testimonials *services.TestimonialService
	Comments     *services.CommentService

	// Hub serves /socket. Events receives the REST mutation events and defaults to Hub.
	Hub    *realtime.Hub
	Events handlers.Broadcaster
}

// New builds the engine with the middleware chain and every route.
func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Metrics())
	r.Use(middleware.RequestLogger(logger.WithComponent("http")))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:   []string{d.Config.FrontendURL},
		AllowCredentials: true,
	}))
	r.Use(middleware.LoadUser(d.Tokens, d.Auth))

	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	verbose := d.Config.IsDevelopment()
	events := d.Events
	if events == nil && d.Hub != nil {
		events = d.Hub
	}
	if events == nil {
		events = handlers.NopBroadcaster{}
	}

	systemHandler := handlers.NewSystemHandler(d.DB)
	authHandler := handlers.NewAuthHandler(d.Auth, verbose)
	testimonialHandler := handlers.NewTestimonialHandler(d.Testimonials, events, verbose)
	commentHandler := handlers.NewCommentHandler(d.Comments, events, verbose)

	r.GET("/", systemHandler.Banner)
	r.GET("/healthz", systemHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if d.Hub != nil {
		realtimeHandler := handlers.NewRealtimeHandler(d.Hub, []string{d.Config.FrontendURL}, verbose)
		r.GET("/socket", realtimeHandler.Connect)
	}

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.GET("/me", middleware.AuthRequired(), authHandler.Me)
	}

	testimonials := api.Group("/testimonials")
	{
		testimonials.GET("", testimonialHandler.List)
		testimonials.GET("/:id", testimonialHandler.Get)
	}
	authedTestimonials := testimonials.Group("", middleware.AuthRequired())
	{
		authedTestimonials.POST("", testimonialHandler.Create)
		authedTestimonials.POST("/:id/like", testimonialHandler.ToggleLike)
		authedTestimonials.DELETE("/:id", testimonialHandler.Delete)
	}

	comments := api.Group("/comments")
	{
		comments.GET("/testimonial/:id", commentHandler.ListForTestimonial)
	}
	authedComments := comments.Group("", middleware.AuthRequired())
	{
		authedComments.POST("", commentHandler.Create)
		authedComments.POST("/:id/like", commentHandler.ToggleLike)
		authedComments.DELETE("/:id", commentHandler.Delete)
	}
}
