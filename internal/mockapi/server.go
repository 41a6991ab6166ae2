// Package mockapi implements an in-memory storefront REST backend for local
// development and end-to-end tests of the terminal clients.
package mockapi

import (
	"math"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/thomas/lookbook-terminal/internal/telemetry"
)

// Options configures a Server.
type Options struct {
	JWTSecret    string
	TokenTTL     time.Duration
	LoginRPS     float64
	PasswordCost int // bcrypt cost; defaults to bcrypt.DefaultCost
	Logger       *logrus.Logger
}

// Server is the mock backend.
type Server struct {
	opts    Options
	logger  *logrus.Logger
	store   *store
	limiter *rate.Limiter
	nowFunc func() time.Time
}

// New creates a server seeded with the embedded sample catalog.
func New(opts Options) (*Server, error) {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.LoginRPS <= 0 {
		opts.LoginRPS = 5
	}
	if opts.PasswordCost == 0 {
		opts.PasswordCost = bcrypt.DefaultCost
	}
	if opts.Logger == nil {
		opts.Logger = logrus.New()
		opts.Logger.SetFormatter(&logrus.JSONFormatter{})
	}

	st, err := loadStore(opts.PasswordCost)
	if err != nil {
		return nil, err
	}

	burst := int(math.Ceil(opts.LoginRPS))
	return &Server{
		opts:    opts,
		logger:  opts.Logger,
		store:   st,
		limiter: rate.NewLimiter(rate.Limit(opts.LoginRPS), burst),
		nowFunc: time.Now,
	}, nil
}

// Router builds the gin engine. The REST API is served under /api and metrics under /metrics.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())
	router.Use(telemetry.GinMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}))

	router.GET("/metrics", gin.WrapH(telemetry.Handler()))

	routes := router.Group("/api")
	routes.Use(s.authenticate())

	routes.GET("/health", s.health)

	// Auth
	routes.POST("/auth/login", s.login)
	routes.POST("/auth/register", s.register)
	routes.GET("/auth/profile", s.requireUser(), s.profile)
	routes.PUT("/auth/profile", s.requireUser(), s.updateProfile)
	routes.PUT("/auth/password", s.requireUser(), s.changePassword)

	// Catalog
	routes.GET("/products", s.listProducts)
	routes.GET("/products/:id", s.getProduct)
	routes.POST("/products/batch", s.batchProducts)
	routes.POST("/products", s.requireAdmin(), s.createProduct)
	routes.PUT("/products/:id", s.requireAdmin(), s.updateProduct)
	routes.DELETE("/products/:id", s.requireAdmin(), s.deleteProduct)

	routes.GET("/categories", s.listCategories)
	routes.POST("/categories", s.requireAdmin(), s.createCategory)
	routes.PUT("/categories/:id", s.requireAdmin(), s.updateCategory)
	routes.DELETE("/categories/:id", s.requireAdmin(), s.deleteCategory)

	// Lookbook
	routes.GET("/posts", s.listPosts)
	routes.GET("/posts/:id", s.getPost)
	routes.POST("/posts", s.requireAdmin(), s.createPost)
	routes.PUT("/posts/:id", s.requireAdmin(), s.updatePost)
	routes.DELETE("/posts/:id", s.requireAdmin(), s.deletePost)
	routes.GET("/posts/:id/comments", s.listComments)
	routes.POST("/posts/:id/comments", s.requireUser(), s.addComment)
	routes.DELETE("/posts/:id/comments/:commentId", s.requireAdmin(), s.deleteComment)
	routes.POST("/posts/:id/reactions", s.react)

	routes.GET("/content/:key", s.getContent)
	routes.PUT("/content/:key", s.requireAdmin(), s.putContent)

	// Orders
	routes.POST("/orders", s.createOrder)
	routes.GET("/orders/mine", s.requireUser(), s.myOrders)
	routes.GET("/orders", s.requireAdmin(), s.listOrders)
	routes.GET("/orders/number/:number", s.requireUser(), s.getOrderByNumber)
	routes.GET("/orders/:id", s.requireUser(), s.getOrder)
	routes.PATCH("/orders/:id/status", s.requireAdmin(), s.updateOrderStatus)

	// Admin and misc
	routes.GET("/admin/stats", s.requireAdmin(), s.stats)
	routes.GET("/admin/orders/export", s.requireAdmin(), s.exportOrders)
	routes.POST("/contact", s.sendContact)
	routes.GET("/contact", s.requireAdmin(), s.listMessages)

	routes.POST("/uploads/image", s.requireAdmin(), s.uploadFiles("image", false))
	routes.POST("/uploads/images", s.requireAdmin(), s.uploadFiles("images", true))
	routes.POST("/uploads/video", s.requireAdmin(), s.uploadFiles("video", false))
	routes.POST("/uploads/url", s.requireAdmin(), s.uploadFromURL)

	return router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := s.logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Error("request failed")
			return
		}
		entry.Debug("request")
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": "mock"})
}

// fail writes an error body the API client understands.
func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}
