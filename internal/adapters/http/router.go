package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rafaelleal24/catalog/docs"
	"github.com/rafaelleal24/catalog/internal/adapters/config"
	"github.com/rafaelleal24/catalog/internal/adapters/http/controllers"
	"github.com/rafaelleal24/catalog/internal/adapters/http/handlers"
	"github.com/rafaelleal24/catalog/internal/adapters/http/middleware"
	"github.com/rafaelleal24/catalog/internal/core/serviceerrors"
	"github.com/swaggo/swag"
)

// StaticDir is a directory of files served read-only under PublicPrefix.
type StaticDir interface {
	FileSystem() http.FileSystem
	PublicPrefix() string
}

type Router struct {
	healthController  *controllers.HealthController
	productController *controllers.ProductController
	uploads           StaticDir
	rateLimiter       middleware.RateLimiter
	cfg               *config.Config
}

// NewRouter wires the HTTP surface. rateLimiter may be nil, in which case
// product creation is not throttled.
func NewRouter(
	healthController *controllers.HealthController,
	productController *controllers.ProductController,
	uploads StaticDir,
	rateLimiter middleware.RateLimiter,
	cfg *config.Config,
) *Router {
	return &Router{
		healthController:  healthController,
		productController: productController,
		uploads:           uploads,
		rateLimiter:       rateLimiter,
		cfg:               cfg,
	}
}

func (r *Router) SetupRoutes(router *gin.Engine) {
	devMode := r.cfg.App.IsDevelopment()

	router.SetHTMLTemplate(handlers.Templates())
	router.Use(
		middleware.LogRequest(),
		handlers.ErrorChain(handlers.LogError, handlers.ValidationErrors, handlers.DefaultError(devMode)),
	)

	router.GET("/health", r.healthController.Health)

	createProduct := []gin.HandlerFunc{r.productController.CreateProduct}
	if r.rateLimiter != nil {
		limit := middleware.RateLimit(r.rateLimiter, r.cfg.RateLimit.CreateProductLimit, r.cfg.RateLimit.Window)
		createProduct = append([]gin.HandlerFunc{limit}, createProduct...)
	}
	router.GET("/products", r.productController.GetAll)
	router.POST("/products", createProduct...)

	router.StaticFS(r.uploads.PublicPrefix(), r.uploads.FileSystem())

	if devMode {
		router.GET("/swagger/doc.json", serveAPIDoc)
	}

	router.NoRoute(func(c *gin.Context) {
		_ = c.Error(serviceerrors.NewNotFoundError("route not found"))
	})
}

// Engine returns a gin engine with every route registered.
func (r *Router) Engine() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	r.SetupRoutes(engine)
	return engine
}

func (r *Router) ListenAndServe(ctx context.Context, config config.HTTPConfig) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", config.BindInterface, config.Port),
		Handler:           r.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func serveAPIDoc(c *gin.Context) {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		_ = c.Error(serviceerrors.NewInternalError("api docs unavailable", err))
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
}
