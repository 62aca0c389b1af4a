package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"inventory/api/internal/auth"
	"inventory/api/internal/catalog"
	"inventory/api/internal/config"
	"inventory/api/internal/directory"
	"inventory/api/internal/feed"
	"inventory/api/internal/middleware"
	"inventory/api/internal/photo"
	"inventory/api/internal/provision"
	"inventory/api/internal/repository"
	"inventory/api/internal/storage"
)

type HandlerSet struct {
	log       zerolog.Logger
	cfg       *config.AppConfig
	db        *pgxpool.Pool
	cache     *redis.Client
	catalog   *catalog.Service
	directory *directory.Service
	resolver  *auth.Resolver
	items     *repository.ItemRepository
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, store *storage.ObjectStore, cfg *config.AppConfig) HandlerSet {
	itemRepo := repository.NewItemRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	resolver := auth.NewResolver(profileRepo, log)
	pipeline := photo.NewPipeline(store, cfg.Photo.MaxWidth, cfg.Photo.Quality, log)
	publisher := feed.NewPublisher(cache, log)
	provisioner := provision.NewClient(cfg.Provision)

	catalogSvc := catalog.NewService(itemRepo, resolver, pipeline, publisher, log)
	directorySvc := directory.NewService(profileRepo, resolver, provisioner, publisher, log)

	return HandlerSet{
		log:       log,
		cfg:       cfg,
		db:        db,
		cache:     cache,
		catalog:   catalogSvc,
		directory: directorySvc,
		resolver:  resolver,
		items:     itemRepo,
	}
}

// Catalog exposes the catalog service so the change feed listener can
// drive reloads.
func (h HandlerSet) Catalog() *catalog.Service {
	return h.catalog
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	v1.Use(middleware.Identity(h.cfg))
	{
		v1.GET("/me", h.Me)

		items := v1.Group("/items")
		items.GET("", h.ListItems)
		items.GET("/suggest", h.SuggestItems)
		items.GET("/export", h.ExportItems)
		items.POST("", h.CreateItem)
		items.PUT("/:id", h.UpdateItem)
		items.DELETE("/:id", h.DeleteItem)

		admin := v1.Group("/admin")
		admin.GET("/profiles", h.ListProfiles)
		admin.PATCH("/profiles/:id", h.UpdateProfile)
		admin.DELETE("/profiles/:id", h.RemoveProfile)
		admin.POST("/invites", h.Invite)
	}
}
