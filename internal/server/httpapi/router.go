// Package httpapi exposes the REST API: authentication, file management
// for signed-in users, public downloads and the administrative endpoints.
package httpapi

import (
	"context"
	"io"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/mycloud/internal/logging"
	"github.com/dmitrijs2005/mycloud/internal/server/config"
	"github.com/dmitrijs2005/mycloud/internal/server/models"
	"github.com/dmitrijs2005/mycloud/internal/server/users"
)

// UserService is the account surface the API needs; *users.Service
// implements it.
type UserService interface {
	Register(ctx context.Context, userName, email, firstName, password string) (*models.User, error)
	Login(ctx context.Context, userName, password string) (*users.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*users.TokenPair, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]*users.AccountInfo, error)
	SetAdmin(ctx context.Context, id int64, isAdmin bool) error
	Delete(ctx context.Context, id int64) error
}

// FileService is the file surface the API needs; *files.Service
// implements it.
type FileService interface {
	Create(ctx context.Context, ownerID int64, originalName string, payload []byte, comment string) (*models.File, error)
	ListForOwner(ctx context.Context, ownerID int64) ([]*models.File, error)
	UpdateComment(ctx context.Context, id int64, callerID int64, comment string) (*models.File, error)
	Delete(ctx context.Context, id int64, callerID int64, callerIsAdmin bool) error
	Resolve(ctx context.Context, identifier string) (io.ReadCloser, string, error)
}

type Router struct {
	users     UserService
	files     FileService
	logger    logging.Logger
	jwtSecret []byte
}

func NewRouter(userService UserService, fileService FileService, logger logging.Logger, cfg *config.Config) *Router {
	return &Router{
		users:     userService,
		files:     fileService,
		logger:    logger.With("module", "httpapi"),
		jwtSecret: []byte(cfg.SecretKey),
	}
}

// Engine builds the gin engine with all routes mounted.
func (r *Router) Engine() *gin.Engine {
	e := gin.New()
	e.Use(gin.Recovery())

	e.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	}))

	api := e.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/register", r.register)
		auth.POST("/login", r.login)
		auth.POST("/refresh", r.refresh)
	}

	// Downloads are public: the link is shareable by design.
	api.GET("/download/:identifier", r.download)

	protected := api.Group("", r.authMiddleware())
	{
		protected.GET("/filelist/", r.listFiles)
		protected.POST("/filelist/", r.uploadFile)
		protected.PATCH("/filelist/:id", r.updateFileComment)
		protected.DELETE("/filedelete/:id", r.deleteFile)
	}

	admin := api.Group("/admin", r.authMiddleware(), r.adminMiddleware())
	{
		admin.GET("/users/", r.listUsers)
		admin.GET("/users/:id/files/", r.listUserFiles)
		admin.PATCH("/users/:id", r.toggleAdmin)
		admin.DELETE("/users/:id", r.deleteUser)
	}

	return e
}
