package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vmportal/internal/auth"
	"vmportal/internal/config"
	"vmportal/internal/handler"
	"vmportal/internal/middleware"
	"vmportal/internal/proxmox"
	"vmportal/internal/repository"
)

type Server struct {
	httpServer *http.Server
	log        *zap.Logger
}

func New(cfg *config.Config, users repository.UserRepository, gateway proxmox.Gateway, tokens *auth.TokenManager, log *zap.Logger) *Server {
	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	authHandler := handler.NewAuthHandler(users, tokens, log)
	vmHandler := handler.NewVMHandler(gateway, cfg.Proxmox.Node, cfg.Proxmox.Host, log)
	nodeHandler := handler.NewNodeHandler(gateway, cfg.Proxmox.Node, log)
	adminHandler := handler.NewAdminHandler(users, log)

	authenticated := middleware.Authenticate(tokens, users, log)

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "node": cfg.Proxmox.Node})
	})

	authGroup := router.Group("/api/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.GET("/verify", authenticated, authHandler.Verify)
	}

	vmGroup := router.Group("/api/vm", authenticated)
	{
		vmGroup.GET("", vmHandler.List)
		vmGroup.GET("/:vmid", vmHandler.Get)
		vmGroup.POST("/:vmid/start", vmHandler.Start)
		vmGroup.POST("/:vmid/stop", vmHandler.Stop)
		vmGroup.POST("/:vmid/shutdown", vmHandler.Shutdown)
		vmGroup.GET("/:vmid/vnc", vmHandler.VNC)
	}

	nodeGroup := router.Group("/api/proxmox", authenticated)
	{
		nodeGroup.GET("/resources", nodeHandler.Resources)
		nodeGroup.GET("/storages", nodeHandler.Storages)
	}

	adminGroup := router.Group("/api/admin", authenticated, middleware.RequireAdmin())
	{
		adminGroup.GET("/users", adminHandler.ListUsers)
		adminGroup.GET("/users/:id", adminHandler.GetUser)
		adminGroup.POST("/users", adminHandler.CreateUser)
		adminGroup.PUT("/users/:id", adminHandler.UpdateUser)
		adminGroup.DELETE("/users/:id", adminHandler.DeleteUser)
		adminGroup.POST("/users/:id/assign-vms", adminHandler.AssignVMs)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Server.Address,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
		log: log,
	}
}

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	s.log.Info("Server starting", zap.String("address", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
