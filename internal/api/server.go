package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/vsantos1911/meritocracia-api/docs"
	v1 "github.com/vsantos1911/meritocracia-api/internal/api/handler/v1"
	"github.com/vsantos1911/meritocracia-api/internal/api/middleware"
	"github.com/vsantos1911/meritocracia-api/internal/config"
	"github.com/vsantos1911/meritocracia-api/internal/repository"
	"github.com/vsantos1911/meritocracia-api/internal/repository/dao"
	"github.com/vsantos1911/meritocracia-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	teamHandler := s.initTeamHandler(db)
	eventHandler := s.initEventHandler(db)
	authHandler := s.initAuthHandler(db)
	s.MountHandlers(teamHandler, eventHandler, authHandler)

	return s
}

func (s *Server) initTeamHandler(db *gorm.DB) *v1.TeamHandler {
	teamRepo := repository.NewTeamRepository(dao.NewTeamDAO(db))
	svc := service.NewTeamService(teamRepo)

	return v1.NewTeamHandler(svc)
}

func (s *Server) initEventHandler(db *gorm.DB) *v1.EventHandler {
	eventRepo := repository.NewEventRepository(dao.NewEventDAO(db))
	teamRepo := repository.NewTeamRepository(dao.NewTeamDAO(db))
	svc := service.NewLedgerService(eventRepo, teamRepo)
	teamSvc := service.NewTeamService(teamRepo)

	return v1.NewEventHandler(svc, teamSvc)
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	svc := service.NewAuthService(userRepo)

	return v1.NewAuthHandler(svc)
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(teamHandler *v1.TeamHandler, eventHandler *v1.EventHandler, authHandler *v1.AuthHandler) {
	const basePath = "/api/v1"

	root := s.Router.Group(basePath)
	{
		root.GET("/teams", teamHandler.HandleListTeams)
		root.GET("/teams/:teamID", teamHandler.HandleGetTeam)

		root.GET("/events", eventHandler.HandleListEvents)
		root.GET("/events/:eventID", eventHandler.HandleGetEvent)
		root.POST("/events", eventHandler.HandleCreateEvent)
		root.PUT("/events/:eventID", eventHandler.HandleUpdateEvent)
		root.PATCH("/events/:eventID", eventHandler.HandleUpdateEvent)
		root.DELETE("/events/:eventID", eventHandler.HandleDeleteEvent)

		root.POST("/zero-points", eventHandler.HandleZeroPoints)
		root.POST("/reset", eventHandler.HandleReset)
		root.POST("/salvar-dados", eventHandler.HandleSaveData)

		root.POST("/auth/login", authHandler.HandleLogin)
	}

	s.Router.GET("/health", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "API Meritocracia"
	docs.SwaggerInfo.Description = "Points ledger and rankings for the meritocracy dashboard."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
