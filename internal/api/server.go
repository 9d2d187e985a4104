package api

import (
	"fmt"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/credenciamento/event-api/docs"
	v1 "github.com/credenciamento/event-api/internal/api/handler/v1"
	"github.com/credenciamento/event-api/internal/api/middleware"
	"github.com/credenciamento/event-api/internal/cache"
	"github.com/credenciamento/event-api/internal/config"
	"github.com/credenciamento/event-api/internal/domain"
	"github.com/credenciamento/event-api/internal/logger"
	"github.com/credenciamento/event-api/internal/metrics"
	"github.com/credenciamento/event-api/internal/pkg/search"
	"github.com/credenciamento/event-api/internal/realtime"
	"github.com/credenciamento/event-api/internal/repository"
	"github.com/credenciamento/event-api/internal/repository/dao"
	"github.com/credenciamento/event-api/internal/service"
)

type Server struct {
	Config  *config.AppConfig
	Router  *gin.Engine
	Broker  realtime.Broker
	Metrics *metrics.Registry
}

// services holds every service of the API. They share the audit log and the
// per-event caches.
type services struct {
	auth         *service.AuthService
	users        *service.UserService
	events       *service.EventService
	participants *service.ParticipantService
	credentials  *service.CredentialService
	movements    *service.MovementService
	operators    *service.OperatorService
	attendance   *service.AttendanceService
	radios       *service.RadioService
	stats        *service.StatsService
	imports      *service.ImportService
	exports      *service.ExportService
	audit        *service.AuditService
}

type handlers struct {
	auth         *v1.AuthHandler
	users        *v1.UserHandler
	events       *v1.EventHandler
	participants *v1.ParticipantHandler
	credentials  *v1.CredentialHandler
	movements    *v1.MovementHandler
	operators    *v1.OperatorHandler
	attendance   *v1.AttendanceHandler
	radios       *v1.RadioHandler
	spreadsheets *v1.SpreadsheetHandler
	audit        *v1.AuditHandler
	realtime     *v1.RealtimeHandler
}

func NewServer(conf *config.AppConfig, db *gorm.DB, broker realtime.Broker, m *metrics.Registry) (*Server, error) {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config:  conf,
		Router:  engine,
		Broker:  broker,
		Metrics: m,
	}

	svcs, err := s.initServices(db)
	if err != nil {
		return nil, fmt.Errorf("s.initServices -> %w", err)
	}

	s.MountMiddlewares()
	s.MountHandlers(s.initHandlers(svcs), svcs.operators)

	return s, nil
}

func (s *Server) initServices(db *gorm.DB) (*services, error) {
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	eventRepo := repository.NewEventRepository(dao.NewEventDAO(db))
	credentialRepo := repository.NewCredentialRepository(dao.NewCredentialDAO(db))
	participantRepo := repository.NewParticipantRepository(dao.NewParticipantDAO(db))
	movementRepo := repository.NewMovementRepository(dao.NewMovementDAO(db))
	operatorRepo := repository.NewOperatorRepository(dao.NewOperatorDAO(db))
	attendanceRepo := repository.NewAttendanceRepository(dao.NewAttendanceDAO(db))
	radioRepo := repository.NewRadioRepository(dao.NewRadioDAO(db))
	auditRepo := repository.NewAuditRepository(dao.NewAuditDAO(db))

	index, err := search.NewCache(s.Config.Cache.SearchIndexSize)
	if err != nil {
		return nil, fmt.Errorf("search.NewCache -> %w", err)
	}
	caches := &service.EventCaches{
		Search: index,
		Stats:  cache.New(s.Config.Cache.StatsTTL),
	}

	svcs := &services{}
	svcs.audit = service.NewAuditService(auditRepo)
	svcs.auth = service.NewAuthService(userRepo, operatorRepo)
	svcs.users = service.NewUserService(userRepo)
	svcs.events = service.NewEventService(eventRepo, svcs.audit, caches)
	svcs.credentials = service.NewCredentialService(credentialRepo, eventRepo, svcs.audit, caches)
	svcs.participants = service.NewParticipantService(participantRepo, eventRepo, credentialRepo, index, svcs.audit, caches)
	svcs.movements = service.NewMovementService(movementRepo, participantRepo, svcs.audit)
	svcs.operators = service.NewOperatorService(operatorRepo, s.Broker, s.Metrics, svcs.audit)
	svcs.attendance = service.NewAttendanceService(attendanceRepo, participantRepo, svcs.operators,
		s.Config.Attendance, s.Metrics, svcs.audit, caches)
	svcs.radios = service.NewRadioService(radioRepo, eventRepo, svcs.audit, caches)
	svcs.stats = service.NewStatsService(participantRepo, svcs.radios, eventRepo, caches.Stats, s.Metrics)
	svcs.imports = service.NewImportService(participantRepo, credentialRepo, eventRepo,
		s.Config.Import, s.Metrics, svcs.audit, caches)
	svcs.exports = service.NewExportService(participantRepo, eventRepo, svcs.attendance, svcs.radios,
		s.Config.Attendance.Location())

	return svcs, nil
}

func (s *Server) initHandlers(svcs *services) *handlers {
	return &handlers{
		auth:         v1.NewAuthHandler(s.Config.API, svcs.auth, svcs.users),
		users:        v1.NewUserHandler(svcs.users),
		events:       v1.NewEventHandler(svcs.events, svcs.stats, svcs.operators),
		participants: v1.NewParticipantHandler(svcs.participants),
		credentials:  v1.NewCredentialHandler(svcs.credentials),
		movements:    v1.NewMovementHandler(svcs.movements),
		operators:    v1.NewOperatorHandler(svcs.operators),
		attendance:   v1.NewAttendanceHandler(svcs.attendance),
		radios:       v1.NewRadioHandler(svcs.radios),
		spreadsheets: v1.NewSpreadsheetHandler(svcs.imports, svcs.exports, svcs.attendance, s.Config.Import.MaxUploadBytes),
		audit:        v1.NewAuditHandler(svcs.audit),
		realtime:     v1.NewRealtimeHandler(s.Broker, s.Metrics, s.Config.API.AllowedCORSDomains),
	}
}

func (s *Server) MountMiddlewares() {
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(logger.GinLogger())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
	if s.Metrics != nil {
		s.Router.Use(middleware.Metrics(s.Metrics))
	}
}

func (s *Server) MountHandlers(h *handlers, operators middleware.OperatorFinder) {
	const basePath = "/api/v1"

	authenticator := middleware.NewAuthenticator(s.Config.API.JWTSigningKey)
	loginLimiter := middleware.NewRateLimiter(s.Config.API.LoginRatePerSecond, s.Config.API.LoginBurst)
	dashboardOnly := middleware.RequireRoles(domain.RoleAdmin, domain.RoleCoordinator)
	adminOnly := middleware.RequireRoles(domain.RoleAdmin)

	base := s.Router.Group(basePath)
	{
		base.POST("/auth/signup", authenticator.OptionalJWT(), h.auth.HandleSignup)
		base.POST("/auth/login", loginLimiter.Limit(), h.auth.HandleLogin)
		base.POST("/auth/operators/login", loginLimiter.Limit(), h.auth.HandleOperatorLogin)
	}

	authed := base.Group("", authenticator.VerifyJWT())
	{
		authed.GET("/events", h.events.HandleListEvents)
		authed.GET("/realtime/operators", h.realtime.HandleOperatorsFeed)
		authed.PUT("/operators/:operatorID/sync", middleware.RequireRoles(domain.RoleAdmin, domain.RoleCoordinator, domain.RoleOperator), h.operators.HandleSyncOperator)
		authed.GET("/audit", adminOnly, h.audit.HandleListAudit)
	}

	dashboard := authed.Group("", dashboardOnly)
	{
		dashboard.GET("/users/me", h.users.HandleGetMe)
		dashboard.GET("/users/:userID", h.users.HandleGetUser)

		dashboard.POST("/events", h.events.HandleCreateEvent)
		dashboard.GET("/spreadsheets/template", h.spreadsheets.HandleDownloadTemplate)

		dashboard.GET("/operators", h.operators.HandleListOperators)
		dashboard.POST("/operators", h.operators.HandleCreateOperator)
		dashboard.GET("/operators/:operatorID", h.operators.HandleGetOperator)
		dashboard.PUT("/operators/:operatorID", h.operators.HandleUpdateOperator)
		dashboard.DELETE("/operators/:operatorID", h.operators.HandleDeleteOperator)
	}

	// Field routes: dashboard users and the operators assigned to the event.
	event := authed.Group("/events/:eventID", middleware.RequireEventAccess(operators, "eventID"))
	{
		event.GET("", h.events.HandleGetEvent)
		event.GET("/stats", h.events.HandleGetEventStats)

		event.GET("/participants", h.participants.HandleListParticipants)
		event.GET("/participants/:participantID", h.participants.HandleGetParticipant)

		event.POST("/participants/:participantID/check-in", h.attendance.HandleCheckIn)
		event.POST("/participants/:participantID/check-out", h.attendance.HandleCheckOut)
		event.GET("/participants/:participantID/attendance", h.attendance.HandleAttendanceHistory)
		event.GET("/attendance", h.attendance.HandleDayReport)
		event.DELETE("/attendance/:recordID", h.attendance.HandleUndoAttendance)

		event.GET("/participants/:participantID/movement", h.movements.HandleGetMovement)
		event.PUT("/participants/:participantID/movement", h.movements.HandleAssignCode)
		event.GET("/movements", h.movements.HandleListMovements)
		event.GET("/movements/holder", h.movements.HandleFindHolder)

		event.GET("/credentials", h.credentials.HandleListCredentials)
		event.GET("/credentials/:credentialID", h.credentials.HandleGetCredential)

		event.GET("/radio-loans", h.radios.HandleListLoans)
		event.POST("/radio-loans", h.radios.HandleCreateLoan)
		event.GET("/radio-loans/outstanding", h.radios.HandleOutstanding)
		event.GET("/radio-loans/:loanID", h.radios.HandleGetLoan)
		event.POST("/radio-loans/:loanID/exchange", h.radios.HandleExchangeRadio)
		event.POST("/radio-loans/:loanID/return", h.radios.HandleReturnRadios)
	}

	eventAdmin := event.Group("", dashboardOnly)
	{
		eventAdmin.PUT("", h.events.HandleUpdateEvent)
		eventAdmin.PATCH("/status", h.events.HandleUpdateEventStatus)
		eventAdmin.PUT("/staff", h.events.HandleUpdateEventStaff)
		eventAdmin.DELETE("", adminOnly, h.events.HandleDeleteEvent)

		eventAdmin.POST("/participants", h.participants.HandleCreateParticipant)
		eventAdmin.PUT("/participants/:participantID", h.participants.HandleUpdateParticipant)
		eventAdmin.DELETE("/participants/:participantID", h.participants.HandleDeleteParticipant)
		eventAdmin.POST("/participants/import", h.spreadsheets.HandleImportParticipants)
		eventAdmin.GET("/participants/export", h.spreadsheets.HandleExportParticipants)
		eventAdmin.GET("/attendance/export", h.spreadsheets.HandleExportAttendance)
		eventAdmin.GET("/radio-loans/export", h.spreadsheets.HandleExportRadioLoans)

		eventAdmin.POST("/credentials", h.credentials.HandleCreateCredential)
		eventAdmin.PUT("/credentials/:credentialID", h.credentials.HandleUpdateCredential)
		eventAdmin.PATCH("/credentials/:credentialID/toggle-active", h.credentials.HandleToggleCredentialActive)
		eventAdmin.PATCH("/credentials/:credentialID/toggle-distributed", h.credentials.HandleToggleCredentialDistributed)
		eventAdmin.DELETE("/credentials/:credentialID", h.credentials.HandleDeleteCredential)

		eventAdmin.GET("/audit", h.audit.HandleListAudit)
	}

	s.Router.GET("/", v1.HandleHealthcheck)
	if s.Metrics != nil {
		s.Router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.Metrics.Gatherer(), promhttp.HandlerOpts{})))
	}

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Event credentialing API"
	docs.SwaggerInfo.Description = "Participants, credentials, check-in/check-out and radio loans of events."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
