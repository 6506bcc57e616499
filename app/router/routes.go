// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cache"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emalab/pingflow/app/dto"
	"github.com/emalab/pingflow/app/handlers"
	"github.com/emalab/pingflow/app/middleware"
	"github.com/emalab/pingflow/config"
	_ "github.com/emalab/pingflow/docs"
	"github.com/emalab/pingflow/utils"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app                *fiber.App
	cfg                *config.ProductionConfig
	studyHandler       handlers.StudyHandlerInterface
	templateHandler    handlers.PingTemplateHandlerInterface
	enrollmentHandler  handlers.EnrollmentHandlerInterface
	pingHandler        handlers.PingHandlerInterface
	participantHandler handlers.ParticipantHandlerInterface
	botHandler         handlers.BotHandlerInterface
	authMiddleware     *middleware.AuthMiddleware
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(
	cfg *config.ProductionConfig,
	studyHandler handlers.StudyHandlerInterface,
	templateHandler handlers.PingTemplateHandlerInterface,
	enrollmentHandler handlers.EnrollmentHandlerInterface,
	pingHandler handlers.PingHandlerInterface,
	participantHandler handlers.ParticipantHandlerInterface,
	botHandler handlers.BotHandlerInterface,
	authMiddleware *middleware.AuthMiddleware,
) Router {
	// Configure Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "PingFlow API",
		ServerHeader: "PingFlow",
		ErrorHandler: errorHandler,
		BodyLimit:    4 * 1024 * 1024, // 4MB
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:                app,
		cfg:                cfg,
		studyHandler:       studyHandler,
		templateHandler:    templateHandler,
		enrollmentHandler:  enrollmentHandler,
		pingHandler:        pingHandler,
		participantHandler: participantHandler,
		botHandler:         botHandler,
		authMiddleware:     authMiddleware,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	// Global middleware
	r.setupMiddleware()

	// Prometheus scrape endpoint, outside the API group and its limiter
	if r.cfg.Metrics.EnablePrometheus {
		r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	// API routes
	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.healthCheck)

	// API documentation route (development only)
	if os.Getenv("APP_ENV") == "development" || os.Getenv("APP_ENV") == "local" {
		api.Get("/docs", r.getAPIDocumentation)
		api.Get("/swagger.json", r.serveSwaggerJSON)
		// Serve Swagger UI
		r.app.Get("/swagger", r.serveSwaggerUI)
		log.Println("API documentation enabled for development")
	}

	// Apply general rate limiting to all API routes (aligned with nginx)
	api.Use(limiter.New(limiter.Config{
		Max:        r.cfg.Security.GlobalRateLimit,
		Expiration: r.cfg.Security.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP() // Rate limit by IP
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
		Next: func(c fiber.Ctx) bool {
			// Skip rate limiting for health checks
			return c.Path() == "/api/v1/health"
		},
	}))

	// Public participant surface; no token, reachable from signup pages and
	// Telegram messages
	api.Post("/signup", r.participantHandler.Signup)
	api.Get("/ping/:pingID", r.participantHandler.Forward)

	// Researcher surface behind bearer tokens
	studies := api.Group("/studies")
	studies.Use(r.authMiddleware.Authenticate())

	studies.Post("/", r.studyHandler.CreateStudy)
	studies.Get("/", r.studyHandler.ListStudies)
	studies.Get("/:studyID", r.studyHandler.GetStudy)
	studies.Put("/:studyID", r.studyHandler.UpdateStudy)
	studies.Delete("/:studyID", r.studyHandler.DeleteStudy)

	studies.Post("/:studyID/members", r.studyHandler.AddMember)
	studies.Get("/:studyID/members", r.studyHandler.ListMembers)
	studies.Put("/:studyID/members/:accountID", r.studyHandler.UpdateMemberRole)
	studies.Delete("/:studyID/members/:accountID", r.studyHandler.RemoveMember)

	studies.Post("/:studyID/ping-templates", r.templateHandler.CreatePingTemplate)
	studies.Get("/:studyID/ping-templates", r.templateHandler.ListPingTemplates)
	studies.Get("/:studyID/ping-templates/:templateID", r.templateHandler.GetPingTemplate)
	studies.Put("/:studyID/ping-templates/:templateID", r.templateHandler.UpdatePingTemplate)
	studies.Delete("/:studyID/ping-templates/:templateID", r.templateHandler.DeletePingTemplate)

	studies.Post("/:studyID/enrollments", r.enrollmentHandler.CreateEnrollment)
	studies.Get("/:studyID/enrollments", r.enrollmentHandler.ListEnrollments)
	studies.Get("/:studyID/enrollments/:enrollmentID", r.enrollmentHandler.GetEnrollment)
	studies.Put("/:studyID/enrollments/:enrollmentID", r.enrollmentHandler.UpdateEnrollment)
	studies.Delete("/:studyID/enrollments/:enrollmentID", r.enrollmentHandler.DeleteEnrollment)
	studies.Post("/:studyID/enrollments/:enrollmentID/materialize", r.enrollmentHandler.MaterializeEnrollment)

	// Export is registered before the parameterized delete so "export" never
	// binds as a ping ID
	studies.Get("/:studyID/pings/export", r.pingHandler.ExportPings)
	studies.Get("/:studyID/pings", r.pingHandler.ListPings)
	studies.Delete("/:studyID/pings/:pingID", r.pingHandler.DeletePing)

	// Bot relay surface behind the shared secret, with its own limiter
	bot := api.Group("/bot")
	bot.Use(limiter.New(limiter.Config{
		Max:        r.cfg.Security.BotRateLimit,
		Expiration: r.cfg.Security.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP() // Rate limit by IP
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
	}))
	bot.Use(r.authMiddleware.BotAuthenticate())

	bot.Put("/telegram/link", r.botHandler.LinkTelegram)
	bot.Put("/telegram/unenroll", r.botHandler.Unenroll)
	bot.Get("/pings", r.botHandler.ListPings)
	bot.Put("/pings/:pingID/sent", r.botHandler.MarkSent)
	bot.Put("/pings/:pingID/reminded", r.botHandler.MarkReminded)

	// Not found handler
	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

// SetupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	// Security headers middleware
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:         r.cfg.Security.XSSProtection,
		ContentTypeNosniff:    r.cfg.Security.XContentTypeOptions,
		XFrameOptions:         r.cfg.Security.XFrameOptions,
		HSTSMaxAge:            r.cfg.Security.HSTSMaxAge,
		HSTSExcludeSubdomains: !r.cfg.Security.HSTSIncludeSubDoms,
		ContentSecurityPolicy: r.cfg.Security.CSPPolicy,
		ReferrerPolicy:        r.cfg.Security.ReferrerPolicy,
		XDNSPrefetchControl:   "off",
		XDownloadOptions:      "noopen",
		XPermittedCrossDomain: "none",
	}))

	// CORS middleware with production settings
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: r.cfg.Security.AllowedOrigins,
		AllowMethods: r.cfg.Security.AllowedMethods,
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Requested-With",
			"X-Request-ID",
			"Cache-Control",
		},
		ExposeHeaders: []string{
			"X-Request-ID",
			"X-Response-Time",
		},
		AllowCredentials: r.cfg.Security.AllowCredentials,
		MaxAge:           r.cfg.Security.CORSMaxAge,
	}))

	// Compression middleware for performance
	r.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
		Next: func(c fiber.Ctx) bool {
			// Skip compression for spreadsheet downloads
			contentType := c.Get("Content-Type")
			return contains(contentType, "image/") ||
				contains(contentType, "spreadsheetml")
		},
	}))

	// Cache middleware for static content
	r.app.Use(cache.New(cache.Config{
		Next: func(c fiber.Ctx) bool {
			// Only cache GET requests to specific endpoints
			return c.Method() != "GET" ||
				!contains(c.Path(), "/health") &&
					!contains(c.Path(), "/docs")
		},
		Expiration:   30 * time.Minute,
		CacheControl: true,
	}))

	// Advanced logging middleware
	r.app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","pid":"${pid}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","protocol":"${protocol}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent},"referer":"${referer}"}` + "\n",
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Next: func(c fiber.Ctx) bool {
			// Skip logging for health checks in production
			return c.Path() == "/api/v1/health"
		},
	}))

	// Custom security middleware
	r.app.Use(r.securityMiddleware)

	// Request metrics
	r.app.Use(middleware.Metrics())

	// Recovery middleware with custom error handling
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			// Log panic with request context
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				c.Locals("requestid"),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

// Custom security middleware
func (r *FiberRouter) securityMiddleware(c fiber.Ctx) error {
	// Add security headers
	c.Set("X-Response-Time", utils.UTCNow().Format(time.RFC3339))
	c.Set("Server", "PingFlow")

	// Continue to next middleware
	return c.Next()
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// Health check endpoint
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "ok",
			"timestamp": utils.UTCNow().Unix(),
			"version":   r.cfg.Deployment.Version,
			"service":   "pingflow-api",
		},
	})
}

// API documentation endpoint
func (r *FiberRouter) getAPIDocumentation(c fiber.Ctx) error {
	docs := GetRouteDocumentation()
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "API documentation retrieved successfully",
		Data: fiber.Map{
			"title":       "PingFlow API Documentation",
			"version":     "1.0.0",
			"description": "Study administration, participant signup and ping delivery API",
			"endpoints":   docs,
		},
	})
}

// Serve Swagger UI HTML page
func (r *FiberRouter) serveSwaggerUI(c fiber.Ctx) error {
	htmlContent := `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>PingFlow API - Swagger UI</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui.css" />
    <style>
        html {
            box-sizing: border-box;
            overflow: -moz-scrollbars-vertical;
            overflow-y: scroll;
        }
        *, *:before, *:after {
            box-sizing: inherit;
        }
        body {
            margin:0;
            background: #fafafa;
        }
    </style>
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui-bundle.js"></script>
    <script src="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui-standalone-preset.js"></script>
    <script>
        window.onload = function() {
            const ui = SwaggerUIBundle({
                url: '/api/v1/swagger.json',
                dom_id: '#swagger-ui',
                deepLinking: true,
                presets: [
                    SwaggerUIBundle.presets.apis,
                    SwaggerUIStandalonePreset
                ],
                plugins: [
                    SwaggerUIBundle.plugins.DownloadUrl
                ],
                layout: "StandaloneLayout",
                validatorUrl: null
            });
        };
    </script>
</body>
</html>`

	c.Set("Content-Type", "text/html")
	return c.SendString(htmlContent)
}

// Serve Swagger JSON specification
func (r *FiberRouter) serveSwaggerJSON(c fiber.Ctx) error {
	// Read the generated swagger.json file
	swaggerData, err := os.ReadFile("docs/swagger.json")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.APIResponse{
			Success: false,
			Message: "Failed to load Swagger documentation",
			Error: dto.ErrorDetail{
				Code: "SWAGGER_LOAD_ERROR",
			},
		})
	}

	c.Set("Content-Type", "application/json")
	return c.Send(swaggerData)
}

// Not found handler
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	requestID := c.Locals("requestid")

	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestID,
			},
		},
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	// Default error code
	code := fiber.StatusInternalServerError

	// Retrieve the custom status code if it's a fiber.*Error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	// Log the error
	log.Printf("Error %d: %v", code, err)

	// Get RequestID for tracing
	requestID := c.Locals("requestid")

	// Return JSON error response
	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: "An internal server error occurred",
		Error: dto.ErrorDetail{
			Code: "INTERNAL_ERROR",
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": requestID,
			},
		},
	})
}

// Helper functions

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// contains checks if a string contains a substring
func contains(str, substr string) bool {
	return strings.Contains(str, substr)
}

// GetRouteDocumentation returns API documentation
func GetRouteDocumentation() []map[string]any {
	return []map[string]any{
		{
			"method":      "POST",
			"path":        "/api/v1/studies",
			"description": "Create a study; the caller becomes its owner",
			"parameters": map[string]any{
				"internal_name":   "string (required) - Name shown to researchers",
				"public_name":     "string (required) - Name shown to participants",
				"contact_message": "string (optional) - Shown to participants after linking",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/studies",
			"description": "List studies the caller is a member of",
			"parameters":  map[string]any{},
		},
		{
			"method":      "POST",
			"path":        "/api/v1/studies/:studyID/ping-templates",
			"description": "Create a ping template with its randomized schedule",
			"parameters": map[string]any{
				"name":             "string (required) - Template name",
				"message":          "string (required) - Message body, supports <PID>, <URL>, <DATE> placeholders",
				"url":              "string (optional) - Survey URL, supports variable substitution",
				"schedule":         "object (required) - beginDay/endDay plus days or windows",
				"reminder_latency": "string (optional) - e.g. 30m, 2h",
				"expire_latency":   "string (optional) - e.g. 24h",
			},
		},
		{
			"method":      "POST",
			"path":        "/api/v1/studies/:studyID/enrollments",
			"description": "Enroll a participant and materialize the ping timeline",
			"parameters": map[string]any{
				"study_pid":  "string (required) - Participant identifier within the study",
				"tz":         "string (required) - IANA timezone, e.g. America/Los_Angeles",
				"start_date": "string (optional) - YYYY-MM-DD, defaults to today in tz",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/studies/:studyID/pings",
			"description": "List materialized pings with pagination and filters",
			"parameters": map[string]any{
				"page":             "number (optional) - Page number, default 1",
				"limit":            "number (optional) - Items per page, default 10, max 100",
				"enrollment_id":    "number (optional) - Filter by enrollment",
				"ping_template_id": "number (optional) - Filter by template",
				"ping_sent":        "boolean (optional) - Filter by sent state",
			},
		},
		{
			"method":      "POST",
			"path":        "/api/v1/signup",
			"description": "Participant self-signup with a study signup code",
			"parameters": map[string]any{
				"signup_code": "string (required) - Study signup code",
				"study_pid":   "string (required) - Participant identifier",
				"tz":          "string (optional) - IANA timezone, defaults to UTC",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/ping/:pingID",
			"description": "Record a click and redirect to the ping's survey URL",
			"parameters": map[string]any{
				"code": "string (required) - Query parameter, forwarding code",
			},
		},
		{
			"method":      "PUT",
			"path":        "/api/v1/bot/telegram/link",
			"description": "Bot relay: bind a Telegram account to a link code",
			"parameters": map[string]any{
				"telegram_link_code": "string (required) - 6-character code from signup",
				"telegram_id":        "string (required) - Telegram account ID",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/health",
			"description": "Health check endpoint",
			"parameters":  map[string]any{},
		},
	}
}
