package internal

import (
	"context"
	"database/sql"
	"embed"
	"net/http"
	"time"

	"atlas-asset-api/internal/auth"
	"atlas-asset-api/internal/config"
	"atlas-asset-api/internal/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
)

//go:embed openapi
var openapiFS embed.FS

type Server struct {
	DB         *sql.DB
	Pool       *pgxpool.Pool
	Router     *chi.Mux
	JWTManager *auth.JWTManager
	Metrics    *Metrics
	Log        *logrus.Logger
}

func NewServer(dsn string, cfg *config.Config, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.WithError(err).Fatal("Failed to open database connection")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		log.WithError(err).Fatal("Database ping failed")
	}

	// Also create a pgxpool for the importer
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.WithError(err).Fatal("Failed to create pgxpool")
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTExpiry)
	if err := jwtManager.ValidateConfig(); err != nil {
		log.WithError(err).Fatal("JWT configuration validation failed")
	}

	s := &Server{
		DB:         db,
		Pool:       pool,
		Router:     chi.NewRouter(),
		JWTManager: jwtManager,
		Metrics:    NewMetrics(),
		Log:        log,
	}

	// Bootstrap: seed default categories and a first-run admin account
	if err := s.seedDefaultCategories(ctx); err != nil {
		log.WithError(err).Fatal("Failed to seed default categories")
	}
	if err := s.seedDefaultAdmin(ctx); err != nil {
		log.WithError(err).Fatal("Failed to seed default admin")
	}

	// Middlewares must be attached before any route is registered; chi
	// panics otherwise.
	s.Router.Use(RequestLogger(log))
	if cfg.EnableMetrics {
		s.Router.Use(s.Metrics.Middleware())
	}

	// Mount public routes FIRST (no auth middleware)
	s.Router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	s.Router.Get("/dbping", func(w http.ResponseWriter, r *http.Request) {
		if err := s.DB.PingContext(r.Context()); err != nil {
			http.Error(w, "db: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		if _, err := w.Write([]byte("db: ok")); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	// Public auth routes (no JWT required)
	s.Router.Post("/auth/login", s.loginUser)
	s.Router.Post("/auth/register", s.registerUser)
	s.mountDocs(s.Router, cfg)

	// Metrics endpoint if enabled
	if cfg.EnableMetrics {
		s.Router.Get("/metrics", s.Metrics.Handler().ServeHTTP)
	}

	// Protected route group
	s.Router.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware(s.JWTManager))
		r.Use(s.withRLSSession)

		s.mountProtectedRoutes(r)
	})

	return s
}

// Close properly shuts down the server and cleans up resources
func (s *Server) Close(ctx context.Context) error {
	if s.Pool != nil {
		s.Pool.Close()
	}
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// withRLSSession middleware for org isolation
func (s *Server) withRLSSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		orgID := auth.OrgIDFromContext(r.Context())
		conn, ctx2, err := withDBConn(r.Context(), s.DB, orgID)
		if err != nil {
			http.Error(w, "db acquire: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if conn != nil {
			defer conn.Close()
		}
		next.ServeHTTP(w, r.WithContext(ctx2))
	})
}

// mountDocs serves the OpenAPI spec and Swagger UI
func (s *Server) mountDocs(mux *chi.Mux, cfg *config.Config) {
	if !cfg.EnableSwagger {
		return
	}

	// Serve the raw YAML
	mux.HandleFunc("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		data, err := openapiFS.ReadFile("openapi/openapi.yaml")
		if err != nil {
			http.Error(w, "Failed to read OpenAPI spec", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/x-yaml")
		if _, err := w.Write(data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	// Serve Swagger UI page
	mux.HandleFunc("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(200)
		w.Write([]byte(`<!doctype html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>Atlas Asset API - Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui.css">
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui-bundle.js"></script>
    <script>
        window.onload = function() {
            window.ui = SwaggerUIBundle({
                url: '/openapi.yaml',
                dom_id: '#swagger-ui',
                deepLinking: true,
                presets: [
                    SwaggerUIBundle.presets.apis,
                    SwaggerUIBundle.presets.standalone
                ],
                layout: "StandaloneLayout",
                tryItOutEnabled: true
            });
        };
    </script>
</body>
</html>`))
	})
}

// mountProtectedRoutes mounts all routes that require authentication
func (s *Server) mountProtectedRoutes(r chi.Router) {
	// Organization profile and dashboard
	r.Get("/organization/current", s.getCurrentOrganization)
	r.Put("/organization/current", requireAdmin(s.updateOrganization))
	r.Get("/organization/dashboard", s.getDashboardStats)

	// Employee-ID allocation
	r.Post("/organization/generate-employee-id/{user_id}", requireAdmin(s.generateEmployeeID))
	r.Put("/organization/users/{user_id}/employee-id", requireAdmin(s.setEmployeeID))

	// Category catalog
	r.Get("/categories", s.listCategories)
	r.Post("/categories", requireAdmin(s.createCategory))

	// Assets - writes are admin only
	r.Get("/assets", s.listAssets)
	r.Get("/assets/{id}", s.getAsset)
	r.Post("/assets", requireAdmin(s.createAsset))
	r.Put("/assets/{id}", requireAdmin(s.updateAsset))
	r.Delete("/assets/{id}", requireAdmin(s.deleteAsset))

	// User management - admin only, org-scoped
	r.Post("/users", requireAdmin(s.createUser))
	r.Get("/users", requireAdmin(s.listUsers))
	r.Get("/users/{id}", requireAdmin(s.getUser))
	r.Put("/users/{id}", requireAdmin(s.updateUser))
	r.Delete("/users/{id}", requireAdmin(s.deleteUser))

	// Invite codes - admin only
	r.Post("/invites", requireAdmin(s.createInvite))
	r.Get("/invites", requireAdmin(s.listInvites))

	// Excel import - admin only
	importsHandler := handlers.NewImportsHandler(s.Pool)
	r.Post("/imports/excel", requireAdmin(importsHandler.UploadExcel))

	// Self-service routes
	r.Get("/auth/profile", s.getUserProfile)
	r.Put("/auth/profile", s.updateUserProfile)
	r.Put("/auth/change-password", s.changePassword)
}

func requireAdmin(h http.HandlerFunc) http.HandlerFunc {
	wrapped := auth.MustAdmin(h)
	return func(w http.ResponseWriter, r *http.Request) {
		wrapped.ServeHTTP(w, r)
	}
}
