package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/quizforge/quizforge/internal/api/http"
	auth "github.com/quizforge/quizforge/internal/auth/middleware"
	"github.com/quizforge/quizforge/internal/config"
	"github.com/quizforge/quizforge/internal/db"
	"github.com/quizforge/quizforge/internal/events"
	"github.com/quizforge/quizforge/internal/genai"
	"github.com/quizforge/quizforge/internal/quiz"
	"github.com/quizforge/quizforge/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := quiz.NewSQLStore(dbh).WithEvents(events.NewRepo(dbh))

	// --- Generation client ---
	gen := genai.New(genai.Config{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
	})

	// --- Upload archive ---
	var bs storage.BlobStore
	if cfg.BlobBasePath != "" {
		fsStore, err := storage.NewFSStore(cfg.BlobBasePath)
		if err != nil {
			log.Fatalf("blob store: %v", err)
		}
		bs = fsStore
	}

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthHMACSecret, cfg.AuthorUser, cfg.AuthorPassHash)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	// Generous: the generation upstream is slow and supports no cancellation.
	r.Use(middleware.Timeout(120 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.EnableLocalAuth {
		r.Post("/auth/login", auth.LoginHandler(authSvc))
	}

	// Authoring API (JWT-guarded when local auth is enabled).
	r.Group(func(pr chi.Router) {
		if cfg.EnableLocalAuth {
			pr.Use(auth.JWTMiddleware(authSvc))
		}
		pr.Post("/generate-quiz", api.GenerateQuizHandler(gen))
		pr.Post("/parse-document", api.ParseDocumentHandler(bs, cfg.MaxUploadBytes))
		pr.Get("/uploads/{name}", api.UploadFetchHandler(bs))

		pr.Post("/quiz", api.CreateQuizHandler(store, cfg.PublicURL))
		pr.Get("/quiz", api.GetQuizHandler(store, cfg.PublicURL))
		pr.Put("/quiz", api.UpdateQuizHandler(store, cfg.PublicURL))
		pr.Delete("/quiz", api.DeleteQuizHandler(store))
	})

	// Public take surface: anonymous by design.
	r.Get("/share/{shareID}", api.GetSharedQuizHandler(store))
	r.Post("/quiz/{quizID}/submit", api.SubmitResponseHandler(store))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s, model=%s)", cfg.HTTPAddr, cfg.DBDriver, cfg.OpenAIModel)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
