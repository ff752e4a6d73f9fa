package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/bryanwahyu/incident-replay/internal/application"
	"github.com/bryanwahyu/incident-replay/internal/application/airesolve"
	appincidents "github.com/bryanwahyu/incident-replay/internal/application/incidents"
	"github.com/bryanwahyu/incident-replay/internal/application/rules"
	"github.com/bryanwahyu/incident-replay/internal/application/snapshot"
	"github.com/bryanwahyu/incident-replay/internal/config"
	"github.com/bryanwahyu/incident-replay/internal/domain/erp"
	domain "github.com/bryanwahyu/incident-replay/internal/domain/incidents"
	openaiclient "github.com/bryanwahyu/incident-replay/internal/infra/ai/openai"
	mysqlp "github.com/bryanwahyu/incident-replay/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/incident-replay/internal/infra/db/postgres"
	"github.com/bryanwahyu/incident-replay/internal/infra/erpnext"
	"github.com/bryanwahyu/incident-replay/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/incident-replay/internal/infra/storage"
	"github.com/bryanwahyu/incident-replay/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// connect DB sesuai driver
	var repo domain.Repository
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		defer db.Close()
		repo = postgresp.NewIncidentRepository(db)
	default:
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		defer db.Close()
		repo = mysqlp.NewIncidentRepository(db)
	}

	// init ERP client (real atau mock)
	var erpClient erp.Client
	if cfg.ERPNext.Mode == "real" {
		erpClient = erpnext.NewClient(cfg.ERPNext.BaseURL, cfg.ERPNext.APIKey, cfg.ERPNext.APISecret)
	} else {
		log.Println("erpnext mode=mock, using fixture client")
		erpClient = erpnext.NewMockClient()
	}

	// init AI resolver (optional)
	var resolver *airesolve.Resolver
	if cfg.AI.Enabled {
		resolver = airesolve.NewResolver(openaiclient.NewClient(cfg.AI.APIKey, cfg.AI.Model))
	}

	// init minio transcript store (optional)
	var transcripts appincidents.TranscriptStore
	if cfg.Minio.Endpoint != "" {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		transcripts = store
	}

	clock := application.SystemClock{}

	// init service
	svc := appincidents.NewService(
		repo,
		snapshot.NewExtractor(erpClient, clock),
		rules.NewRegistry(),
		resolver,
		cfg.AI.Enabled,
		transcripts,
		clock,
	)

	// init router
	mux := chi.NewRouter()
	mux.Use(middleware.Logging)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
		MaxAge:         300,
	}))
	mux.Mount("/", httpserver.NewRouter(svc))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // analysis runs synchronously, extraction + AI can be slow
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
