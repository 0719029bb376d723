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

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	"connectrpc.com/connect"
	"github.com/castlemilk/taxpilot/backend/internal/ai"
	"github.com/castlemilk/taxpilot/backend/internal/api"
	"github.com/castlemilk/taxpilot/backend/internal/auth"
	"github.com/castlemilk/taxpilot/backend/internal/config"
	"github.com/castlemilk/taxpilot/backend/internal/domain"
	"github.com/castlemilk/taxpilot/backend/internal/filestore"
	"github.com/castlemilk/taxpilot/backend/internal/jobs"
	"github.com/castlemilk/taxpilot/backend/internal/scenario"
	"github.com/castlemilk/taxpilot/backend/internal/search"
	"github.com/castlemilk/taxpilot/backend/internal/service"
	"github.com/castlemilk/taxpilot/backend/internal/store"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"google.golang.org/api/option"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// CONFIG_FILE overlays the built-in defaults; env vars override both.
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	storeImpl, closeStore := newStore(ctx, cfg)
	defer closeStore()

	if err := seedCatalog(ctx, storeImpl, cfg); err != nil {
		log.Fatalf("Failed to seed regimes and templates: %v", err)
	}

	registry := cfg.BuildRegistry()
	files := newFileStore(ctx, cfg)
	aiClient := newAIClient(cfg)
	index := newSearchIndex(cfg)

	runner, closeJobs := newJobRunner(cfg, storeImpl, registry, files, aiClient, index)
	runner.Start(ctx)

	taxService := service.NewTaxService(storeImpl, registry)
	taxService.SetJobRunner(runner)
	taxService.SetFileStore(files)
	taxService.SetAIClient(aiClient)
	taxService.SetSearchIndex(index)
	taxService.SetSchedulerSecret(cfg.Server.SchedulerSecret)

	// Debug impersonation runs first so LocalDevInterceptor leaves it alone.
	interceptors := []connect.Interceptor{auth.DebugAuthInterceptor(cfg.Auth.SkipAuth)}

	if cfg.Auth.LocalDev || cfg.Auth.SkipAuth {
		log.Println("Using mock authentication for local development")
		interceptors = append(interceptors, auth.LocalDevInterceptor())
	} else {
		firebaseAuth, err := auth.NewFirebaseAuth(ctx, cfg.Store.ProjectID, cfg.Store.CredentialsFile)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase Auth: %v", err)
		}
		// The scheduler authenticates with X-Scheduler-Secret instead of a token.
		interceptors = append(interceptors,
			auth.AuthInterceptor(firebaseAuth, api.TaxServiceProcessScheduledCalendarSyncProcedure))
	}

	path, handler := api.NewTaxServiceHandler(
		taxService,
		connect.WithInterceptors(interceptors...),
	)

	mux := http.NewServeMux()
	mux.Handle(path, handler)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Connect-Protocol-Version",
			"Connect-Timeout-Ms",
			"Content-Type",
			"User-Agent",
			"X-User-Agent",
			"X-Scheduler-Secret",
			"X-Debug-Impersonate-User",
		},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           h2c.NewHandler(c.Handler(mux), &http2.Server{}),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Printf("Failed to start server: %v", err)
	case <-quit:
		log.Println("Shutting down server...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	drainCtx, drainCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer drainCancel()
	if err := runner.Shutdown(drainCtx); err != nil {
		log.Printf("Job queue not drained before deadline: %v", err)
	}
	cancel()
	closeJobs()
	log.Println("Server exited")
}

func newStore(ctx context.Context, cfg *config.Config) (store.Store, func()) {
	if cfg.Store.Backend == config.BackendMemory {
		log.Println("Using in-memory store for local development")
		return store.NewMemoryStore(), func() {}
	}

	var opts []option.ClientOption
	if cfg.Store.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Store.CredentialsFile))
	}
	firestoreClient, err := firestore.NewClient(ctx, cfg.Store.ProjectID, opts...)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	log.Printf("Using Firestore store (project %s)", cfg.Store.ProjectID)
	return store.NewFirestoreStore(firestoreClient), func() { firestoreClient.Close() }
}

// seedCatalog upserts the configured regimes and calendar templates.
func seedCatalog(ctx context.Context, s store.Store, cfg *config.Config) error {
	for _, regime := range cfg.TaxRegimes() {
		if err := s.UpsertTaxRegime(ctx, regime); err != nil {
			return fmt.Errorf("regime %s: %w", regime.ID, err)
		}
	}

	templates, err := cfg.EventTemplates()
	if err != nil {
		return err
	}
	for _, tmpl := range templates {
		if err := s.UpsertEventTemplate(ctx, tmpl); err != nil {
			return fmt.Errorf("template %s: %w", tmpl.ID, err)
		}
	}
	log.Printf("Seeded %d regimes and %d calendar templates", len(cfg.Regimes), len(templates))
	return nil
}

func newFileStore(ctx context.Context, cfg *config.Config) filestore.Store {
	if cfg.Files.Backend == config.BackendGCS {
		client, err := storage.NewClient(ctx)
		if err != nil {
			log.Fatalf("Failed to create GCS client: %v", err)
		}
		log.Printf("Storing documents in gs://%s", cfg.Files.Bucket)
		return filestore.NewGCSStore(client.Bucket(cfg.Files.Bucket))
	}

	local, err := filestore.NewLocalStore(cfg.Files.Dir)
	if err != nil {
		log.Fatalf("Failed to create local file store: %v", err)
	}
	log.Printf("Storing documents under %s", cfg.Files.Dir)
	return local
}

func newAIClient(cfg *config.Config) ai.Client {
	if cfg.AI.BaseURL == "" {
		log.Println("AI_SERVICE_URL not set, using stub assistant")
		return ai.NewStubClient()
	}
	return ai.NewHTTPClient(cfg.AI.BaseURL)
}

// newSearchIndex returns nil when Algolia is not configured; search then
// scans the store.
func newSearchIndex(cfg *config.Config) search.Index {
	if !cfg.Search.Enabled() {
		log.Println("Algolia not configured, expense search scans the store")
		return nil
	}
	client, err := search.NewAlgoliaClient(search.Config{
		AppID:     cfg.Search.AppID,
		APIKey:    cfg.Search.APIKey,
		IndexName: cfg.Search.IndexName,
	})
	if err != nil {
		log.Fatalf("Failed to create Algolia client: %v", err)
	}
	log.Printf("Using Algolia index %s", client.IndexName())
	return client
}

// newJobRunner wires the queue and status store for the configured backend
// and registers a processor per job type. The returned func releases the
// backend once the workers are told to stop.
func newJobRunner(cfg *config.Config, s store.Store, registry *scenario.Registry, files filestore.Store, client ai.Client, index search.Index) (*jobs.Runner, func()) {
	var (
		queue    jobs.Queue
		statuses jobs.StatusStore
		closeFn  func()
	)

	if cfg.Jobs.Backend == config.BackendRedis {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Jobs.RedisAddr})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis at %s: %v", cfg.Jobs.RedisAddr, err)
		}
		log.Printf("Using Redis job queue at %s", cfg.Jobs.RedisAddr)

		queue = jobs.NewRedisQueue(rdb, cfg.Jobs.QueueKey)
		statuses = jobs.NewRedisStatusStore(rdb, cfg.Jobs.QueueKey+":status:", cfg.Jobs.StatusTTL)
		closeFn = func() { rdb.Close() }
	} else {
		memStatuses := jobs.NewMemoryStatusStore(cfg.Jobs.StatusTTL)
		queue, statuses = jobs.NewMemoryQueue(256), memStatuses
		closeFn = memStatuses.Stop
	}

	runner := jobs.NewRunner(queue, statuses, cfg.Jobs.Workers)
	runner.Register(domain.JobScenarioCalculate, jobs.NewScenarioProcessor(s, registry, client))
	runner.Register(domain.JobReceiptOCR, jobs.NewReceiptProcessor(s, files, client).WithSearchIndex(index))
	runner.Register(domain.JobTaxCardParse, jobs.NewTaxCardProcessor(s, files, client))
	return runner, closeFn
}
