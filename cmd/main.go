package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pathwise/pathwise-backend/internal/ai"
	"github.com/pathwise/pathwise-backend/internal/clients/redis"
	"github.com/pathwise/pathwise-backend/internal/data/db"
	"github.com/pathwise/pathwise-backend/internal/data/graph"
	"github.com/pathwise/pathwise-backend/internal/handlers"
	"github.com/pathwise/pathwise-backend/internal/jobs/pipeline/document_ingest"
	"github.com/pathwise/pathwise-backend/internal/jobs/pipeline/roadmap_generate"
	jobrt "github.com/pathwise/pathwise-backend/internal/jobs/runtime"
	"github.com/pathwise/pathwise-backend/internal/jobs/worker"
	roadmapmod "github.com/pathwise/pathwise-backend/internal/modules/roadmap"
	"github.com/pathwise/pathwise-backend/internal/platform/envutil"
	"github.com/pathwise/pathwise-backend/internal/platform/gcp"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
	"github.com/pathwise/pathwise-backend/internal/platform/neo4jdb"
	"github.com/pathwise/pathwise-backend/internal/platform/openai"
	"github.com/pathwise/pathwise-backend/internal/repos"
	"github.com/pathwise/pathwise-backend/internal/server"
	"github.com/pathwise/pathwise-backend/internal/services"
	"github.com/pathwise/pathwise-backend/internal/sse"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Postgres
	log.Info("Connecting to Postgres...")
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err := postgresService.Migrate(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Neo4j
	log.Info("Connecting to Neo4j...")
	neoClient, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		log.Error("Neo4j init failed", "error", err)
		os.Exit(1)
	}
	defer neoClient.Close(context.Background())
	conceptStore := graph.NewNeo4jConceptStore(neoClient, log)

	// Repos
	log.Info("Setting up repos...")
	documentRepo := repos.NewDocumentRepo(thePG, log)
	summaryRepo := repos.NewDocumentSummaryRepo(thePG, log)
	roadmapRepo := repos.NewRoadmapRepo(thePG, log)
	resourceRepo := repos.NewResourceRepo(thePG, log)
	progressRepo := repos.NewProgressRepo(thePG, log)
	quizRepo := repos.NewQuizRepo(thePG, log)
	attemptRepo := repos.NewQuizAttemptRepo(thePG, log)
	jobRunRepo := repos.NewJobRunRepo(thePG, log)

	// SSE hub + optional Redis fan-out
	log.Info("Setting up SSE hub...")
	hub := sse.NewHub(log)
	var bus redis.SSEBus
	if os.Getenv("REDIS_ADDR") != "" {
		bus, err = redis.NewSSEBus(log)
		if err != nil {
			log.Warn("Redis SSE bus init failed; falling back to local hub", "error", err)
			bus = nil
		}
	}
	if bus != nil {
		if err := bus.StartForwarder(context.Background(), hub.Broadcast); err != nil {
			log.Warn("Redis SSE forwarder failed to start", "error", err)
		}
		defer bus.Close()
	}
	notifier := services.NewJobNotifier(hub, bus, log)

	// Storage + AI
	log.Info("Setting up storage and AI clients...")
	bucketService, err := gcp.NewBucketService(log)
	if err != nil {
		log.Error("Could not init BucketService", "error", err)
		os.Exit(1)
	}
	openaiClient, err := openai.NewClient(log)
	if err != nil {
		log.Error("Could not init OpenAI client", "error", err)
		os.Exit(1)
	}
	conceptExtractor := ai.NewConceptExtractor(openaiClient, log)
	documentAnalyzer := ai.NewDocumentAnalyzer(openaiClient, log)
	quizGenerator := ai.NewQuizGenerator(openaiClient, log)
	topicGenerator := ai.NewTopicConceptGenerator(openaiClient, log)
	pathPlanner := ai.NewLearningPathPlanner(openaiClient, log)
	resourceDiscoverer := ai.NewResourceDiscoverer(openaiClient, log)
	conceptExpander := ai.NewConceptExpander(openaiClient, log)
	visionDescriber := ai.NewVisionDescriber(openaiClient, log)

	// Services
	log.Info("Setting up services...")
	documentService := services.NewDocumentService(thePG, log, documentRepo, summaryRepo, quizRepo, jobRunRepo, bucketService, conceptStore, notifier)
	roadmapService := services.NewRoadmapService(thePG, log, roadmapRepo, resourceRepo, documentRepo, summaryRepo, jobRunRepo, notifier)
	sequencer := roadmapmod.NewSequencer(log, roadmapRepo, resourceRepo, conceptStore, conceptExpander, resourceDiscoverer)
	progressService := roadmapmod.NewProgressService(log, roadmapRepo, progressRepo)
	quizService := roadmapmod.NewQuizService(log, roadmapRepo, quizRepo, attemptRepo, progressService, quizGenerator)

	// Job pipelines + worker pool
	log.Info("Setting up job worker...")
	registry := jobrt.NewRegistry()
	if err := registry.Register(document_ingest.New(thePG, log, documentRepo, summaryRepo, quizRepo, conceptStore, bucketService, conceptExtractor, documentAnalyzer, quizGenerator, visionDescriber)); err != nil {
		log.Error("Could not register ingestion pipeline", "error", err)
		os.Exit(1)
	}
	if err := registry.Register(roadmap_generate.New(thePG, log, roadmapRepo, resourceRepo, conceptStore, topicGenerator, pathPlanner, resourceDiscoverer)); err != nil {
		log.Error("Could not register roadmap pipeline", "error", err)
		os.Exit(1)
	}
	log.Info("Job handlers registered", "types", registry.Types())
	jobWorker := worker.NewWorker(thePG, log, jobRunRepo, registry, notifier)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	jobWorker.Start(workerCtx)

	// Handlers + router
	log.Info("Setting up router...")
	router := server.NewRouter(server.RouterConfig{
		DocumentHandler: handlers.NewDocumentHandler(documentService),
		RoadmapHandler:  handlers.NewRoadmapHandler(roadmapService, sequencer, progressService, quizService),
		JobHandler:      handlers.NewJobHandler(jobRunRepo),
		SSEHandler:      handlers.NewSSEHandler(hub),
	})

	port := envutil.Str("PORT", "8080")
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
