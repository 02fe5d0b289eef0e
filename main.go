package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"kindling_server/config"
	"kindling_server/routes"
	"kindling_server/services"
	"kindling_server/socket"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Pick the storage backend. Memory stores keep everything in-process
	// and are meant for local development only.
	var (
		conversations services.ConversationStore
		swipes        services.SwipeStore
		matches       services.MatchStore
		profiles      services.ProfileStore
	)
	if cfg.UseMemoryStores {
		log.Println("Using in-memory stores")
		conversations = services.NewMemoryConversationStore()
		swipes = services.NewMemorySwipeStore()
		matches = services.NewMemoryMatchStore()
		profiles = services.NewMemoryProfileStore()
	} else {
		log.Println("Initializing DynamoDB client...")
		dynamoClient := services.InitializeDynamoDBClient()
		dynamoService := &services.DynamoService{Client: dynamoClient}
		log.Println("DynamoDB client initialized.")

		conversations = services.NewDynamoConversationStore(dynamoService)
		swipes = services.NewDynamoSwipeStore(dynamoService)
		matches = services.NewDynamoMatchStore(dynamoService)
		profiles = services.NewDynamoProfileStore(dynamoService)
	}

	// Real-time fanout server
	socketServer := socket.NewSocketServer()
	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Fatalf("Socket server error: %v", err)
		}
	}()
	defer socketServer.Close()
	notifier := &socket.Broadcaster{Server: socketServer}

	// Initialize Services
	conversationService := services.NewConversationService(conversations, notifier)
	messageService := services.NewMessageService(conversations, matches, notifier)
	policy := services.InterestOverlapPolicy{MinOverlap: cfg.MatchMinCompatibility}
	swipeService := services.NewSwipeService(swipes, matches, profiles, policy, notifier)

	// Initialize the router
	r := mux.NewRouter()

	// Register a welcome route
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Welcome to Kindling")
	}).Methods("GET")

	// Register a health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{"status": "healthy"}
		json.NewEncoder(w).Encode(response)
	}).Methods("GET")

	r.Handle("/socket.io/", socketServer)

	// Register routes
	routes.RegisterConversationRoutes(r, conversationService, messageService)
	routes.RegisterSwipeRoutes(r, swipeService)

	if cfg.S3Bucket != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			log.Fatalf("Failed to load AWS config: %v", err)
		}
		mediaService := services.NewMediaService(awsCfg, cfg.S3Bucket)
		routes.RegisterMediaRoutes(r, mediaService)
	} else {
		log.Println("S3_BUCKET_NAME not set, media routes disabled")
	}

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Adjust for specific domains if needed
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-User-Id"},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, corsHandler))
}
