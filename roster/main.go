// main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	rosterapi "github.com/Renan-Rosa/rally-scout/roster/api"
	"github.com/Renan-Rosa/rally-scout/roster/service"
	"github.com/Renan-Rosa/rally-scout/roster/store"
	"github.com/Renan-Rosa/rally-scout/shared/api"
	"github.com/Renan-Rosa/rally-scout/shared/config"
	mongodbu "github.com/Renan-Rosa/rally-scout/shared/mongodb"
	redisu "github.com/Renan-Rosa/rally-scout/shared/redis"
	"github.com/Renan-Rosa/rally-scout/shared/registry"
)

func main() {
	// --- 1. Load Configuration ---
	cfg, err := config.LoadRosterServiceConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// --- 2. Connect to MongoDB ---
	mongoClient, err := mongodbu.NewClient(cfg.MongoDBConnStr, cfg.MongoDBDatabase)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err = mongoClient.Disconnect(context.Background()); err != nil {
			log.Fatalf("Failed to disconnect from MongoDB: %v", err)
		}
		log.Println("Disconnected from MongoDB.")
	}()

	// --- 3. Connect to Redis (registry only; hot state lives in scout) ---
	redisClient, err := redisu.NewRedisClusterClient(cfg.RedisAddrs, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("Failed to connect to Redis Cluster: %v", err)
	}
	defer func() {
		if err = redisClient.Close(); err != nil {
			log.Fatalf("Error closing Redis client: %v", err)
		}
		log.Println("Redis Client closed..")
	}()

	// --- 4. Initialize Data Stores ---
	teamsCollection := mongoClient.Collection(cfg.MongoDBTeamsCollection)
	playersCollection := mongoClient.Collection(cfg.MongoDBPlayersCollection)
	matchesCollection := mongoClient.Collection(cfg.MongoDBMatchesCollection)
	lineupsCollection := mongoClient.Collection(cfg.MongoDBLineupsCollection)
	actionsCollection := mongoClient.Collection(cfg.MongoDBActionsCollection)

	teamStore := store.NewTeamStore(teamsCollection)
	playerStore := store.NewPlayerStore(playersCollection)
	matchStore := store.NewMatchStore(mongoClient, matchesCollection)
	lineupStore := store.NewLineupStore(mongoClient, lineupsCollection)
	actionStore := store.NewActionStore(mongoClient, actionsCollection, matchesCollection)

	// --- 5. Initialize Business Logic Services ---
	teamService := service.NewTeamService(mongoClient, teamStore, playerStore, matchStore, lineupStore, actionStore)
	playerService := service.NewPlayerService(playerStore, teamStore, actionStore)
	matchService := service.NewMatchService(matchStore, teamStore, playerStore, lineupStore, actionStore)
	statsService := service.NewStatsService(teamStore, playerStore, matchStore, actionStore,
		cfg.DashboardPerformerMinimum, cfg.TeamPagePerformerMinimum, cfg.TopPerformerLimit)

	// --- 6. Initialize API Handlers ---
	rosterAPIHandlers := rosterapi.NewRosterAPIHandlers(teamService, playerService, matchService, statsService)

	// --- 7. Initialize and Start Service Registrar ---
	registrar := registry.NewServiceRegistrar(redisClient, "roster-service", &cfg.CommonConfig)
	registrar.Start()
	defer registrar.Stop()

	// --- 8. Setup HTTP Server and Register Routes ---
	baseServer := api.NewBaseServer(cfg.ListenAddr, log.Default())
	rosterAPIHandlers.RegisterRoutes(baseServer.Router)

	// --- 9. Start HTTP Server ---
	go func() {
		log.Printf("HTTP server starting on %s...", cfg.ListenAddr)
		if err := baseServer.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed to start: %v", err)
		}
	}()

	// --- 10. Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := baseServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("HTTP server graceful shutdown failed: %v", err)
	}
	log.Println("Server gracefully stopped.")
}
