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

	scoutapi "github.com/Renan-Rosa/rally-scout/scout/api"
	"github.com/Renan-Rosa/rally-scout/scout/service"
	"github.com/Renan-Rosa/rally-scout/scout/store"
	"github.com/Renan-Rosa/rally-scout/scout/syncer"
	"github.com/Renan-Rosa/rally-scout/shared/api"
	"github.com/Renan-Rosa/rally-scout/shared/config"
	redisu "github.com/Renan-Rosa/rally-scout/shared/redis"
	"github.com/Renan-Rosa/rally-scout/shared/registry"
	sharedservice "github.com/Renan-Rosa/rally-scout/shared/service"
)

func main() {
	// --- 1. Load Configuration ---
	cfg, err := config.LoadScoutServiceConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// --- 2. Connect to Redis ---
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

	// --- 3. Initialize Service Registrar (the instance ID keys sessions) ---
	registrar := registry.NewServiceRegistrar(redisClient, "scout-service", &cfg.CommonConfig)
	registrar.Start()
	defer registrar.Stop()

	registryClient := registry.NewRegistryClient(redisClient, cfg.HeartbeatTTL)

	// --- 4. Initialize Stores and Clients ---
	scoreboardStore := store.NewScoreboardStore(redisClient, cfg.ScoreboardTTL)
	rosterClient := sharedservice.NewRosterClient(cfg.RosterServiceURL)

	// --- 5. Initialize Business Logic Service ---
	scoutService := service.NewScoutService(rosterClient, scoreboardStore, registrar.GetServiceID())

	// --- 6. Initialize and Start Scoreboard Syncer ---
	scoreboardSyncer := syncer.NewScoreboardSyncer(cfg, scoutService, scoreboardStore, registryClient, registrar)
	go scoreboardSyncer.Start()
	defer scoreboardSyncer.Stop()

	// --- 7. Initialize API Handlers ---
	scoutAPIHandlers := scoutapi.NewScoutAPIHandlers(scoutService)

	// --- 8. Setup HTTP Server and Register Routes ---
	baseServer := api.NewBaseServer(cfg.ListenAddr, log.Default())
	scoutAPIHandlers.RegisterRoutes(baseServer.Router)

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
