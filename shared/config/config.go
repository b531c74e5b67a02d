// shared/config/config.go
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// CommonConfig holds configuration fields shared by the roster and scout
// services.
type CommonConfig struct {
	RedisAddrs              []string      // Redis server addresses (e.g., "redis-cluster:6379")
	RedisPassword           string        // Redis password for authentication
	HeartbeatInterval       time.Duration // How often to send a heartbeat to the registry (e.g., 5s)
	HeartbeatTTL            time.Duration // How long an instance is considered alive without a heartbeat (e.g., 15s)
	RegistryCleanupInterval time.Duration // How often the registry actively cleans stale entries (e.g., 30s)
	ServiceIP               string        // The IP address this service advertises for registration
	ServicePort             int           // The port this service listens on, used for registration
}

// RosterServiceConfig holds configuration specific to the roster service.
type RosterServiceConfig struct {
	CommonConfig
	ListenAddr                string // Address for the HTTP server (e.g., ":8081")
	MongoDBConnStr            string // MongoDB connection string
	MongoDBDatabase           string // MongoDB database name
	MongoDBTeamsCollection    string
	MongoDBPlayersCollection  string
	MongoDBMatchesCollection  string
	MongoDBLineupsCollection  string
	MongoDBActionsCollection  string
	DashboardPerformerMinimum int // Minimum recorded actions before a player ranks on the dashboard
	TeamPagePerformerMinimum  int // Minimum recorded actions before a player ranks on the team page
	TopPerformerLimit         int // How many ranked players each listing returns
}

// ScoutServiceConfig holds configuration specific to the scout service.
type ScoutServiceConfig struct {
	CommonConfig
	ListenAddr        string        // Address for the HTTP server (e.g., ":8082")
	RosterServiceURL  string        // Base URL of the roster service
	ScoreboardTTL     time.Duration // TTL for live scoreboard snapshots in Redis
	ReconcileInterval time.Duration // How often open sessions are reconciled against roster truth
	ReconcileTimeout  time.Duration // Timeout for one full reconciliation pass
}

// LoadCommonConfig loads common configuration from environment variables.
func LoadCommonConfig() (CommonConfig, error) {
	cfg := CommonConfig{}
	var err error

	redisAddrsStr := os.Getenv("REDIS_ADDRS")
	if redisAddrsStr == "" {
		cfg.RedisAddrs = []string{"localhost:6379"}
	} else {
		for _, addr := range strings.Split(redisAddrsStr, ",") {
			cfg.RedisAddrs = append(cfg.RedisAddrs, strings.TrimSpace(addr))
		}
	}

	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")

	cfg.HeartbeatInterval, err = getDuration("SERVICE_HEARTBEAT_INTERVAL", 5*time.Second)
	if err != nil {
		return cfg, err
	}
	cfg.HeartbeatTTL, err = getDuration("SERVICE_HEARTBEAT_TTL", 15*time.Second)
	if err != nil {
		return cfg, err
	}
	cfg.RegistryCleanupInterval, err = getDuration("SERVICE_REGISTRY_CLEANUP_INTERVAL", 30*time.Second)
	if err != nil {
		return cfg, err
	}

	// Injected by Kubernetes; falls back for local development.
	cfg.ServiceIP = os.Getenv("POD_IP")
	if cfg.ServiceIP == "" {
		cfg.ServiceIP = "0.0.0.0"
		fmt.Printf("WARNING: POD_IP not set, defaulting ServiceIP to %s\n", cfg.ServiceIP)
	}

	return cfg, nil
}

// LoadRosterServiceConfig loads configuration for the roster service.
func LoadRosterServiceConfig() (*RosterServiceConfig, error) {
	common, err := LoadCommonConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load common config for roster-service: %w", err)
	}

	cfg := &RosterServiceConfig{
		CommonConfig:             common,
		ListenAddr:               os.Getenv("ROSTER_SERVICE_LISTEN_ADDR"),
		MongoDBConnStr:           os.Getenv("MONGODB_CONN_STR"),
		MongoDBDatabase:          os.Getenv("MONGODB_DATABASE"),
		MongoDBTeamsCollection:   os.Getenv("MONGODB_TEAMS_COLLECTION"),
		MongoDBPlayersCollection: os.Getenv("MONGODB_PLAYERS_COLLECTION"),
		MongoDBMatchesCollection: os.Getenv("MONGODB_MATCHES_COLLECTION"),
		MongoDBLineupsCollection: os.Getenv("MONGODB_LINEUPS_COLLECTION"),
		MongoDBActionsCollection: os.Getenv("MONGODB_ACTIONS_COLLECTION"),
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8081"
	}
	if cfg.MongoDBConnStr == "" {
		cfg.MongoDBConnStr = "mongodb://localhost:27017"
	}
	if cfg.MongoDBDatabase == "" {
		cfg.MongoDBDatabase = "rallyscout"
	}
	if cfg.MongoDBTeamsCollection == "" {
		cfg.MongoDBTeamsCollection = "teams"
	}
	if cfg.MongoDBPlayersCollection == "" {
		cfg.MongoDBPlayersCollection = "players"
	}
	if cfg.MongoDBMatchesCollection == "" {
		cfg.MongoDBMatchesCollection = "matches"
	}
	if cfg.MongoDBLineupsCollection == "" {
		cfg.MongoDBLineupsCollection = "lineups"
	}
	if cfg.MongoDBActionsCollection == "" {
		cfg.MongoDBActionsCollection = "actions"
	}

	// Two call sites, two thresholds. Kept separate on purpose until product
	// decides whether they should agree.
	cfg.DashboardPerformerMinimum, err = getInt("DASHBOARD_PERFORMER_MINIMUM", 3)
	if err != nil {
		return nil, err
	}
	cfg.TeamPagePerformerMinimum, err = getInt("TEAM_PAGE_PERFORMER_MINIMUM", 5)
	if err != nil {
		return nil, err
	}
	cfg.TopPerformerLimit, err = getInt("TOP_PERFORMER_LIMIT", 5)
	if err != nil {
		return nil, err
	}

	cfg.ServicePort, err = extractPort(cfg.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to extract port from ROSTER_SERVICE_LISTEN_ADDR '%s': %w", cfg.ListenAddr, err)
	}

	return cfg, nil
}

// LoadScoutServiceConfig loads configuration for the scout service.
func LoadScoutServiceConfig() (*ScoutServiceConfig, error) {
	common, err := LoadCommonConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load common config for scout-service: %w", err)
	}

	cfg := &ScoutServiceConfig{
		CommonConfig:     common,
		ListenAddr:       os.Getenv("SCOUT_SERVICE_LISTEN_ADDR"),
		RosterServiceURL: os.Getenv("ROSTER_SERVICE_URL"),
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8082"
	}
	if cfg.RosterServiceURL == "" {
		cfg.RosterServiceURL = "http://roster-service:8081"
	}

	cfg.ScoreboardTTL, err = getDuration("SCOUT_SCOREBOARD_TTL", 6*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.ReconcileInterval, err = getDuration("SCOUT_RECONCILE_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.ReconcileTimeout, err = getDuration("SCOUT_RECONCILE_TIMEOUT", 20*time.Second)
	if err != nil {
		return nil, err
	}

	cfg.ServicePort, err = extractPort(cfg.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to extract port from SCOUT_SERVICE_LISTEN_ADDR '%s': %w", cfg.ListenAddr, err)
	}

	return cfg, nil
}

// getDuration parses a duration from an environment variable.
func getDuration(envKey string, defaultVal time.Duration) (time.Duration, error) {
	valStr := os.Getenv(envKey)
	if valStr == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(valStr)
	if err != nil {
		return 0, fmt.Errorf("invalid duration format for %s: %w", envKey, err)
	}
	return d, nil
}

// getInt parses an int from an environment variable.
func getInt(envKey string, defaultVal int) (int, error) {
	valStr := os.Getenv(envKey)
	if valStr == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("invalid integer format for %s: %w", envKey, err)
	}
	return i, nil
}

// extractPort extracts the numeric port from a listen address
// (e.g., ":8082" -> 8082, "0.0.0.0:8082" -> 8082).
func extractPort(listenAddr string) (int, error) {
	_, portStr, err := net.SplitHostPort(listenAddr)
	if err != nil {
		if strings.HasPrefix(listenAddr, ":") {
			portStr = strings.TrimPrefix(listenAddr, ":")
		} else {
			return 0, fmt.Errorf("invalid ListenAddr format for port extraction: %w", err)
		}
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, fmt.Errorf("invalid port number '%s': %w", portStr, err)
	}
	return port, nil
}
