// scout/syncer/scoreboard_syncer.go
package syncer

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Renan-Rosa/rally-scout/scout/service"
	"github.com/Renan-Rosa/rally-scout/scout/store"
	"github.com/Renan-Rosa/rally-scout/shared/api"
	"github.com/Renan-Rosa/rally-scout/shared/cluster"
	"github.com/Renan-Rosa/rally-scout/shared/config"
	"github.com/Renan-Rosa/rally-scout/shared/registry"
	"github.com/Renan-Rosa/rally-scout/shared/volleyball"
)

// ScoreboardSyncer periodically reconciles this instance's open sessions
// against the roster service and republishes their snapshots, and, on the
// elected leader, sweeps up session markers whose matches are no longer live
// (a crashed instance leaves those behind).
type ScoreboardSyncer struct {
	config            *config.ScoutServiceConfig
	scoutService      *service.ScoutService
	scoreboardStore   *store.ScoreboardStore
	assignmentManager *cluster.ServiceAssignmentManager
	registryClient    *registry.RegistryClient
	serviceRegistrar  *registry.ServiceRegistrar
	ctx               context.Context
	cancel            context.CancelFunc
}

// NewScoreboardSyncer creates a new ScoreboardSyncer instance.
// It relies on ServiceAssignmentManager to determine leadership for the
// global sweep task.
func NewScoreboardSyncer(
	cfg *config.ScoutServiceConfig,
	scoutService *service.ScoutService,
	scoreboardStore *store.ScoreboardStore,
	registryClient *registry.RegistryClient,
	serviceRegistrar *registry.ServiceRegistrar,
) *ScoreboardSyncer {
	log.Println("ScoreboardSyncer: Initializing.")
	ctx, cancel := context.WithCancel(context.Background())

	assignmentManager := cluster.NewServiceAssignmentManager(
		registryClient,
		serviceRegistrar,
		cfg.HeartbeatInterval,
	)

	return &ScoreboardSyncer{
		config:            cfg,
		scoutService:      scoutService,
		scoreboardStore:   scoreboardStore,
		assignmentManager: assignmentManager,
		registryClient:    registryClient,
		serviceRegistrar:  serviceRegistrar,
		ctx:               ctx,
		cancel:            cancel,
	}
}

// Start initiates the reconciliation loop. This should be run in a goroutine.
func (ss *ScoreboardSyncer) Start() {
	log.Printf("Scoreboard Syncer starting with reconcile interval: %v", ss.config.ReconcileInterval)
	ticker := time.NewTicker(ss.config.ReconcileInterval)
	defer ticker.Stop()

	go ss.assignmentManager.Start()

	for {
		select {
		case <-ss.ctx.Done():
			log.Println("Scoreboard Syncer shutting down.")
			ss.assignmentManager.Stop()
			return
		case <-ticker.C:
			ss.reconcileOwnSessions()
			ss.performGlobalSweep()
		}
	}
}

// Stop gracefully stops the reconciliation loop.
func (ss *ScoreboardSyncer) Stop() {
	ss.cancel()
}

// reconcileOwnSessions refreshes every session held by this instance from the
// roster service and republishes its snapshot. Only this instance can do it;
// the sessions live in its memory.
func (ss *ScoreboardSyncer) reconcileOwnSessions() {
	sessions := ss.scoutService.Sessions()
	if len(sessions) == 0 {
		return
	}

	reconCtx, cancel := context.WithTimeout(ss.ctx, ss.config.ReconcileTimeout)
	defer cancel()

	for _, ls := range sessions {
		select {
		case <-reconCtx.Done():
			log.Printf("WARNING: Syncer: Reconcile context canceled mid-pass: %v", reconCtx.Err())
			return
		default:
		}

		match, err := ls.Refresh(reconCtx)
		if err != nil {
			if errors.Is(err, api.ErrNotFound) {
				// Match was deleted underneath the session. Drop it.
				log.Printf("WARNING: Syncer: Match %s vanished from roster, closing its session.", ls.MatchID)
				if closeErr := ss.scoutService.CloseSession(reconCtx, ls.UserID, ls.MatchID); closeErr != nil {
					log.Printf("ERROR: Syncer: Failed to close session for vanished match %s: %v", ls.MatchID, closeErr)
				}
				if delErr := ss.scoreboardStore.DeleteScoreboard(reconCtx, ls.MatchID); delErr != nil {
					log.Printf("ERROR: Syncer: Failed to delete scoreboard of vanished match %s: %v", ls.MatchID, delErr)
				}
				continue
			}
			log.Printf("ERROR: Syncer: Failed to refresh session for match %s: %v", ls.MatchID, err)
			continue
		}

		if err := ss.scoreboardStore.SaveScoreboard(reconCtx, ls.Snapshot()); err != nil {
			log.Printf("ERROR: Syncer: Failed to republish scoreboard for match %s: %v", ls.MatchID, err)
		}

		if match.Status != volleyball.StatusLive {
			// Finished or canceled outside this session, e.g. directly on the
			// roster service. The session has nothing left to scout.
			log.Printf("INFO: Syncer: Match %s is %s, closing its session.", ls.MatchID, match.Status)
			if err := ss.scoutService.CloseSession(reconCtx, ls.UserID, ls.MatchID); err != nil {
				log.Printf("ERROR: Syncer: Failed to close session for match %s: %v", ls.MatchID, err)
			}
		}
	}
}

// performGlobalSweep removes open-session markers pointing at instances that
// no longer exist. Only the cluster leader (determined by assignmentManager
// for a fixed key) performs this.
func (ss *ScoreboardSyncer) performGlobalSweep() {
	const globalSweepTaskKey = "global_session_sweep_task"

	isLeader, err := ss.assignmentManager.IsResponsible(globalSweepTaskKey)
	if err != nil {
		log.Printf("ERROR: ScoreboardSyncer: Failed to check leadership for task '%s': %v", globalSweepTaskKey, err)
		return
	}
	if !isLeader {
		return
	}

	sweepCtx, cancel := context.WithTimeout(ss.ctx, ss.config.ReconcileTimeout)
	defer cancel()

	openSessions, err := ss.scoreboardStore.GetOpenSessions(sweepCtx)
	if err != nil {
		log.Printf("ERROR: Syncer: Failed to list open sessions for sweep: %v", err)
		return
	}
	if len(openSessions) == 0 {
		return
	}

	activeInstances, err := ss.activeInstanceIDs(sweepCtx)
	if err != nil {
		log.Printf("ERROR: Syncer: Failed to list active scout instances for sweep: %v", err)
		return
	}

	for matchID, instanceID := range openSessions {
		select {
		case <-sweepCtx.Done():
			log.Printf("WARNING: Syncer: Sweep context canceled mid-pass: %v", sweepCtx.Err())
			return
		default:
		}

		if _, alive := activeInstances[instanceID]; alive {
			continue
		}

		// The holder is gone. Its session memory is lost; drop the marker so
		// another scout can reopen the match.
		log.Printf("INFO: Syncer: Sweeping orphaned session marker for match %s (holder %s is gone).", matchID, instanceID)
		if err := ss.scoreboardStore.MarkSessionClosed(sweepCtx, matchID); err != nil {
			log.Printf("ERROR: Syncer: Failed to sweep session marker for match %s: %v", matchID, err)
		}
	}
}

// activeInstanceIDs returns the IDs of the scout instances currently
// registered and heartbeating.
func (ss *ScoreboardSyncer) activeInstanceIDs(ctx context.Context) (map[string]struct{}, error) {
	active, err := ss.registryClient.GetActiveServices(ctx, ss.serviceRegistrar.GetServiceType())
	if err != nil {
		return nil, err
	}
	ids := make(map[string]struct{}, len(active))
	for id := range active {
		ids[id] = struct{}{}
	}
	return ids, nil
}
