// roster/service/stats_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Renan-Rosa/rally-scout/roster/store"
	"github.com/Renan-Rosa/rally-scout/shared/models"
	"github.com/Renan-Rosa/rally-scout/shared/volleyball"
	"go.mongodb.org/mongo-driver/mongo"
)

// StatsService computes the aggregated read models: the per-team stats page
// and the cross-team dashboard. Everything here is derived from the match
// documents and the action ledger, nothing is stored.
type StatsService struct {
	teamStore   *store.TeamStore
	playerStore *store.PlayerStore
	matchStore  *store.MatchStore
	actionStore *store.ActionStore

	dashboardPerformerMinimum int
	teamPagePerformerMinimum  int
	topPerformerLimit         int
}

// NewStatsService creates a new StatsService instance.
func NewStatsService(
	ts *store.TeamStore,
	ps *store.PlayerStore,
	ms *store.MatchStore,
	as *store.ActionStore,
	dashboardPerformerMinimum, teamPagePerformerMinimum, topPerformerLimit int,
) *StatsService {
	return &StatsService{
		teamStore:                 ts,
		playerStore:               ps,
		matchStore:                ms,
		actionStore:               as,
		dashboardPerformerMinimum: dashboardPerformerMinimum,
		teamPagePerformerMinimum:  teamPagePerformerMinimum,
		topPerformerLimit:         topPerformerLimit,
	}
}

// TopPerformer is one row of an efficiency ranking.
type TopPerformer struct {
	Player     *models.Player `json:"player"`
	Actions    int            `json:"actions"`
	Efficiency int            `json:"efficiency"`
}

// TeamStatsReport is the aggregated stats page for one team.
type TeamStatsReport struct {
	Team          *models.Team             `json:"team"`
	Record        volleyball.WinLossRecord `json:"record"`
	WinRate       int                      `json:"winRate"`
	SetsWon       int                      `json:"setsWon"`
	SetsLost      int                      `json:"setsLost"`
	MatchesPlayed int                      `json:"matchesPlayed"`
	TotalActions  int                      `json:"totalActions"`
	Breakdown     []ActionBreakdown        `json:"breakdown"`
	Efficiency    int                      `json:"efficiency"`
	TopPerformers []TopPerformer           `json:"topPerformers"`
}

// TeamStats builds the stats page for one of the user's teams from its
// finished matches.
func (ss *StatsService) TeamStats(ctx context.Context, userID, teamID string) (*TeamStatsReport, error) {
	team, err := ss.teamStore.GetTeam(ctx, userID, teamID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("service failed to resolve team: %w", err)
	}

	finished, err := ss.matchStore.ListMatchesByTeamsAndStatus(ctx, []string{teamID}, volleyball.StatusFinished)
	if err != nil {
		return nil, fmt.Errorf("service failed to list finished matches: %w", err)
	}

	report := &TeamStatsReport{
		Team:          team,
		MatchesPlayed: len(finished),
	}

	matchIDs := make([]string, 0, len(finished))
	for _, m := range finished {
		report.Record.Add(m.Sets)
		home, away := volleyball.SetsWon(m.Sets)
		report.SetsWon += home
		report.SetsLost += away
		matchIDs = append(matchIDs, m.ID)
	}
	report.WinRate = report.Record.WinRate()

	counts, err := ss.actionStore.CountTypeResultsByMatches(ctx, matchIDs)
	if err != nil {
		return nil, fmt.Errorf("service failed to aggregate team actions: %w", err)
	}
	breakdown, overall, total := buildBreakdown(counts)
	report.Breakdown = breakdown
	report.TotalActions = total
	report.Efficiency = volleyball.EfficiencyScore(overall)

	performers, err := ss.rankPerformers(ctx, matchIDs, ss.teamPagePerformerMinimum)
	if err != nil {
		return nil, err
	}
	report.TopPerformers = performers

	return report, nil
}

// DashboardReport is the landing-page summary across all of a user's teams.
type DashboardReport struct {
	Teams         int64                    `json:"teams"`
	Players       int64                    `json:"players"`
	Matches       int64                    `json:"matches"`
	Record        volleyball.WinLossRecord `json:"record"`
	WinRate       int                      `json:"winRate"`
	NextMatch     *models.Match            `json:"nextMatch,omitempty"`
	LastResult    *models.Match            `json:"lastResult,omitempty"`
	TopPerformers []TopPerformer           `json:"topPerformers"`
}

// Dashboard builds the cross-team summary for a user.
func (ss *StatsService) Dashboard(ctx context.Context, userID string) (*DashboardReport, error) {
	teamIDs, err := ss.teamStore.ListTeamIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service failed to list teams: %w", err)
	}

	report := &DashboardReport{Teams: int64(len(teamIDs))}

	report.Players, err = ss.playerStore.CountPlayersByTeams(ctx, teamIDs)
	if err != nil {
		return nil, fmt.Errorf("service failed to count players: %w", err)
	}
	report.Matches, err = ss.matchStore.CountMatchesByTeams(ctx, teamIDs)
	if err != nil {
		return nil, fmt.Errorf("service failed to count matches: %w", err)
	}

	finished, err := ss.matchStore.ListMatchesByTeamsAndStatus(ctx, teamIDs, volleyball.StatusFinished)
	if err != nil {
		return nil, fmt.Errorf("service failed to list finished matches: %w", err)
	}
	matchIDs := make([]string, 0, len(finished))
	for _, m := range finished {
		report.Record.Add(m.Sets)
		matchIDs = append(matchIDs, m.ID)
	}
	report.WinRate = report.Record.WinRate()

	next, err := ss.matchStore.NextScheduledMatch(ctx, teamIDs, time.Now())
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("service failed to find next match: %w", err)
	}
	report.NextMatch = next

	last, err := ss.matchStore.LastFinishedMatch(ctx, teamIDs)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("service failed to find last result: %w", err)
	}
	report.LastResult = last

	performers, err := ss.rankPerformers(ctx, matchIDs, ss.dashboardPerformerMinimum)
	if err != nil {
		return nil, err
	}
	report.TopPerformers = performers

	return report, nil
}

// rankPerformers folds per-player result counts over the given matches into
// an efficiency ranking. Players below the minimum sample size are excluded
// so one lucky touch cannot top the list.
func (ss *StatsService) rankPerformers(ctx context.Context, matchIDs []string, minimum int) ([]TopPerformer, error) {
	counts, err := ss.actionStore.CountByPlayerResult(ctx, matchIDs)
	if err != nil {
		return nil, fmt.Errorf("service failed to aggregate performer actions: %w", err)
	}

	byPlayer := make(map[string]map[volleyball.ActionResult]int)
	for _, c := range counts {
		if byPlayer[c.PlayerID] == nil {
			byPlayer[c.PlayerID] = make(map[volleyball.ActionResult]int)
		}
		byPlayer[c.PlayerID][c.Result] += c.Count
	}

	performers := make([]TopPerformer, 0, len(byPlayer))
	for playerID, results := range byPlayer {
		total := 0
		for _, n := range results {
			total += n
		}
		if total < minimum {
			continue
		}

		player, err := ss.playerStore.GetPlayer(ctx, playerID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				// Deleted from the roster; the ledger keeps the ID but the
				// ranking has nobody to show.
				continue
			}
			return nil, fmt.Errorf("service failed to resolve performer %s: %w", playerID, err)
		}

		performers = append(performers, TopPerformer{
			Player:     player,
			Actions:    total,
			Efficiency: volleyball.EfficiencyScore(results),
		})
	}

	sort.Slice(performers, func(i, j int) bool {
		if performers[i].Efficiency != performers[j].Efficiency {
			return performers[i].Efficiency > performers[j].Efficiency
		}
		if performers[i].Actions != performers[j].Actions {
			return performers[i].Actions > performers[j].Actions
		}
		return performers[i].Player.ID < performers[j].Player.ID
	})

	if len(performers) > ss.topPerformerLimit {
		performers = performers[:ss.topPerformerLimit]
	}
	return performers, nil
}
