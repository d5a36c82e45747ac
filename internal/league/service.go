package league

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/echomasterleague/league-bot/internal/config"
	"github.com/echomasterleague/league-bot/internal/record"
	"github.com/echomasterleague/league-bot/internal/table"
)

// Service implements the composite operations that touch several tables.
// Every public method performs all reads and validations before the first
// enqueue, inside one critical section, which is what makes the operation
// effectively atomic from the caller's point of view. Durability still
// requires an explicit store flush; a crash between enqueue and flush loses
// the batch.
type Service struct {
	mu  sync.Mutex
	t   *Tables
	cfg config.LeagueConfig
}

// NewService creates the league service over the given tables.
func NewService(t *Tables, cfg config.LeagueConfig) *Service {
	return &Service{t: t, cfg: cfg}
}

// RegisterPlayer creates a Player record after validating the region.
func (s *Service) RegisterPlayer(ctx context.Context, discordID, playerName, region string) (*record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !KnownRegion(region) {
		return nil, fmt.Errorf("%w: %q", ErrRegionNotFound, region)
	}
	rec, err := s.t.Players.Create(ctx, map[string]string{
		FieldDiscordID:  discordID,
		FieldPlayerName: playerName,
		FieldRegion:     region,
	})
	if err != nil {
		return nil, err
	}
	log.Info("Registered player", "player", playerName, "region", region)
	return rec, nil
}

// CreateTeam creates an Inactive team owned by the captain. The team region
// is the captain's region at creation time.
func (s *Service) CreateTeam(ctx context.Context, teamName, captainPlayerID string) (*record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	captain, err := s.t.Players.Get(ctx, captainPlayerID)
	if err != nil {
		return nil, err
	}
	if err := s.checkPlayerFree(ctx, captainPlayerID); err != nil {
		return nil, err
	}

	team, err := s.t.Teams.Create(ctx, map[string]string{
		FieldTeamName: teamName,
		FieldStatus:   string(TeamStatusInactive),
		FieldVwRegion: captain.Get(FieldRegion),
	})
	if err != nil {
		return nil, err
	}
	_, err = s.t.TeamPlayers.Create(ctx, map[string]string{
		FieldPlayerID:     captainPlayerID,
		FieldTeamID:       team.ID(),
		FieldIsCaptain:    "Yes",
		FieldIsCoCaptain:  "No",
		FieldVwPlayerName: captain.Get(FieldPlayerName),
		FieldVwTeamName:   teamName,
	})
	if err != nil {
		return nil, err
	}
	if err := s.updateRosterView(ctx, team.ID()); err != nil {
		return nil, err
	}
	log.Info("Created team", "team", teamName, "captain", captain.Get(FieldPlayerName))
	return team, nil
}

// AddPlayerToTeam verifies the player is free to join (no current team, no
// cooldown, no suspension, matching region) and that the team has room, then
// inserts the TeamPlayer row. Reaching the minimum roster size flips the team
// Active.
func (s *Service) AddPlayerToTeam(ctx context.Context, playerID, teamID string, asCoCaptain bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addPlayerToTeam(ctx, playerID, teamID, asCoCaptain)
}

func (s *Service) addPlayerToTeam(ctx context.Context, playerID, teamID string, asCoCaptain bool) error {
	player, err := s.t.Players.Get(ctx, playerID)
	if err != nil {
		return err
	}
	team, err := s.t.Teams.Get(ctx, teamID)
	if err != nil {
		return err
	}
	if err := s.checkPlayerFree(ctx, playerID); err != nil {
		return err
	}
	if !strings.EqualFold(player.Get(FieldRegion), team.Get(FieldVwRegion)) {
		return fmt.Errorf("%w: player is %s, team is %s", ErrPlayerRegionMismatch, player.Get(FieldRegion), team.Get(FieldVwRegion))
	}

	roster, err := s.t.TeamPlayers.ByTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if len(roster) >= s.cfg.TeamMax {
		return fmt.Errorf("%w: %d players", ErrTeamSizeTooLarge, len(roster))
	}
	if asCoCaptain {
		for _, tp := range roster {
			if tp.GetBool(FieldIsCoCaptain) {
				return fmt.Errorf("%w: team already has a co-captain", table.ErrRecordAlreadyExists)
			}
		}
	}

	coCaptain := "No"
	if asCoCaptain {
		coCaptain = "Yes"
	}
	_, err = s.t.TeamPlayers.Create(ctx, map[string]string{
		FieldPlayerID:     playerID,
		FieldTeamID:       teamID,
		FieldIsCaptain:    "No",
		FieldIsCoCaptain:  coCaptain,
		FieldVwPlayerName: player.Get(FieldPlayerName),
		FieldVwTeamName:   team.Get(FieldTeamName),
	})
	if err != nil {
		return err
	}

	if len(roster)+1 >= s.cfg.TeamMin && team.Get(FieldStatus) != string(TeamStatusActive) {
		team.Set(FieldStatus, string(TeamStatusActive))
		if err := s.t.Teams.Update(ctx, team); err != nil {
			return err
		}
		log.Info("Team reached minimum roster, now active", "team", team.Get(FieldTeamName))
	}
	return s.updateRosterView(ctx, teamID)
}

// RemovePlayerFromTeam deletes the TeamPlayer row and emits a cooldown. The
// captain cannot leave a non-empty team without transferring first. Dropping
// below the minimum roster size flips the team Inactive.
func (s *Service) RemovePlayerFromTeam(ctx context.Context, playerID, teamID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	team, err := s.t.Teams.Get(ctx, teamID)
	if err != nil {
		return err
	}
	roster, err := s.t.TeamPlayers.ByTeam(ctx, teamID)
	if err != nil {
		return err
	}
	var membership *record.Record
	for _, tp := range roster {
		if tp.Get(FieldPlayerID) == playerID {
			membership = tp
			break
		}
	}
	if membership == nil {
		return fmt.Errorf("%w: player %s, team %s", ErrPlayerNotOnTeam, playerID, teamID)
	}
	if membership.GetBool(FieldIsCaptain) && len(roster) > 1 {
		return ErrCaptainMustTransferFirst
	}

	if err := s.t.TeamPlayers.Delete(ctx, membership.ID()); err != nil {
		return err
	}
	if err := s.emitCooldown(ctx, membership, team.Get(FieldTeamName)); err != nil {
		return err
	}

	if len(roster)-1 < s.cfg.TeamMin && team.Get(FieldStatus) == string(TeamStatusActive) {
		team.Set(FieldStatus, string(TeamStatusInactive))
		if err := s.t.Teams.Update(ctx, team); err != nil {
			return err
		}
		log.Info("Team dropped below minimum roster, now inactive", "team", team.Get(FieldTeamName))
	}
	return s.updateRosterView(ctx, teamID)
}

// TransferCaptain moves the captain flag between two current members.
func (s *Service) TransferCaptain(ctx context.Context, teamID, fromPlayerID, toPlayerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	roster, err := s.t.TeamPlayers.ByTeam(ctx, teamID)
	if err != nil {
		return err
	}
	var from, to *record.Record
	for _, tp := range roster {
		switch tp.Get(FieldPlayerID) {
		case fromPlayerID:
			from = tp
		case toPlayerID:
			to = tp
		}
	}
	if from == nil || to == nil {
		return fmt.Errorf("%w: team %s", ErrPlayerNotOnTeam, teamID)
	}
	if !from.GetBool(FieldIsCaptain) {
		return ErrNotCaptain
	}

	from.SetBool(FieldIsCaptain, false)
	to.SetBool(FieldIsCaptain, true)
	to.SetBool(FieldIsCoCaptain, false)
	if err := s.t.TeamPlayers.Update(ctx, from); err != nil {
		return err
	}
	if err := s.t.TeamPlayers.Update(ctx, to); err != nil {
		return err
	}
	return s.updateRosterView(ctx, teamID)
}

// CreateTeamInvite lets a captain or co-captain invite a player to their
// team. At most one pending invite may exist per (player, team) pair.
func (s *Service) CreateTeamInvite(ctx context.Context, fromPlayerID, toPlayerID string) (*record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fromMembership, err := s.t.TeamPlayers.ByPlayer(ctx, fromPlayerID)
	if err != nil {
		if errors.Is(err, table.ErrRecordNotFound) {
			return nil, ErrNotCaptain
		}
		return nil, err
	}
	if !fromMembership.GetBool(FieldIsCaptain) && !fromMembership.GetBool(FieldIsCoCaptain) {
		return nil, ErrNotCaptain
	}
	teamID := fromMembership.Get(FieldTeamID)

	toPlayer, err := s.t.Players.Get(ctx, toPlayerID)
	if err != nil {
		return nil, err
	}
	fromPlayer, err := s.t.Players.Get(ctx, fromPlayerID)
	if err != nil {
		return nil, err
	}

	invite, err := s.t.TeamInvites.Create(ctx, map[string]string{
		FieldFromPlayerID:     fromPlayerID,
		FieldToPlayerID:       toPlayerID,
		FieldTeamID:           teamID,
		FieldStatus:           string(InviteStatusPending),
		FieldVwFromPlayerName: fromPlayer.Get(FieldPlayerName),
		FieldVwToPlayerName:   toPlayer.Get(FieldPlayerName),
		FieldVwTeamName:       fromMembership.Get(FieldVwTeamName),
	})
	if err != nil {
		if errors.Is(err, table.ErrRecordAlreadyExists) {
			return nil, ErrInviteAlreadyPending
		}
		return nil, err
	}
	invite.SetTime(FieldExpiresAt, time.Now().Add(s.cfg.InviteTTL))
	if err := s.t.TeamInvites.Update(ctx, invite); err != nil {
		return nil, err
	}
	log.Info("Created team invite", "from", fromPlayer.Get(FieldPlayerName), "to", toPlayer.Get(FieldPlayerName))
	return invite, nil
}

// AcceptTeamInvite joins the invited player to the team and marks the invite
// Accepted. An expired invite fails and is marked Revoked.
func (s *Service) AcceptTeamInvite(ctx context.Context, inviteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	invite, err := s.t.TeamInvites.Get(ctx, inviteID)
	if err != nil {
		return err
	}
	if invite.Get(FieldStatus) != string(InviteStatusPending) {
		return ErrInviteNotPending
	}
	if exp := invite.GetTime(FieldExpiresAt); !exp.IsZero() && time.Now().After(exp) {
		invite.Set(FieldStatus, string(InviteStatusRevoked))
		if err := s.t.TeamInvites.Update(ctx, invite); err != nil {
			return err
		}
		return ErrInviteExpired
	}
	if err := s.addPlayerToTeam(ctx, invite.Get(FieldToPlayerID), invite.Get(FieldTeamID), false); err != nil {
		return err
	}
	invite.Set(FieldStatus, string(InviteStatusAccepted))
	return s.t.TeamInvites.Update(ctx, invite)
}

// DeclineTeamInvite marks a pending invite Declined.
func (s *Service) DeclineTeamInvite(ctx context.Context, inviteID string) error {
	return s.resolveInvite(ctx, inviteID, InviteStatusDeclined)
}

// RevokeTeamInvite marks a pending invite Revoked.
func (s *Service) RevokeTeamInvite(ctx context.Context, inviteID string) error {
	return s.resolveInvite(ctx, inviteID, InviteStatusRevoked)
}

func (s *Service) resolveInvite(ctx context.Context, inviteID string, status InviteStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	invite, err := s.t.TeamInvites.Get(ctx, inviteID)
	if err != nil {
		return err
	}
	if invite.Get(FieldStatus) != string(InviteStatusPending) {
		return ErrInviteNotPending
	}
	invite.Set(FieldStatus, string(status))
	return s.t.TeamInvites.Update(ctx, invite)
}

// ExpireTeamInvites revokes every pending invite whose expiry has passed and
// returns how many it touched.
func (s *Service) ExpireTeamInvites(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, err := s.t.TeamInvites.Pending(ctx)
	if err != nil {
		return 0, err
	}
	expired := 0
	now := time.Now()
	for _, invite := range pending {
		exp := invite.GetTime(FieldExpiresAt)
		if exp.IsZero() || now.Before(exp) {
			continue
		}
		invite.Set(FieldStatus, string(InviteStatusRevoked))
		if err := s.t.TeamInvites.Update(ctx, invite); err != nil {
			return expired, err
		}
		expired++
	}
	if expired > 0 {
		log.Info("Expired team invites", "count", expired)
	}
	return expired, nil
}

// DisbandTeam removes every member (each with a cooldown), marks the team
// Inactive and deletes its roster view row. Historical matches keep the
// team's denormalized name cells.
func (s *Service) DisbandTeam(ctx context.Context, teamID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	team, err := s.t.Teams.Get(ctx, teamID)
	if err != nil {
		return err
	}
	roster, err := s.t.TeamPlayers.ByTeam(ctx, teamID)
	if err != nil {
		return err
	}
	for _, tp := range roster {
		if err := s.t.TeamPlayers.Delete(ctx, tp.ID()); err != nil {
			return err
		}
		if err := s.emitCooldown(ctx, tp, team.Get(FieldTeamName)); err != nil {
			return err
		}
	}
	if team.Get(FieldStatus) != string(TeamStatusInactive) {
		team.Set(FieldStatus, string(TeamStatusInactive))
		if err := s.t.Teams.Update(ctx, team); err != nil {
			return err
		}
	}
	if row, err := s.t.VwRoster.ByTeamName(ctx, team.Get(FieldTeamName)); err == nil {
		if err := s.t.VwRoster.Delete(ctx, row.ID()); err != nil {
			return err
		}
	}
	log.Info("Disbanded team", "team", team.Get(FieldTeamName), "members", len(roster))
	return nil
}

// ScheduleMatch creates a Scheduled match between two teams.
func (s *Service) ScheduleMatch(ctx context.Context, teamAID, teamBID, matchType string) (*record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	teamA, err := s.t.Teams.Get(ctx, teamAID)
	if err != nil {
		return nil, err
	}
	teamB, err := s.t.Teams.Get(ctx, teamBID)
	if err != nil {
		return nil, err
	}
	return s.t.Matches.Create(ctx, map[string]string{
		FieldTeamAID:     teamAID,
		FieldTeamBID:     teamBID,
		FieldMatchType:   matchType,
		FieldMatchStatus: string(MatchStatusScheduled),
		FieldVwTeamAName: teamA.Get(FieldTeamName),
		FieldVwTeamBName: teamB.Get(FieldTeamName),
	})
}

// ReportMatchResult records the scores and completes the match in one step;
// scores are never visible on a match that is not Completed.
func (s *Service) ReportMatchResult(ctx context.Context, matchID string, scoreA, scoreB int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	match, err := s.t.Matches.Get(ctx, matchID)
	if err != nil {
		return err
	}
	if match.Get(FieldMatchStatus) == string(MatchStatusCancelled) {
		return fmt.Errorf("%w: match is cancelled", ErrScoresRequireCompletion)
	}
	result := match.Get(FieldVwTeamAName)
	if scoreB > scoreA {
		result = match.Get(FieldVwTeamBName)
	} else if scoreA == scoreB {
		result = "Draw"
	}
	match.SetInt(FieldScoreA, scoreA)
	match.SetInt(FieldScoreB, scoreB)
	match.Set(FieldResult, result)
	match.Set(FieldMatchStatus, string(MatchStatusCompleted))
	return s.t.Matches.Update(ctx, match)
}

// SuspendPlayer records an administrator-imposed suspension.
func (s *Service) SuspendPlayer(ctx context.Context, playerID, reason string, until time.Time) (*record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, err := s.t.Players.Get(ctx, playerID)
	if err != nil {
		return nil, err
	}
	rec := s.t.Suspensions.CreateRecord(map[string]string{
		FieldPlayerID:     playerID,
		FieldVwPlayerName: player.Get(FieldPlayerName),
		FieldReason:       reason,
	})
	rec.SetTime(FieldExpiresAt, until)
	if err := s.t.Suspensions.Insert(ctx, rec); err != nil {
		return nil, err
	}
	log.Info("Suspended player", "player", player.Get(FieldPlayerName), "until", until)
	return rec, nil
}

// UpdateRosterView rebuilds the denormalized roster row for a team.
func (s *Service) UpdateRosterView(ctx context.Context, teamID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateRosterView(ctx, teamID)
}

func (s *Service) updateRosterView(ctx context.Context, teamID string) error {
	team, err := s.t.Teams.Get(ctx, teamID)
	if err != nil {
		return err
	}
	roster, err := s.t.TeamPlayers.ByTeam(ctx, teamID)
	if err != nil {
		return err
	}

	var captain, coCaptain string
	names := make([]string, 0, len(roster))
	for _, tp := range roster {
		name := tp.Get(FieldVwPlayerName)
		names = append(names, name)
		if tp.GetBool(FieldIsCaptain) {
			captain = name
		}
		if tp.GetBool(FieldIsCoCaptain) {
			coCaptain = name
		}
	}
	sort.Strings(names)
	members := strings.Join(names, ", ")

	row, err := s.t.VwRoster.ByTeamName(ctx, team.Get(FieldTeamName))
	if errors.Is(err, table.ErrRecordNotFound) {
		_, err = s.t.VwRoster.Create(ctx, map[string]string{
			FieldTeamName:  team.Get(FieldTeamName),
			FieldRegion:    team.Get(FieldVwRegion),
			FieldCaptain:   captain,
			FieldCoCaptain: coCaptain,
			FieldMembers:   members,
		})
		return err
	}
	if err != nil {
		return err
	}
	row.Set(FieldRegion, team.Get(FieldVwRegion))
	row.Set(FieldCaptain, captain)
	row.Set(FieldCoCaptain, coCaptain)
	row.Set(FieldMembers, members)
	return s.t.VwRoster.Update(ctx, row)
}

// checkPlayerFree asserts the player is not rostered, not on cooldown and
// not suspended.
func (s *Service) checkPlayerFree(ctx context.Context, playerID string) error {
	if _, err := s.t.TeamPlayers.ByPlayer(ctx, playerID); err == nil {
		return ErrPlayerAlreadyOnTeam
	} else if !errors.Is(err, table.ErrRecordNotFound) {
		return err
	}

	now := time.Now()
	cooldowns, err := s.t.Cooldowns.ByPlayer(ctx, playerID)
	if err != nil {
		return err
	}
	for _, cd := range cooldowns {
		if now.Before(cd.GetTime(FieldExpiresAt)) {
			return fmt.Errorf("%w until %s", ErrPlayerOnCooldown, cd.GetTime(FieldExpiresAt).Format(time.DateOnly))
		}
	}
	return s.checkNotSuspended(ctx, playerID)
}

// checkNotSuspended asserts the player has no live suspension.
func (s *Service) checkNotSuspended(ctx context.Context, playerID string) error {
	suspensions, err := s.t.Suspensions.ByPlayer(ctx, playerID)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, sus := range suspensions {
		if now.Before(sus.GetTime(FieldExpiresAt)) {
			return fmt.Errorf("%w: %s", ErrPlayerSuspended, sus.Get(FieldReason))
		}
	}
	return nil
}

// emitCooldown inserts a cooldown row for a player leaving the named team.
func (s *Service) emitCooldown(ctx context.Context, membership *record.Record, teamName string) error {
	rec := s.t.Cooldowns.CreateRecord(map[string]string{
		FieldPlayerID:     membership.Get(FieldPlayerID),
		FieldVwPlayerName: membership.Get(FieldVwPlayerName),
		FieldVwOldTeam:    teamName,
	})
	rec.SetTime(FieldExpiresAt, time.Now().AddDate(0, 0, s.cfg.CooldownDays))
	return s.t.Cooldowns.Insert(ctx, rec)
}
