package league

import (
	"context"
	"fmt"
	"strings"

	"github.com/echomasterleague/league-bot/internal/record"
	"github.com/echomasterleague/league-bot/internal/sheets"
	"github.com/echomasterleague/league-bot/internal/store"
	"github.com/echomasterleague/league-bot/internal/table"
)

// Tables is the set of typed domain tables. Raw tables live in the DB
// spreadsheet; the denormalized Vw* tables live in the view spreadsheet.
type Tables struct {
	Players            PlayersTable
	Teams              TeamsTable
	TeamPlayers        TeamPlayersTable
	TeamInvites        TeamInvitesTable
	Matches            MatchesTable
	MatchInvites       *table.Table
	MatchResultInvites *table.Table
	Cooldowns          CooldownsTable
	Suspensions        SuspensionsTable
	SubMatches         *table.Table
	SubMatchInvites    *table.Table
	CommandLocks       CommandLocksTable
	Constants          ConstantsTable
	VwRoster           VwRosterTable
}

// NewTables wires every domain table onto the shared store.
func NewTables(s *store.Store) *Tables {
	return &Tables{
		Players:            PlayersTable{table.New(s, TitlePlayers, PlayerFields, uniquePlayer)},
		Teams:              TeamsTable{table.New(s, TitleTeams, TeamFields, uniqueTeam)},
		TeamPlayers:        TeamPlayersTable{table.New(s, TitleTeamPlayers, TeamPlayerFields, uniqueTeamPlayer)},
		TeamInvites:        TeamInvitesTable{table.New(s, TitleTeamInvites, TeamInviteFields, uniqueTeamInvite)},
		Matches:            MatchesTable{table.New(s, TitleMatches, MatchFields, nil)},
		MatchInvites:       table.New(s, TitleMatchInvites, MatchInviteFields, nil),
		MatchResultInvites: table.New(s, TitleMatchResultInvites, MatchResultInviteFields, nil),
		Cooldowns:          CooldownsTable{table.New(s, TitleCooldowns, CooldownFields, nil)},
		Suspensions:        SuspensionsTable{table.New(s, TitleSuspensions, SuspensionFields, nil)},
		SubMatches:         table.New(s, TitleSubMatches, SubMatchFields, nil),
		SubMatchInvites:    table.New(s, TitleSubMatchInvites, SubMatchInviteFields, nil),
		CommandLocks:       CommandLocksTable{table.New(s, TitleCommandLocks, CommandLockFields, uniqueCommandLock)},
		Constants:          ConstantsTable{table.New(s, TitleConstants, ConstantFields, uniqueConstant)},
		VwRoster:           VwRosterTable{table.New(s, TitleVwRoster, VwRosterFields, uniqueRoster)},
	}
}

// Init registers every worksheet, creating missing tabs with header rows.
func (t *Tables) Init(ctx context.Context, db, view sheets.Spreadsheet) error {
	dbTables := []*table.Table{
		t.Players.Table, t.Teams.Table, t.TeamPlayers.Table, t.TeamInvites.Table,
		t.Matches.Table, t.MatchInvites, t.MatchResultInvites,
		t.Cooldowns.Table, t.Suspensions.Table,
		t.SubMatches, t.SubMatchInvites,
		t.CommandLocks.Table, t.Constants.Table,
	}
	for _, tbl := range dbTables {
		if err := tbl.Init(ctx, db); err != nil {
			return fmt.Errorf("init table %s: %w", tbl.Title(), err)
		}
	}
	if err := t.VwRoster.Init(ctx, view); err != nil {
		return fmt.Errorf("init table %s: %w", t.VwRoster.Title(), err)
	}
	return nil
}

// Uniqueness predicates, consulted by the base table before every insert.

func uniquePlayer(candidate *record.Record, existing []*record.Record) error {
	for _, rec := range existing {
		if rec.Get(FieldDiscordID) == candidate.Get(FieldDiscordID) {
			return fmt.Errorf("%w: player with discord id %s", table.ErrRecordAlreadyExists, candidate.Get(FieldDiscordID))
		}
		if strings.EqualFold(rec.Get(FieldPlayerName), candidate.Get(FieldPlayerName)) {
			return fmt.Errorf("%w: player name %q", table.ErrRecordAlreadyExists, candidate.Get(FieldPlayerName))
		}
	}
	return nil
}

func uniqueTeam(candidate *record.Record, existing []*record.Record) error {
	for _, rec := range existing {
		if strings.EqualFold(rec.Get(FieldTeamName), candidate.Get(FieldTeamName)) {
			return fmt.Errorf("%w: team name %q", table.ErrRecordAlreadyExists, candidate.Get(FieldTeamName))
		}
	}
	return nil
}

func uniqueTeamPlayer(candidate *record.Record, existing []*record.Record) error {
	for _, rec := range existing {
		if rec.Get(FieldPlayerID) == candidate.Get(FieldPlayerID) {
			return fmt.Errorf("%w: player %s is already rostered", table.ErrRecordAlreadyExists, candidate.Get(FieldPlayerID))
		}
	}
	return nil
}

func uniqueTeamInvite(candidate *record.Record, existing []*record.Record) error {
	for _, rec := range existing {
		if rec.Get(FieldStatus) == string(InviteStatusPending) &&
			rec.Get(FieldToPlayerID) == candidate.Get(FieldToPlayerID) &&
			rec.Get(FieldTeamID) == candidate.Get(FieldTeamID) {
			return fmt.Errorf("%w: pending invite for player %s to team %s", table.ErrRecordAlreadyExists, candidate.Get(FieldToPlayerID), candidate.Get(FieldTeamID))
		}
	}
	return nil
}

func uniqueCommandLock(candidate *record.Record, existing []*record.Record) error {
	for _, rec := range existing {
		if strings.EqualFold(rec.Get(FieldCommandName), candidate.Get(FieldCommandName)) {
			return fmt.Errorf("%w: command lock %q", table.ErrRecordAlreadyExists, candidate.Get(FieldCommandName))
		}
	}
	return nil
}

func uniqueConstant(candidate *record.Record, existing []*record.Record) error {
	for _, rec := range existing {
		if strings.EqualFold(rec.Get(FieldName), candidate.Get(FieldName)) {
			return fmt.Errorf("%w: constant %q", table.ErrRecordAlreadyExists, candidate.Get(FieldName))
		}
	}
	return nil
}

func uniqueRoster(candidate *record.Record, existing []*record.Record) error {
	for _, rec := range existing {
		if strings.EqualFold(rec.Get(FieldTeamName), candidate.Get(FieldTeamName)) {
			return fmt.Errorf("%w: roster row %q", table.ErrRecordAlreadyExists, candidate.Get(FieldTeamName))
		}
	}
	return nil
}

// Typed wrappers adding the domain-specific filters. None of them joins
// across tables; composite reads live in the Service.

type PlayersTable struct{ *table.Table }

func (t PlayersTable) ByDiscordID(ctx context.Context, discordID string) (*record.Record, error) {
	return t.FindOne(ctx, map[string]string{FieldDiscordID: discordID})
}

func (t PlayersTable) ByName(ctx context.Context, name string) (*record.Record, error) {
	return t.FindOne(ctx, map[string]string{FieldPlayerName: name})
}

type TeamsTable struct{ *table.Table }

func (t TeamsTable) ByName(ctx context.Context, name string) (*record.Record, error) {
	return t.FindOne(ctx, map[string]string{FieldTeamName: name})
}

func (t TeamsTable) ActiveTeams(ctx context.Context) ([]*record.Record, error) {
	return t.Find(ctx, map[string]string{FieldStatus: string(TeamStatusActive)})
}

type TeamPlayersTable struct{ *table.Table }

func (t TeamPlayersTable) ByTeam(ctx context.Context, teamID string) ([]*record.Record, error) {
	return t.Find(ctx, map[string]string{FieldTeamID: teamID})
}

func (t TeamPlayersTable) ByPlayer(ctx context.Context, playerID string) (*record.Record, error) {
	return t.FindOne(ctx, map[string]string{FieldPlayerID: playerID})
}

type TeamInvitesTable struct{ *table.Table }

func (t TeamInvitesTable) PendingForPlayer(ctx context.Context, toPlayerID string) ([]*record.Record, error) {
	return t.Find(ctx, map[string]string{
		FieldToPlayerID: toPlayerID,
		FieldStatus:     string(InviteStatusPending),
	})
}

func (t TeamInvitesTable) Pending(ctx context.Context) ([]*record.Record, error) {
	return t.Find(ctx, map[string]string{FieldStatus: string(InviteStatusPending)})
}

type MatchesTable struct{ *table.Table }

func (t MatchesTable) ByTeam(ctx context.Context, teamID string) ([]*record.Record, error) {
	asA, err := t.Find(ctx, map[string]string{FieldTeamAID: teamID})
	if err != nil {
		return nil, err
	}
	asB, err := t.Find(ctx, map[string]string{FieldTeamBID: teamID})
	if err != nil {
		return nil, err
	}
	return append(asA, asB...), nil
}

type CooldownsTable struct{ *table.Table }

func (t CooldownsTable) ByPlayer(ctx context.Context, playerID string) ([]*record.Record, error) {
	return t.Find(ctx, map[string]string{FieldPlayerID: playerID})
}

type SuspensionsTable struct{ *table.Table }

func (t SuspensionsTable) ByPlayer(ctx context.Context, playerID string) ([]*record.Record, error) {
	return t.Find(ctx, map[string]string{FieldPlayerID: playerID})
}

type CommandLocksTable struct{ *table.Table }

func (t CommandLocksTable) ByCommand(ctx context.Context, command string) (*record.Record, error) {
	return t.FindOne(ctx, map[string]string{FieldCommandName: command})
}

type ConstantsTable struct{ *table.Table }

func (t ConstantsTable) Value(ctx context.Context, name string) (string, error) {
	rec, err := t.FindOne(ctx, map[string]string{FieldName: name})
	if err != nil {
		return "", err
	}
	return rec.Get(FieldValue), nil
}

type VwRosterTable struct{ *table.Table }

func (t VwRosterTable) ByTeamName(ctx context.Context, teamName string) (*record.Record, error) {
	return t.FindOne(ctx, map[string]string{FieldTeamName: teamName})
}
