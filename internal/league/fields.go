package league

import "github.com/echomasterleague/league-bot/internal/record"

// Worksheet titles in the DB spreadsheet.
const (
	TitlePlayers              = "Players"
	TitleTeams                = "Teams"
	TitleTeamPlayers          = "TeamPlayers"
	TitleTeamInvites          = "TeamInvites"
	TitleMatches              = "Matches"
	TitleMatchInvites         = "MatchInvites"
	TitleMatchResultInvites   = "MatchResultInvites"
	TitleCooldowns            = "Cooldowns"
	TitleSuspensions          = "Suspensions"
	TitleSubMatches           = "LeagueSubMatches"
	TitleSubMatchInvites      = "LeagueSubMatchInvites"
	TitleCommandLocks         = "CommandLocks"
	TitleConstants            = "Constants"
)

// Worksheet titles in the view spreadsheet.
const (
	TitleVwRoster = "VwRoster"
)

// Region is a player's competitive region.
type Region string

const (
	RegionNA  Region = "NA"
	RegionEU  Region = "EU"
	RegionOCE Region = "OCE"
)

// KnownRegion reports whether a raw cell value names a valid region.
func KnownRegion(raw string) bool {
	switch Region(raw) {
	case RegionNA, RegionEU, RegionOCE:
		return true
	}
	return false
}

// TeamStatus tracks whether a team currently fields a legal roster.
type TeamStatus string

const (
	TeamStatusActive   TeamStatus = "Active"
	TeamStatusInactive TeamStatus = "Inactive"
)

// InviteStatus is the lifecycle of a team, match or substitute invite.
type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "Pending"
	InviteStatusAccepted InviteStatus = "Accepted"
	InviteStatusDeclined InviteStatus = "Declined"
	InviteStatusRevoked  InviteStatus = "Revoked"
)

// MatchStatus is the lifecycle of a scheduled match. Scores are only valid
// on a Completed match.
type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "Scheduled"
	MatchStatusCompleted MatchStatus = "Completed"
	MatchStatusCancelled MatchStatus = "Cancelled"
)

// Field names. Header cells carry these exact strings; vw_* columns are
// denormalized display values mirrored from referenced records.
const (
	FieldDiscordID  = "discord_id"
	FieldPlayerName = "player_name"
	FieldRegion     = "region"

	FieldTeamName = "team_name"
	FieldStatus   = "status"
	FieldVwRegion = "vw_region"

	FieldPlayerID     = "player_id"
	FieldTeamID       = "team_id"
	FieldIsCaptain    = "is_captain"
	FieldIsCoCaptain  = "is_co_captain"
	FieldVwPlayerName = "vw_player_name"
	FieldVwTeamName   = "vw_team_name"

	FieldFromPlayerID     = "from_player_id"
	FieldToPlayerID       = "to_player_id"
	FieldExpiresAt        = "expires_at"
	FieldVwFromPlayerName = "vw_from_player_name"
	FieldVwToPlayerName   = "vw_to_player_name"

	FieldTeamAID      = "team_a_id"
	FieldTeamBID      = "team_b_id"
	FieldMatchType    = "match_type"
	FieldMatchStatus  = "match_status"
	FieldScoreA       = "score_a"
	FieldScoreB       = "score_b"
	FieldResult       = "result"
	FieldVwTeamAName  = "vw_team_a_name"
	FieldVwTeamBName  = "vw_team_b_name"

	FieldMatchID        = "match_id"
	FieldFromTeamID     = "from_team_id"
	FieldToTeamID       = "to_team_id"
	FieldVwFromTeamName = "vw_from_team_name"
	FieldVwToTeamName   = "vw_to_team_name"

	FieldVwOldTeam = "vw_old_team"
	FieldReason    = "reason"

	FieldSubPlayerID     = "sub_player_id"
	FieldSubMatchID      = "sub_match_id"
	FieldVwSubPlayerName = "vw_sub_player_name"

	FieldCommandName = "command_name"
	FieldIsAllowed   = "is_allowed"

	FieldName  = "name"
	FieldValue = "value"

	FieldCaptain   = "captain"
	FieldCoCaptain = "co_captain"
	FieldMembers   = "members"
)

// Field enumerations, one per table. Member order is worksheet column order
// for freshly created sheets; the base table re-binds against the actual
// header at startup.
var (
	PlayerFields = record.NewFieldSet(
		FieldDiscordID, FieldPlayerName, FieldRegion,
	)
	TeamFields = record.NewFieldSet(
		FieldTeamName, FieldStatus, FieldVwRegion,
	)
	TeamPlayerFields = record.NewFieldSet(
		FieldPlayerID, FieldTeamID, FieldIsCaptain, FieldIsCoCaptain,
		FieldVwPlayerName, FieldVwTeamName,
	)
	TeamInviteFields = record.NewFieldSet(
		FieldFromPlayerID, FieldToPlayerID, FieldTeamID, FieldStatus, FieldExpiresAt,
		FieldVwFromPlayerName, FieldVwToPlayerName, FieldVwTeamName,
	)
	MatchFields = record.NewFieldSet(
		FieldTeamAID, FieldTeamBID, FieldMatchType, FieldMatchStatus,
		FieldScoreA, FieldScoreB, FieldResult,
		FieldVwTeamAName, FieldVwTeamBName,
	)
	MatchInviteFields = record.NewFieldSet(
		FieldMatchID, FieldFromTeamID, FieldToTeamID, FieldMatchType,
		FieldStatus, FieldExpiresAt,
		FieldVwFromTeamName, FieldVwToTeamName,
	)
	MatchResultInviteFields = record.NewFieldSet(
		FieldMatchID, FieldFromTeamID, FieldToTeamID,
		FieldScoreA, FieldScoreB, FieldStatus, FieldExpiresAt,
		FieldVwFromTeamName, FieldVwToTeamName,
	)
	CooldownFields = record.NewFieldSet(
		FieldPlayerID, FieldVwPlayerName, FieldVwOldTeam, FieldExpiresAt,
	)
	SuspensionFields = record.NewFieldSet(
		FieldPlayerID, FieldVwPlayerName, FieldReason, FieldExpiresAt,
	)
	SubMatchFields = record.NewFieldSet(
		FieldMatchID, FieldTeamID, FieldPlayerID, FieldSubPlayerID, FieldStatus,
		FieldVwTeamName, FieldVwPlayerName, FieldVwSubPlayerName,
	)
	SubMatchInviteFields = record.NewFieldSet(
		FieldSubMatchID, FieldFromPlayerID, FieldToPlayerID, FieldStatus, FieldExpiresAt,
		FieldVwFromPlayerName, FieldVwToPlayerName,
	)
	CommandLockFields = record.NewFieldSet(
		FieldCommandName, FieldIsAllowed,
	)
	ConstantFields = record.NewFieldSet(
		FieldName, FieldValue,
	)
	VwRosterFields = record.NewFieldSet(
		FieldTeamName, FieldRegion, FieldCaptain, FieldCoCaptain, FieldMembers,
	)
)
