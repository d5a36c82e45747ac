package league

import "errors"

// Domain errors are user-actionable assertions. The chat glue consuming this
// package turns their messages into user-facing replies verbatim, so the
// texts are written for the player, not the operator.
var (
	ErrRegionNotFound          = errors.New("that region does not exist (valid regions: NA, EU, OCE)")
	ErrPlayerRegionMismatch    = errors.New("player region does not match the team region")
	ErrTeamSizeTooLarge        = errors.New("the team is already at the maximum roster size")
	ErrTeamSizeTooSmall        = errors.New("the team would fall below the minimum roster size")
	ErrCaptainMustTransferFirst = errors.New("the captain must transfer captaincy before leaving the team")
	ErrPlayerOnCooldown        = errors.New("player is on cooldown from leaving a team")
	ErrPlayerSuspended         = errors.New("player is suspended from league actions")
	ErrPlayerAlreadyOnTeam     = errors.New("player is already on a team")
	ErrPlayerNotOnTeam         = errors.New("player is not on that team")
	ErrNotCaptain              = errors.New("only the captain or co-captain can do that")
	ErrInviteAlreadyPending    = errors.New("an invite for that player is already pending")
	ErrInviteExpired           = errors.New("the invite has expired")
	ErrInviteNotPending        = errors.New("the invite is no longer pending")
	ErrScoresRequireCompletion = errors.New("scores can only be recorded on a completed match")
)
