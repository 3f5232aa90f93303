package ranking

import "errors"

// Sentinel errors for winner consistency checks.
var (
	ErrNoWinner        = errors.New("ranking: no bid is flagged as winner")
	ErrMultipleWinners = errors.New("ranking: more than one bid is flagged as winner")
	ErrWinnerMismatch  = errors.New("ranking: winner flag disagrees with winner summary")
)
