package scheduling

import "errors"

var (
	// ErrParseAmbiguous means no time pattern matched and the fallback was used.
	ErrParseAmbiguous = errors.New("scheduling: no recognizable time, using default")
	// ErrVagueInput means the human named a daypart and must pick a time.
	ErrVagueInput = errors.New("scheduling: vague time needs disambiguation")
	// ErrResolverPanic means a parsing rule failed unexpectedly; the fallback was used.
	ErrResolverPanic = errors.New("scheduling: time resolver recovered from panic")
)
