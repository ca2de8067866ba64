package standings

import "errors"

var (
	// ErrInvalidPeriod is returned for any period name outside the fixed set.
	ErrInvalidPeriod = errors.New("invalid period: choose from daily, weekly, season, lifetime")
	// ErrMemberNotFound is returned when a member has no record in a period.
	ErrMemberNotFound = errors.New("member not found")
	// ErrInvalidStatField is returned for a stat query other than br or zb.
	ErrInvalidStatField = errors.New("invalid stat: choose from br, zb")
)
