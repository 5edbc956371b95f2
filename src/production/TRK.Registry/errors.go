package registry

import "errors"

// Registry errors. Ownership conflicts and quota rejections are wrapped
// with the offending tracker id and the applied limit respectively, so
// callers match them with errors.Is.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrOwnershipConflict = errors.New("tracker registered to another tenant")
	ErrQuotaExceeded     = errors.New("tracker quota exceeded")
	ErrNotAuthorized     = errors.New("not authorized")
)
