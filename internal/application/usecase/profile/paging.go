package profile

const (
	DefaultListLimit = 100
	MaxListLimit     = 500
)

// NormalizePage clamps offset/limit to sane bounds. The HTTP layer rejects
// a zero limit, so a non-positive one here only comes from direct callers
// and falls back to the default.
func NormalizePage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return offset, limit
}
