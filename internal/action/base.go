package action

// Base provides common plumbing for actions (identity).
type Base struct {
	info Info
}

// NewBase seeds the helper with action info.
func NewBase(info Info) Base {
	return Base{info: info}
}

// Info implements Action.Info.
func (b *Base) Info() Info {
	return b.info
}
