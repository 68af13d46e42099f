package key

// Tracker holds the latest modifier mask reported for one seat's keyboard.
//
// Each update replaces the mask; nothing is merged or remembered. A
// disabled tracker is inert: updates are dropped and Modifiers returns
// ModNone until a new layout is installed.
type Tracker struct {
	layout  Layout
	enabled bool
	mods    Modifier
}

// NewTracker returns an enabled tracker using DefaultLayout.
func NewTracker() *Tracker {
	return &Tracker{layout: DefaultLayout(), enabled: true}
}

// Update replaces the modifier mask from a raw modifier-state event.
// The group is accepted for protocol completeness and does not affect
// the bindable modifiers.
func (t *Tracker) Update(depressed, latched, locked, group uint32) Modifier {
	if !t.enabled {
		return ModNone
	}
	t.mods = t.layout.Translate(depressed | latched | locked)
	return t.mods
}

// Modifiers returns the current mask.
func (t *Tracker) Modifiers() Modifier {
	if t == nil || !t.enabled {
		return ModNone
	}
	return t.mods
}

// SetLayout installs a layout and re-enables the tracker.
func (t *Tracker) SetLayout(l Layout) {
	t.layout = l
	t.enabled = true
	t.mods = ModNone
}

// Disable makes the tracker inert.
func (t *Tracker) Disable() {
	t.enabled = false
	t.mods = ModNone
}

// Enabled reports whether updates are being tracked.
func (t *Tracker) Enabled() bool {
	return t.enabled
}

// Reset clears the current mask.
func (t *Tracker) Reset() {
	t.mods = ModNone
}
