package playback

import "time"

// Clock derives elapsed and remaining audio position from the player and
// turns the trailing fade window into a continuous blend weight.
type Clock struct {
	player Player
	total  time.Duration
	window time.Duration
}

// NewClock creates a clock over the player for a clip of the given total
// duration. A zero window uses FadeWindow.
func NewClock(player Player, total, window time.Duration) *Clock {
	if window <= 0 {
		window = FadeWindow
	}
	return &Clock{player: player, total: total, window: window}
}

// Elapsed returns the current audio position, capped at the total.
func (c *Clock) Elapsed() time.Duration {
	pos := c.player.Position()
	if pos > c.total {
		return c.total
	}
	return pos
}

// Remaining returns how much audio is left, never negative.
func (c *Clock) Remaining() time.Duration {
	return c.total - c.Elapsed()
}

// InFadeWindow reports whether playback has entered the trailing fade span.
func (c *Clock) InFadeWindow() bool {
	return c.Remaining() <= c.window
}

// FadeAlpha returns the blend-toward-black weight in [0, 1]: zero outside
// the fade window, one at the very end of the clip.
func (c *Clock) FadeAlpha() float64 {
	alpha := 1 - c.Remaining().Seconds()/c.window.Seconds()
	if alpha < 0 {
		return 0
	}
	if alpha > 1 {
		return 1
	}
	return alpha
}
