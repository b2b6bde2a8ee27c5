package timeutil

import "time"

// DateLayout is the layout used for every date stored in a watchlist file.
const DateLayout = "2006-01-02"

var nowFunc = time.Now

// Now returns the current time. It is wrapped to simplify testing and
// allow centralized timezone handling for bot and scheduler components.
func Now() time.Time {
	return nowFunc()
}

// Today returns the current date formatted with DateLayout.
func Today() string {
	return nowFunc().Format(DateLayout)
}

// SetNowFunc overrides the function used by Now. Passing nil resets it.
func SetNowFunc(fn func() time.Time) {
	if fn == nil {
		nowFunc = time.Now
		return
	}
	nowFunc = fn
}
