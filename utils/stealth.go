package utils

import (
	"math/rand"
	"time"

	"github.com/playwright-community/playwright-go"
)

// RandomDelay pauses execution for a random time between min and max (milliseconds)
func RandomDelay(min, max int) {
	time.Sleep(Jitter(min, max))
}

// Jitter picks a duration between min and max milliseconds.
func Jitter(min, max int) time.Duration {
	if min >= max {
		return time.Duration(min) * time.Millisecond
	}
	return time.Duration(rand.Intn(max-min)+min) * time.Millisecond
}

// SmoothScroll scrolls down, nudges back up, then jumps to the bottom to
// trigger lazy loading.
func SmoothScroll(page playwright.Page) {
	page.Mouse().Wheel(0, 500)
	RandomDelay(500, 1000)

	// human-like correction
	page.Mouse().Wheel(0, -200)
	RandomDelay(500, 800)

	page.Evaluate("window.scrollTo(0, document.body.scrollHeight)")
}
