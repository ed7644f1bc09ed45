// Package timeline parses match clocks and orders commentary across halves,
// stoppage time and extra time.
package timeline

import (
	"regexp"
	"strconv"
	"strings"
)

const MaxMinute = 120

var (
	stoppageClock = regexp.MustCompile(`^(\d{1,3})['’]?\s*\+\s*(\d{1,2})['’]?$`)
	minuteClock   = regexp.MustCompile(`^(\d{1,3})['’]?$`)
	elapsedClock  = regexp.MustCompile(`^(\d{1,3}):([0-5]\d)$`)
)

// Clock is a parsed match time. Base is the regulation minute, Stoppage the
// added minutes after it, Seconds only set for MM:SS input. Elapsed marks a
// running MM:SS clock, which counts past 90 during stoppage instead of adding.
type Clock struct {
	Base     int
	Stoppage int
	Seconds  int
	Elapsed  bool
}

// ParseClock accepts "NN'", "NN'+M" and "MM:SS" (apostrophes optional).
func ParseClock(raw string) (Clock, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Clock{}, false
	}
	if m := stoppageClock.FindStringSubmatch(s); m != nil {
		return Clock{Base: atoi(m[1]), Stoppage: atoi(m[2])}, true
	}
	if m := minuteClock.FindStringSubmatch(s); m != nil {
		return Clock{Base: atoi(m[1])}, true
	}
	if m := elapsedClock.FindStringSubmatch(s); m != nil {
		return Clock{Base: atoi(m[1]), Seconds: atoi(m[2]), Elapsed: true}, true
	}
	return Clock{}, false
}

// Minute is Base plus Stoppage, capped at MaxMinute.
func (c Clock) Minute() int {
	return min(c.Base+c.Stoppage, MaxMinute)
}

// ParseMinute returns the integer minute of raw, or false when raw is not a
// recognised clock.
func ParseMinute(raw string) (int, bool) {
	c, ok := ParseClock(raw)
	if !ok {
		return 0, false
	}
	return c.Minute(), true
}

// FormatClock renders minute and optional stoppage as "NN'" or "NN'+M'".
func FormatClock(minute int, stoppage int) string {
	if minute <= 0 && stoppage <= 0 {
		return ""
	}
	if stoppage > 0 {
		return strconv.Itoa(minute) + "'+" + strconv.Itoa(stoppage) + "'"
	}
	return strconv.Itoa(minute) + "'"
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
