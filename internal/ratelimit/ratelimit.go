// Package ratelimit enforces the daily send cap. The window is keyed by the
// wall-clock date and persisted to disk, so restarts within the same day
// keep counting against the same quota.
package ratelimit

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

const dateLayout = "2006-01-02"

// Window is the persisted rate state for one calendar day.
type Window struct {
	Date string `json:"date"`
	Sent int    `json:"sent"`
}

// Limiter hands out send reservations against the daily cap. A reservation
// is consumed whether or not the send later succeeds: a failed send still
// counted against the real-world SMTP rate exposure.
type Limiter struct {
	path   string
	cap    int
	window Window
	now    func() time.Time
}

// Open loads the persisted window at path, starting fresh when the file does
// not exist. An unreadable file is an error: sending without rate state
// risks exceeding the cap.
func Open(path string, cap int) (*Limiter, error) {
	l := &Limiter{
		path: path,
		cap:  cap,
		now:  time.Now,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, fmt.Errorf("opening rate state file %q: %w", path, err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &l.window); err != nil {
			return nil, fmt.Errorf("parsing rate state file %q: %w", path, err)
		}
	}

	return l, nil
}

// TryReserve reserves one send within today's window. It returns false with
// the counter unchanged when the cap is reached. The reservation is
// persisted before it is granted, so a crash between reserve and send can
// only under-send, never over-send.
func (l *Limiter) TryReserve() (bool, error) {
	l.roll()

	if l.cap <= 0 || l.window.Sent >= l.cap {
		return false, nil
	}

	l.window.Sent++
	if err := l.save(); err != nil {
		l.window.Sent--
		return false, fmt.Errorf("saving rate state file %q: %w", l.path, err)
	}

	return true, nil
}

// SentToday returns the number of reservations made within the current
// wall-clock date.
func (l *Limiter) SentToday() int {
	l.roll()
	return l.window.Sent
}

// Cap returns the configured daily limit.
func (l *Limiter) Cap() int {
	return l.cap
}

// roll resets the counter when the stored window belongs to a previous date.
func (l *Limiter) roll() {
	today := l.now().Format(dateLayout)
	if l.window.Date != today {
		l.window = Window{Date: today}
	}
}

func (l *Limiter) save() error {
	data, err := json.MarshalIndent(&l.window, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(l.path, data, 0o644)
}
