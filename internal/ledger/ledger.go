// Package ledger keeps the durable record of every address the system has
// ever attempted to contact. An address that appears here is never targeted
// again, whatever the recorded status: suppressing retries of failed sends
// is a compliance rule, not an optimization.
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Status of a recorded outreach attempt.
type Status string

const (
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Entry holds the attempt history for one normalized address. Entries are
// created on the first attempt and updated, never deleted.
type Entry struct {
	Address          string    `json:"address"`
	FirstAttemptedAt time.Time `json:"first_attempted_at"`
	Status           Status    `json:"status"`
	LastStatusAt     time.Time `json:"last_status_at"`
}

type ledgerFile struct {
	Entries []*Entry `json:"entries"`
}

// Ledger is the file-backed send ledger. Dispatch is strictly sequential, so
// a single writer is assumed; every Record call persists before returning.
type Ledger struct {
	path    string
	entries map[string]*Entry
	order   []string
	now     func() time.Time
}

// Open loads the ledger at path, starting empty when the file does not exist
// yet. A present but unreadable file is an error: dispatch must not proceed
// without its dedup state.
func Open(path string) (*Ledger, error) {
	l := &Ledger{
		path:    path,
		entries: make(map[string]*Entry),
		now:     time.Now,
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, fmt.Errorf("opening ledger file %q: %w", path, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("reading ledger file %q: %w", path, err)
	}
	if stat.Size() == 0 {
		return l, nil
	}

	var parsed ledgerFile
	if err := json.NewDecoder(file).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parsing ledger file %q: %w", path, err)
	}

	for _, entry := range parsed.Entries {
		key := Normalize(entry.Address)
		if key == "" {
			continue
		}
		if _, ok := l.entries[key]; !ok {
			l.order = append(l.order, key)
		}
		entry.Address = key
		l.entries[key] = entry
	}

	return l, nil
}

// Normalize is the canonical form used as the ledger key: lower-cased and
// trimmed.
func Normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// Contacted reports whether any attempt was ever recorded for the address,
// regardless of its status.
func (l *Ledger) Contacted(address string) bool {
	_, ok := l.entries[Normalize(address)]
	return ok
}

// Record upserts the entry for the address and persists the ledger before
// returning. The first attempt timestamp is kept on subsequent updates.
func (l *Ledger) Record(address string, status Status) error {
	key := Normalize(address)
	if key == "" {
		return fmt.Errorf("cannot record an empty address")
	}

	now := l.now()
	entry, ok := l.entries[key]
	if !ok {
		entry = &Entry{Address: key, FirstAttemptedAt: now}
		l.entries[key] = entry
		l.order = append(l.order, key)
	}
	entry.Status = status
	entry.LastStatusAt = now

	if err := l.save(); err != nil {
		return fmt.Errorf("saving ledger file %q: %w", l.path, err)
	}

	return nil
}

func (l *Ledger) Len() int {
	return len(l.entries)
}

func (l *Ledger) save() error {
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	parsed := &ledgerFile{Entries: make([]*Entry, 0, len(l.order))}
	for _, key := range l.order {
		parsed.Entries = append(parsed.Entries, l.entries[key])
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(parsed)
}
