// Package store provides Source implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/worktime/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	schedules map[key]map[ledger.ScheduleID]ledger.Schedule
	events    map[key]map[ledger.EventID]ledger.Event
	entries   map[key][]ledger.TimeEntry
}

type key struct {
	UserID      ledger.UserID
	WorkspaceID ledger.WorkspaceID
}

func NewMemory() *Memory {
	return &Memory{
		schedules: make(map[key]map[ledger.ScheduleID]ledger.Schedule),
		events:    make(map[key]map[ledger.EventID]ledger.Event),
		entries:   make(map[key][]ledger.TimeEntry),
	}
}

// SaveSchedule inserts or replaces a schedule by ID.
func (m *Memory) SaveSchedule(s ledger.Schedule) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key{UserID: s.UserID, WorkspaceID: s.WorkspaceID}
	if m.schedules[k] == nil {
		m.schedules[k] = make(map[ledger.ScheduleID]ledger.Schedule)
	}
	m.schedules[k][s.ID] = s
}

// SaveEvent inserts or replaces an event by ID.
func (m *Memory) SaveEvent(e ledger.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key{UserID: e.UserID, WorkspaceID: e.WorkspaceID}
	if m.events[k] == nil {
		m.events[k] = make(map[ledger.EventID]ledger.Event)
	}
	m.events[k][e.ID] = e
}

// SaveTimeEntry inserts or replaces an entry by ID, keeping entries ordered by start.
func (m *Memory) SaveTimeEntry(te ledger.TimeEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key{UserID: te.UserID, WorkspaceID: te.WorkspaceID}
	entries := m.entries[k]
	for i, existing := range entries {
		if existing.ID == te.ID {
			entries = append(entries[:i], entries[i+1:]...)
			break
		}
	}

	// Binary search for insertion point
	i := sort.Search(len(entries), func(i int) bool {
		return entries[i].Start.After(te.Start)
	})
	entries = append(entries, ledger.TimeEntry{})
	copy(entries[i+1:], entries[i:])
	entries[i] = te
	m.entries[k] = entries
}

func (m *Memory) Schedules(_ context.Context, user ledger.UserID, workspace ledger.WorkspaceID) ([]ledger.Schedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.Schedule
	for _, s := range m.schedules[key{UserID: user, WorkspaceID: workspace}] {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) Events(_ context.Context, user ledger.UserID, workspace ledger.WorkspaceID) ([]ledger.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.Event
	for _, e := range m.events[key{UserID: user, WorkspaceID: workspace}] {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) TimeEntries(_ context.Context, user ledger.UserID, workspace ledger.WorkspaceID, from, to time.Time) ([]ledger.TimeEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.TimeEntry
	for _, te := range m.entries[key{UserID: user, WorkspaceID: workspace}] {
		if te.Overlaps(from, to) {
			result = append(result, te)
		}
	}
	return result, nil
}
