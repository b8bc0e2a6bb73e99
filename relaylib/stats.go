package relaylib

import (
	"encoding/json"
	"sync"
	"time"
)

// Stats collects figures of the pipeline run: how many relays were
// found, dropped and geocoded.
type Stats struct {
	mutex      sync.Mutex
	started    time.Time
	finished   time.Time
	records    int
	skipped    int
	filtered   int
	points     int
	unresolved int
	clusters   int
}

// StatsSnapshot is a copy of Stats values.
type StatsSnapshot struct {
	Started    time.Time
	Finished   time.Time
	Records    int
	Skipped    int
	Filtered   int
	Points     int
	Unresolved int
	Clusters   int
}

func (s *Stats) Started() {
	now := time.Now()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.started = now
	s.finished = time.Time{}
	s.records = 0
	s.skipped = 0
	s.filtered = 0
	s.points = 0
	s.unresolved = 0
	s.clusters = 0
}

func (s *Stats) Parsed(records, skipped int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.records = records
	s.skipped = skipped
}

func (s *Stats) Filtered(filtered int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.filtered = filtered
}

func (s *Stats) Geocoded(points, unresolved int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.points = points
	s.unresolved = unresolved
}

func (s *Stats) Clustered(clusters int) {
	now := time.Now()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.clusters = clusters
	s.finished = now
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return StatsSnapshot{
		Started:    s.started,
		Finished:   s.finished,
		Records:    s.records,
		Skipped:    s.skipped,
		Filtered:   s.filtered,
		Points:     s.points,
		Unresolved: s.unresolved,
		Clusters:   s.clusters,
	}
}

func (s *Stats) MarshalJSON() ([]byte, error) {
	var startedTime, finishedTime int64

	snapshot := s.Snapshot()

	if !snapshot.Started.IsZero() {
		startedTime = snapshot.Started.Unix()
	}

	if !snapshot.Finished.IsZero() {
		finishedTime = snapshot.Finished.Unix()
	}

	rawStruct := struct {
		Started    int64 `json:"started"`
		Finished   int64 `json:"finished"`
		Records    int   `json:"records"`
		Skipped    int   `json:"skipped"`
		Filtered   int   `json:"filtered"`
		Points     int   `json:"points"`
		Unresolved int   `json:"unresolved"`
		Clusters   int   `json:"clusters"`
	}{
		Started:    startedTime,
		Finished:   finishedTime,
		Records:    snapshot.Records,
		Skipped:    snapshot.Skipped,
		Filtered:   snapshot.Filtered,
		Points:     snapshot.Points,
		Unresolved: snapshot.Unresolved,
		Clusters:   snapshot.Clusters,
	}

	return json.Marshal(&rawStruct)
}
