package service

import (
	"sync/atomic"
	"time"
)

type State struct {
	ready     atomic.Bool
	startedAt time.Time

	lastScanUnix    atomic.Int64 // unix seconds
	lastScanSignals atomic.Int64
	scans           atomic.Int64
}

func NewState() *State {
	s := &State{startedAt: time.Now()}
	s.ready.Store(false)
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

// MarkScan: скан по всем символам закончен, signals отправлено.
func (s *State) MarkScan(t time.Time, signals int) {
	s.lastScanUnix.Store(t.Unix())
	s.lastScanSignals.Store(int64(signals))
	s.scans.Add(1)
}

func (s *State) LastScan() time.Time {
	u := s.lastScanUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

func (s *State) LastScanSignals() int { return int(s.lastScanSignals.Load()) }
func (s *State) Scans() int64         { return s.scans.Load() }

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
