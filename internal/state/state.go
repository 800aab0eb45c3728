// Package state persists the run state of the pipeline as a single JSON record
// under the data directory. Writes go to a temporary file that is renamed over
// the record, so readers never observe a partial file.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// File layout below the data directory
const (
	StateDir      = "runInfo"
	StateFile     = "pipelineState.json"
	TempStateFile = "pipelineState.json.tmp"
)

// Defaults of the record synthesized when no state was persisted yet
const (
	DefaultPipelineName     = "default"
	DefaultPipelineRevision = "0"
)

// State is the run state of a pipeline
type State string

const (
	NotRunning State = "NOT_RUNNING"
	Running    State = "RUNNING"
	Stopped    State = "STOPPED"
	Error      State = "ERROR"
)

// ParseState converts a state name into a State
func ParseState(s string) (State, error) {
	switch st := State(s); st {
	case NotRunning, Running, Stopped, Error:
		return st, nil
	default:
		return "", fmt.Errorf("unknown pipeline state %q", s)
	}
}

// PipelineState is the persisted record
type PipelineState struct {
	Name     string `json:"name"`
	Revision string `json:"revision"`
	State    State  `json:"state"`
	Message  string `json:"message"`
	// Timestamp is the time of the state change in Unix milliseconds
	Timestamp int64 `json:"timestamp"`
}

// Time returns the timestamp as a time.Time
func (s PipelineState) Time() time.Time {
	return time.UnixMilli(s.Timestamp)
}

// Tracker owns the state record of one pipeline
type Tracker struct {
	mu       sync.RWMutex
	stateDir string
	current  *PipelineState
	logger   *zap.Logger
	now      func() time.Time

	subMu       sync.Mutex
	subscribers map[int]chan PipelineState
	nextSub     int
}

// NewTracker creates a tracker storing its record below dataDir. Init must be called before use.
func NewTracker(dataDir string, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		stateDir:    filepath.Join(dataDir, StateDir, DefaultPipelineName),
		logger:      logger,
		now:         time.Now,
		subscribers: make(map[int]chan PipelineState),
	}
}

// Init loads the persisted record, or persists the default record when there is none
func (t *Tracker) Init() error {
	if err := os.MkdirAll(t.stateDir, 0755); err != nil {
		return fmt.Errorf("could not create directory %s: %w", t.stateDir, err)
	}

	if _, err := os.Stat(t.StateFile()); err == nil {
		loaded, err := t.load()
		if err != nil {
			return err
		}
		t.mu.Lock()
		t.current = loaded
		t.mu.Unlock()
		t.logger.Debug("loaded pipeline state", zap.String("file", t.StateFile()), zap.String("state", string(loaded.State)))
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("could not get state: %w", err)
	}

	_, err := t.SetState(DefaultPipelineName, DefaultPipelineRevision, NotRunning, "")
	return err
}

// StateFile returns the path of the persisted record
func (t *Tracker) StateFile() string {
	return filepath.Join(t.stateDir, StateFile)
}

func (t *Tracker) tempStateFile() string {
	return filepath.Join(t.stateDir, TempStateFile)
}

// State returns a copy of the current record, or nil before Init
func (t *Tracker) State() *PipelineState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.current == nil {
		return nil
	}
	cp := *t.current
	return &cp
}

// SetState records and persists a new state stamped with the current time
func (t *Tracker) SetState(name, revision string, state State, message string) (*PipelineState, error) {
	if _, err := ParseState(string(state)); err != nil {
		return nil, err
	}

	record := &PipelineState{
		Name:      name,
		Revision:  revision,
		State:     state,
		Message:   message,
		Timestamp: t.now().UnixMilli(),
	}

	t.mu.Lock()
	if err := t.persist(record); err != nil {
		t.mu.Unlock()
		return nil, fmt.Errorf("could not set state: %w", err)
	}
	t.current = record
	t.mu.Unlock()

	t.logger.Info("pipeline state changed",
		zap.String("name", name),
		zap.String("revision", revision),
		zap.String("state", string(state)),
	)
	t.publish(*record)

	cp := *record
	return &cp, nil
}

func (t *Tracker) persist(record *PipelineState) error {
	if err := os.MkdirAll(t.stateDir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := t.tempStateFile()
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, t.StateFile()); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

func (t *Tracker) load() (*PipelineState, error) {
	data, err := os.ReadFile(t.StateFile())
	if err != nil {
		return nil, fmt.Errorf("could not get state: %w", err)
	}
	var record PipelineState
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("could not get state: %w", err)
	}
	return &record, nil
}

// Subscribe returns a channel receiving every later state change and a
// function that cancels the subscription. Slow subscribers miss changes
// rather than block writers.
func (t *Tracker) Subscribe() (<-chan PipelineState, func()) {
	t.subMu.Lock()
	defer t.subMu.Unlock()

	id := t.nextSub
	t.nextSub++
	ch := make(chan PipelineState, 8)
	t.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			t.subMu.Lock()
			defer t.subMu.Unlock()
			delete(t.subscribers, id)
			close(ch)
		})
	}
}

func (t *Tracker) publish(record PipelineState) {
	t.subMu.Lock()
	defer t.subMu.Unlock()
	for _, ch := range t.subscribers {
		select {
		case ch <- record:
		default:
			t.logger.Warn("dropping state change for slow subscriber")
		}
	}
}
