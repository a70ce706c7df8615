package game

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pkmn-engine/arena-server-go/internal/game/rules"
)

// Replay is a recorded game: sequential state snapshots for playback
// plus the action log and seed needed to re-run the match
// deterministically.
type Replay struct {
	GameID       string
	Seed         int64
	States       []*Snapshot
	Actions      []rules.Action
	CurrentIndex int
	mu           sync.RWMutex
}

// NewReplay creates an empty replay for a game.
func NewReplay(gameID string, seed int64) *Replay {
	return &Replay{
		GameID: gameID,
		Seed:   seed,
		States: make([]*Snapshot, 0),
	}
}

// RecordState appends a state snapshot.
func (r *Replay) RecordState(snapshot *Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.States = append(r.States, snapshot)
}

// RecordAction appends an accepted action to the log.
func (r *Replay) RecordAction(act rules.Action) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Actions = append(r.Actions, act)
}

// Start resets playback to the beginning.
func (r *Replay) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.CurrentIndex = 0
}

// Next returns the state at the cursor and advances it, nil at the
// end.
func (r *Replay) Next() *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex >= len(r.States) {
		return nil
	}
	state := r.States[r.CurrentIndex]
	r.CurrentIndex++
	return state
}

// Previous steps the cursor back and returns that state, nil at the
// beginning.
func (r *Replay) Previous() *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex == 0 {
		return nil
	}
	r.CurrentIndex--
	return r.States[r.CurrentIndex]
}

// Skip moves the cursor by count states in either direction, clamped
// to the recording.
func (r *Replay) Skip(count int) *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.States) == 0 {
		return nil
	}
	r.CurrentIndex = min(max(r.CurrentIndex+count, 0), len(r.States)-1)
	return r.States[r.CurrentIndex]
}

// Size returns the number of recorded states.
func (r *Replay) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.States)
}

// GetStateAt returns the state at a specific index, nil out of range.
func (r *Replay) GetStateAt(index int) *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index < 0 || index >= len(r.States) {
		return nil
	}
	return r.States[index]
}

// ActionLog returns a copy of the recorded actions.
func (r *Replay) ActionLog() []rules.Action {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]rules.Action, len(r.Actions))
	copy(out, r.Actions)
	return out
}

// SaveToFile writes the replay to <directory>/<gameID>.replay as a
// gzipped gob stream: metadata first, then each state, then the
// action log.
func (r *Replay) SaveToFile(directory string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf("failed to create replay directory: %w", err)
	}

	path := filepath.Join(directory, r.GameID+".replay")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create replay file: %w", err)
	}
	defer f.Close()

	zw := gzip.NewWriter(f)
	defer zw.Close()

	enc := gob.NewEncoder(zw)
	meta := replayMetadata{
		GameID:      r.GameID,
		Seed:        r.Seed,
		Timestamp:   time.Now(),
		Version:     1,
		StateCount:  len(r.States),
		ActionCount: len(r.Actions),
	}
	if err := enc.Encode(&meta); err != nil {
		return fmt.Errorf("failed to encode replay metadata: %w", err)
	}
	for i, state := range r.States {
		if err := enc.Encode(state); err != nil {
			return fmt.Errorf("failed to encode snapshot %d: %w", i, err)
		}
	}
	for i := range r.Actions {
		if err := enc.Encode(&r.Actions[i]); err != nil {
			return fmt.Errorf("failed to encode action %d: %w", i, err)
		}
	}

	return nil
}

// LoadReplayFromFile reads a replay previously written by SaveToFile.
func LoadReplayFromFile(directory, gameID string) (*Replay, error) {
	path := filepath.Join(directory, gameID+".replay")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open replay file: %w", err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer zr.Close()

	dec := gob.NewDecoder(zr)
	var meta replayMetadata
	if err := dec.Decode(&meta); err != nil {
		return nil, fmt.Errorf("failed to decode replay metadata: %w", err)
	}
	if meta.Version != 1 {
		return nil, fmt.Errorf("unsupported replay format version %d", meta.Version)
	}

	replay := NewReplay(meta.GameID, meta.Seed)
	for i := range meta.StateCount {
		var state Snapshot
		if err := dec.Decode(&state); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot %d: %w", i, err)
		}
		replay.States = append(replay.States, &state)
	}
	for i := range meta.ActionCount {
		var act rules.Action
		if err := dec.Decode(&act); err != nil {
			return nil, fmt.Errorf("failed to decode action %d: %w", i, err)
		}
		replay.Actions = append(replay.Actions, act)
	}

	return replay, nil
}

// replayMetadata describes a saved replay file.
type replayMetadata struct {
	GameID      string
	Seed        int64
	Timestamp   time.Time
	Version     int
	StateCount  int
	ActionCount int
}

// ReplayRecorder manages replay recording across games.
type ReplayRecorder struct {
	logger  *zap.Logger
	saveDir string

	mu      sync.RWMutex
	replays map[string]*Replay
	enabled map[string]bool
}

// NewReplayRecorder creates a recorder that saves into saveDir.
func NewReplayRecorder(logger *zap.Logger, saveDir string) *ReplayRecorder {
	return &ReplayRecorder{
		logger:  logger,
		saveDir: saveDir,
		replays: make(map[string]*Replay),
		enabled: make(map[string]bool),
	}
}

// StartRecording begins recording a game.
func (rr *ReplayRecorder) StartRecording(gameID string, seed int64) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	rr.replays[gameID] = NewReplay(gameID, seed)
	rr.enabled[gameID] = true

	if rr.logger != nil {
		rr.logger.Info("replay recording started",
			zap.String("game_id", gameID),
			zap.Int64("seed", seed),
		)
	}
}

// StopRecording stops recording a game but keeps what was recorded.
func (rr *ReplayRecorder) StopRecording(gameID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	rr.enabled[gameID] = false

	if rr.logger != nil {
		rr.logger.Info("replay recording stopped",
			zap.String("game_id", gameID),
		)
	}
}

// recording returns the replay for gameID while recording is enabled,
// nil otherwise.
func (rr *ReplayRecorder) recording(gameID string) *Replay {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	if !rr.enabled[gameID] {
		return nil
	}
	return rr.replays[gameID]
}

// RecordState records a state snapshot if recording is enabled.
func (rr *ReplayRecorder) RecordState(gameID string, snapshot *Snapshot) {
	replay := rr.recording(gameID)
	if replay == nil {
		return
	}

	replay.RecordState(snapshot)

	if rr.logger != nil {
		rr.logger.Debug("replay state recorded",
			zap.String("game_id", gameID),
			zap.Int("state_count", replay.Size()),
		)
	}
}

// RecordAction records an accepted action if recording is enabled.
func (rr *ReplayRecorder) RecordAction(gameID string, act rules.Action) {
	replay := rr.recording(gameID)
	if replay == nil {
		return
	}

	replay.RecordAction(act)
}

// GetReplay returns the in-memory replay for a game.
func (rr *ReplayRecorder) GetReplay(gameID string) (*Replay, bool) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	replay, exists := rr.replays[gameID]
	return replay, exists
}

// SaveReplay writes a replay to disk and drops it from memory.
func (rr *ReplayRecorder) SaveReplay(gameID string) error {
	rr.mu.Lock()
	replay, exists := rr.replays[gameID]
	if !exists {
		rr.mu.Unlock()
		return fmt.Errorf("no replay recorded for game %s", gameID)
	}
	delete(rr.replays, gameID)
	delete(rr.enabled, gameID)
	rr.mu.Unlock()

	if err := replay.SaveToFile(rr.saveDir); err != nil {
		return fmt.Errorf("failed to write replay: %w", err)
	}

	if rr.logger != nil {
		rr.logger.Info("replay saved",
			zap.String("game_id", gameID),
			zap.Int("state_count", replay.Size()),
			zap.String("directory", rr.saveDir),
		)
	}

	return nil
}

// LoadReplay reads a replay back from disk.
func (rr *ReplayRecorder) LoadReplay(gameID string) (*Replay, error) {
	replay, err := LoadReplayFromFile(rr.saveDir, gameID)
	if err != nil {
		return nil, err
	}

	if rr.logger != nil {
		rr.logger.Info("replay loaded",
			zap.String("game_id", gameID),
			zap.Int("state_count", replay.Size()),
		)
	}

	return replay, nil
}

// ClearReplay drops a replay from memory without saving.
func (rr *ReplayRecorder) ClearReplay(gameID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	delete(rr.replays, gameID)
	delete(rr.enabled, gameID)

	if rr.logger != nil {
		rr.logger.Debug("replay discarded",
			zap.String("game_id", gameID),
		)
	}
}

// IsRecording reports whether recording is enabled for a game.
func (rr *ReplayRecorder) IsRecording(gameID string) bool {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	return rr.enabled[gameID]
}
