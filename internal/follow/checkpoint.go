package follow

import (
	"encoding/json"
	"os"
	"sync"
)

// checkpointFile is the on-disk JSON shape for persisted offsets.
type checkpointFile struct {
	Offsets map[string]int64 `json:"offsets"`
}

// Checkpoint persists per-file read offsets so following can resume where it
// left off after a restart.
type Checkpoint struct {
	mu      sync.Mutex
	path    string
	offsets map[string]int64
}

// LoadCheckpoint reads the checkpoint at path. A missing or unreadable file
// just means starting fresh.
func LoadCheckpoint(path string) *Checkpoint {
	c := &Checkpoint{path: path, offsets: make(map[string]int64)}

	raw, err := os.ReadFile(path)
	if err != nil {
		return c
	}
	var data checkpointFile
	if err := json.Unmarshal(raw, &data); err == nil && data.Offsets != nil {
		c.offsets = data.Offsets
	}
	return c
}

// Get returns the saved offset for a file path.
func (c *Checkpoint) Get(path string) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.offsets[path]
	return v, ok
}

// Set records the current offset for a file path.
func (c *Checkpoint) Set(path string, offset int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offsets[path] = offset
}

// Save writes the offsets to disk, through a temp file and rename so a crash
// mid-write cannot corrupt the checkpoint.
func (c *Checkpoint) Save() error {
	c.mu.Lock()
	raw, err := json.MarshalIndent(checkpointFile{Offsets: c.offsets}, "", "  ")
	c.mu.Unlock()
	if err != nil {
		return err
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}
