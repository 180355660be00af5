package follow

import (
	"bytes"
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// Line is one complete line read from a followed file, without its
// terminator.
type Line struct {
	Text   string
	Source string
}

type tracked struct {
	file    *os.File
	partial []byte // bytes after the last newline, kept until it arrives
}

// Follower tails a fixed set of files and emits complete appended lines in
// arrival order. Globs are expanded once at construction; files created
// later do not join the set.
//
// Only the Run goroutine touches the tracked files, so the type needs no
// locking.
type Follower struct {
	fsw   *fsnotify.Watcher
	out   chan Line
	ckpt  *Checkpoint
	paths []string
	files map[string]*tracked
	rearm chan string
}

// New expands the given glob patterns (doublestar syntax, so ** recurses)
// and prepares to follow every matching file. Patterns that fail to expand
// are skipped with a warning.
func New(patterns []string, ckpt *Checkpoint) (*Follower, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	f := &Follower{
		fsw:   fsw,
		out:   make(chan Line, 512),
		ckpt:  ckpt,
		files: make(map[string]*tracked),
		rearm: make(chan string, 16),
	}

	seen := make(map[string]bool)
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
		if err != nil {
			log.Printf("warning: failed to expand pattern %q: %v", pattern, err)
			continue
		}
		for _, m := range matches {
			abs, err := filepath.Abs(m)
			if err != nil || seen[abs] {
				continue
			}
			if err := fsw.Add(abs); err != nil {
				log.Printf("warning: cannot watch %s: %v", abs, err)
				continue
			}
			seen[abs] = true
			f.paths = append(f.paths, abs)
		}
	}

	return f, nil
}

// Lines returns the channel complete lines arrive on. It is closed when Run
// returns.
func (f *Follower) Lines() <-chan Line {
	return f.out
}

// Paths returns the files being followed, glob-expanded and absolute.
func (f *Follower) Paths() []string {
	return f.paths
}

// Run converts file notifications into lines until ctx is cancelled. Files
// with a checkpointed offset are caught up immediately; fresh files start at
// their current end.
func (f *Follower) Run(ctx context.Context) {
	defer close(f.out)
	defer f.fsw.Close()

	for _, p := range f.paths {
		f.open(p)
		f.drain(p)
	}

	saveTicker := time.NewTicker(5 * time.Second)
	defer saveTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			f.shutdown()
			return

		case ev, ok := <-f.fsw.Events:
			if !ok {
				f.shutdown()
				return
			}
			f.handle(ev)

		case path := <-f.rearm:
			if err := f.fsw.Add(path); err != nil {
				log.Printf("cannot rewatch %s: %v", path, err)
				continue
			}
			log.Printf("reopened rotated file %s", path)
			f.open(path)
			f.drain(path)

		case err, ok := <-f.fsw.Errors:
			if !ok {
				f.shutdown()
				return
			}
			log.Printf("watch error: %v", err)

		case <-saveTicker.C:
			f.save()
		}
	}
}

func (f *Follower) handle(ev fsnotify.Event) {
	switch {
	case ev.Op&fsnotify.Write != 0:
		f.drain(ev.Name)

	case ev.Op&fsnotify.Create != 0:
		f.open(ev.Name)
		f.drain(ev.Name)

	case ev.Op&fsnotify.Remove != 0, ev.Op&fsnotify.Rename != 0:
		// Rotated or deleted. Wait off-loop for the path to come back.
		f.close(ev.Name)
		go f.await(ev.Name)
	}
}

// open starts tracking path. A checkpointed offset is resumed as long as the
// file still reaches it; a shrunken file is read from the start again.
func (f *Follower) open(path string) {
	if _, ok := f.files[path]; ok {
		return
	}

	file, err := os.Open(path)
	if err != nil {
		log.Printf("cannot open %s: %v", path, err)
		return
	}

	var offset int64
	if saved, ok := f.ckpt.Get(path); ok {
		offset = saved
		if info, err := file.Stat(); err == nil && info.Size() < offset {
			offset = 0
		}
	} else if pos, err := file.Seek(0, io.SeekEnd); err == nil {
		offset = pos
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		log.Printf("cannot seek %s: %v", path, err)
		file.Close()
		return
	}

	f.files[path] = &tracked{file: file}
}

// drain reads everything appended since the last read and emits the complete
// lines. Bytes after the last newline stay buffered until their line ends.
func (f *Follower) drain(path string) {
	tf, ok := f.files[path]
	if !ok {
		return
	}

	buf := make([]byte, 32*1024)
	for {
		n, err := tf.file.Read(buf)
		if n > 0 {
			tf.partial = append(tf.partial, buf[:n]...)
		}
		if err != nil {
			if err != io.EOF {
				log.Printf("read error on %s: %v", path, err)
			}
			break
		}
	}

	for {
		i := bytes.IndexByte(tf.partial, '\n')
		if i < 0 {
			break
		}
		text := strings.TrimSuffix(string(tf.partial[:i]), "\r")
		tf.partial = tf.partial[i+1:]
		f.out <- Line{Text: text, Source: path}
	}

	// Checkpoint the start of the partial tail so a restart replays it.
	if pos, err := tf.file.Seek(0, io.SeekCurrent); err == nil {
		f.ckpt.Set(path, pos-int64(len(tf.partial)))
	}
}

func (f *Follower) close(path string) {
	if tf, ok := f.files[path]; ok {
		tf.file.Close()
		delete(f.files, path)
	}
}

// await polls for a rotated file to reappear, then hands it back to the run
// loop. Tracked state is only ever touched from Run.
func (f *Follower) await(path string) {
	for i := 0; i < 5; i++ {
		time.Sleep(time.Second)
		if _, err := os.Stat(path); err == nil {
			f.rearm <- path
			return
		}
	}
	log.Printf("gave up waiting for %s to reappear", path)
}

func (f *Follower) save() {
	if err := f.ckpt.Save(); err != nil {
		log.Printf("checkpoint save failed: %v", err)
	}
}

func (f *Follower) shutdown() {
	f.save()
	for path, tf := range f.files {
		tf.file.Close()
		delete(f.files, path)
	}
}
