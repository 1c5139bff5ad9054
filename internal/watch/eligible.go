package watch

import (
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Eligible reports whether path names a media file the watcher should process.
func Eligible(path string, extensions []string) bool {
	base := filepath.Base(path)
	if base == "" || strings.HasPrefix(base, ".") {
		return false
	}
	if strings.Contains(base, ".stereomax-tmp") || strings.HasSuffix(base, ".stereomax.lock") {
		return false
	}
	return slices.Contains(extensions, strings.ToLower(filepath.Ext(base)))
}

// OutputPathFor maps a watched input to its output location.
func OutputPathFor(inputPath, outputDir string) string {
	return filepath.Join(outputDir, filepath.Base(inputPath))
}

type pendingFile struct {
	size    int64
	changed time.Time
}

// pendingSet tracks files until their size has been stable for the settle delay.
type pendingSet map[string]pendingFile

func (p pendingSet) touch(path string, size int64, now time.Time) {
	if cur, ok := p[path]; ok && cur.size == size {
		return
	}
	p[path] = pendingFile{size: size, changed: now}
}

// ready removes and returns the paths that have settled, sorted for stable order.
func (p pendingSet) ready(now time.Time, settle time.Duration) []string {
	var out []string
	for path, f := range p {
		if now.Sub(f.changed) >= settle {
			out = append(out, path)
		}
	}
	slices.Sort(out)
	for _, path := range out {
		delete(p, path)
	}
	return out
}
