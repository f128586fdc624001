package scanner

import (
	"context"
	"io/fs"
	"os"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
)

// Estimate counts the regular files beneath root using a parallel walk.
// The count is an upper bound on the entries a scan of the same root can
// accept, used to drive percent-style progress display; the
// authoritative traversal remains Scanner.Scan. Errors on individual
// entries are ignored and a cancelled walk returns the partial count.
func Estimate(ctx context.Context, root string, recursive bool) int64 {
	if !recursive {
		children, err := os.ReadDir(root)
		if err != nil {
			return 0
		}
		var n int64
		for _, c := range children {
			if c.Type().IsRegular() {
				n++
			}
		}
		return n
	}

	var count atomic.Int64
	conf := fastwalk.Config{Follow: false}

	_ = fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return fs.SkipAll
		}
		if err != nil {
			return nil
		}
		if d.Type().IsRegular() {
			count.Add(1)
		}
		return nil
	})

	return count.Load()
}
