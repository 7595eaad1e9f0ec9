package visualization

import (
	"github.com/rs/zerolog"

	"rgbdinpaint/pkg/inpainting"
)

// SnapshotWriter saves every n-th fill round to a directory. Observers
// cannot fail a run, so the first write error is kept and later rounds are
// skipped.
type SnapshotWriter struct {
	Dir   string
	Every int

	log     zerolog.Logger
	written int
	err     error
}

// NewSnapshotWriter writes to dir every `every` rounds (1 for all rounds).
// The logger may be nil.
func NewSnapshotWriter(dir string, every int, logger *zerolog.Logger) *SnapshotWriter {
	if every < 1 {
		every = 1
	}
	w := &SnapshotWriter{Dir: dir, Every: every, log: zerolog.Nop()}
	if logger != nil {
		w.log = *logger
	}
	return w
}

// Observe implements inpainting.Observer. The final round is always saved.
func (w *SnapshotWriter) Observe(s *inpainting.State, round inpainting.Round) {
	if w.err != nil {
		return
	}
	if round.Iteration%w.Every != 0 && round.Unknown != 0 {
		return
	}
	if err := NewViewer(s).SaveRound(round, w.Dir); err != nil {
		w.err = err
		w.log.Warn().Err(err).Int("iteration", round.Iteration).Msg("snapshot failed, disabling snapshots")
		return
	}
	w.written++
}

// Written returns the number of rounds saved so far.
func (w *SnapshotWriter) Written() int { return w.written }

// Err returns the first write error, if any.
func (w *SnapshotWriter) Err() error { return w.err }
