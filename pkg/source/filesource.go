// Package source provides the file-backed pipeline source: an XYZ
// trajectory loaded in the background, served per frame, and reloaded
// automatically when the file changes on disk.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/chilammps/vizflow/pkg/anim"
	"github.com/chilammps/vizflow/pkg/data"
	"github.com/chilammps/vizflow/pkg/graph"
	"github.com/chilammps/vizflow/pkg/pipeline"
	"github.com/chilammps/vizflow/pkg/tasks"
)

const TypeFileSource graph.TypeID = "source.file"

var pathSpec = graph.FieldSpec{Name: "path", Flags: graph.FlagNoUndo}

// FileSource loads a point trajectory from a file. Parsing runs on the
// worker pool; until the first load completes, Evaluate reports a Pending
// status so callers know to re-evaluate after draining the pool. A file
// watcher flags external modifications, which Poll picks up on the model
// thread.
type FileSource struct {
	graph.BaseNode

	logger *slog.Logger
	pool   *tasks.Pool

	path *graph.Value

	frames  []*data.PointSet
	loading bool
	loadErr error

	reload atomic.Bool
}

func NewFileSource(g *graph.Graph, pool *tasks.Pool, logger *slog.Logger, path string) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}

	s := &FileSource{
		logger: logger.With("module", "source"),
		pool:   pool,
	}
	s.Init(s, g, TypeFileSource)
	s.path = s.NewValue(pathSpec, path)
	s.startLoad()

	return s
}

// Path returns the trajectory file path.
func (s *FileSource) Path() string { return s.path.String() }

// SetPath switches the source to a different file and starts reloading.
func (s *FileSource) SetPath(path string) {
	s.path.Set(path)
	s.startLoad()
}

// Loading reports whether a load is in flight.
func (s *FileSource) Loading() bool { return s.loading }

// FrameCount returns the number of loaded frames, 0 while loading.
func (s *FileSource) FrameCount() int { return len(s.frames) }

// Reload discards the loaded trajectory and parses the file again.
func (s *FileSource) Reload() {
	s.startLoad()
}

// startLoad submits a parse task. A load already in flight for this source
// is superseded.
func (s *FileSource) startLoad() {
	path := s.Path()
	s.loading = true
	s.loadErr = nil

	s.logger.Info("Loading trajectory", "path", path)

	s.pool.Submit("filesource:"+s.UID(), func(ctx context.Context) (any, error) {
		return parseXYZ(ctx, path)
	}, s.loadDone)
}

// loadDone runs on the model thread via Pool.Drain.
func (s *FileSource) loadDone(value any, err error) {
	s.loading = false

	if err != nil {
		s.loadErr = err
		s.frames = nil
		s.logger.Error("Trajectory load failed", "path", s.Path(), "error", err)
		s.NotifyChanged()

		return
	}

	payloads := value.([]framePayload)
	frames := make([]*data.PointSet, len(payloads))

	for i, payload := range payloads {
		points := data.NewPointSet(s.Graph())
		points.SetPositions(payload.positions)
		frames[i] = points
	}

	s.frames = frames
	s.logger.Info("Trajectory loaded", "path", s.Path(), "frames", len(frames))
	s.NotifyChanged()
}

// Evaluate serves the frame containing t. While a load is in flight the
// returned state is empty with a Pending status and an empty validity, so
// it is never cached.
func (s *FileSource) Evaluate(t anim.Time) *pipeline.FlowState {
	if s.loading {
		state := pipeline.EmptyState()
		state.MergeStatus(pipeline.Pending(fmt.Sprintf("loading %s", s.Path())))

		return state
	}

	if s.loadErr != nil {
		state := pipeline.EmptyState()
		state.MergeStatus(pipeline.Errorf("load %s: %v", s.Path(), s.loadErr))

		return state
	}

	frame := anim.TimeToFrame(t, anim.TicksPerFrame)
	frame = min(max(frame, 0), len(s.frames)-1)

	state := pipeline.NewFlowState(nil, s.frameValidity(frame))
	state.AddObject(s.frames[frame])
	state.SetAttribute("source.frame", frame)

	return state
}

// frameValidity is the time span over which the given frame is current.
// The first and last frames extend to the respective infinities, so a
// single-frame trajectory is valid forever.
func (s *FileSource) frameValidity(frame int) anim.Interval {
	iv := anim.Interval{
		Start: anim.FrameToTime(frame, anim.TicksPerFrame),
		End:   anim.FrameToTime(frame+1, anim.TicksPerFrame) - 1,
	}

	if frame == 0 {
		iv.Start = anim.TimeNegativeInfinity
	}

	if frame == len(s.frames)-1 {
		iv.End = anim.TimePositiveInfinity
	}

	return iv
}

// Poll applies a pending reload flagged by the file watcher. It must be
// called from the model thread; it returns true when a reload was started.
func (s *FileSource) Poll() bool {
	if !s.reload.CompareAndSwap(true, false) {
		return false
	}

	s.logger.Info("Trajectory changed on disk, reloading", "path", s.Path())
	s.startLoad()

	return true
}

// Watch monitors the trajectory file until ctx is done. Change events only
// set a flag; the actual reload happens when the model thread calls Poll.
// The directory is watched rather than the file so that editors replacing
// the file atomically are still seen.
func (s *FileSource) Watch(ctx context.Context) error {
	absPath, err := filepath.Abs(s.Path())
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}

	go func() {
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}

				if name, err := filepath.Abs(event.Name); err != nil || name != absPath {
					continue
				}

				s.reload.Store(true)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}

				s.logger.Warn("File watcher error", "path", absPath, "error", err)
			}
		}
	}()

	return nil
}
