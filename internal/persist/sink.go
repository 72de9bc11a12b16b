package persist

import (
	"context"
	"fmt"
	"path/filepath"

	"image-tagger/internal/filesystem"
	"image-tagger/internal/tagstore"
)

// Sink receives the tag list of one image. Implementations must be safe to
// call from the queue worker goroutine.
type Sink interface {
	// Name labels the sink in metrics and logs.
	Name() string
	Save(ctx context.Context, image string, tags []string) error
}

// SidecarSink writes "<Dir>/<base>.txt" next to each image.
type SidecarSink struct {
	Dir   string
	Retry filesystem.RetryConfig
}

// NewSidecarSink returns a sidecar sink for dir with the default NFS retry policy.
func NewSidecarSink(dir string) *SidecarSink {
	return &SidecarSink{Dir: dir, Retry: filesystem.DefaultRetryConfig()}
}

// Name implements Sink.
func (s *SidecarSink) Name() string { return "sidecar" }

// Save overwrites the sidecar with the comma separated tag list. The file is
// opened and closed on every call.
func (s *SidecarSink) Save(_ context.Context, image string, tags []string) error {
	path := filepath.Join(s.Dir, tagstore.SidecarName(image))
	if err := filesystem.WriteFileWithRetry(path, []byte(tagstore.FormatSidecar(tags)), 0o644, s.Retry); err != nil {
		return fmt.Errorf("write sidecar %s: %w", path, err)
	}
	return nil
}

// multiSink fans a save out to each sink in order.
type multiSink []Sink

// Sinks combines a primary sink with optional mirrors. Each sink is invoked in
// order for every save; a failing sink does not stop the others.
func Sinks(primary Sink, mirrors ...Sink) Sink {
	all := make(multiSink, 0, 1+len(mirrors))
	for _, s := range append([]Sink{primary}, mirrors...) {
		if s != nil {
			all = append(all, s)
		}
	}
	if len(all) == 1 {
		return all[0]
	}
	return all
}

func (m multiSink) Name() string { return "multi" }

func (m multiSink) Save(ctx context.Context, image string, tags []string) error {
	var firstErr error
	for _, s := range m {
		if err := s.Save(ctx, image, tags); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// expand flattens a sink into the list the worker reports metrics for.
func expand(s Sink) []Sink {
	if m, ok := s.(multiSink); ok {
		return m
	}
	return []Sink{s}
}
