package persist

import "slices"

// Kind identifies the variant carried by a Task.
type Kind int

const (
	// KindSave persists the tag list of one image.
	KindSave Kind = iota
	// KindShutdown stops the worker once every earlier task is processed.
	KindShutdown
	// kindBarrier is used by Flush to observe that earlier tasks are done.
	kindBarrier
)

func (k Kind) String() string {
	switch k {
	case KindSave:
		return "save"
	case KindShutdown:
		return "shutdown"
	default:
		return "barrier"
	}
}

// Task is a unit of work for the queue worker.
type Task struct {
	Kind  Kind
	Image string
	Tags  []string

	ack chan struct{}
}

// Save returns a task that writes tags for image. The tag slice is copied so
// later edits by the caller do not change what gets written.
func Save(image string, tags []string) Task {
	snapshot := slices.Clone(tags)
	if snapshot == nil {
		snapshot = []string{}
	}
	return Task{Kind: KindSave, Image: image, Tags: snapshot}
}

// Shutdown returns the task that ends the worker loop.
func Shutdown() Task {
	return Task{Kind: KindShutdown}
}
