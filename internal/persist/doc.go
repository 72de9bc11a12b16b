/*
Package persist writes tag lists to durable storage off the caller's goroutine.

A Queue is an unbounded FIFO of Tasks drained by a single worker. Callers
enqueue a Save with a snapshot of an image's tags after every mutation and
return immediately; the worker hands each save to a Sink, then pauses for the
configured throttle.

	q := persist.New(persist.NewSidecarSink(dir), persist.Options{})
	q.Start()
	_ = q.SaveTags("img1.png", []string{"cat", "dog"})
	defer q.Close()

# Ordering

Tasks are processed strictly in enqueue order, so when one image is saved
twice the later snapshot is the one left on disk.

# Errors

Write failures are logged at error level and counted in
image_tagger_saves_total{status="error"}. They are never reported back to
the code that enqueued the task.

# Shutdown

Close enqueues a Shutdown task and waits for the worker to exit. Every save
enqueued before Close is written first. Enqueue returns ErrClosed afterwards.
*/
package persist
