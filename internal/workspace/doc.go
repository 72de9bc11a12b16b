/*
Package workspace ties a directory's tag store to its persistence.

A Workspace loads a directory, serializes every store access behind one
mutex and, after each successful mutation, enqueues a snapshot of the
affected images on the persistence queue. HTTP handlers, CLI commands and
the directory watcher all go through it.

	ws, err := workspace.Open(ctx, workspace.Options{Dir: "/data/photos"})
	if err != nil {
		return err
	}
	defer ws.Close()

	if err := ws.AddTag("img1.png", "cat"); err != nil {
		return err // tagstore.ErrEmptyTag, ErrTagExists or ErrUnknownImage
	}

When CatalogPath is set, saves are mirrored into the SQLite catalog and the
catalog is resynchronized after every load.

Close drains pending saves before returning.
*/
package workspace
