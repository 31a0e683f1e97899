/*
Package postman detects which stateful components of a server-rendered page
changed during one request and marks only their nearest refresh boundary dirty,
so the host re-renders those regions instead of the whole page.

# Concept

The host framework owns the component tree. Postman only needs four things from
it: a root node, a read-only state snapshot per node, a way to mark a boundary
node dirty, and two lifecycle hooks per request:

  - "tree ready" (before any state mutation): the tree is flattened, every
    refresh boundary is switched to manual refresh, and each node's state is
    fingerprinted as a baseline.
  - "state finalized" (after all mutation, before output): every node is
    fingerprinted again; for each node whose fingerprint moved, the nearest
    enclosing boundary is marked dirty.

Nothing survives the request. A new Activator is created for each one.

# Usage

	eng, err := postman.New(postman.WithLogger(logger))
	if err != nil {
		log.Fatal(err)
	}

	// Per request:
	act := eng.NewActivator()
	if err := act.OnTreeReady(ctx, page); err != nil {
		return err
	}

	handleEvents(page) // host mutates component state

	report, err := act.OnStateFinalized(ctx)
	if err != nil {
		return err
	}
	for _, id := range report.DirtyIDs {
		renderPanel(id)
	}

Hosts that run the whole request in one place can use Engine.Process instead.
*/
package postman
