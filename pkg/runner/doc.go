/*
Package runner replays scenario requests against an Engine and reports what
each request would re-render.

Each request is one full activation: the tree is reset, armed, mutated with
the request's mutations, then resolved. Results go to a pluggable Handler
(human-readable text or JSON lines).

# Usage

	r := runner.New(eng,
		runner.WithHandler(runner.NewTextHandler(os.Stdout)),
	)
	if err := r.Run(ctx, compiled); err != nil {
		log.Fatal(err)
	}
*/
package runner
