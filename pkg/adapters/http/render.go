package http

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/a-h/templ"

	"github.com/aretw0/postman/pkg/adapters/memory"
	"github.com/aretw0/postman/pkg/domain"
)

// componentView renders a component subtree as nested divs. State entries are
// listed in key order so output is stable.
func componentView(c *memory.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return writeComponent(w, c)
	})
}

func writeComponent(w io.Writer, c *memory.Component) error {
	if _, err := fmt.Fprintf(w, `<div id="%s" data-kind="%s">`,
		templ.EscapeString(c.ID()), templ.EscapeString(string(c.Kind()))); err != nil {
		return err
	}

	snap := c.Snapshot()
	if len(snap) > 0 {
		keys := make([]string, 0, len(snap))
		for k := range snap {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		io.WriteString(w, "<dl>")
		for _, k := range keys {
			fmt.Fprintf(w, "<dt>%s</dt><dd>%s</dd>",
				templ.EscapeString(k), templ.EscapeString(fmt.Sprint(snap[k])))
		}
		io.WriteString(w, "</dl>")
	}

	for _, child := range c.Children() {
		if cc, ok := child.(*memory.Component); ok {
			if err := writeComponent(w, cc); err != nil {
				return err
			}
		}
	}
	_, err := io.WriteString(w, "</div>")
	return err
}

// pageView renders the whole page.
func pageView(page *memory.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, "<!DOCTYPE html><html><head><title>%s</title></head><body><main>",
			templ.EscapeString(page.ID()))
		if err := writeComponent(w, page); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</main></body></html>")
		return err
	})
}

// dirtyBoundaries returns the outermost boundaries that must be re-rendered
// after an activation: manual-mode components marked dirty. A dirty boundary
// nested in another one is covered by its ancestor's fragment.
func dirtyBoundaries(page *memory.Component) []*memory.Component {
	var out []*memory.Component
	stack := []*memory.Component{page}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if c.RefreshMode() == domain.RefreshManual && c.Dirty() {
			out = append(out, c)
			continue
		}
		children := c.Children()
		for i := len(children) - 1; i >= 0; i-- {
			if cc, ok := children[i].(*memory.Component); ok {
				stack = append(stack, cc)
			}
		}
	}
	return out
}

// fragmentsView renders each dirty boundary as an out-of-band swap fragment.
func fragmentsView(boundaries []*memory.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, b := range boundaries {
			fmt.Fprintf(w, `<template hx-swap-oob="outerHTML:#%s">`, templ.EscapeString(b.ID()))
			if err := componentView(b).Render(ctx, w); err != nil {
				return err
			}
			io.WriteString(w, "</template>")
		}
		return nil
	})
}
