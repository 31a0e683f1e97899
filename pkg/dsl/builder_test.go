package dsl

import (
	"testing"

	"github.com/aretw0/postman/pkg/domain"
)

func TestBuilder_Tree(t *testing.T) {
	b := New("page")
	b.Root().
		Panel("cart").
		Control("qty").Set("value", 1).End().
		Literal("hint").End().
		End().
		Panel("profile").
		Control("name").State(map[string]any{"value": "ada", "valid": true})

	root, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	if root.Kind() != domain.KindPage {
		t.Errorf("Expected root kind 'page', got '%s'", root.Kind())
	}
	if len(root.Children()) != 2 {
		t.Fatalf("Expected 2 panels, got %d", len(root.Children()))
	}

	cart, ok := b.Get("cart")
	if !ok {
		t.Fatal("cart not registered")
	}
	if len(cart.Children()) != 2 {
		t.Errorf("Expected cart to have 2 children, got %d", len(cart.Children()))
	}

	qty, _ := b.Get("qty")
	if v, _ := qty.Get("value"); v != 1 {
		t.Errorf("Expected qty value 1, got %v", v)
	}
	if qty.Parent() != cart {
		t.Error("Expected qty parent to be cart")
	}

	name, _ := root.Find("name")
	if v, _ := name.Get("valid"); v != true {
		t.Errorf("Expected name.valid true, got %v", v)
	}
}

func TestBuilder_DuplicateIDs(t *testing.T) {
	b := New("page")
	b.Root().Control("x").End().Control("x")

	if _, err := b.Build(); err == nil {
		t.Fatal("Expected duplicate id error")
	}

	defer func() {
		if recover() == nil {
			t.Error("MustBuild should panic on duplicates")
		}
	}()
	b.MustBuild()
}

func TestBuilder_EndAtRoot(t *testing.T) {
	b := New("page")
	if b.Root().End() != b.Root() {
		t.Error("End() on root should return root")
	}
}
