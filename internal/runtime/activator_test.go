package runtime_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/aretw0/postman/internal/runtime"
	"github.com/aretw0/postman/pkg/adapters/memory"
	"github.com/aretw0/postman/pkg/domain"
	"github.com/aretw0/postman/pkg/policy"
)

// twoPanels builds Root(B1 -> L1{x:1}, B2 -> L2{y:2}).
func twoPanels() (root, b1, l1, b2, l2 *memory.Component) {
	l1 = comp("L1", domain.KindControl, "x", 1)
	l2 = comp("L2", domain.KindControl, "y", 2)
	b1 = comp("B1", domain.KindPanel).Append(l1)
	b2 = comp("B2", domain.KindPanel).Append(l2)
	root = comp("Root", domain.KindPage).Append(b1, b2)
	return
}

func TestActivator_MarksOnlyChangedBoundary(t *testing.T) {
	ctx := context.Background()
	root, b1, l1, b2, _ := twoPanels()

	act := runtime.NewActivator()
	if err := act.OnTreeReady(ctx, root); err != nil {
		t.Fatalf("OnTreeReady failed: %v", err)
	}

	l1.Set("x", 2)

	report, err := act.OnStateFinalized(ctx)
	if err != nil {
		t.Fatalf("OnStateFinalized failed: %v", err)
	}

	if !b1.Dirty() {
		t.Error("B1 should be dirty")
	}
	if b2.Dirty() {
		t.Error("B2 should not be dirty")
	}
	if b2.NeedsRender() {
		t.Error("B2 must be in manual mode and skip rendering")
	}
	if report.Changed != 1 || report.Dirty != 1 || report.Observed != 5 {
		t.Errorf("unexpected report: %+v", report)
	}
	if !reflect.DeepEqual(report.DirtyIDs, []string{"B1"}) {
		t.Errorf("DirtyIDs = %v, want [B1]", report.DirtyIDs)
	}
	if act.Phase() != "resolved" {
		t.Errorf("Phase() = %s, want resolved", act.Phase())
	}
}

func TestActivator_NoMutation(t *testing.T) {
	ctx := context.Background()
	root, b1, _, b2, _ := twoPanels()

	act := runtime.NewActivator()
	if err := act.OnTreeReady(ctx, root); err != nil {
		t.Fatal(err)
	}
	report, err := act.OnStateFinalized(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if b1.Dirty() || b2.Dirty() {
		t.Error("no boundary should be dirty without mutation")
	}
	if !report.Clean() || report.Changed != 0 {
		t.Errorf("expected clean report, got %+v", report)
	}
}

func TestActivator_OrphanChange(t *testing.T) {
	ctx := context.Background()
	leaf := comp("leaf", domain.KindControl, "v", "a")
	root := comp("root", domain.KindPage).Append(leaf)

	act := runtime.NewActivator()
	if err := act.OnTreeReady(ctx, root); err != nil {
		t.Fatal(err)
	}
	leaf.Set("v", "b")

	report, err := act.OnStateFinalized(ctx)
	if err != nil {
		t.Fatalf("orphan change must not fail: %v", err)
	}
	if report.Changed != 1 || report.Orphaned != 1 || report.Dirty != 0 {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestActivator_BoundaryMarkedOnce(t *testing.T) {
	ctx := context.Background()
	a := comp("a", domain.KindControl, "n", 1)
	b := comp("b", domain.KindControl, "n", 1)
	panel := comp("panel", domain.KindPanel).Append(a, b)
	root := comp("root", domain.KindPage).Append(panel)

	var marks []string
	act := runtime.NewActivator(runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnBoundaryMarked: func(_ context.Context, e *domain.BoundaryEvent) {
			marks = append(marks, e.BoundaryID+"<-"+e.ChangedID)
		},
	}))
	if err := act.OnTreeReady(ctx, root); err != nil {
		t.Fatal(err)
	}
	a.Set("n", 2)
	b.Set("n", 2)

	report, err := act.OnStateFinalized(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if report.Changed != 2 || report.Dirty != 1 {
		t.Errorf("unexpected report: %+v", report)
	}
	if !reflect.DeepEqual(marks, []string{"panel<-a"}) {
		t.Errorf("marks = %v, want [panel<-a]", marks)
	}
}

func TestActivator_ConfiguresBoundariesOnArm(t *testing.T) {
	root, b1, _, b2, _ := twoPanels()

	if b1.RefreshMode() != domain.RefreshCascade {
		t.Fatal("components start in cascade mode")
	}
	act := runtime.NewActivator()
	if err := act.OnTreeReady(context.Background(), root); err != nil {
		t.Fatal(err)
	}
	for _, b := range []*memory.Component{b1, b2} {
		if b.RefreshMode() != domain.RefreshManual {
			t.Errorf("%s mode = %s, want manual", b.ID(), b.RefreshMode())
		}
	}
	if got := len(act.Observers()); got != 5 {
		t.Errorf("Observers() = %d, want 5", got)
	}
	for _, o := range act.Observers() {
		if len(o.Digests()) != 1 {
			t.Errorf("%s: want exactly one baseline digest", domain.NodeID(o.Node()))
		}
	}
}

func TestActivator_HookOrder(t *testing.T) {
	ctx := context.Background()
	root, _, _, _, _ := twoPanels()

	act := runtime.NewActivator()
	if _, err := act.OnStateFinalized(ctx); !errors.Is(err, domain.ErrHookOrder) {
		t.Errorf("finalize before arm: got %v, want ErrHookOrder", err)
	}

	if err := act.OnTreeReady(ctx, root); err != nil {
		t.Fatal(err)
	}
	if err := act.OnTreeReady(ctx, root); !errors.Is(err, domain.ErrHookOrder) {
		t.Errorf("double arm: got %v, want ErrHookOrder", err)
	}
	if _, err := act.OnStateFinalized(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := act.OnStateFinalized(ctx); !errors.Is(err, domain.ErrPrecondition) {
		t.Errorf("double finalize: got %v, want ErrPrecondition", err)
	}
}

func TestActivator_SerializationErrorPropagates(t *testing.T) {
	ctx := context.Background()
	root, _, l1, _, _ := twoPanels()

	act := runtime.NewActivator()
	if err := act.OnTreeReady(ctx, root); err != nil {
		t.Fatal(err)
	}
	l1.Set("callback", func() {})

	_, err := act.OnStateFinalized(ctx)
	if !errors.Is(err, domain.ErrSerialization) {
		t.Fatalf("got %v, want ErrSerialization", err)
	}
	if act.Phase() != "failed" {
		t.Errorf("Phase() = %s, want failed", act.Phase())
	}
	if _, err := act.OnStateFinalized(ctx); !errors.Is(err, domain.ErrHookOrder) {
		t.Errorf("failed activator must refuse further hooks, got %v", err)
	}
}

func TestActivator_BaselineErrorPropagates(t *testing.T) {
	root, _, l1, _, _ := twoPanels()
	l1.Set("ch", make(chan struct{}))

	err := runtime.NewActivator().OnTreeReady(context.Background(), root)
	if !errors.Is(err, domain.ErrSerialization) {
		t.Errorf("got %v, want ErrSerialization", err)
	}
}

func TestActivator_CustomPolicies(t *testing.T) {
	ctx := context.Background()
	item := comp("item", domain.KindControl, "qty", 1)
	region := comp("region", "region").Append(item)
	banner := comp("banner", "banner", "text", "hi")
	root := comp("root", domain.KindPage).Append(banner, region)

	act := runtime.NewActivator(
		runtime.WithBoundary(policy.Kinds("region")),
		runtime.WithIgnore(policy.Kinds("banner")),
		runtime.WithRequestID("req-42"),
	)
	if err := act.OnTreeReady(ctx, root); err != nil {
		t.Fatal(err)
	}
	item.Set("qty", 3)
	banner.Set("text", "changed but ignored")

	report, err := act.OnStateFinalized(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if report.RequestID != "req-42" || act.RequestID() != "req-42" {
		t.Errorf("request id not propagated: %q", report.RequestID)
	}
	if !region.Dirty() {
		t.Error("region should be dirty")
	}
	if !reflect.DeepEqual(report.ChangedIDs, []string{"item"}) {
		t.Errorf("ChangedIDs = %v, want [item]", report.ChangedIDs)
	}
}

func TestActivator_Hooks(t *testing.T) {
	ctx := context.Background()
	root, _, l1, _, _ := twoPanels()

	var armed *domain.ArmEvent
	var resolved *domain.Report
	act := runtime.NewActivator(runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnArmed:    func(_ context.Context, e *domain.ArmEvent) { armed = e },
		OnResolved: func(_ context.Context, r *domain.Report) { resolved = r },
	}))

	if err := act.OnTreeReady(ctx, root); err != nil {
		t.Fatal(err)
	}
	if armed == nil || armed.Observed != 5 || armed.Boundaries != 2 {
		t.Fatalf("unexpected arm event: %+v", armed)
	}
	if armed.RequestID != act.RequestID() {
		t.Error("arm event must carry the request id")
	}

	l1.Set("x", 3)
	report, err := act.OnStateFinalized(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != report {
		t.Error("OnResolved must receive the returned report")
	}
}
