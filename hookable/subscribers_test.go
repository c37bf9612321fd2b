package hookable

import "testing"

func TestOnceTransformRunsOnce(t *testing.T) {
	f := New(func(s string) (string, error) { return s, nil })
	f.TransformInput(OnceTransform(func(s string) (string, error) { return s + "!", nil }))

	first, _ := f.Call("a")
	second, _ := f.Call("b")
	if first != "a!" || second != "b" {
		t.Fatalf("unexpected results first=%q second=%q", first, second)
	}
}

func TestOnceTapRunsOnce(t *testing.T) {
	f := New(func(s string) (string, error) { return s, nil })
	var seen []string
	f.Leave(OnceTap(func(s string) error {
		seen = append(seen, s)
		return nil
	}))

	_, _ = f.Call("a")
	_, _ = f.Call("b")
	if len(seen) != 1 || seen[0] != "a" {
		t.Fatalf("expected a single observation, got %v", seen)
	}
}

func TestEveryHelpersStayRegistered(t *testing.T) {
	f := New(func(n int) (int, error) { return n, nil })
	taps := 0
	f.Enter(EveryTap(func(int) error { taps++; return nil }))
	f.TransformOutput(EveryTransform(func(n int) (int, error) { return n + 1, nil }))

	for i := 0; i < 3; i++ {
		got, _ := f.Call(i)
		if got != i+1 {
			t.Fatalf("call %d: expected %d, got %d", i, i+1, got)
		}
	}
	if taps != 3 {
		t.Fatalf("expected 3 taps, got %d", taps)
	}
}

func TestNilHelpersReturnNilHooks(t *testing.T) {
	if EveryTap[int](nil) != nil || EveryTransform[int](nil) != nil {
		t.Fatalf("expected nil hooks for nil handlers")
	}
	if OnceTap[int](nil) != nil || OnceTransform[int](nil) != nil {
		t.Fatalf("expected nil hooks for nil handlers")
	}
}
