package store

import (
	"errors"
	"testing"

	"github.com/goliatone/go-store/hookable"
	"github.com/google/uuid"
)

type pair struct {
	A int
	B int
}

type testState struct {
	Test int
}

func mustOf[S any](t *testing.T, initial S, middleware Middleware[S], opts ...Option) *Store[S] {
	t.Helper()
	s, err := Of(initial, middleware, opts...)
	if err != nil {
		t.Fatalf("of: %v", err)
	}
	return s
}

func mustDeref[S any](t *testing.T, s *Store[S]) S {
	t.Helper()
	value, err := Deref(s)
	if err != nil {
		t.Fatalf("deref: %v", err)
	}
	return value
}

func TestSetNotifiesWithPreviousAndCurrent(t *testing.T) {
	s := mustOf(t, 1, nil)

	var events []StateChangedEvent[int]
	if _, err := Subscribe(s, func(event StateChangedEvent[int]) {
		events = append(events, event)
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := Set(s, 2); err != nil {
		t.Fatalf("set: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected one notification, got %d", len(events))
	}
	if events[0].Previous != 1 || events[0].Current != 2 {
		t.Fatalf("unexpected event: %+v", events[0])
	}
	if got := mustDeref(t, s); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}

func TestSetSameValueDoesNotNotifyIdentitySubscribers(t *testing.T) {
	s := mustOf(t, 5, nil)
	calls := 0
	_, _ = Subscribe(s, func(StateChangedEvent[int]) { calls++ })

	if err := Set(s, 5); err != nil {
		t.Fatalf("set: %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no notification, got %d", calls)
	}
}

func TestSwapOnUnselectedFieldSkipsSelectorSubscriber(t *testing.T) {
	s := mustOf(t, pair{A: 1, B: 2}, nil)

	calls := 0
	if _, err := SubscribeSelector(s, func(p pair) int { return p.A }, func(StateChangedEvent[pair]) {
		calls++
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := Swap(s, func(p pair) pair {
		p.B = 3
		return p
	}); err != nil {
		t.Fatalf("swap: %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected selector subscriber not to fire, got %d", calls)
	}
	if got := mustDeref(t, s); got.B != 3 {
		t.Fatalf("expected B=3, got %+v", got)
	}

	if err := Swap(s, func(p pair) pair {
		p.A = 9
		return p
	}); err != nil {
		t.Fatalf("swap: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected selector subscriber to fire once, got %d", calls)
	}
}

func TestSwapIdentityKeepsReference(t *testing.T) {
	initial := map[string]int{"a": 1}
	s := mustOf(t, initial, nil)

	calls := 0
	_, _ = Subscribe(s, func(StateChangedEvent[map[string]int]) { calls++ })

	if err := Swap(s, func(m map[string]int) map[string]int { return m }); err != nil {
		t.Fatalf("swap: %v", err)
	}
	if calls != 0 {
		t.Fatalf("identity swap must not notify, got %d", calls)
	}
	if got := mustDeref(t, s); !same(got, initial) {
		t.Fatalf("identity swap must keep the same map reference")
	}

	if err := Swap(s, func(m map[string]int) map[string]int {
		m["a"] = 2
		return m
	}); err != nil {
		t.Fatalf("swap: %v", err)
	}
	if calls != 1 {
		t.Fatalf("mutating swap must notify once, got %d", calls)
	}
	if initial["a"] != 1 {
		t.Fatalf("swap must not mutate the previous state, got %v", initial)
	}
}

func TestSwapRecipeEditsPrivateCopy(t *testing.T) {
	s := mustOf(t, []int{1, 2, 3}, nil)
	before := mustDeref(t, s)

	var seen StateChangedEvent[[]int]
	_, _ = Subscribe(s, func(event StateChangedEvent[[]int]) { seen = event })

	if err := Swap(s, func(values []int) []int {
		values[0] = 100
		return values
	}); err != nil {
		t.Fatalf("swap: %v", err)
	}
	if before[0] != 1 {
		t.Fatalf("previous slice mutated: %v", before)
	}
	if seen.Previous[0] != 1 || seen.Current[0] != 100 {
		t.Fatalf("unexpected event: %+v", seen)
	}
}

type hitCounter struct {
	hits map[string]int
}

func (c hitCounter) bump(key string) {
	c.hits[key]++
}

func (c hitCounter) get(key string) int {
	return c.hits[key]
}

func TestSwapMethodEditOnUnexportedMapNotifies(t *testing.T) {
	s := mustOf(t, hitCounter{hits: map[string]int{"a": 1}}, nil)
	before := mustDeref(t, s)

	calls := 0
	_, _ = SubscribeSelector(s, func(c hitCounter) map[string]int { return c.hits }, func(event StateChangedEvent[hitCounter]) {
		calls++
		if event.Previous.get("a") != 1 || event.Current.get("a") != 2 {
			t.Fatalf("unexpected event values: %d -> %d", event.Previous.get("a"), event.Current.get("a"))
		}
	})

	if err := Swap(s, func(d hitCounter) hitCounter {
		d.bump("a")
		return d
	}); err != nil {
		t.Fatalf("swap: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one notification, got %d", calls)
	}
	if before.get("a") != 1 {
		t.Fatalf("previous state mutated: %d", before.get("a"))
	}
	if got := mustDeref(t, s).get("a"); got != 2 {
		t.Fatalf("expected committed 2, got %d", got)
	}
}

type chainNode struct {
	Value  int
	Parent *chainNode
	Child  *chainNode
}

func TestSwapHandlesCyclicState(t *testing.T) {
	root := &chainNode{Value: 1}
	root.Child = &chainNode{Value: 2, Parent: root}
	s := mustOf(t, root, nil)

	if err := Swap(s, func(d *chainNode) *chainNode {
		d.Child.Value = 3
		return d
	}); err != nil {
		t.Fatalf("swap: %v", err)
	}

	got := mustDeref(t, s)
	if got == root || got.Child.Value != 3 || got.Child.Parent != got {
		t.Fatalf("unexpected committed graph: %+v", got)
	}
	if root.Child.Value != 2 {
		t.Fatalf("previous graph mutated")
	}
}

func vetoAbove(limit int) Middleware[testState] {
	return func(_ *Store[testState], hooks Hooks[testState]) error {
		hooks.StateWillChange(hookable.EveryTap(func(s testState) error {
			if s.Test >= limit {
				return errors.New("test too large")
			}
			return nil
		}))
		return nil
	}
}

func TestVetoDuringConstructionFailsOf(t *testing.T) {
	s, err := Of(testState{Test: 10}, vetoAbove(5))
	if err == nil {
		t.Fatalf("expected construction to fail")
	}
	if s != nil {
		t.Fatalf("expected nil store on failure")
	}
}

func TestVetoLeavesStateUnchanged(t *testing.T) {
	s := mustOf(t, testState{Test: 0}, vetoAbove(5))

	calls := 0
	_, _ = Subscribe(s, func(StateChangedEvent[testState]) { calls++ })

	err := Swap(s, func(state testState) testState {
		return testState{Test: state.Test + 10}
	})
	if err == nil {
		t.Fatalf("expected veto error")
	}
	if got := mustDeref(t, s); got.Test != 0 {
		t.Fatalf("vetoed write must not commit, got %+v", got)
	}
	if calls != 0 {
		t.Fatalf("vetoed write must not notify, got %d", calls)
	}

	if err := Set(s, testState{Test: 3}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := mustDeref(t, s); got.Test != 3 {
		t.Fatalf("expected 3, got %+v", got)
	}
}

func TestDidChangeErrorKeepsCommittedState(t *testing.T) {
	boom := errors.New("after commit")
	s := mustOf(t, 0, func(_ *Store[int], hooks Hooks[int]) error {
		hooks.StateDidChange(hookable.EveryTap(func(v int) error {
			if v == 7 {
				return boom
			}
			return nil
		}))
		return nil
	})

	calls := 0
	_, _ = Subscribe(s, func(StateChangedEvent[int]) { calls++ })

	if err := Set(s, 7); !errors.Is(err, boom) {
		t.Fatalf("expected did-change error, got %v", err)
	}
	if got := mustDeref(t, s); got != 7 {
		t.Fatalf("expected committed 7, got %d", got)
	}
	if calls != 1 {
		t.Fatalf("expected subscribers notified after commit, got %d", calls)
	}
}

func TestTransformStateRewritesCommittedValue(t *testing.T) {
	s := mustOf(t, 1, func(_ *Store[int], hooks Hooks[int]) error {
		hooks.TransformState(hookable.EveryTransform(func(v int) (int, error) {
			return v * 10, nil
		}))
		return nil
	})
	if got := mustDeref(t, s); got != 10 {
		t.Fatalf("initial write must be transformed, got %d", got)
	}

	var seen StateChangedEvent[int]
	_, _ = Subscribe(s, func(event StateChangedEvent[int]) { seen = event })
	if err := Set(s, 2); err != nil {
		t.Fatalf("set: %v", err)
	}
	if seen.Previous != 10 || seen.Current != 20 {
		t.Fatalf("expected committed value in event, got %+v", seen)
	}
}

func TestMiddlewareHooksRunForInitialWrite(t *testing.T) {
	var order []string
	s := mustOf(t, "init", func(_ *Store[string], hooks Hooks[string]) error {
		hooks.TransformState(hookable.EveryTransform(func(v string) (string, error) {
			order = append(order, "transform:"+v)
			return v, nil
		}))
		hooks.StateWillChange(hookable.EveryTap(func(v string) error {
			order = append(order, "will:"+v)
			return nil
		}))
		hooks.StateDidChange(hookable.EveryTap(func(v string) error {
			order = append(order, "did:"+v)
			return nil
		}))
		return nil
	})

	want := []string{"transform:init", "will:init", "did:init"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
	if got := mustDeref(t, s); got != "init" {
		t.Fatalf("unexpected state %q", got)
	}
}

func TestMiddlewareErrorFailsOf(t *testing.T) {
	boom := errors.New("boom")
	_, err := Of(1, func(*Store[int], Hooks[int]) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected middleware error, got %v", err)
	}
}

func TestUnsubscribeIsIdempotentAndScoped(t *testing.T) {
	s := mustOf(t, 0, nil)

	var first, second int
	callback := func(StateChangedEvent[int]) { first++ }
	unsubscribe, _ := Subscribe(s, callback)
	_, _ = Subscribe(s, callback)
	_, _ = Subscribe(s, func(StateChangedEvent[int]) { second++ })

	_ = Set(s, 1)
	if first != 2 || second != 1 {
		t.Fatalf("expected independent entries, got first=%d second=%d", first, second)
	}

	unsubscribe()
	unsubscribe()
	if s.Subscribers() != 2 {
		t.Fatalf("expected two remaining subscriptions, got %d", s.Subscribers())
	}

	_ = Set(s, 2)
	if first != 3 || second != 2 {
		t.Fatalf("expected one removal only, got first=%d second=%d", first, second)
	}
}

func TestUnsubscribeDuringNotificationKeepsPass(t *testing.T) {
	s := mustOf(t, 0, nil)

	var unsubscribeSecond func()
	secondCalls := 0
	_, _ = Subscribe(s, func(StateChangedEvent[int]) { unsubscribeSecond() })
	unsubscribeSecond, _ = Subscribe(s, func(StateChangedEvent[int]) { secondCalls++ })

	_ = Set(s, 1)
	if secondCalls != 1 {
		t.Fatalf("removal mid-pass must not skip the snapshot, got %d", secondCalls)
	}
	_ = Set(s, 2)
	if secondCalls != 1 {
		t.Fatalf("removed subscriber must not fire again, got %d", secondCalls)
	}
}

func TestInvalidStoreIsRejected(t *testing.T) {
	valid := mustOf(t, 1, nil)
	copied := *valid

	cases := map[string]*Store[int]{
		"nil":    nil,
		"zero":   {},
		"copied": &copied,
	}
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Deref(s); !errors.Is(err, ErrInvalidStore) {
				t.Fatalf("deref: expected ErrInvalidStore, got %v", err)
			}
			if err := Set(s, 2); !errors.Is(err, ErrInvalidStore) {
				t.Fatalf("set: expected ErrInvalidStore, got %v", err)
			}
			if err := Swap(s, func(v int) int { return v }); !errors.Is(err, ErrInvalidStore) {
				t.Fatalf("swap: expected ErrInvalidStore, got %v", err)
			}
			if _, err := Subscribe(s, func(StateChangedEvent[int]) {}); !errors.Is(err, ErrInvalidStore) {
				t.Fatalf("subscribe: expected ErrInvalidStore, got %v", err)
			}
			if err := s.SetExtension(extKey{}, 1); !errors.Is(err, ErrInvalidStore) {
				t.Fatalf("set extension: expected ErrInvalidStore, got %v", err)
			}
			if s.ID() != uuid.Nil || s.Name() != "" {
				t.Fatalf("invalid store must expose zero identity")
			}
		})
	}

	if got := mustDeref(t, valid); got != 1 {
		t.Fatalf("original store changed: %d", got)
	}
}

func TestNilFuncArguments(t *testing.T) {
	s := mustOf(t, 1, nil)

	if err := Swap(s, nil); !errors.Is(err, ErrNilFunc) {
		t.Fatalf("swap: expected ErrNilFunc, got %v", err)
	}
	if _, err := Subscribe(s, nil); !errors.Is(err, ErrNilFunc) {
		t.Fatalf("subscribe: expected ErrNilFunc, got %v", err)
	}
	if _, err := SubscribeSelector[int, int](s, nil, func(StateChangedEvent[int]) {}); !errors.Is(err, ErrNilFunc) {
		t.Fatalf("subscribe selector: expected ErrNilFunc, got %v", err)
	}
}

func TestIdentityAndName(t *testing.T) {
	a := mustOf(t, 1, nil, WithName("cart"))
	b := mustOf(t, 1, nil)

	if a.ID() == b.ID() {
		t.Fatalf("expected distinct ids")
	}
	if a.Name() != "cart" || b.Name() != "" {
		t.Fatalf("unexpected names %q %q", a.Name(), b.Name())
	}
}

func TestMiddlewareCanReadStoreDuringSetup(t *testing.T) {
	var seen error
	_ = mustOf(t, 3, func(s *Store[int], _ Hooks[int]) error {
		_, seen = Deref(s)
		return nil
	})
	if seen != nil {
		t.Fatalf("store must be valid inside middleware, got %v", seen)
	}
}

func TestVersionCountsCommittedWrites(t *testing.T) {
	s := mustOf(t, testState{}, vetoAbove(5))
	if s.Version() != 1 {
		t.Fatalf("expected initial write counted, got %d", s.Version())
	}
	_ = Set(s, testState{Test: 2})
	_ = Set(s, testState{Test: 9})
	if s.Version() != 2 {
		t.Fatalf("vetoed write must not count, got %d", s.Version())
	}
	var invalid *Store[int]
	if invalid.Version() != 0 {
		t.Fatalf("expected 0 for invalid store")
	}
}

func TestSelectorOnFuncFieldNotifiesWhenClosureReplaced(t *testing.T) {
	s := mustOf(t, handler{Name: "a", Run: counterFrom(1)}, nil)

	var calls int
	if _, err := SubscribeSelector(s, func(h handler) func() int { return h.Run }, func(StateChangedEvent[handler]) {
		calls++
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	_ = Swap(s, func(h handler) handler {
		h.Run = counterFrom(2)
		return h
	})
	if calls != 1 {
		t.Fatalf("expected replaced closure to notify, got %d calls", calls)
	}
	if got := mustDeref(t, s); got.Run() != 2 {
		t.Fatalf("expected new closure committed, got %d", got.Run())
	}
}
