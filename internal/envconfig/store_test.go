package envconfig

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestStore_StartsEmpty(t *testing.T) {
	for name, s := range map[string]*Store{"NewStore": NewStore(), "ZeroValue": {}} {
		t.Run(name, func(t *testing.T) {
			if s.Has("ANY") {
				t.Error("empty store reports a key")
			}
			if v := s.Get("ANY", "default"); v != "default" {
				t.Errorf("Get() = %q, want default", v)
			}
			if s.Snapshot().Len() != 0 {
				t.Error("empty store snapshot is not empty")
			}
		})
	}
}

func TestStore_LoadReplacesWholesale(t *testing.T) {
	s := NewStore()

	s.Load(Parse("A=1\nB=2"))
	first := s.Snapshot()

	s.Load(Parse("C=3"))

	if s.Has("A") || s.Has("B") {
		t.Error("keys from the previous load survived")
	}
	if v := s.Get("C", ""); v != "3" {
		t.Errorf("Get(C) = %q, want 3", v)
	}

	// A snapshot taken before the swap is still intact.
	if first.Get("A", "") != "1" || first.Has("C") {
		t.Error("previous snapshot was modified by Load")
	}
}

func TestStore_LoadCopiesMapping(t *testing.T) {
	m := Parse("A=1")
	s := NewStore()
	s.Load(m)

	if s.Snapshot() == m {
		t.Error("store holds the caller's mapping instead of a copy")
	}

	m.set("B", "2")
	if s.Has("B") {
		t.Error("mutating the source mapping leaked into the store")
	}
}

func TestStore_LoadNil(t *testing.T) {
	s := NewStore()
	s.Load(Parse("A=1"))
	s.Load(nil)

	if s.Has("A") || s.Snapshot().Len() != 0 {
		t.Error("loading nil should leave an empty snapshot")
	}
}

func TestStore_ConcurrentLoadAndRead(t *testing.T) {
	const keys = 64

	build := func(value string) *Mapping {
		var b strings.Builder
		for i := 0; i < keys; i++ {
			fmt.Fprintf(&b, "KEY_%d=%s\n", i, value)
		}
		return Parse(b.String())
	}
	m1, m2 := build("one"), build("two")

	s := NewStore()
	s.Load(m1)

	var wg sync.WaitGroup
	errs := make(chan string, 16)

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				if i%2 == 0 {
					s.Load(m2)
				} else {
					s.Load(m1)
				}
			}
		}()
	}

	for r := 0; r < 8; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				if v := s.Get("KEY_0", ""); v != "one" && v != "two" {
					errs <- fmt.Sprintf("Get observed %q", v)
					return
				}

				snap := s.Snapshot()
				want := snap.Get("KEY_0", "")
				for k := 1; k < keys; k++ {
					if got := snap.Get(fmt.Sprintf("KEY_%d", k), ""); got != want {
						errs <- fmt.Sprintf("torn snapshot: KEY_0=%q KEY_%d=%q", want, k, got)
						return
					}
				}
			}
		}()
	}

	wg.Wait()
	close(errs)

	for e := range errs {
		t.Error(e)
	}
}
