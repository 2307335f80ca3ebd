package engine

import (
	"sync"
	"testing"
)

func TestFactorCacheLookup(t *testing.T) {
	cache := NewFactorCache(1024)
	b := StartingPosition()
	b[8].Count--
	b[7] = Point{Count: 1, Owner: SideB}

	want := BoardFactors(b, SideB)
	if got := cache.Factors(b, SideB); got != want {
		t.Errorf("miss returned %+v, want %+v", got, want)
	}
	if got := cache.Factors(b, SideB); got != want {
		t.Errorf("hit returned %+v, want %+v", got, want)
	}
	// Same board, other side: a separate entry
	if got := cache.Factors(b, SideA); got != BoardFactors(b, SideA) {
		t.Errorf("side A factors wrong: %+v", got)
	}

	lookups, hits, adds := cache.Stats()
	if lookups != 3 || hits != 1 || adds != 2 {
		t.Errorf("stats = %d lookups, %d hits, %d adds", lookups, hits, adds)
	}
	t.Logf("Hit rate: %.1f%%", cache.HitRate())

	cache.Flush()
	if lookups, _, _ := cache.Stats(); lookups != 0 {
		t.Error("Flush should reset the statistics")
	}
}

func TestFactorCacheConcurrent(t *testing.T) {
	cache := NewFactorCache(64)
	ml := GenerateMoves(StartingPosition(), SideA, Dice{6, 6})

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, seq := range ml.Sequences {
				if got := cache.Factors(seq.Result, SideA); got != BoardFactors(seq.Result, SideA) {
					t.Errorf("wrong factors for %v", seq.Legs)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestSimulatorCacheMatchesUncached(t *testing.T) {
	run := func(cacheSize int) RolloutStats {
		opts := DefaultSimOptions()
		opts.Simulations = 6
		opts.MaxPlies = 300
		opts.Seed = 5
		opts.CacheSize = cacheSize
		sim, err := NewSimulator(opts)
		if err != nil {
			t.Fatal(err)
		}
		if (sim.Cache() != nil) != (cacheSize >= 0) {
			t.Fatalf("cache size %d: unexpected cache %v", cacheSize, sim.Cache())
		}
		st, err := sim.RolloutBoard(t.Context(), SideB, StartingPosition())
		if err != nil {
			t.Fatal(err)
		}
		return st
	}
	if a, b := run(0), run(-1); a != b {
		t.Errorf("cached and uncached rollouts differ:\n%+v\n%+v", a, b)
	}
}
