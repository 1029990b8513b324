package eval

import (
	"hash/fnv"
	"math/rand"
	"sync"

	"github.com/sunholo/numfu/internal/builtins"
)

// randSource is process-wide so seed() affects every later random() call,
// mirroring Python's module-global random.seed()/random.random() in
// original_source/builtins.py.
var (
	randMu  sync.Mutex
	randGen = rand.New(rand.NewSource(1))
)

// registerRandom wires random/seed, grounded in
// original_source/builtins.py's Builtins._random/_seed.
func registerRandom(precision int) map[string]*builtins.Builtin {
	out := map[string]*builtins.Builtin{}

	randomB := builtins.New("random")
	randomB.Add([]builtins.TypeSpec{}, tNumber(), func(a []any) (any, error) {
		randMu.Lock()
		f := randGen.Float64()
		randMu.Unlock()
		return NumberValue{NumberFromFloat(f, precision)}, nil
	})
	out["random"] = randomB

	seedB := builtins.New("seed")
	seedB.Add([]builtins.TypeSpec{tNumber()}, tAny(), func(a []any) (any, error) {
		seed := a[0].(NumberValue).N.Int64()
		randMu.Lock()
		randGen = rand.New(rand.NewSource(seed))
		randMu.Unlock()
		return nil, nil
	})
	seedB.Add([]builtins.TypeSpec{tString()}, tAny(), func(a []any) (any, error) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(a[0].(StringValue).S))
		randMu.Lock()
		randGen = rand.New(rand.NewSource(int64(h.Sum64())))
		randMu.Unlock()
		return nil, nil
	})
	out["seed"] = seedB

	return out
}
