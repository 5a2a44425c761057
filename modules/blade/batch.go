package blade

import (
	"context"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/aukilabs/sprout/models"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
)

// Instance is the outcome of one blade of a batch.
type Instance struct {
	ID    string
	Index int
	Start r3.Vec

	Skeleton models.Skeleton
	Grid     *models.Grid

	// Set when the instance failed. Skipped tells whether generation was
	// never attempted because the batch was cancelled.
	Err     error
	Skipped bool
}

// InstanceSeed derives the seed of instance i of a batch seeded with seed.
func InstanceSeed(seed int64, i int) int64 {
	return int64(uint64(seed) + uint64(i)*0x9e3779b97f4a7c15)
}

// GenerateBatch generates one blade per start point using up to workers
// goroutines. Each instance draws from its own rng seeded by InstanceSeed, so
// results do not depend on scheduling. A failed instance does not stop the
// others; cancelling ctx skips the instances not started yet.
func GenerateBatch(ctx context.Context, seed int64, starts []r3.Vec, c Config, workers int) []Instance {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	instances := make([]Instance, len(starts))
	indexes := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for i := range indexes {
				instances[i] = generateInstance(ctx, seed, i, starts[i], c)
			}
		}()
	}

	for i := range starts {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return instances
}

func generateInstance(ctx context.Context, seed int64, i int, start r3.Vec, c Config) Instance {
	inst := Instance{
		ID:    uuid.NewString(),
		Index: i,
		Start: start,
	}

	if err := ctx.Err(); err != nil {
		inst.Err = err
		inst.Skipped = true
		instrumentInstance(resultSkipped, 0)
		return inst
	}

	begin := time.Now()
	g, err := c.NewGrid()
	if err != nil {
		inst.Err = err
		instrumentInstance(resultFailed, 0)
		return inst
	}

	rng := rand.New(rand.NewSource(InstanceSeed(seed, i)))
	skeleton, err := Generate(rng, start, g, c)
	if err != nil {
		inst.Err = err
		instrumentInstance(resultFailed, 0)
		return inst
	}

	inst.Skeleton = skeleton
	inst.Grid = g
	instrumentInstance(resultOK, time.Since(begin))
	return inst
}
