package probe

import (
	"context"
	"net"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog/log"
	"github.com/woozymasta/ssq/internal/models"
	"golang.org/x/time/rate"
)

// Result pairs an input target string with its snapshot.
type Result struct {
	Input    string
	Err      error
	Snapshot models.Snapshot
}

type job struct {
	index  int
	target models.Target
}

// Batch probes every target and returns one Result per input, in input order.
// Targets that normalize to the same host:port are probed once and the
// snapshot is shared. Probes are spread over the configured workers and paced
// by the configured rate; cancelling ctx stops starting new probes.
func (p *Prober) Batch(ctx context.Context, inputs []string) []Result {
	results := make([]Result, len(inputs))

	// index of the first input probing the same host:port, -1 when probed itself
	dupOf := make([]int, len(inputs))
	seen := make(map[uint64]int, len(inputs))
	var jobs []job

	for i, in := range inputs {
		results[i].Input = in
		dupOf[i] = -1

		target, err := ParseTarget(in, p.options.DefaultPort)
		if err != nil {
			results[i].Err = err
			continue
		}

		key := xxhash.Sum64String(net.JoinHostPort(target.Host, strconv.Itoa(target.Port)))
		if first, ok := seen[key]; ok {
			log.Debug().Str("target", in).Str("duplicate_of", inputs[first]).Msg("Skipping duplicate target")
			dupOf[i] = first
			continue
		}
		seen[key] = i
		jobs = append(jobs, job{index: i, target: target})
	}

	p.runWorkerPool(ctx, jobs, results)

	for i, first := range dupOf {
		if first >= 0 {
			results[i].Err = results[first].Err
			results[i].Snapshot = results[first].Snapshot
		}
	}

	return results
}

func (p *Prober) runWorkerPool(ctx context.Context, jobs []job, results []Result) {
	workers := p.options.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if p.options.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(p.options.Rate), 1)
	}

	queue := make(chan job, len(jobs))
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range queue {
				if err := limiter.Wait(ctx); err != nil {
					results[j.index].Err = err
					continue
				}
				results[j.index].Snapshot = p.Probe(j.target)
			}
		}()
	}

	for _, j := range jobs {
		queue <- j
	}
	close(queue)

	wg.Wait()
}
