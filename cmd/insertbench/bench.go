package main

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/llxisdsh/atomichash"
)

const namespace = "insertbench"

type metrics struct {
	inserts  prometheus.Counter
	failures prometheus.Counter
}

func newMetrics(reg prometheus.Registerer, table *atomichash.Table[uint64, uint64]) *metrics {
	m := &metrics{
		inserts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inserts_total",
			Help:      "Number of successful inserts.",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "insert_failures_total",
			Help:      "Number of inserts that found no vacant slot.",
		}),
	}
	occupancy := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "table_occupancy_percent",
		Help:      "Occupied slots as a percentage of the table capacity.",
	}, func() float64 {
		return 100 * float64(table.Len()) / float64(table.Capacity())
	})
	reg.MustRegister(m.inserts, m.failures, occupancy)
	return m
}

type result struct {
	Inserts  uint64
	Failures uint64
	Elapsed  time.Duration
}

// Throughput is the rate of successful inserts per second. Failed inserts
// are reported separately and do not count.
func (r result) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Inserts) / r.Elapsed.Seconds()
}

// run inserts keys 0..cfg.Range into table for cfg.Loops rounds spread over
// cfg.Workers goroutines. Cancelling ctx stops the workers between rounds;
// the partial result is returned together with the context error.
func run(ctx context.Context, cfg Config, table *atomichash.Table[uint64, uint64], m *metrics, log *zap.Logger) (result, error) {
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		res result
	)
	start := time.Now()
	for w := 0; w < cfg.Workers; w++ {
		loops := cfg.Loops / cfg.Workers
		if w < cfg.Loops%cfg.Workers {
			loops++
		}
		wg.Add(1)
		go func(worker, loops int) {
			defer wg.Done()
			var inserts, failures uint64
			for l := 0; l < loops && ctx.Err() == nil; l++ {
				var roundInserts, roundFailures uint64
				for k := 0; k < cfg.Range; k++ {
					err := table.Insert(uint64(k), uint64(k))
					switch {
					case err == nil:
						roundInserts++
					case errors.Is(err, atomichash.ErrNoVacancy), errors.Is(err, atomichash.ErrContention):
						roundFailures++
					}
				}
				m.inserts.Add(float64(roundInserts))
				m.failures.Add(float64(roundFailures))
				inserts += roundInserts
				failures += roundFailures
			}
			log.Debug("worker done",
				zap.Int("worker", worker),
				zap.Uint64("inserts", inserts),
				zap.Uint64("failures", failures))
			mu.Lock()
			res.Inserts += inserts
			res.Failures += failures
			mu.Unlock()
		}(w, loops)
	}
	wg.Wait()
	res.Elapsed = time.Since(start)
	return res, ctx.Err()
}
