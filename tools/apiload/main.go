// Command apiload hammers a paperdesk HTTP endpoint with concurrent
// pollers and reports request throughput and latency.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

func main() {
	var (
		targetURL    string
		workers      int
		testDuration time.Duration
		pollInterval time.Duration
		rampUp       time.Duration
	)

	flag.StringVar(&targetURL, "url", "http://localhost:8087/api/markets", "endpoint URL to poll")
	flag.IntVar(&workers, "workers", 100, "number of concurrent pollers")
	flag.DurationVar(&testDuration, "dur", 60*time.Second, "test duration (0 for until interrupted)")
	flag.DurationVar(&pollInterval, "interval", 1*time.Second, "delay between requests per worker")
	flag.DurationVar(&rampUp, "ramp", 0, "ramp-up duration (spread worker starts across this window)")
	flag.Parse()

	if workers <= 0 {
		log.Fatalf("invalid workers: %d", workers)
	}

	if rampUp == 0 && workers > 100 {
		// default ramp-up: 1 second per 500 workers
		rampUp = time.Duration(workers/500) * time.Second
		if rampUp < 1*time.Second {
			rampUp = 1 * time.Second
		}
		log.Printf("No ramp-up specified for high worker count. Using default ramp-up: %s", rampUp)
	}

	log.Printf("starting API load: url=%s workers=%d duration=%s interval=%s ramp=%s",
		targetURL, workers, testDuration, pollInterval, rampUp)

	transport := &http.Transport{
		MaxConnsPerHost:     workers + 100,
		MaxIdleConns:        workers + 100,
		MaxIdleConnsPerHost: workers + 100,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}
	client := &http.Client{
		Transport: transport,
		Timeout:   30 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			log.Printf("caught signal: %s, shutting down...", sig)
		case <-ctx.Done():
			return
		}

		cancel()
	}()

	if testDuration > 0 {
		go func() {
			timer := time.NewTimer(testDuration)
			defer timer.Stop()
			select {
			case <-timer.C:
				log.Printf("duration reached, stopping...")
				cancel()
			case <-ctx.Done():
				return
			}
		}()
	}

	var (
		requests   int64
		reqErrs    int64
		badStatus  int64
		latencyNsT int64
	)

	var wg sync.WaitGroup

	start := time.Now()

	var startInterval time.Duration
	if rampUp > 0 {
		startInterval = rampUp / time.Duration(workers)
	}

	for i := 0; i < workers; i++ {
		if ctx.Err() != nil {
			break
		}
		if i > 0 && startInterval > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(startInterval):
			}
		}
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				reqStart := time.Now()
				req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
				if err != nil {
					atomic.AddInt64(&reqErrs, 1)
					return
				}

				resp, err := client.Do(req)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					atomic.AddInt64(&reqErrs, 1)
				} else {
					_, _ = io.Copy(io.Discard, resp.Body)
					_ = resp.Body.Close()
					if resp.StatusCode != http.StatusOK {
						atomic.AddInt64(&badStatus, 1)
					}
					atomic.AddInt64(&requests, 1)
					atomic.AddInt64(&latencyNsT, time.Since(reqStart).Nanoseconds())
				}

				select {
				case <-ctx.Done():
					return
				case <-time.After(pollInterval):
				}
			}
		}()
	}

	ticker := time.NewTicker(5 * time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n := atomic.LoadInt64(&requests)
				var avg time.Duration
				if n > 0 {
					avg = time.Duration(atomic.LoadInt64(&latencyNsT) / n)
				}
				log.Printf("status: requests=%d errs=%d bad_status=%d avg_latency=%s elapsed=%s",
					n,
					atomic.LoadInt64(&reqErrs),
					atomic.LoadInt64(&badStatus),
					avg.Truncate(time.Millisecond),
					time.Since(start).Truncate(time.Second),
				)
			}
		}
	}()

	wg.Wait()
	cancel()

	elapsed := time.Since(start)
	if elapsed == 0 {
		elapsed = time.Millisecond
	}
	n := atomic.LoadInt64(&requests)
	var avg time.Duration
	if n > 0 {
		avg = time.Duration(atomic.LoadInt64(&latencyNsT) / n)
	}
	perSec := float64(n) / elapsed.Seconds()

	fmt.Printf("done: requests=%d errs=%d bad_status=%d avg_latency=%s elapsed=%s req/s=%.2f\n",
		n,
		atomic.LoadInt64(&reqErrs),
		atomic.LoadInt64(&badStatus),
		avg.Truncate(time.Millisecond),
		elapsed.Truncate(time.Millisecond),
		perSec,
	)
}
