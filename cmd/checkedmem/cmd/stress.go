/*
Copyright © 2025 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
//go:build unix

package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"
	"unsafe"

	"github.com/blacktop/go-checkedmem"
	"github.com/blacktop/go-checkedmem/internal/pagemap"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// StressResult summarizes a stress run.
type StressResult struct {
	Workers    int                `json:"workers" yaml:"workers"`
	Iterations int                `json:"iterations" yaml:"iterations"`
	Duration   string             `json:"duration" yaml:"duration"`
	Metrics    checkedmem.Metrics `json:"metrics" yaml:"metrics"`
	Prometheus map[string]float64 `json:"prometheus" yaml:"prometheus"`
}

var (
	stressWorkers    int
	stressIterations int
	stressLen        int
)

func init() {
	rootCmd.AddCommand(stressCmd)
	stressCmd.Flags().IntVarP(&stressWorkers, "workers", "w", 8, "Concurrent goroutines")
	stressCmd.Flags().IntVarP(&stressIterations, "iterations", "i", 1000, "Copies per goroutine")
	stressCmd.Flags().IntVarP(&stressLen, "len", "n", 256, "Bytes per copy")
}

var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Run faulting and succeeding checked copies concurrently",
	Long: `Start --workers goroutines. Odd workers copy across an unmapped page and
must see their own fault address every time; even workers copy valid memory
and must never see a fault.`,
	Args: cobra.NoArgs,
	RunE: runStress,
}

func runStress(cmd *cobra.Command, args []string) error {
	if stressWorkers <= 0 || stressIterations <= 0 || stressLen <= 0 {
		return fmt.Errorf("--workers, --iterations and --len must be positive")
	}
	page := int(pagemap.PageSize())
	if stressLen > page {
		return fmt.Errorf("--len must not exceed the page size (%d bytes)", page)
	}

	srcs := make([]unsafe.Pointer, stressWorkers)
	for i := 1; i < stressWorkers; i += 2 {
		r, err := pagemap.Map(2)
		if err != nil {
			return err
		}
		defer r.Close()
		if err := r.Unmap(1); err != nil {
			return err
		}
		srcs[i] = r.Boundary(1, uintptr(i%stressLen))
	}

	reg := prometheus.NewRegistry()
	if err := reg.Register(checkedmem.NewCollector("stress")); err != nil {
		return fmt.Errorf("failed to register collector: %w", err)
	}

	checkedmem.ResetMetrics()
	start := time.Now()

	g, ctx := errgroup.WithContext(cmd.Context())
	for i := 0; i < stressWorkers; i++ {
		g.Go(func() (err error) {
			dst := make([]byte, stressLen)
			checkedmem.Guard(func() {
				if srcs[i] == nil {
					err = stressValid(ctx, i, dst)
					return
				}
				err = stressFault(ctx, i, dst, srcs[i])
			})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	res := StressResult{
		Workers:    stressWorkers,
		Iterations: stressIterations,
		Duration:   time.Since(start).String(),
		Metrics:    checkedmem.GetMetrics(),
		Prometheus: make(map[string]float64),
	}
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			res.Prometheus[mf.GetName()] = m.GetCounter().GetValue()
		}
	}
	return printResult(res)
}

func stressValid(ctx context.Context, worker int, dst []byte) error {
	src := bytes.Repeat([]byte{byte(worker)}, len(dst))
	for it := 0; it < stressIterations; it++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := checkedmem.CopyFrom(dst, unsafe.Pointer(&src[0])); err != nil {
			return fmt.Errorf("worker %d: unexpected error: %w", worker, err)
		}
		if !bytes.Equal(src, dst) {
			return fmt.Errorf("worker %d: copy mismatch at iteration %d", worker, it)
		}
	}
	return nil
}

func stressFault(ctx context.Context, worker int, dst []byte, src unsafe.Pointer) error {
	want := uintptr(src) + uintptr(worker%len(dst))
	for it := 0; it < stressIterations; it++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := checkedmem.CopyFrom(dst, src)
		var fe *checkedmem.FaultError
		if !errors.As(err, &fe) {
			return fmt.Errorf("worker %d: expected a fault, got %v", worker, err)
		}
		if fe.Record.Addr != want {
			return fmt.Errorf("worker %d: fault at %s, want %s", worker, hexAddr(fe.Record.Addr), hexAddr(want))
		}
	}
	logger.Debug("worker done", "worker", worker, "fault_addr", hexAddr(want))
	return nil
}
