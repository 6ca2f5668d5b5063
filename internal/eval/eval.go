// Package eval runs the batch model-evaluation sweep: for each
// training-set size it expands the configured path templates into a
// job and hands it to an external evaluator. The evaluator is a
// collaborator; this package only sequences jobs and applies the
// error policy.
package eval

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mdlab-go/mdrun/internal/config"
	"github.com/mdlab-go/mdrun/internal/core"
)

// Job is one evaluation invocation.
type Job struct {
	Size    int
	Kind    string // "train" or "test"
	Configs string
	Model   string
	Output  string
}

// Evaluator executes one job against the external evaluation engine.
type Evaluator interface {
	Evaluate(ctx context.Context, job Job) error
}

// Result pairs a job with its outcome.
type Result struct {
	Job Job
	Err error
}

// placeholder expanded in path templates.
const sizeToken = "{size}"

func expand(tmpl string, size int) string {
	return strings.ReplaceAll(tmpl, sizeToken, strconv.Itoa(size))
}

func jobFor(t config.Templates, kind string, size int) Job {
	return Job{
		Size:    size,
		Kind:    kind,
		Configs: expand(t.Configs, size),
		Model:   expand(t.Model, size),
		Output:  expand(t.Output, size),
	}
}

// Run evaluates every size in order. With ContinueOnError unset the
// first failure aborts the remaining sizes; either way the returned
// results record each attempted job. The returned error is the first
// failure, if any.
func Run(ctx context.Context, cfg *config.EvalConfig, sizes []int, ev Evaluator) ([]Result, error) {
	if len(sizes) == 0 {
		return nil, fmt.Errorf("%w: no training-set sizes given", core.ErrInvalidConfig)
	}
	for _, size := range sizes {
		if size <= 0 {
			return nil, fmt.Errorf("%w: training-set size %d must be positive", core.ErrInvalidConfig, size)
		}
	}

	var (
		results  []Result
		firstErr error
	)
	run := func(job Job) bool {
		err := ev.Evaluate(ctx, job)
		results = append(results, Result{Job: job, Err: err})
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("eval: size %d (%s): %w", job.Size, job.Kind, err)
		}
		return err == nil || cfg.ContinueOnError
	}

	for _, size := range sizes {
		if cfg.IncludeTrainingSet {
			if !run(jobFor(cfg.Train, "train", size)) {
				return results, firstErr
			}
		}
		if !run(jobFor(cfg.Test, "test", size)) {
			return results, firstErr
		}
	}
	return results, firstErr
}

// ParseSizes converts command-line positional arguments into sizes.
func ParseSizes(args []string) ([]int, error) {
	sizes := make([]int, 0, len(args))
	for _, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: training-set size %q must be a positive integer", core.ErrInvalidConfig, arg)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}
