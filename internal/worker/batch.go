package worker

import "context"

// Outcome is the result of one harvested work item
type Outcome struct {
	Item    string
	Rows    int
	Skipped bool
	Err     error
}

// GetError returns the error from the outcome
func (o *Outcome) GetError() error {
	return o.Err
}

// FuncJob adapts a function to a Job
type FuncJob struct {
	Item string
	Fn   func(ctx context.Context) *Outcome
}

// Execute runs the function and stamps the item name on its outcome
func (j *FuncJob) Execute(ctx context.Context) Result {
	out := j.Fn(ctx)
	if out == nil {
		out = &Outcome{}
	}
	if out.Item == "" {
		out.Item = j.Item
	}
	return out
}

// Summary aggregates the outcomes of a batch
type Summary struct {
	Submitted   int
	Unscheduled int
	Succeeded   int
	Skipped     int
	Failed      int
	Rows        int
	Failures    []Result
}

// Merge adds the counts of o to s
func (s Summary) Merge(o Summary) Summary {
	s.Submitted += o.Submitted
	s.Unscheduled += o.Unscheduled
	s.Succeeded += o.Succeeded
	s.Skipped += o.Skipped
	s.Failed += o.Failed
	s.Rows += o.Rows
	s.Failures = append(s.Failures, o.Failures...)
	return s
}

// Summarize counts results by kind. Results other than *Outcome count as
// failures when they carry an error.
func Summarize(results []Result) Summary {
	var s Summary
	s.Submitted = len(results)
	for _, r := range results {
		if err := r.GetError(); err != nil {
			s.Failed++
			s.Failures = append(s.Failures, r)
			continue
		}
		out, ok := r.(*Outcome)
		if !ok {
			s.Succeeded++
			continue
		}
		if out.Skipped {
			s.Skipped++
			continue
		}
		s.Succeeded++
		s.Rows += out.Rows
	}
	return s
}

// BatchProcessor runs a set of jobs on a bounded pool
type BatchProcessor struct {
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(concurrency int) *BatchProcessor {
	return &BatchProcessor{concurrency: concurrency}
}

// Process submits jobs until ctx is done and waits for every submitted job
// to finish. The second return value counts jobs never submitted.
func (b *BatchProcessor) Process(ctx context.Context, jobs []Job) ([]Result, int) {
	if len(jobs) == 0 {
		return []Result{}, 0
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	submitted := 0
	for _, job := range jobs {
		if !pool.Submit(job) {
			break
		}
		submitted++
	}

	return pool.Wait(), len(jobs) - submitted
}
