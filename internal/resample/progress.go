package resample

import (
	"sync"

	"go.uber.org/zap"
)

// Progress receives batch progress. Calls are serialized by the batch.
type Progress interface {
	Start(total int)
	Step(exampleID string, skipped bool)
	Finish()
}

type nopProgress struct{}

func (nopProgress) Start(int)         {}
func (nopProgress) Step(string, bool) {}
func (nopProgress) Finish()           {}

// NopProgress discards progress.
var NopProgress Progress = nopProgress{}

// LogProgress logs a line every Every examples and once at the end.
type LogProgress struct {
	Log   *zap.Logger
	Every int

	mu      sync.Mutex
	total   int
	done    int
	skipped int
}

// NewLogProgress returns a progress logger.
func NewLogProgress(log *zap.Logger, every int) *LogProgress {
	if every <= 0 {
		every = 100
	}
	return &LogProgress{Log: log, Every: every}
}

func (p *LogProgress) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total, p.done, p.skipped = total, 0, 0
	p.Log.Info("batch started", zap.Int("total", total))
}

func (p *LogProgress) Step(exampleID string, skipped bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	if skipped {
		p.skipped++
	}
	if p.done%p.Every == 0 {
		p.Log.Info("progress",
			zap.Int("done", p.done),
			zap.Int("total", p.total),
			zap.Int("skipped", p.skipped),
			zap.String("last", exampleID))
	}
}

func (p *LogProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Log.Info("batch finished",
		zap.Int("done", p.done),
		zap.Int("total", p.total),
		zap.Int("skipped", p.skipped))
}
