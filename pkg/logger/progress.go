package logger

import (
	"fmt"
	"time"
)

// ProgressTracker logs periodic progress of a long-running load
type ProgressTracker struct {
	logger      Logger
	operation   string
	total       int64
	current     int64
	startTime   time.Time
	lastLogTime time.Time
	logInterval time.Duration
	now         func() time.Time
}

// ProgressConfig configures progress tracking behavior
type ProgressConfig struct {
	Operation   string
	Total       int64
	LogInterval time.Duration
	Logger      Logger
}

// NewProgressTracker creates a new progress tracker
func NewProgressTracker(config ProgressConfig) *ProgressTracker {
	if config.Logger == nil {
		config.Logger = GetGlobalLogger()
	}
	if config.LogInterval == 0 {
		config.LogInterval = 2 * time.Second
	}

	now := time.Now()
	tracker := &ProgressTracker{
		logger:      config.Logger.WithComponent("progress"),
		operation:   config.Operation,
		total:       config.Total,
		startTime:   now,
		lastLogTime: now,
		logInterval: config.LogInterval,
		now:         time.Now,
	}

	tracker.logger.WithField("operation", config.Operation).Debug("Starting operation")
	return tracker
}

// Increment increments the progress counter by 1
func (p *ProgressTracker) Increment() {
	p.current++

	now := p.now()
	if now.Sub(p.lastLogTime) >= p.logInterval {
		p.logProgress(now)
		p.lastLogTime = now
	}
}

// Current returns the number of processed items
func (p *ProgressTracker) Current() int64 {
	return p.current
}

// Complete logs final statistics for the operation
func (p *ProgressTracker) Complete() {
	p.logger.WithFields(p.stats(p.now())).Debug("Operation completed")
}

// CompleteWithError logs final statistics along with the error that ended the operation
func (p *ProgressTracker) CompleteWithError(err error) {
	p.logger.WithError(err).WithFields(p.stats(p.now())).Warn("Operation completed with error")
}

func (p *ProgressTracker) logProgress(now time.Time) {
	p.logger.WithFields(p.stats(now)).Info("Progress update")
}

func (p *ProgressTracker) stats(now time.Time) Fields {
	duration := now.Sub(p.startTime)
	var rate float64
	if duration.Seconds() > 0 {
		rate = float64(p.current) / duration.Seconds()
	}

	fields := Fields{
		"operation": p.operation,
		"processed": p.current,
		"duration":  duration.String(),
		"rate":      fmt.Sprintf("%.2f/sec", rate),
	}
	if p.total > 0 {
		fields["total"] = p.total
		fields["percentage"] = fmt.Sprintf("%.1f%%", float64(p.current)/float64(p.total)*100)
	}
	return fields
}
