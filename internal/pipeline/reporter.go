package pipeline

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Reporter receives pipeline events. It is the only way the engine talks
// to the presentation layer.
type Reporter interface {
	ReportStep(index, total int, name string)
	ReportProgress(fraction float64)
	ReportLog(msg string)
	ReportFatal(index int, name string, err error)
	ReportDone()
}

type discard struct{}

func (discard) ReportStep(int, int, string) {}
func (discard) ReportProgress(float64) {}
func (discard) ReportLog(string) {}
func (discard) ReportFatal(int, string, error) {}
func (discard) ReportDone() {}

// Discard drops every event
var Discard Reporter = discard{}

type reporterKey struct{}

// WithReporter attaches r to ctx so step actions can log through it
func WithReporter(ctx context.Context, r Reporter) context.Context {
	return context.WithValue(ctx, reporterKey{}, r)
}

// Logf sends a log line to the reporter carried by ctx, if any
func Logf(ctx context.Context, format string, args ...interface{}) {
	r, ok := ctx.Value(reporterKey{}).(Reporter)
	if !ok {
		log.Infof(format, args...)
		return
	}
	r.ReportLog(fmt.Sprintf(format, args...))
}

// EventKind tags an Event
type EventKind int

const (
	EventStepStarted EventKind = iota
	EventProgress
	EventLog
	EventFailed
	EventFinished
)

func (k EventKind) String() string {
	switch k {
	case EventStepStarted:
		return "step"
	case EventProgress:
		return "progress"
	case EventLog:
		return "log"
	case EventFailed:
		return "failed"
	case EventFinished:
		return "finished"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is one message from the worker to the presentation layer
type Event struct {
	Kind     EventKind
	Index    int
	Total    int
	Name     string
	Progress float64
	Message  string
	Err      error
}

// ChannelReporter forwards events over a channel with a single producer
// (the pipeline goroutine) and a single consumer.
type ChannelReporter struct {
	ctx    context.Context
	events chan Event
}

// NewChannelReporter creates a reporter whose sends give up once ctx is done
func NewChannelReporter(ctx context.Context, buffer int) *ChannelReporter {
	return &ChannelReporter{ctx: ctx, events: make(chan Event, buffer)}
}

// Events is the receive side of the channel
func (c *ChannelReporter) Events() <-chan Event {
	return c.events
}

func (c *ChannelReporter) send(e Event) {
	select {
	case c.events <- e:
	case <-c.ctx.Done():
	}
}

func (c *ChannelReporter) ReportStep(index, total int, name string) {
	c.send(Event{Kind: EventStepStarted, Index: index, Total: total, Name: name})
}

func (c *ChannelReporter) ReportProgress(fraction float64) {
	c.send(Event{Kind: EventProgress, Progress: fraction})
}

func (c *ChannelReporter) ReportLog(msg string) {
	c.send(Event{Kind: EventLog, Message: msg})
}

func (c *ChannelReporter) ReportFatal(index int, name string, err error) {
	c.send(Event{Kind: EventFailed, Index: index, Name: name, Err: err, Message: err.Error()})
}

func (c *ChannelReporter) ReportDone() {
	c.send(Event{Kind: EventFinished, Progress: 1})
}

// Start runs steps on a new goroutine and returns the event stream. The
// channel is closed after the last event. Every event is also logged.
func Start(ctx context.Context, steps []Step) <-chan Event {
	c := NewChannelReporter(ctx, 16)
	runner := NewRunner(Tee(LogReporter{}, c))

	go func() {
		defer close(c.events)
		runner.Run(ctx, steps)
	}()

	return c.Events()
}

// LogReporter mirrors events into the process log
type LogReporter struct{}

func (LogReporter) ReportStep(index, total int, name string) {
	log.Infof("[%d/%d] %s", index+1, total, name)
}

func (LogReporter) ReportProgress(fraction float64) {
	log.Debugf("progress %.0f%%", fraction*100)
}

func (LogReporter) ReportLog(msg string) {
	log.Info(msg)
}

func (LogReporter) ReportFatal(index int, name string, err error) {
	log.Errorf("step %d (%s) failed: %v", index+1, name, err)
}

func (LogReporter) ReportDone() {
	log.Info("all steps completed")
}

type tee []Reporter

// Tee sends each event to every reporter in order
func Tee(rs ...Reporter) Reporter {
	return tee(rs)
}

func (t tee) ReportStep(index, total int, name string) {
	for _, r := range t {
		r.ReportStep(index, total, name)
	}
}

func (t tee) ReportProgress(fraction float64) {
	for _, r := range t {
		r.ReportProgress(fraction)
	}
}

func (t tee) ReportLog(msg string) {
	for _, r := range t {
		r.ReportLog(msg)
	}
}

func (t tee) ReportFatal(index int, name string, err error) {
	for _, r := range t {
		r.ReportFatal(index, name, err)
	}
}

func (t tee) ReportDone() {
	for _, r := range t {
		r.ReportDone()
	}
}
