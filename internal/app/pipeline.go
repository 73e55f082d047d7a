package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kestrelgs/kestrel/internal/config"
	"github.com/kestrelgs/kestrel/internal/gds"
	"github.com/kestrelgs/kestrel/internal/history"
	"github.com/kestrelgs/kestrel/internal/poll"
	"github.com/kestrelgs/kestrel/internal/ui"
	"github.com/kestrelgs/kestrel/internal/validate"
)

// severityClasses seeds the event tally so zero counts render before any
// event arrives.
var severityClasses = []string{
	"DIAGNOSTIC", "ACTIVITY_LO", "ACTIVITY_HI", "COMMAND",
	"WARNING_LO", "WARNING_HI", "FATAL",
}

// Pipeline is the assembled data path: one poll loop per category feeding,
// through validation, into the canonical stores the UI renders from.
type Pipeline struct {
	Scheduler *poll.Scheduler
	Validator *validate.Validator
	Severity  *validate.Tally
	Data      *ui.Data
}

// NewPipeline wires every category: fetch, audit, merge, fan out. Poll loops
// start immediately and run until ctx is cancelled.
func NewPipeline(ctx context.Context, client gds.Fetcher, cfg config.Config) *Pipeline {
	v := validate.New(validate.NewLog())
	severity := validate.NewTally(severityClasses...)

	data := &ui.Data{
		Channels: history.NewKeyed[gds.ChannelSample]("channels",
			gds.ChannelSample.Key,
			func(c gds.ChannelSample) time.Time { return c.Time.Time() }),
		Events:    history.NewAppend[gds.EventRecord]("events", cfg.History.Events),
		Commands:  history.NewAppend[gds.CommandRecord]("commands", cfg.History.Commands),
		Logs:      history.NewReplace[string]("logs"),
		Uploads:   history.NewReplace[gds.TransferFile]("uploads"),
		Downloads: history.NewReplace[gds.TransferFile]("downloads"),
		Stats:     history.NewReplace[gds.StatRow]("stats"),
	}
	data.Channels.SetFaultReporter(v.ConsumerFault)
	data.Events.SetFaultReporter(v.ConsumerFault)
	data.Commands.SetFaultReporter(v.ConsumerFault)
	data.Logs.SetFaultReporter(v.ConsumerFault)
	data.Uploads.SetFaultReporter(v.ConsumerFault)
	data.Downloads.SetFaultReporter(v.ConsumerFault)
	data.Stats.SetFaultReporter(v.ConsumerFault)

	sched := poll.New(ctx)
	onError := v.ErrorHandler()

	// The history endpoints carry the server's seen counter, so their
	// handler chains run through the validator's envelope audit.
	src := poll.Register(sched, "channels", cfg.Poll.Channels,
		client.FetchChannels,
		validate.Wrap(v, "channels", func(batch gds.History[gds.ChannelSample]) {
			data.Channels.Push(batch.Items)
		}),
		onError)
	v.BindSource("channels", src)

	src = poll.Register(sched, "events", cfg.Poll.Events,
		client.FetchEvents,
		validate.Wrap(v, "events",
			validate.WrapTally(severity, gds.EventRecord.SeverityClass,
				func(batch gds.History[gds.EventRecord]) {
					data.Events.Push(batch.Items)
				})),
		onError)
	v.BindSource("events", src)

	src = poll.Register(sched, "commands", cfg.Poll.Commands,
		client.FetchCommands,
		validate.Wrap(v, "commands", func(batch gds.History[gds.CommandRecord]) {
			data.Commands.Push(batch.Items)
		}),
		onError)
	v.BindSource("commands", src)

	// The snapshot endpoints have no envelope; transport failures still
	// land in the rolling log through the shared error handler.
	src = poll.Register(sched, "logs", cfg.Poll.Logs,
		client.FetchLogList,
		func(list gds.LogList) { data.Logs.Push(list.Logs) },
		onError)
	v.BindSource("logs", src)

	src = poll.Register(sched, "uploads", cfg.Poll.Uploads,
		client.FetchUplink,
		func(set gds.FileSet) { data.Uploads.Push(set.Files) },
		onError)
	v.BindSource("uploads", src)

	src = poll.Register(sched, "downloads", cfg.Poll.Downloads,
		client.FetchDownlink,
		func(set gds.FileSet) { data.Downloads.Push(set.Files) },
		onError)
	v.BindSource("downloads", src)

	src = poll.Register(sched, "stats", cfg.Poll.Stats,
		client.FetchStats,
		func(stats gds.Stats) { data.Stats.Push(stats.Rows()) },
		onError)
	v.BindSource("stats", src)

	return &Pipeline{
		Scheduler: sched,
		Validator: v,
		Severity:  severity,
		Data:      data,
	}
}

// Notify registers a wake consumer on every store so the UI redraws when
// fresh data lands.
func (p *Pipeline) Notify(send func(tea.Msg)) {
	p.Data.Channels.Register(&notifier[gds.ChannelSample]{category: "channels", send: send})
	p.Data.Events.Register(&notifier[gds.EventRecord]{category: "events", send: send})
	p.Data.Commands.Register(&notifier[gds.CommandRecord]{category: "commands", send: send})
	p.Data.Logs.Register(&notifier[string]{category: "logs", send: send})
	p.Data.Uploads.Register(&notifier[gds.TransferFile]{category: "uploads", send: send})
	p.Data.Downloads.Register(&notifier[gds.TransferFile]{category: "downloads", send: send})
	p.Data.Stats.Register(&notifier[gds.StatRow]{category: "stats", send: send})
}

// Wait blocks until every poll loop has drained after context cancellation.
func (p *Pipeline) Wait() error {
	return p.Scheduler.Wait()
}

// notifier wakes the UI after a store accepts a delivery. The payload itself
// is not forwarded; the UI reads the canonical store.
type notifier[T any] struct {
	category string
	send     func(tea.Msg)
}

func (n *notifier[T]) Send([]T) {
	n.send(ui.RefreshMsg{Category: n.category})
}
