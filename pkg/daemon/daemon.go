package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/kabili207/mesh-byos-daemon/pkg/byos"
	"github.com/kabili207/mesh-byos-daemon/pkg/models"
	"github.com/kabili207/mesh-byos-daemon/pkg/radio"
	"github.com/kabili207/mesh-byos-daemon/pkg/store"
)

// State is the lifecycle state of the daemon's main loop.
type State int32

const (
	StateDisconnected State = iota
	StateConnected
	StateShuttingDown
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateShuttingDown:
		return "shutting_down"
	default:
		return "unknown"
	}
}

const (
	// DefaultUpdateInterval is the default publish cycle interval.
	DefaultUpdateInterval = 300 * time.Second

	maxConnectAttempts = 5
	reconnectWait      = 30 * time.Second
	cycleCooldown      = 60 * time.Second
)

// Publisher delivers a snapshot to the display sink, reporting success.
// Satisfied by *byos.Client.
type Publisher interface {
	Publish(ctx context.Context, snap models.Snapshot) bool
}

var _ Publisher = (*byos.Client)(nil)

// Options configures a Daemon.
type Options struct {
	Transport radio.Transport
	Sink      Publisher
	// UpdateInterval is the publish cycle interval; zero means
	// DefaultUpdateInterval.
	UpdateInterval time.Duration
	// Device is the static platform metadata included in every snapshot.
	Device models.DeviceInfo
	Logger *slog.Logger
}

// Daemon owns the transport connection and drives the
// connect → observe → publish → sleep cycle. Connect failures retry with a
// fixed backoff until the attempt budget is spent, which is the only fault
// that terminates the loop; everything else is logged and absorbed.
type Daemon struct {
	transport radio.Transport
	sink      Publisher
	interval  time.Duration
	device    models.DeviceInfo
	log       *slog.Logger

	nodes     *store.NodeStore
	history   *store.MessageHistory
	channels  *store.ChannelStore
	processor *EventProcessor

	state atomic.Int32

	// Overridable wait durations, for tests.
	reconnectWait time.Duration
	cooldown      time.Duration
}

// New creates a daemon and registers it as the sole consumer of transport
// events. Call Run to start the cycle.
func New(opts Options) *Daemon {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "daemon")

	interval := opts.UpdateInterval
	if interval <= 0 {
		interval = DefaultUpdateInterval
	}

	nodes := store.NewNodeStore()
	history := store.NewMessageHistory(store.DefaultHistorySize)
	channels := store.NewChannelStore()

	d := &Daemon{
		transport:     opts.Transport,
		sink:          opts.Sink,
		interval:      interval,
		device:        opts.Device,
		log:           log,
		nodes:         nodes,
		history:       history,
		channels:      channels,
		processor:     NewEventProcessor(nodes, history, channels, opts.Logger),
		reconnectWait: reconnectWait,
		cooldown:      cycleCooldown,
	}

	d.transport.Subscribe(radio.Handler{
		OnConnectionEstablished: d.onConnectionEstablished,
		OnPacketReceived:        d.processor.HandlePacket,
		OnNodeUpdated:           d.processor.HandleNodeUpdated,
	})

	return d
}

// State returns the current lifecycle state.
func (d *Daemon) State() State {
	return State(d.state.Load())
}

func (d *Daemon) setState(s State) {
	d.state.Store(int32(s))
}

// onConnectionEstablished resynchronizes both registries from the
// transport. Idempotent: it also runs on broker reconnects.
func (d *Daemon) onConnectionEstablished() {
	d.processor.ResyncNodes(d.transport)
	d.processor.ResyncChannels(d.transport)
}

// Run drives the main loop until the context is cancelled or the connect
// attempt budget is exhausted. It returns nil on graceful shutdown and an
// error only for exhausted reconnect attempts.
func (d *Daemon) Run(ctx context.Context) error {
	d.log.Info("starting mesh BYOS daemon", "interval", d.interval)
	attempts := 0

	for {
		if ctx.Err() != nil {
			return d.shutdown()
		}

		switch d.State() {
		case StateDisconnected:
			if err := d.connect(ctx); err != nil {
				if ctx.Err() != nil {
					return d.shutdown()
				}
				attempts++
				if attempts >= maxConnectAttempts {
					d.log.Error("max connect attempts reached, giving up",
						"attempts", attempts, "error", err)
					d.shutdown()
					return fmt.Errorf("connecting to mesh transport after %d attempts: %w", attempts, err)
				}
				d.log.Warn("connect failed, retrying",
					"attempt", attempts, "max", maxConnectAttempts,
					"wait", d.reconnectWait, "error", err)
				if !d.sleep(ctx, d.reconnectWait) {
					return d.shutdown()
				}
				continue
			}
			attempts = 0
			d.setState(StateConnected)

		case StateConnected:
			d.runCycle(ctx)
			d.log.Debug("cycle complete, sleeping", "interval", d.interval)
			if !d.sleep(ctx, d.interval) {
				return d.shutdown()
			}

		case StateShuttingDown:
			return d.shutdown()
		}
	}
}

// RunOnce performs a single connect → observe → publish pass and
// disconnects. Used by the daemon's test mode.
func (d *Daemon) RunOnce(ctx context.Context) bool {
	if err := d.connect(ctx); err != nil {
		d.log.Error("connect failed", "error", err)
		return false
	}
	d.setState(StateConnected)
	ok := d.cycle(ctx)
	d.shutdown()
	return ok
}

// connect opens the transport and, on success, resynchronizes both
// registries from it.
func (d *Daemon) connect(ctx context.Context) error {
	if err := d.transport.Connect(ctx); err != nil {
		return err
	}
	d.onConnectionEstablished()
	return nil
}

// runCycle wraps a cycle so an unexpected fault is absorbed with a
// cool-down instead of crashing the process.
func (d *Daemon) runCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("cycle fault, cooling down", "panic", r, "wait", d.cooldown)
			d.sleep(ctx, d.cooldown)
		}
	}()
	d.cycle(ctx)
}

// cycle refreshes the node registry, builds a snapshot, and publishes it.
// Shutdown never interrupts a publish already in flight; the HTTP call
// bounds its own duration.
func (d *Daemon) cycle(ctx context.Context) bool {
	d.processor.ResyncNodes(d.transport)

	snap := byos.BuildSnapshot(d.nodes, d.history, d.channels,
		d.transport.Connected(), time.Now(), d.device)

	return d.sink.Publish(context.WithoutCancel(ctx), snap)
}

// sleep waits for the duration, returning false if the context was
// cancelled first.
func (d *Daemon) sleep(ctx context.Context, dur time.Duration) bool {
	timer := time.NewTimer(dur)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// shutdown is terminal: it releases the transport and stops the loop.
func (d *Daemon) shutdown() error {
	d.setState(StateShuttingDown)
	if err := d.transport.Close(); err != nil {
		d.log.Error("error disconnecting transport", "error", err)
	}
	d.log.Info("mesh BYOS daemon stopped")
	return nil
}
