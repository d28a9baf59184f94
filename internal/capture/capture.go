// Package capture drives a live pcap capture loop and hands every frame it
// reads to an analyzer.Engine, forwarding whatever DecodedPackets fall out
// to a sink. The analyzer itself starts from "given a raw frame"; this
// package is what produces raw frames when run against a real interface
// rather than a replay file.
package capture

import (
	"fmt"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"

	"github.com/taida957789/maplesniffer/internal/analyzer"
	"github.com/taida957789/maplesniffer/internal/model"
	"github.com/taida957789/maplesniffer/internal/workers"
)

var serviceName = "capture"

// Sink receives every packet the engine decodes, in the order the capture
// loop drained them from the live interface.
type Sink func(model.DecodedPacket)

// Capture owns one pcap handle and the pair of workers that read from it
// and dispatch what comes out the other side of the analyzer.
type Capture struct {
	iface     string
	bpf       string
	snaplen   int32
	logger    model.Logger
	engine    *analyzer.Engine
	sink      Sink
	manager   *workers.Manager
	handle    *pcap.Handle
	decodedCh chan model.DecodedPacket
}

// Option configures a Capture at construction time.
type Option func(*Capture)

// WithBPFFilter sets a Berkeley Packet Filter expression applied at the
// pcap handle, e.g. "tcp port 8484".
func WithBPFFilter(expr string) Option {
	return func(c *Capture) { c.bpf = expr }
}

// WithLogger overrides the Capture's logger. The default is model.NopLogger.
func WithLogger(logger model.Logger) Option {
	return func(c *Capture) { c.logger = logger }
}

// WithSnapLen overrides the per-packet capture length. The default is
// 65535, large enough to never truncate a MapleStory frame.
func WithSnapLen(n int32) Option {
	return func(c *Capture) { c.snaplen = n }
}

// New constructs a Capture reading from iface, decoding with engine, and
// forwarding every decoded packet to sink.
func New(iface string, engine *analyzer.Engine, sink Sink, opts ...Option) *Capture {
	c := &Capture{
		iface:     iface,
		snaplen:   65535,
		logger:    model.NopLogger{},
		engine:    engine,
		sink:      sink,
		manager:   workers.NewManager(),
		decodedCh: make(chan model.DecodedPacket, 256),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start opens the pcap handle and launches the read and dispatch workers.
// Callers must eventually call Stop, even on error paths after Start
// returns nil, to release the handle and join the workers.
func (c *Capture) Start() error {
	handle, err := pcap.OpenLive(c.iface, c.snaplen, true, pcap.BlockForever)
	if err != nil {
		return fmt.Errorf("capture: open %s: %w", c.iface, err)
	}
	if c.bpf != "" {
		if err := handle.SetBPFFilter(c.bpf); err != nil {
			handle.Close()
			return fmt.Errorf("capture: bpf filter %q: %w", c.bpf, err)
		}
	}
	c.handle = handle

	c.manager.StartWorker(c.readWorker)
	c.manager.StartWorker(c.dispatchWorker)
	return nil
}

// Stop requests shutdown of both workers, waits for them to return, and
// closes the pcap handle.
func (c *Capture) Stop() {
	c.manager.StartShutdown()
	c.manager.WaitWorkersShutdown()
	if c.handle != nil {
		c.handle.Close()
	}
}

// readWorker pulls raw frames off the live interface and feeds them to the
// analyzer, pushing every resulting DecodedPacket onto decodedCh for
// dispatchWorker to forward. It never calls the sink directly, so a slow
// sink cannot stall the pcap read loop beyond decodedCh's buffer.
func (c *Capture) readWorker() {
	workerName := fmt.Sprintf("%s: readWorker", serviceName)
	defer func() {
		c.manager.OnWorkerDone(workerName)
		c.manager.StartShutdown()
	}()

	c.logger.Debug("capture: readWorker: started")

	src := gopacket.NewPacketSource(c.handle, c.handle.LinkType())
	src.NoCopy = true

	for {
		select {
		case <-c.manager.ShouldShutdown():
			return
		case pkt, ok := <-src.Packets():
			if !ok {
				return
			}
			meta := pkt.Metadata()
			timestamp := float64(meta.Timestamp.UnixNano()) / float64(time.Second)
			for _, decoded := range c.engine.ProcessFrame(pkt.Data(), timestamp) {
				select {
				case c.decodedCh <- decoded:
				case <-c.manager.ShouldShutdown():
					return
				}
			}
		}
	}
}

// dispatchWorker drains decodedCh and forwards each packet to the sink,
// decoupling however long the sink takes from the pcap read loop above.
func (c *Capture) dispatchWorker() {
	workerName := fmt.Sprintf("%s: dispatchWorker", serviceName)
	defer func() {
		c.manager.OnWorkerDone(workerName)
		c.manager.StartShutdown()
	}()

	c.logger.Debug("capture: dispatchWorker: started")

	for {
		select {
		case <-c.manager.ShouldShutdown():
			return
		case decoded := <-c.decodedCh:
			c.sink(decoded)
		}
	}
}
