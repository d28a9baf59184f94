package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/apex/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/taida957789/maplesniffer/internal/analyzer"
	"github.com/taida957789/maplesniffer/internal/capture"
	"github.com/taida957789/maplesniffer/internal/cipher"
	"github.com/taida957789/maplesniffer/internal/model"
	"github.com/taida957789/maplesniffer/internal/store"
	"github.com/taida957789/maplesniffer/pkg/config"
)

func newCaptureCmd() *cobra.Command {
	var (
		configPath string
		iface      string
		bpf        string
		storeDSN   string
		opcodeKey  string
	)

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture live traffic on an interface and decode it",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []config.Option{config.WithLogger(log.Log)}
			if iface != "" {
				opts = append(opts, config.WithInterface(iface))
			}
			if bpf != "" {
				opts = append(opts, config.WithBPFFilter(bpf))
			}
			if storeDSN != "" {
				opts = append(opts, config.WithStoreDSN(storeDSN))
			}
			if opcodeKey != "" {
				opts = append(opts, config.WithOpcodeKey(opcodeKey))
			}

			var cfg *config.Config
			var err error
			if configPath != "" {
				cfg, err = config.Load(configPath, opts...)
			} else {
				cfg = config.New(opts...)
			}
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if cfg.Capture.Interface == "" {
				return fmt.Errorf("no interface given: pass --interface or set capture.interface in the config file")
			}

			return runCapture(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file")
	cmd.Flags().StringVar(&iface, "interface", "", "capture interface (overrides the config file)")
	cmd.Flags().StringVar(&bpf, "bpf", "", "BPF filter expression (overrides the config file)")
	cmd.Flags().StringVar(&storeDSN, "store-dsn", "", "Postgres DSN to persist decoded packets to")
	cmd.Flags().StringVar(&opcodeKey, "opcode-key", "", "3DES key for the inbound opcode-remap bootstrap packet (defaults to the well-known key)")

	return cmd
}

// runCapture wires a Capture and, if configured, a Store sink, and runs
// them under a context that's canceled on SIGINT/SIGTERM.
func runCapture(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engineOpts := []analyzer.Option{analyzer.WithLogger(cfg.Logger())}
	if cfg.Capture.OpcodeKey != "" {
		engineOpts = append(engineOpts, analyzer.WithStreamOptions(cipher.WithOpcodeKey(cfg.Capture.OpcodeKey)))
	}
	engine := analyzer.New(engineOpts...)

	var st *store.Store
	if cfg.Store.Enabled {
		var err error
		st, err = store.New(ctx, cfg.Store.DSN)
		if err != nil {
			return fmt.Errorf("connecting to store: %w", err)
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return fmt.Errorf("migrating store: %w", err)
		}
	}

	sink := func(pkt model.DecodedPacket) {
		cfg.Logger().Infof("session=%d dir=%s opcode=%#04x len=%d", pkt.SessionID, pkt.Direction, pkt.Opcode, pkt.Length)
		if st != nil {
			if err := st.InsertPacket(ctx, pkt.SessionID, pkt); err != nil {
				cfg.Logger().Errorf("store: %s", err)
			}
		}
	}

	cap := capture.New(
		cfg.Capture.Interface,
		engine,
		sink,
		capture.WithLogger(cfg.Logger()),
		capture.WithBPFFilter(cfg.Capture.BPFFilter),
		capture.WithSnapLen(cfg.Capture.SnapLen),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := cap.Start(); err != nil {
			return err
		}
		<-gctx.Done()
		cap.Stop()
		return nil
	})

	return g.Wait()
}
