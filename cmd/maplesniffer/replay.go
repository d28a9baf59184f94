package main

import (
	"fmt"

	"github.com/apex/log"
	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"
	"github.com/spf13/cobra"

	"github.com/taida957789/maplesniffer/internal/analyzer"
	"github.com/taida957789/maplesniffer/internal/cipher"
)

func newReplayCmd() *cobra.Command {
	var opcodeKey string

	cmd := &cobra.Command{
		Use:   "replay <pcap-file>",
		Short: "Decode a previously captured pcap file offline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(args[0], opcodeKey)
		},
	}

	cmd.Flags().StringVar(&opcodeKey, "opcode-key", "", "3DES key for the inbound opcode-remap bootstrap packet (defaults to the well-known key)")

	return cmd
}

func runReplay(path, opcodeKey string) error {
	handle, err := pcap.OpenOffline(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer handle.Close()

	engineOpts := []analyzer.Option{analyzer.WithLogger(log.Log)}
	if opcodeKey != "" {
		engineOpts = append(engineOpts, analyzer.WithStreamOptions(cipher.WithOpcodeKey(opcodeKey)))
	}
	engine := analyzer.New(engineOpts...)

	src := gopacket.NewPacketSource(handle, handle.LinkType())
	count := 0
	for pkt := range src.Packets() {
		meta := pkt.Metadata()
		timestamp := float64(meta.Timestamp.UnixNano()) / 1e9
		for _, decoded := range engine.ProcessFrame(pkt.Data(), timestamp) {
			count++
			fmt.Printf("[%d] session=%d dir=%s opcode=%#04x len=%d handshake=%v\n",
				count, decoded.SessionID, decoded.Direction, decoded.Opcode, decoded.Length, decoded.IsHandshake)
		}
	}
	return nil
}
