package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oy3o/rzframe"
)

func encodeCmd() *cobra.Command {
	var (
		id      int
		payload string
		raw     bool
	)

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Frame a hex payload",
		Example: `  rzdump encode --id 1 --hex "0002 0068 0069"
  rzdump encode --id 2 --hex 0100000001 --raw > frame.bin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, err := encodeFrame(id, payload)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if raw {
				_, err = out.Write(frame)
				return err
			}
			_, err = fmt.Fprintln(out, hex.EncodeToString(frame))
			return err
		},
	}

	cmd.Flags().IntVar(&id, "id", 0, "Packet id (0-254)")
	cmd.Flags().StringVar(&payload, "hex", "", "Payload as hex; spaces are ignored")
	cmd.Flags().BoolVar(&raw, "raw", false, "Write binary instead of hex")

	return cmd
}

func encodeFrame(id int, payloadHex string) ([]byte, error) {
	if id < 0 || id > rzframe.MaxPacketID {
		return nil, fmt.Errorf("%w: %d", rzframe.ErrInvalidPacketID, id)
	}
	payload, err := hex.DecodeString(strings.Join(strings.Fields(payloadHex), ""))
	if err != nil {
		return nil, fmt.Errorf("decode --hex: %w", err)
	}
	return rzframe.MarshalFrame(&rzframe.RawPacket{PacketID: uint8(id), Payload: payload})
}
