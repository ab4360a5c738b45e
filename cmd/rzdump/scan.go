package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/oy3o/rzframe"
	"github.com/oy3o/rzframe/internal/logging"
)

func scanCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "scan [file]",
		Short: "Decode every frame in a captured stream",
		Long: `Scan reads a byte stream from a file, or stdin when no file is given, and
prints one line per ReadFrame result: the stream offset, the sync code and
either the packet or the reason it was rejected.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			stats, err := scanStream(in, cmd.OutOrStdout(), limit, logging.New("rzdump"))
			fmt.Fprintf(cmd.OutOrStdout(), "frames=%d rejected=%d bytes=%d\n", stats.Frames, stats.Rejected, stats.Bytes)
			return err
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Stop after this many frames (0 = no limit)")

	return cmd
}

type scanStats struct {
	Frames   int
	Rejected int
	Bytes    int64
}

// rawCodec decodes every registrable id as a RawPacket.
func rawCodec() *rzframe.Codec {
	reg := rzframe.NewRegistry()
	for id := 0; id <= rzframe.MaxPacketID; id++ {
		reg.MustRegister(uint8(id), rzframe.RawFactory(uint8(id)))
	}
	return rzframe.NewCodec(reg)
}

func scanStream(in io.Reader, out io.Writer, limit int, log zerolog.Logger) (scanStats, error) {
	var stats scanStats
	r, err := rzframe.NewDataReader(in)
	if err != nil {
		return stats, err
	}
	codec := rawCodec()

	for limit <= 0 || stats.Frames < limit {
		offset := r.Count()
		p, sync, err := codec.ReadFrame(r)
		stats.Bytes = r.Count()
		switch {
		case err == nil:
			stats.Frames++
			raw := p.(*rzframe.RawPacket)
			fmt.Fprintf(out, "%08x %s id=%d len=%d %s\n", offset, sync, raw.PacketID, len(raw.Payload), hex.EncodeToString(raw.Payload))
		case errors.Is(err, rzframe.ErrTransport):
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				if r.Count() > offset {
					fmt.Fprintf(out, "%08x %s truncated frame\n", offset, sync)
				}
				log.Debug().Int64("bytes", stats.Bytes).Msg("end of stream")
				return stats, nil
			}
			return stats, err
		default:
			stats.Rejected++
			fmt.Fprintf(out, "%08x %s error: %v\n", offset, sync, err)
		}
	}
	return stats, nil
}
