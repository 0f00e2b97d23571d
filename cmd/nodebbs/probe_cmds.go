package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/ziutek/telnet"
)

var (
	probeTimeout time.Duration
	probeSend    []string
	probeANSI    bool
)

var probeCmd = &cobra.Command{
	Use:   "probe [host:port]",
	Short: "Connect to a board over telnet and print what it sends",
	Long: "Dials a telnet listener, prints the greeting and optionally sends lines. " +
		"Useful for checking that negotiation and ANSI detection behave with a minimal client.",
	Args: cobra.MaximumNArgs(1),
	RunE: runProbe,
}

func init() {
	probeCmd.Flags().DurationVarP(&probeTimeout, "timeout", "t", 3*time.Second, "how long to wait for output")
	probeCmd.Flags().StringArrayVarP(&probeSend, "send", "s", nil, "line to send after the greeting (repeatable)")
	probeCmd.Flags().BoolVar(&probeANSI, "ansi", true, "answer cursor position queries like an ANSI terminal")
}

func runProbe(cmd *cobra.Command, args []string) error {
	addr := "localhost:2323"
	if len(args) > 0 {
		addr = args[0]
	}

	raw, err := net.DialTimeout("tcp", addr, probeTimeout)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	conn, err := telnet.NewConn(raw)
	if err != nil {
		raw.Close()
		return err
	}
	defer conn.Close()
	conn.SetUnixWriteMode(true)

	fmt.Fprintf(os.Stderr, "Connected to %s\n", addr)

	greeting, err := readFor(conn, probeTimeout)
	if err != nil {
		return err
	}
	os.Stdout.Write(greeting)

	for _, line := range probeSend {
		if _, err := conn.Write([]byte(line + "\n")); err != nil {
			return fmt.Errorf("send %q: %w", line, err)
		}
		reply, err := readFor(conn, probeTimeout)
		if err != nil {
			return err
		}
		os.Stdout.Write(reply)
	}
	return nil
}

// readFor collects output until the board goes quiet for d.
func readFor(conn *telnet.Conn, d time.Duration) ([]byte, error) {
	var out bytes.Buffer
	buf := make([]byte, 1024)

	for {
		if err := conn.SetReadDeadline(time.Now().Add(d)); err != nil {
			return out.Bytes(), err
		}
		n, err := conn.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if probeANSI && bytes.Contains(chunk, []byte("\x1b[6n")) {
				if _, werr := conn.Write([]byte("\x1b[24;80R")); werr != nil {
					return out.Bytes(), werr
				}
				chunk = bytes.ReplaceAll(chunk, []byte("\x1b[6n"), nil)
			}
			out.Write(chunk)
		}
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return out.Bytes(), nil
			}
			if errors.Is(err, io.EOF) {
				return out.Bytes(), nil
			}
			return out.Bytes(), err
		}
	}
}
