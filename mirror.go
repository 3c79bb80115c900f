package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"CollabBoard/internal/animation"
	"CollabBoard/internal/board"
	"CollabBoard/internal/draw"
	"CollabBoard/internal/logging"
	"CollabBoard/internal/net"
	"CollabBoard/internal/state"
)

const discoverTimeout = 5 * time.Second

func newMirrorCmd() *cobra.Command {
	var (
		output  string
		logPath string
	)

	cmd := &cobra.Command{
		Use:   "mirror [link]",
		Short: "Follow a session headlessly and write snapshots of the board",
		Long: "Follow a session headlessly and write snapshots of the board.\n" +
			"Without a link the first session found on the local network is joined.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			logger := logging.FromContext(cmd.Context())

			addr, err := resolveAddr(ctx, args, logger)
			if err != nil {
				return err
			}
			return runMirror(ctx, addr, output, logPath, logger)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "board.png", "Snapshot path")
	cmd.Flags().StringVar(&logPath, "log", "", "Append the received transports to this JSON lines file")
	return cmd
}

func resolveAddr(ctx context.Context, args []string, logger logging.Logger) (string, error) {
	if len(args) == 1 {
		return net.ParseLink(args[0])
	}

	logger.Infof("looking for a session for %s", discoverTimeout)
	session, ok := net.Discover(ctx, discoverTimeout, logger)
	if !ok {
		return "", errors.New("no session found on the local network")
	}
	logger.Infof("found session %q at %s", session.Name, session.Addr)
	return session.Addr, nil
}

func runMirror(ctx context.Context, addr, output, logPath string, logger logging.Logger) error {
	wb := state.NewWhiteboard(draw.NewOwner(), nil, logger)
	b, err := board.New(wb, board.Options{
		Width:       conf.Board.Width,
		Height:      conf.Board.Height,
		Centered:    conf.Board.Centered,
		Magnet:      conf.Board.Magnet,
		Sensitivity: conf.Pointer.Sensitivity,
		Divisor:     conf.Animation.Divisor,
	}, logger)
	if err != nil {
		return err
	}
	b.SetDrawOptions(conf.DrawOptions())
	// Followers only watch.
	b.SetDisabled(true)

	var record *os.File
	if logPath != "" {
		if record, err = os.OpenFile(filepath.Clean(logPath), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err != nil {
			return fmt.Errorf("open transport log: %w", err)
		}
		defer func() { _ = record.Close() }()
	}

	snapshot := func() {
		if err := writePNG(b, output); err != nil {
			logger.Errorf("write snapshot: %v", err)
			return
		}
		logger.Debugf("snapshot written to %s", output)
	}
	b.Player().OnSettle = snapshot

	client, err := net.Dial(ctx, net.WebsocketURL(addr, conf.Server.Path), logger)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()
	logger.Infof("mirroring %s into %s", addr, output)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := animation.NewLoop(b.Player(), conf.FrameInterval())
	loopDone := make(chan error, 1)
	go func() { loopDone <- loop.Run(ctx) }()

	err = client.Run(ctx, func(t draw.Transport) {
		if record != nil {
			if line, err := draw.Encode(t); err == nil {
				_, _ = record.Write(append(line, '\n'))
			}
		}
		loop.Post(func() {
			_ = wb.Receive(t)
			if !b.Player().Playing() {
				snapshot()
			}
		})
	})
	cancel()
	<-loopDone

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func writePNG(b *board.Board, path string) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return err
	}
	if err := b.EncodePNG(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
