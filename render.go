package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"CollabBoard/internal/board"
	"CollabBoard/internal/draw"
	"CollabBoard/internal/export"
	"CollabBoard/internal/logging"
	"CollabBoard/internal/state"
)

// maxLogLine bounds one transport of a log.
const maxLogLine = 4 << 20

func newRenderCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "render <log.jsonl>",
		Short: "Replay a transport log and export the board as PNG or PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(args[0], output, logging.FromContext(cmd.Context()))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "board.png", "Output path, .png or .pdf")
	return cmd
}

func runRender(logPath, output string, logger logging.Logger) error {
	ext := strings.ToLower(filepath.Ext(output))
	if ext != ".png" && ext != ".pdf" {
		return fmt.Errorf("unsupported output %q: use .png or .pdf", output)
	}

	wb := state.NewWhiteboard(draw.NewOwner(), nil, logger)
	b, err := board.New(wb, board.Options{
		Width:    conf.Board.Width,
		Height:   conf.Board.Height,
		Centered: conf.Board.Centered,
	}, logger)
	if err != nil {
		return err
	}

	n, err := replay(wb, logPath, logger)
	if err != nil {
		return err
	}
	logger.Infof("replayed %d transports, %d events", n, len(wb.History()))

	if ext == ".pdf" {
		return export.SavePDF(output, wb.History(), export.Page{
			Width:      conf.Board.Width,
			Height:     conf.Board.Height,
			Background: wb.Background(),
			Offset:     b.Center(),
		})
	}

	wb.Redraw(false)
	return writePNG(b, output)
}

// replay applies every transport of a JSON lines log. Lines that do not
// decode are skipped.
func replay(wb *state.Whiteboard, path string, logger logging.Logger) (int, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return 0, fmt.Errorf("open transport log: %w", err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLogLine)

	n := 0
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		t, err := draw.Decode([]byte(text))
		if err != nil {
			logger.Warnf("%s:%d: %v", path, line, err)
			continue
		}
		// Receive logs what it drops.
		_ = wb.Receive(t)
		n++
	}
	if err := scanner.Err(); err != nil {
		return n, fmt.Errorf("read transport log: %w", err)
	}
	return n, nil
}
