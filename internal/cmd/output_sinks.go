package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bselens/bselens/internal/output"
)

type outputSink struct {
	writer io.Writer
	close  func() error
	path   string
}

func openSink(path string) (*outputSink, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || trimmed == "-" {
		return &outputSink{writer: os.Stdout, close: func() error { return nil }, path: "-"}, nil
	}

	// #nosec G301 -- output directories follow the user's umask
	if err := os.MkdirAll(filepath.Dir(trimmed), 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	file, err := os.Create(trimmed)
	if err != nil {
		return nil, err
	}
	return &outputSink{writer: file, close: file.Close, path: trimmed}, nil
}

func resolveOutputFormat(cmd *cobra.Command) (output.Format, error) {
	value, err := cmd.Flags().GetString("output-format")
	if err != nil {
		return "", err
	}
	return output.ParseFormat(value)
}

// render formats sets with the --output-format flag and writes them to the
// --out target.
func render(cmd *cobra.Command, sets ...*output.Dataset) error {
	format, err := resolveOutputFormat(cmd)
	if err != nil {
		return err
	}
	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}

	rendered, err := output.Render(format, sets...)
	if err != nil {
		return err
	}

	sink, err := openSink(outPath)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(sink.writer, strings.TrimRight(rendered, "\n")); err != nil {
		_ = sink.close()
		return err
	}
	return sink.close()
}
