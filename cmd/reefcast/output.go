package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ngmaloney/reefcast/internal/digest"
	"github.com/ngmaloney/reefcast/internal/ranking"
	"github.com/ngmaloney/reefcast/internal/render"
)

// withOutput runs write against the -output file, or stdout when unset
func withOutput(path string, write func(w io.Writer) error) error {
	if path == "" {
		return write(os.Stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Output written to %s\n", path)
	return nil
}

func writeReport(opts options, report *digest.Report) error {
	return withOutput(opts.output, func(w io.Writer) error {
		switch opts.format {
		case "json":
			return writeJSON(w, report)
		case "sms":
			_, err := fmt.Fprintln(w, render.SMS(report, !opts.noCoastBreakdown))
			return err
		default:
			_, err := fmt.Fprintln(w, render.ForWriter(w).Text(report))
			return err
		}
	})
}

func writeSites(opts options, title string, sites []ranking.RankedLocation) error {
	return withOutput(opts.output, func(w io.Writer) error {
		if opts.format == "json" {
			if sites == nil {
				sites = []ranking.RankedLocation{}
			}
			return writeJSON(w, sites)
		}
		_, err := fmt.Fprintln(w, render.ForWriter(w).Sites(title, sites))
		return err
	})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}
