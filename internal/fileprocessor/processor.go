// Package fileprocessor handles file loading and listing operations
package fileprocessor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// ProcessFile loads the input ROM and writes its listing to the output file
// or to stdout if no output file is set.
func ProcessFile(ctx context.Context, logger *log.Logger, opts options.Program) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	program, err := loader.New().Load(opts.Input)
	if err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}

	if err := writeListing(opts, program); err != nil {
		return err
	}

	logger.Debug("Listing written",
		log.String("input", opts.Input),
		log.String("output", opts.Output),
		log.Int("size", len(program)))
	return nil
}

// GetFilesToProcess returns list of files to process based on options
func GetFilesToProcess(opts *options.Program) ([]string, error) {
	if opts.Batch != "" {
		matches, err := filepath.Glob(opts.Batch)
		if err != nil {
			return nil, fmt.Errorf("globbing batch pattern: %w", err)
		}
		return matches, nil
	}
	return []string{opts.Input}, nil
}

// GenerateOutputFilename generates the listing filename for a given input file
func GenerateOutputFilename(inputFile string) string {
	ext := filepath.Ext(inputFile)
	return inputFile[:len(inputFile)-len(ext)] + ".lst"
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	versionString := version
	if commit != "" {
		if len(commit) > 7 {
			commit = commit[:7]
		}
		versionString += fmt.Sprintf(" (%s)", commit)
	}

	logger.Info("retrochip8", log.String("version", versionString))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}
}

// writeListing writes the listing to the output file, or to stdout if no
// output file is set.
func writeListing(opts options.Program, program []byte) error {
	listingOptions := config.CreateListingOptions(opts)
	if opts.Output == "" {
		if err := disasm.Write(os.Stdout, program, listingOptions); err != nil {
			return fmt.Errorf("writing listing: %w", err)
		}
		return nil
	}

	file, err := os.Create(opts.Output)
	if err != nil {
		return fmt.Errorf("creating output file %s: %w", opts.Output, err)
	}
	if err := disasm.Write(file, program, listingOptions); err != nil {
		_ = file.Close()
		return fmt.Errorf("writing listing: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing output file %s: %w", opts.Output, err)
	}
	return nil
}
