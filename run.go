package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/emulator"
	"github.com/retroenv/retrochip8/internal/fileprocessor"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/terminal"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/sync/errgroup"
)

// runProgram runs the ROM in the terminal until the context is cancelled or
// the user quits.
func runProgram(ctx context.Context, logger *log.Logger, opts options.Program) error {
	cfg, err := config.CreateMachineConfig(opts)
	if err != nil {
		return fmt.Errorf("creating machine config: %w", err)
	}

	program, err := loader.New().Load(opts.Input)
	if err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}

	term := terminal.New(logger, opts.KeyTimeout, os.Stdout)
	machine, err := emulator.New(logger, cfg, term, term)
	if err != nil {
		return fmt.Errorf("creating machine: %w", err)
	}
	if err := machine.Load(program); err != nil {
		return err
	}

	if err := term.Init(); err != nil {
		return err
	}
	defer term.Close()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return machine.Run(ctx)
	})
	group.Go(func() error {
		return term.Run(ctx, machine)
	})
	return group.Wait()
}

// listFiles writes the listing of all input files.
func listFiles(ctx context.Context, logger *log.Logger, opts options.Program) {
	files, err := fileprocessor.GetFilesToProcess(&opts)
	if err != nil {
		logger.Fatal(err.Error())
	}

	for _, file := range files {
		opts.Input = file
		if len(files) > 1 || opts.Batch != "" {
			opts.Output = fileprocessor.GenerateOutputFilename(file)
		}

		if err := fileprocessor.ProcessFile(ctx, logger, opts); err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Info("Operation cancelled")
				return
			}
			logger.Error("Listing failed", log.String("file", file), log.Err(err))
		}
	}
}
