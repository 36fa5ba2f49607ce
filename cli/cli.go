// cli.go

// Copyright (C) 2017  Steve Merrony

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package cli is the command line shared by the front ends.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/asr33emu/asr33g/audio"
	"github.com/asr33emu/asr33g/config"
	"github.com/asr33emu/asr33g/logger"
	"github.com/asr33emu/asr33g/session"
	"github.com/asr33emu/asr33g/transport"
)

// Frontend runs the user interface until the user quits or ctx ends.
type Frontend func(ctx context.Context, s *session.Session) error

// FrontendTUI draws on the controlling terminal, so its log cannot go to
// stderr.
const FrontendTUI = "tui"

// NewRootCommand builds the command for one front end. frontendType is
// written to the configuration when --save is used.
func NewRootCommand(use, short, frontendType string, run Frontend) *cobra.Command {
	flags := &config.Flags{}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Example: fmt.Sprintf(`  %[1]s --list-ports
  %[1]s --port /dev/ttyUSB0
  %[1]s --port COM3 --baud 110 --save
  %[1]s --port pty                         # local shell
  %[1]s --port none                        # local mode, no line
  %[1]s --backend ssh --host pdp10.example --config my_config.yaml`, use),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.ListPorts {
				return listPorts(cmd.OutOrStdout())
			}
			cfg, err := Configure(flags, frontendType, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if frontendType == FrontendTUI && cfg.Log.File == "" {
				cfg.Log.File = filepath.Join(config.UserDir(), "asr33tui.log")
			}
			log, closer, err := logger.New(cfg.Log.File, cfg.Log.Level)
			if err != nil {
				return err
			}
			defer closer.Close()

			s, err := session.New(cfg, audio.LogPlayer{Log: log}, log)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := s.Start(ctx); err != nil {
				s.Close()
				return err
			}
			defer s.Close()
			return run(ctx, s)
		},
	}
	flags.Register(cmd.Flags())
	return cmd
}

// Configure loads the configuration file, applies the flags and saves the
// result when asked to. Notices go to w.
func Configure(flags *config.Flags, frontendType string, w io.Writer) (*config.Config, error) {
	cfg, used, err := config.Load(flags.ConfigFile)
	if err != nil {
		return nil, err
	}
	if used != "" {
		fmt.Fprintln(w, "Using configuration", used)
	}
	flags.Apply(cfg)
	if flags.Save {
		cfg.Frontend.Type = frontendType
		if err := cfg.Save(config.UserPath()); err != nil {
			return nil, err
		}
		fmt.Fprintln(w, "Configuration saved to:", config.UserPath())
	}
	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrNoPort) {
			portHelp(w)
		}
		return nil, err
	}
	return cfg, nil
}

func listPorts(w io.Writer) error {
	ports, err := transport.ListSerialPorts()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Fprintln(w, "No serial ports found.")
		return nil
	}
	fmt.Fprintln(w, "Available serial ports:")
	for _, p := range ports {
		fmt.Fprintln(w, " ", p)
	}
	return nil
}

func portHelp(w io.Writer) {
	prog := "asr33g"
	if len(os.Args) > 0 {
		prog = os.Args[0]
	}
	fmt.Fprintln(w, "No serial port configured.")
	listPorts(w)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "To start with a serial port:\n  %s --port DEVICE [--save]\n", prog)
	if runtime.GOOS != "windows" {
		fmt.Fprintf(w, "To start with a local shell:\n  %s --port pty\n", prog)
	}
	fmt.Fprintf(w, "To start in local mode (no connection):\n  %s --port none\n", prog)
}

// Execute runs cmd and exits non-zero on error.
func Execute(cmd *cobra.Command) {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
