// pty.go

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

package transport

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sync"

	"github.com/creack/pty"
)

// PTYOptions describe the local shell.
type PTYOptions struct {
	Shell      string
	Rows, Cols uint16
}

// DefaultPTYOptions is a Bourne shell on a 72 column page. Modern shells
// with fancy prompts do badly on a dumb printer.
func DefaultPTYOptions() PTYOptions {
	return PTYOptions{Shell: "/bin/sh", Rows: 24, Cols: 72}
}

type ptyLine struct {
	*os.File
	cmd       *exec.Cmd
	closeOnce sync.Once
}

// StartPTY runs the shell on a new pseudo terminal.
func StartPTY(opts PTYOptions) (Transport, error) {
	if runtime.GOOS == "windows" {
		return nil, fmt.Errorf("%w: pty on %s", ErrUnsupported, runtime.GOOS)
	}
	def := DefaultPTYOptions()
	if opts.Shell == "" {
		opts.Shell = def.Shell
	}
	if opts.Rows == 0 || opts.Cols == 0 {
		opts.Rows, opts.Cols = def.Rows, def.Cols
	}
	cmd := exec.Command(opts.Shell)
	cmd.Env = append(os.Environ(), "TERM=dumb", "PS1=$ ", "PROMPT=$ ", "HISTFILE=")
	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: opts.Rows, Cols: opts.Cols})
	if err != nil {
		return nil, fmt.Errorf("couldn't start pty: %w", err)
	}
	return &ptyLine{File: ptmx, cmd: cmd}, nil
}

func (p *ptyLine) Info() string { return "pty:" + p.cmd.Path }

// Close hangs up the terminal and reaps the shell.
func (p *ptyLine) Close() error {
	var err error
	p.closeOnce.Do(func() {
		err = p.File.Close()
		if p.cmd.Process != nil {
			p.cmd.Process.Kill()
			p.cmd.Wait()
		}
	})
	return err
}
