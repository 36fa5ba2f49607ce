// transport.go

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

// Package transport provides the communication lines a teleprinter can be
// wired to: a serial port, a Telnet or SSH connection, or a local shell.
package transport

import (
	"errors"
	"fmt"
	"io"
)

// Transport is a byte-oriented line to a host.
type Transport interface {
	io.ReadWriteCloser
	// Info describes the line for status displays and logs.
	Info() string
}

// ErrUnsupported is returned for backends not available on this platform
// or not known at all.
var ErrUnsupported = errors.New("unsupported transport")

// Backend names accepted by Open.
const (
	BackendSerial = "serial"
	BackendTelnet = "telnet"
	BackendSSH    = "ssh"
	BackendPTY    = "pty"
	BackendNone   = "none"
)

// Options gathers the settings of every backend; only the block matching
// Backend is used.
type Options struct {
	Backend string
	Serial  SerialOptions
	Telnet  TelnetOptions
	SSH     SSHOptions
	PTY     PTYOptions
}

// Open dials the configured backend. BackendNone yields a nil Transport
// and no error: the machine runs in Local mode with no line.
func Open(opts Options) (Transport, error) {
	switch opts.Backend {
	case BackendSerial:
		return OpenSerial(opts.Serial)
	case BackendTelnet:
		return DialTelnet(opts.Telnet)
	case BackendSSH:
		return DialSSH(opts.SSH)
	case BackendPTY:
		return StartPTY(opts.PTY)
	case BackendNone, "":
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupported, opts.Backend)
}
