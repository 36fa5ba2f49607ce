// serial.go

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
	"strings"

	"github.com/distributed/sers"
)

// SerialOptions follow the usual port:baud-bits-parity-stop notation.
type SerialOptions struct {
	Port     string
	Baud     int
	DataBits int
	Parity   string // N, E or O
	StopBits int
}

// DefaultSerialOptions is 9600 8N1, which most USB adapters and hosts
// talk out of the box. A real current loop machine runs at 110 baud.
func DefaultSerialOptions() SerialOptions {
	return SerialOptions{Baud: 9600, DataBits: 8, Parity: "N", StopBits: 1}
}

// readTimeout bounds a blocking read so Close is noticed, in seconds
const readTimeout = 0.1

type serialLine struct {
	sers.SerialPort
	info string
}

func (s *serialLine) Info() string { return s.info }

func serialParity(p string) (mode int, letter string, err error) {
	switch strings.ToUpper(p) {
	case "", "N", "NONE":
		return sers.N, "N", nil
	case "E", "EVEN":
		return sers.E, "E", nil
	case "O", "ODD":
		return sers.O, "O", nil
	}
	return 0, "", fmt.Errorf("unknown serial parity %q", p)
}

// OpenSerial opens and configures a serial device.
func OpenSerial(opts SerialOptions) (Transport, error) {
	if opts.Port == "" {
		return nil, fmt.Errorf("no serial port given")
	}
	parity, letter, err := serialParity(opts.Parity)
	if err != nil {
		return nil, err
	}
	port, err := sers.Open(opts.Port)
	if err != nil {
		return nil, fmt.Errorf("opening serial port %s: %w", opts.Port, err)
	}
	if err := port.SetMode(opts.Baud, opts.DataBits, parity, opts.StopBits, sers.NO_HANDSHAKE); err != nil {
		port.Close()
		return nil, fmt.Errorf("configuring serial port %s: %w", opts.Port, err)
	}
	if err := port.SetReadParams(1, readTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("configuring serial port %s: %w", opts.Port, err)
	}
	info := fmt.Sprintf("%s:%d-%d%s%d", opts.Port, opts.Baud, opts.DataBits, letter, opts.StopBits)
	return &serialLine{SerialPort: port, info: info}, nil
}
