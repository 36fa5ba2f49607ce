// telnet.go

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
	"bufio"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"
)

const (
	telnetCmdSE   = 240
	telnetCmdNOP  = 241
	telnetCmdDM   = 242
	telnetCmdBRK  = 243
	telnetCmdIP   = 244
	telnetCmdAO   = 245
	telnetCmdAYT  = 246
	telnetCmdEC   = 247
	telnetCmdEL   = 248
	telnetCmdGA   = 249
	telnetCmdSB   = 250
	telnetCmdWILL = 251
	telnetCmdWONT = 252
	telnetCmdDO   = 253
	telnetCmdDONT = 254
	telnetCmdIAC  = 255

	telnetOptBIN    = 0
	telnetOptECHO   = 1
	telnetOptSGA    = 3
	telnetOptTTYPE  = 24
	telnetOptNAWS   = 31 // window size
	telnetOptNEWENV = 39

	dialTimeout = time.Second * 10
)

// TelnetOptions name the remote host.
type TelnetOptions struct {
	Host string
	Port int
}

type telnetState int

const (
	tsData telnetState = iota
	tsIAC
	tsDo
	tsDont
	tsWill
	tsWont
	tsSB
	tsSBIAC
)

// telnetLine strips option negotiation from the incoming stream. We refuse
// everything the host asks us to do, and only let it echo and suppress
// go-ahead on its side, which is how a teleprinter expects a host to behave.
type telnetLine struct {
	conn   net.Conn
	info   string
	reader *bufio.Reader

	wMutex sync.Mutex
	state  telnetState // used by Read only
	agreed [256]bool   // options the host may enable
}

// DialTelnet connects to a Telnet server.
func DialTelnet(opts TelnetOptions) (Transport, error) {
	if opts.Port == 0 {
		opts.Port = 23
	}
	hostString := net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port))
	conn, err := net.DialTimeout("tcp", hostString, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("telnet dial %s: %w", hostString, err)
	}
	return newTelnetLine(conn, "telnet:"+hostString), nil
}

func newTelnetLine(conn net.Conn, info string) *telnetLine {
	return &telnetLine{conn: conn, info: info, reader: bufio.NewReader(conn)}
}

func (t *telnetLine) Info() string { return t.info }

func (t *telnetLine) Close() error { return t.conn.Close() }

// Read returns host data with all Telnet commands removed. It blocks until
// at least one data byte is available.
func (t *telnetLine) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n := 0
	for n == 0 || (n < len(p) && t.reader.Buffered() > 0) {
		ch, err := t.reader.ReadByte()
		if err != nil {
			return n, err
		}
		out, ok, err := t.filter(ch)
		if err != nil {
			return n, err
		}
		if ok {
			p[n] = out
			n++
		}
	}
	return n, nil
}

func (t *telnetLine) filter(ch byte) (byte, bool, error) {
	switch t.state {
	case tsData:
		if ch == telnetCmdIAC {
			t.state = tsIAC
			return 0, false, nil
		}
		return ch, true, nil
	case tsIAC:
		t.state = tsData
		switch ch {
		case telnetCmdIAC:
			// the host really wants to send a 255
			return ch, true, nil
		case telnetCmdDO:
			t.state = tsDo
		case telnetCmdDONT:
			t.state = tsDont
		case telnetCmdWILL:
			t.state = tsWill
		case telnetCmdWONT:
			t.state = tsWont
		case telnetCmdSB:
			t.state = tsSB
		}
		// NOP, DM, BRK, IP, AO, AYT, EC, EL, GA carry no operand
		return 0, false, nil
	case tsDo:
		t.state = tsData
		// whatever the host asks us to do we will refuse
		return 0, false, t.send(telnetCmdWONT, ch)
	case tsWill:
		t.state = tsData
		if ch == telnetOptECHO || ch == telnetOptSGA {
			if t.agreed[ch] {
				return 0, false, nil
			}
			t.agreed[ch] = true
			return 0, false, t.send(telnetCmdDO, ch)
		}
		// whatever else the host offers to do we will refuse
		return 0, false, t.send(telnetCmdDONT, ch)
	case tsWont:
		t.state = tsData
		if t.agreed[ch] {
			t.agreed[ch] = false
			return 0, false, t.send(telnetCmdDONT, ch)
		}
		return 0, false, nil
	case tsDont:
		t.state = tsData
		return 0, false, nil
	case tsSB:
		if ch == telnetCmdIAC {
			t.state = tsSBIAC
		}
		return 0, false, nil
	case tsSBIAC:
		if ch == telnetCmdSE {
			t.state = tsData
		} else {
			t.state = tsSB
		}
		return 0, false, nil
	}
	return 0, false, nil
}

func (t *telnetLine) send(cmd, opt byte) error {
	t.wMutex.Lock()
	defer t.wMutex.Unlock()
	_, err := t.conn.Write([]byte{telnetCmdIAC, cmd, opt})
	return err
}

// Write sends p, doubling any 255 so it is not taken as a command.
func (t *telnetLine) Write(p []byte) (int, error) {
	buf := make([]byte, 0, len(p))
	for _, ch := range p {
		if ch == telnetCmdIAC {
			buf = append(buf, telnetCmdIAC)
		}
		buf = append(buf, ch)
	}
	t.wMutex.Lock()
	defer t.wMutex.Unlock()
	if _, err := t.conn.Write(buf); err != nil {
		return 0, err
	}
	return len(p), nil
}
