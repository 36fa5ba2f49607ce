// ssh.go

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
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Host key policies.
const (
	HostKeyStrict    = "strict"     // key must already be in known_hosts
	HostKeyAcceptNew = "accept-new" // unknown hosts are added, changed keys refused
	HostKeyInsecure  = "insecure"   // anything goes
)

// SSHOptions describe a remote login.
type SSHOptions struct {
	Host                string
	Port                int
	User                string
	Password            string
	KeyFile             string
	UseAgent            bool
	KnownHostsFile      string
	HostKeyPolicy       string
	ExpectedFingerprint string // SHA256:... as printed by ssh-keygen -l
	Rows, Cols          int
}

func DefaultSSHOptions() SSHOptions {
	return SSHOptions{
		Port:           22,
		KeyFile:        "~/.ssh/id_ed25519",
		UseAgent:       true,
		KnownHostsFile: "~/.ssh/known_hosts",
		HostKeyPolicy:  HostKeyAcceptNew,
		Rows:           24,
		Cols:           72,
	}
}

type sshLine struct {
	client    *ssh.Client
	session   *ssh.Session
	stdin     io.WriteCloser
	output    *io.PipeReader
	info      string
	closeOnce sync.Once
}

// expandHome turns a leading ~ into the user's home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

func sshAuth(opts SSHOptions) []ssh.AuthMethod {
	var methods []ssh.AuthMethod
	if opts.UseAgent {
		if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
			if conn, err := net.Dial("unix", sock); err == nil {
				methods = append(methods, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
			}
		}
	}
	if opts.KeyFile != "" {
		if pem, err := os.ReadFile(expandHome(opts.KeyFile)); err == nil {
			if signer, err := ssh.ParsePrivateKey(pem); err == nil {
				methods = append(methods, ssh.PublicKeys(signer))
			}
		}
	}
	if opts.Password != "" {
		methods = append(methods, ssh.Password(opts.Password))
	}
	return methods
}

func hostKeyCallback(opts SSHOptions) (ssh.HostKeyCallback, error) {
	check := func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		if opts.ExpectedFingerprint != "" && ssh.FingerprintSHA256(key) != opts.ExpectedFingerprint {
			return fmt.Errorf("host key fingerprint %s does not match %s",
				ssh.FingerprintSHA256(key), opts.ExpectedFingerprint)
		}
		return nil
	}
	if opts.HostKeyPolicy == HostKeyInsecure {
		return check, nil
	}

	path := expandHome(opts.KnownHostsFile)
	if opts.HostKeyPolicy == HostKeyAcceptNew {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0600)
		if err != nil {
			return nil, err
		}
		f.Close()
	}
	known, err := knownhosts.New(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		if err := check(hostname, remote, key); err != nil {
			return err
		}
		err := known(hostname, remote, key)
		var keyErr *knownhosts.KeyError
		if err == nil || !errors.As(err, &keyErr) || len(keyErr.Want) > 0 ||
			opts.HostKeyPolicy != HostKeyAcceptNew {
			return err
		}
		// first contact: remember the key
		f, ferr := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0600)
		if ferr != nil {
			return ferr
		}
		defer f.Close()
		_, ferr = fmt.Fprintln(f, knownhosts.Line([]string{knownhosts.Normalize(hostname)}, key))
		return ferr
	}, nil
}

// DialSSH logs in and starts an interactive shell on a dumb terminal.
func DialSSH(opts SSHOptions) (Transport, error) {
	if opts.Host == "" || opts.User == "" {
		return nil, fmt.Errorf("ssh needs a host and a username")
	}
	if opts.Port == 0 {
		opts.Port = 22
	}
	if opts.Rows == 0 || opts.Cols == 0 {
		opts.Rows, opts.Cols = 24, 72
	}
	hostKeys, err := hostKeyCallback(opts)
	if err != nil {
		return nil, fmt.Errorf("ssh host keys: %w", err)
	}
	addr := net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port))
	client, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User:            opts.User,
		Auth:            sshAuth(opts),
		HostKeyCallback: hostKeys,
		Timeout:         dialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("ssh dial %s: %w", addr, err)
	}
	line, err := startShell(client, opts)
	if err != nil {
		client.Close()
		return nil, err
	}
	line.info = fmt.Sprintf("ssh:%s@%s", opts.User, addr)
	return line, nil
}

func startShell(client *ssh.Client, opts SSHOptions) (*sshLine, error) {
	session, err := client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("ssh session: %w", err)
	}
	stdin, err := session.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("ssh stdin: %w", err)
	}
	pr, pw := io.Pipe()
	session.Stdout = pw
	session.Stderr = pw
	modes := ssh.TerminalModes{
		ssh.ECHO:          1,
		ssh.TTY_OP_ISPEED: 110,
		ssh.TTY_OP_OSPEED: 110,
	}
	if err := session.RequestPty("dumb", opts.Rows, opts.Cols, modes); err != nil {
		return nil, fmt.Errorf("ssh pty: %w", err)
	}
	if err := session.Shell(); err != nil {
		return nil, fmt.Errorf("ssh shell: %w", err)
	}
	go func() {
		err := session.Wait()
		if err == nil {
			err = io.EOF
		}
		pw.CloseWithError(err)
	}()
	return &sshLine{client: client, session: session, stdin: stdin, output: pr}, nil
}

func (s *sshLine) Read(p []byte) (int, error)  { return s.output.Read(p) }
func (s *sshLine) Write(p []byte) (int, error) { return s.stdin.Write(p) }
func (s *sshLine) Info() string                { return s.info }

func (s *sshLine) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.session.Close()
		s.output.Close()
		err = s.client.Close()
	})
	return err
}
