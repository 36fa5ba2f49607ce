// config_test.go

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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c := Default()
	assert.Equal(t, 72, c.Terminal.Config.Columns)
	assert.Equal(t, 200, c.Terminal.Config.Scrollback)
	assert.True(t, c.Terminal.Config.Autowrap)
	assert.True(t, c.Terminal.Config.LocalCRLF)
	assert.True(t, c.LineMode())
	assert.True(t, c.Throttled())
	assert.True(t, c.LidUp())
	assert.False(t, c.Muted())
	assert.Equal(t, 10, c.DataThrottle.Config.SendRateCPS)
	assert.Equal(t, 9600, c.Backend.Serial.Baudrate)
	assert.True(t, c.TapeReader.Config.AutoStop)
	assert.ErrorIs(t, c.Validate(), ErrNoPort, "no port by default")
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asr33.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
terminal:
  config:
    columns: 80
    mode: local
backend:
  serial_config:
    port: /dev/ttyUSB0
    baudrate: 110
`), 0644))

	c, used, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, 80, c.Terminal.Config.Columns)
	assert.False(t, c.LineMode())
	assert.Equal(t, 110, c.Backend.Serial.Baudrate)
	assert.Equal(t, 8, c.Backend.Serial.Databits, "untouched keys keep their defaults")
	assert.Equal(t, 24, c.Terminal.Config.Rows)
	assert.NoError(t, c.Validate())
}

func TestLoadErrors(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("terminal: [oops"), 0644))
	_, _, err = Load(bad)
	assert.Error(t, err)
}

func TestSearchPaths(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	paths := SearchPaths()
	require.Len(t, paths, 3)
	assert.Equal(t, localName, filepath.Base(paths[0]))
	assert.Equal(t, filepath.Join(xdg, appDir, "config.yaml"), paths[1])
	assert.Equal(t, dotName, filepath.Base(paths[2]))
	assert.Equal(t, paths[1], UserPath())
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	c := Default()
	c.Backend.Type = "pty"
	c.TapePunch.Config.Mode = "append"
	require.NoError(t, c.Save(path))

	loaded, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}

func parse(t *testing.T, args ...string) *Flags {
	t.Helper()
	f := &Flags{}
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.Register(fs)
	require.NoError(t, fs.Parse(args))
	return f
}

func TestFlagsOverrideOnlyWhenSet(t *testing.T) {
	c := Default()
	c.Terminal.Config.Columns = 80
	parse(t, "--baud", "110", "--parity", "e").Apply(c)
	assert.Equal(t, 80, c.Terminal.Config.Columns, "unset flag leaves the file value")
	assert.Equal(t, 110, c.Backend.Serial.Baudrate)
	assert.Equal(t, "E", c.Backend.Serial.Parity)

	parse(t, "--throttle_rate", "30", "--mute", "--unthrottled").Apply(c)
	assert.Equal(t, 30, c.DataThrottle.Config.SendRateCPS)
	assert.Equal(t, 30, c.DataThrottle.Config.ReceiveRateCPS)
	assert.True(t, c.Muted())
	assert.False(t, c.Throttled())
}

func TestPortFlag(t *testing.T) {
	tests := []struct {
		port        string
		wantMode    string
		wantBackend string
		wantDevice  string
	}{
		{"none", "local", "serial", ""},
		{"pty", "line", "pty", ""},
		{"/dev/ttyS0", "line", "serial", "/dev/ttyS0"},
	}
	for _, tt := range tests {
		t.Run(tt.port, func(t *testing.T) {
			c := Default()
			parse(t, "-p", tt.port).Apply(c)
			assert.Equal(t, tt.wantMode, c.Terminal.Config.Mode)
			assert.Equal(t, tt.wantBackend, c.Backend.Type)
			assert.Equal(t, tt.wantDevice, c.Backend.Serial.Port)
			assert.NoError(t, c.Validate())
		})
	}
}

func TestValidateRejectsUnknownValues(t *testing.T) {
	c := Default()
	c.Backend.Serial.Port = "/dev/ttyS0"
	c.Terminal.Config.Mode = "duplex"
	c.Backend.Type = "uucp"
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "terminal.mode")
	assert.Contains(t, err.Error(), "backend.type")
}
