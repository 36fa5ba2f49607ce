// throttle_test.go

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

package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReleaseSpacing(t *testing.T) {
	const rate, k = 50, 6
	th := New(rate, true)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < k; i++ {
		require.NoError(t, th.Release(ctx))
	}
	elapsed := time.Since(start)
	least := time.Duration(k-1) * time.Second / rate
	assert.GreaterOrEqual(t, elapsed, least)
}

func TestDisabledIsImmediate(t *testing.T) {
	th := New(1, false)
	start := time.Now()
	for i := 0; i < 20; i++ {
		require.NoError(t, th.Release(context.Background()))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestDisableReleasesWaiter(t *testing.T) {
	th := New(1, true)
	require.NoError(t, th.Release(context.Background())) // next slot is a second away

	done := make(chan time.Time)
	go func() {
		_ = th.Release(context.Background())
		done <- time.Now()
	}()
	time.Sleep(20 * time.Millisecond)
	switched := time.Now()
	th.SetEnabled(false)

	select {
	case at := <-done:
		assert.Less(t, at.Sub(switched), 200*time.Millisecond)
	case <-time.After(800 * time.Millisecond):
		t.Fatal("waiting release was not cut short")
	}

	start := time.Now()
	require.NoError(t, th.Release(context.Background()))
	assert.Less(t, time.Since(start), 50*time.Millisecond, "next release is immediate")
}

func TestReenableHasNoBacklog(t *testing.T) {
	th := New(1, true)
	require.NoError(t, th.Release(context.Background()))
	th.SetEnabled(false)
	require.NoError(t, th.Release(context.Background()))
	th.SetEnabled(true)

	start := time.Now()
	require.NoError(t, th.Release(context.Background()))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestContextCancel(t *testing.T) {
	th := New(1, true)
	require.NoError(t, th.Release(context.Background()))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := th.Release(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSetRate(t *testing.T) {
	th := New(DefaultRate, true)
	assert.Equal(t, 100*time.Millisecond, th.Interval())
	th.SetRate(0)
	assert.Equal(t, time.Duration(0), th.Interval())
	assert.True(t, th.Enabled())
}
