package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFake_AfterFiresOnAdvance(t *testing.T) {
	c := Fake(epoch)
	ch := c.After(2 * time.Second)

	c.Advance(time.Second)
	select {
	case <-ch:
		t.Fatal("fired too early")
	default:
	}

	c.Advance(time.Second)
	select {
	case got := <-ch:
		assert.Equal(t, epoch.Add(2*time.Second), got)
	default:
		t.Fatal("did not fire at deadline")
	}
}

func TestFake_AfterNonPositiveIsImmediate(t *testing.T) {
	c := Fake(epoch)
	select {
	case <-c.After(0):
	default:
		t.Fatal("After(0) should be ready")
	}
}

func TestFake_TickerReschedulesAndStops(t *testing.T) {
	c := Fake(epoch)
	tk := c.NewTicker(time.Second)

	c.Advance(time.Second)
	require.Len(t, tk.C, 1)
	<-tk.C

	c.Advance(time.Second)
	require.Len(t, tk.C, 1)
	<-tk.C

	tk.Stop()
	c.Advance(time.Second)
	assert.Len(t, tk.C, 0)
}

func TestFake_WaitForTimers(t *testing.T) {
	c := Fake(epoch)
	done := make(chan struct{})

	go func() {
		<-c.After(time.Minute)
		close(done)
	}()

	c.WaitForTimers(1)
	c.Advance(time.Minute)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("goroutine was not released")
	}
}

func TestFake_SetCanGoBackwards(t *testing.T) {
	c := Fake(epoch)
	c.Set(epoch.Add(-time.Hour))
	assert.Equal(t, epoch.Add(-time.Hour), c.Now())
}

func TestSleep(t *testing.T) {
	c := Fake(epoch)
	require.NoError(t, Sleep(context.Background(), c, 0))

	errc := make(chan error, 1)
	go func() { errc <- Sleep(context.Background(), c, time.Second) }()
	c.WaitForTimers(1)
	c.Advance(time.Second)
	require.NoError(t, <-errc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, c, time.Hour), context.Canceled)
}
