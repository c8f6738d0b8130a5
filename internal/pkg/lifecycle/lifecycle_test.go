package lifecycle

import (
	"testing"
	"time"
)

func TestController_StartStop(t *testing.T) {
	c := New("game")

	if !c.Running() {
		t.Fatalf("expected running after New")
	}
	if c.Start() {
		t.Fatalf("Start on a running service must not report a change")
	}
	if !c.Stop() {
		t.Fatalf("expected Stop to change state")
	}
	if c.Running() || c.Status().Running {
		t.Fatalf("expected stopped")
	}
	if c.Stop() {
		t.Fatalf("second Stop must not report a change")
	}
	if !c.Start() || !c.Running() {
		t.Fatalf("expected Start to resume")
	}

	select {
	case <-c.StopRequested():
		t.Fatalf("pausing service must not request shutdown")
	default:
	}
}

func TestController_ShutdownOnStop(t *testing.T) {
	c := New("stats", WithShutdownOnStop())
	c.Stop()
	c.Stop()

	select {
	case <-c.StopRequested():
	case <-time.After(time.Second):
		t.Fatalf("expected shutdown to be requested")
	}
}

func TestController_StatusUptime(t *testing.T) {
	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	now := start
	c := New("image", WithClock(func() time.Time { return now }))
	now = start.Add(90 * time.Second)

	st := c.Status()
	if st.Service != "image" || st.Uptime != 90 || !st.Generation.Equal(start) {
		t.Fatalf("unexpected status %+v", st)
	}
}
