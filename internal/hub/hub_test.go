package hub

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetops/internal/domain"
)

// testSender captures delivered payloads on a channel so tests can observe
// what the writer goroutine actually sent.
type testSender struct {
	recv   chan []byte
	closed chan struct{}
	fail   bool
}

func newTestSender() *testSender {
	return &testSender{recv: make(chan []byte, 128), closed: make(chan struct{})}
}

func (s *testSender) Send(payload []byte) error {
	if s.fail {
		return fmt.Errorf("send failed")
	}
	s.recv <- payload
	return nil
}

func (s *testSender) Close() error {
	select {
	case <-s.closed:
	default:
		close(s.closed)
	}
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// receive waits for one payload from the sender or fails the test.
func receive(t *testing.T, s *testSender) []byte {
	t.Helper()
	select {
	case p := <-s.recv:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
		return nil
	}
}

func notificationEvent(tenantID, title string) domain.Event {
	return domain.NewNotificationRaised(tenantID, domain.NotificationPayload{
		Title:   title,
		Message: "m",
	})
}

func TestPublishDeliversToTenantGroup(t *testing.T) {
	t.Parallel()

	registry := NewRegistry(nil)
	defer registry.Close()
	h := New(registry, nil, testLogger())

	acme1 := newTestSender()
	acme2 := newTestSender()
	other := newTestSender()
	registry.Register(NewConn("c1", "acme", "jane", []string{domain.GroupDispatchers}, acme1, 16))
	registry.Register(NewConn("c2", "acme", "joe", []string{domain.GroupDispatchers}, acme2, 16))
	registry.Register(NewConn("c3", "globex", "gus", []string{domain.GroupDispatchers}, other, 16))

	h.Publish(notificationEvent("acme", "hello"))

	for _, s := range []*testSender{acme1, acme2} {
		var ev domain.Event
		require.NoError(t, json.Unmarshal(receive(t, s), &ev))
		assert.Equal(t, domain.EventNotificationRaised, ev.Type)
		assert.Equal(t, "acme", ev.TenantID)
	}

	// The other tenant's dispatcher must see nothing.
	select {
	case p := <-other.recv:
		t.Fatalf("cross-tenant delivery: %s", p)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPublishSkipsOtherGroups(t *testing.T) {
	t.Parallel()

	registry := NewRegistry(nil)
	defer registry.Close()
	h := New(registry, nil, testLogger())

	driver := newTestSender()
	registry.Register(NewConn("d1", "acme", "dave", []string{domain.GroupDrivers}, driver, 16))

	h.Publish(notificationEvent("acme", "dispatch only"))

	select {
	case p := <-driver.recv:
		t.Fatalf("unexpected delivery to drivers group: %s", p)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPerConnectionDeliveryOrder(t *testing.T) {
	t.Parallel()

	registry := NewRegistry(nil)
	defer registry.Close()
	h := New(registry, nil, testLogger())

	s := newTestSender()
	registry.Register(NewConn("c1", "acme", "jane", []string{domain.GroupDispatchers}, s, 64))

	const n = 20
	for i := 0; i < n; i++ {
		h.Publish(notificationEvent("acme", fmt.Sprintf("event-%d", i)))
	}

	for i := 0; i < n; i++ {
		var ev domain.Event
		require.NoError(t, json.Unmarshal(receive(t, s), &ev))
		var payload domain.NotificationPayload
		require.NoError(t, json.Unmarshal(ev.Data, &payload))
		assert.Equal(t, fmt.Sprintf("event-%d", i), payload.Title)
	}
}

func TestDuplicateRegisterOverwrites(t *testing.T) {
	t.Parallel()

	registry := NewRegistry(nil)
	defer registry.Close()

	oldSender := newTestSender()
	old := NewConn("c1", "acme", "jane", []string{domain.GroupDispatchers}, oldSender, 16)
	registry.Register(old)

	replacement := NewConn("c1", "acme", "jane", []string{domain.GroupDispatchers}, newTestSender(), 16)
	registry.Register(replacement)

	assert.Equal(t, 1, registry.Len())
	members := registry.GroupMembers("acme", domain.GroupDispatchers)
	require.Len(t, members, 1)
	assert.Same(t, replacement, members[0])

	// The overwritten connection's transport is closed, not leaked.
	select {
	case <-oldSender.closed:
	case <-time.After(time.Second):
		t.Fatal("old sender was not closed on overwrite")
	}
}

func TestStaleDropKeepsReplacement(t *testing.T) {
	t.Parallel()

	registry := NewRegistry(nil)
	defer registry.Close()
	h := New(registry, nil, testLogger())

	old := NewConn("c1", "acme", "jane", []string{domain.GroupDispatchers}, newTestSender(), 16)
	registry.Register(old)

	replacementSender := newTestSender()
	replacement := NewConn("c1", "acme", "jane", []string{domain.GroupDispatchers}, replacementSender, 16)
	registry.Register(replacement)

	// A teardown racing in from the overwritten connection must not evict
	// the one that replaced it under the same ID.
	registry.Drop(old)

	assert.Equal(t, 1, registry.Len())
	members := registry.GroupMembers("acme", domain.GroupDispatchers)
	require.Len(t, members, 1)
	assert.Same(t, replacement, members[0])

	h.Publish(notificationEvent("acme", "still here"))
	receive(t, replacementSender)
}

func TestOverwriteKeepsConnectionGaugeStable(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics(prometheus.NewRegistry())
	registry := NewRegistry(metrics)
	defer registry.Close()

	registry.Register(NewConn("c1", "acme", "jane", []string{domain.GroupDispatchers}, newTestSender(), 16))
	registry.Register(NewConn("c1", "acme", "jane", []string{domain.GroupDispatchers}, newTestSender(), 16))

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.connectionsActive))

	registry.Unregister("c1")
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.connectionsActive))
}

func TestUnregisterRemovesEveryGroup(t *testing.T) {
	t.Parallel()

	registry := NewRegistry(nil)
	defer registry.Close()

	s := newTestSender()
	groups := []string{domain.GroupDrivers, domain.DriverGroup("d1")}
	registry.Register(NewConn("c1", "acme", "dave", groups, s, 16))

	registry.Unregister("c1")

	for _, g := range groups {
		assert.Empty(t, registry.GroupMembers("acme", g), "group %s still has members", g)
	}
	assert.Equal(t, 0, registry.Len())

	select {
	case <-s.closed:
	case <-time.After(time.Second):
		t.Fatal("sender was not closed on unregister")
	}

	// Unregistering an unknown ID is a no-op.
	registry.Unregister("c1")
	registry.Unregister("never-registered")
}

func TestFailedConnectionIsDropped(t *testing.T) {
	t.Parallel()

	registry := NewRegistry(nil)
	defer registry.Close()
	h := New(registry, nil, testLogger())

	bad := newTestSender()
	bad.fail = true
	good := newTestSender()
	registry.Register(NewConn("bad", "acme", "jane", []string{domain.GroupDispatchers}, bad, 16))
	registry.Register(NewConn("good", "acme", "joe", []string{domain.GroupDispatchers}, good, 16))

	h.Publish(notificationEvent("acme", "first"))

	// The failing connection closes itself and leaves the registry; the
	// healthy one keeps receiving.
	require.NoError(t, json.Unmarshal(receive(t, good), new(domain.Event)))
	require.Eventually(t, func() bool { return registry.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	h.Publish(notificationEvent("acme", "second"))
	receive(t, good)
}

func TestFullQueueDropsWithoutBlocking(t *testing.T) {
	t.Parallel()

	registry := NewRegistry(nil)
	defer registry.Close()
	h := New(registry, nil, testLogger())

	// A sender that no goroutine drains: its writer goroutine blocks on the
	// first Send, the queue backs up, and further events are dropped.
	stuck := &testSender{recv: make(chan []byte), closed: make(chan struct{})}
	healthy := newTestSender()
	registry.Register(NewConn("stuck", "acme", "jane", []string{domain.GroupDispatchers}, stuck, 1))
	registry.Register(NewConn("ok", "acme", "joe", []string{domain.GroupDispatchers}, healthy, 64))

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			h.Publish(notificationEvent("acme", fmt.Sprintf("event-%d", i)))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow consumer")
	}

	for i := 0; i < 10; i++ {
		receive(t, healthy)
	}
}
