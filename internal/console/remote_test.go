package console

import (
	"strings"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func newRemoteConsole(t *testing.T, opts ...Option) (*testConsole, *fakeNetwork) {
	t.Helper()
	nw := &fakeNetwork{state: Connected, addr: "10.0.0.5:23"}
	tc := newTestConsole(t, 0, append([]Option{WithNetwork(nw)}, opts...)...)
	tc.Poll()
	tc.primary.reset()
	return tc, nw
}

// attach connects client and lets the welcome delay pass.
func attach(tc *testConsole, nw *fakeNetwork, client *fakeStream) {
	nw.queue = append(nw.queue, client)
	tc.Poll()
	tc.clock.Add(DefaultWelcomeDelay)
	tc.Poll()
}

func TestNetworkStateAlerts(t *testing.T) {
	nw := &fakeNetwork{state: Connecting}
	tc := newTestConsole(t, 0, WithNetwork(nw), WithHostname("devboard"))

	tc.Poll()
	assert.Equal(t, tc.primary.out.Len(), 0)

	tc.clock.Add(4 * time.Second)
	tc.Poll()
	assert.Equal(t, tc.primary.out.Len(), 0)

	tc.clock.Add(2 * time.Second)
	tc.Poll()
	assert.DeepEqual(t, tc.primary.lines(), []string{"Still attempting to connect to network..."})

	tc.primary.reset()
	nw.state, nw.addr = Connected, "10.0.0.5:23"
	tc.Poll()
	tc.Poll()
	assert.DeepEqual(t, tc.primary.lines(), []string{
		"Network ready! Use client (eg 'PuTTY') & connect to 10.0.0.5:23",
		"mDNS Enabled - Device may be reached using 'devboard.local'",
		"Press Ctrl-A to enter command mode.",
	})

	tc.primary.reset()
	nw.state = Connecting
	tc.Poll()
	assert.DeepEqual(t, tc.primary.lines(), []string{"Lost network connection. Attempting to reconnect.."})
}

func TestNetworkReadyWithoutHostname(t *testing.T) {
	nw := &fakeNetwork{state: Connected, addr: "10.0.0.5:23"}
	tc := newTestConsole(t, 0, WithNetwork(nw))

	tc.Poll()

	assert.Equal(t, len(tc.primary.lines()), 2)
	assert.Assert(t, !strings.Contains(tc.primary.out.String(), "mDNS"))
}

func TestRemoteWelcomeAndAuthority(t *testing.T) {
	tc, nw := newRemoteConsole(t)
	client := newFakeStream()
	nw.queue = append(nw.queue, client)

	tc.Poll()
	assert.DeepEqual(t, tc.primary.lines(), []string{"Client connected with IP: 192.0.2.7:51000"})
	assert.Equal(t, client.out.Len(), 0)
	assert.Assert(t, !tc.RemoteActive())

	tc.clock.Add(DefaultWelcomeDelay - time.Millisecond)
	tc.Poll()
	assert.Assert(t, !tc.RemoteActive())

	tc.clock.Add(time.Millisecond)
	tc.Poll()
	assert.Assert(t, tc.RemoteActive())
	welcome := client.lines()
	assert.Equal(t, len(welcome), 4)
	assert.Equal(t, welcome[0], " +"+strings.Repeat("-", welcomeWidth)+"+")
	assert.Assert(t, is.Contains(welcome[1], "Connected to remote device via network"))
	assert.Assert(t, is.Contains(welcome[2], "Press Ctrl-A for Command Mode"))
	assert.Assert(t, !strings.Contains(tc.primary.out.String(), "Connected to remote device"))

	client.reset()
	tc.primary.reset()
	tc.Info("both")
	assert.DeepEqual(t, client.lines(), []string{"both"})
	assert.DeepEqual(t, tc.primary.lines(), []string{"both"})

	client.feed("q")
	b, err := tc.ReadByte()
	assert.NilError(t, err)
	assert.Equal(t, b, byte('q'))
}

func TestRemoteCommandModeShowsNetworkRow(t *testing.T) {
	tc, nw := newRemoteConsole(t)
	client := newFakeStream()
	attach(tc, nw, client)
	client.reset()

	client.feed("\x01")
	tc.Poll()

	assert.Assert(t, tc.CommandMode())
	out := client.out.String()
	assert.Assert(t, is.Contains(out, "Network Connected   10.0.0.5:23    Debug Control: Network"))
	assert.Assert(t, strings.HasSuffix(tc.primary.out.String(), out))
}

func TestRemoteIgnoresLocalInput(t *testing.T) {
	tc, nw := newRemoteConsole(t)
	client := newFakeStream()
	attach(tc, nw, client)
	tc.primary.reset()

	tc.primary.feed("\x01abc")
	tc.Poll()

	assert.Assert(t, !tc.CommandMode())
	assert.Equal(t, tc.primary.Available(), 0)
	assert.DeepEqual(t, tc.primary.lines(), []string{"Remote terminal is active, ignoring local serial commands"})

	tc.primary.reset()
	tc.Poll()
	assert.Equal(t, tc.primary.out.Len(), 0)
}

func TestRemoteDisconnect(t *testing.T) {
	tc, nw := newRemoteConsole(t)
	client := newFakeStream()
	attach(tc, nw, client)
	client.reset()
	tc.primary.reset()

	client.connected = false
	tc.Poll()

	assert.Assert(t, client.closed)
	assert.Assert(t, !tc.RemoteActive())
	assert.DeepEqual(t, tc.primary.lines(), []string{"Remote terminal disconnected, resuming control by serial port"})
	assert.Equal(t, client.out.Len(), 0)

	tc.primary.feed("z")
	b, err := tc.ReadByte()
	assert.NilError(t, err)
	assert.Equal(t, b, byte('z'))
}

func TestRemoteRejectsSecondClient(t *testing.T) {
	tc, nw := newRemoteConsole(t)
	first := newFakeStream()
	attach(tc, nw, first)

	second := newFakeStream()
	second.addr = "192.0.2.8:40000"
	nw.queue = append(nw.queue, second)
	tc.Poll()

	assert.Assert(t, second.closed)
	assert.Assert(t, !first.closed)
	assert.Assert(t, is.Contains(tc.primary.out.String(), "Remote terminal already attached, rejected 192.0.2.8:40000"))
}

func TestRemoteRejectsWhilePending(t *testing.T) {
	tc, nw := newRemoteConsole(t)
	first, second := newFakeStream(), newFakeStream()
	nw.queue = append(nw.queue, first, second)

	tc.Poll()

	assert.Assert(t, second.closed)
	tc.clock.Add(DefaultWelcomeDelay)
	tc.Poll()
	assert.Assert(t, tc.RemoteActive())
	assert.Assert(t, first.out.Len() > 0)
}

func TestRemotePendingClientDropsBeforeWelcome(t *testing.T) {
	tc, nw := newRemoteConsole(t)
	client := newFakeStream()
	nw.queue = append(nw.queue, client)
	tc.Poll()

	client.connected = false
	tc.clock.Add(DefaultWelcomeDelay)
	tc.Poll()

	assert.Assert(t, client.closed)
	assert.Assert(t, !tc.RemoteActive())
	assert.Equal(t, client.out.Len(), 0)
}

func TestRemoteConnectLeavesCommandMode(t *testing.T) {
	tc, nw := newRemoteConsole(t)
	tc.primary.feed("\x01")
	tc.Poll()
	assert.Assert(t, tc.CommandMode())

	nw.queue = append(nw.queue, newFakeStream())
	tc.Poll()

	assert.Assert(t, !tc.CommandMode())
}

func TestCustomWelcomeDelay(t *testing.T) {
	tc, nw := newRemoteConsole(t, WithWelcomeDelay(time.Second))
	nw.queue = append(nw.queue, newFakeStream())
	tc.Poll()

	tc.clock.Add(500 * time.Millisecond)
	tc.Poll()
	assert.Assert(t, !tc.RemoteActive())

	tc.clock.Add(500 * time.Millisecond)
	tc.Poll()
	assert.Assert(t, tc.RemoteActive())
}

func TestWatchMemory(t *testing.T) {
	tc := newTestConsole(t, 0)
	tc.platform.minFree = 1000

	tc.Poll()
	assert.Equal(t, tc.primary.out.Len(), 0)

	tc.platform.minFree = 900
	tc.clock.Add(100 * time.Millisecond)
	tc.Poll()
	assert.Equal(t, tc.primary.out.Len(), 0)

	tc.clock.Add(150 * time.Millisecond)
	tc.Poll()
	assert.DeepEqual(t, tc.primary.lines(), []string{"Minimum free memory dropped by 100 bytes to 900 bytes"})

	tc.primary.reset()
	tc.clock.Add(memCheckInterval)
	tc.Poll()
	assert.Equal(t, tc.primary.out.Len(), 0)
}

type busyUpdater bool

func (b busyUpdater) Busy() bool { return bool(b) }

func TestPollReportsUpdate(t *testing.T) {
	tc := newTestConsole(t, 0)
	assert.Assert(t, !tc.Poll())

	tc.SetUpdater(busyUpdater(true))
	assert.Assert(t, tc.Poll())
	assert.Assert(t, tc.UpdateInProgress())
}

func TestCenter(t *testing.T) {
	assert.Equal(t, center("ab", 6), "  ab  ")
	assert.Equal(t, center("abc", 6), " abc  ")
	assert.Equal(t, center("abcdefgh", 4), "abcd")
}

func TestRestartPromptEndsPollCycle(t *testing.T) {
	tc, nw := newRemoteConsole(t)
	client := newFakeStream()
	attach(tc, nw, client)

	client.feed("\x01")
	tc.Poll()
	assert.Assert(t, tc.CommandMode())

	client.feed("r")
	tc.primary.feed("z")
	tc.Poll()

	assert.Assert(t, is.Contains(client.out.String(), "Are you sure want to restart?"))
	assert.Equal(t, tc.primary.Available(), 1)

	tc.Poll()
	assert.Equal(t, tc.primary.Available(), 0)
}
