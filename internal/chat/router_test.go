package chat

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"testing"
)

func TestRouter_JoinAndRenameBroadcasts(t *testing.T) {
	h := newHarness(t)
	_, watcherOut := h.join(t, "carol")
	watcherOut.reset()

	alice, aliceOut := h.connect(t)
	h.send(t, alice, MessageSetName, "alice")
	h.send(t, alice, MessageSetName, "alicia")

	want := []string{
		"[SERVER] alice joined the room!",
		"[SERVER] alice changed their display name to alicia!",
	}
	if got := watcherOut.lines(); !slices.Equal(got, want) {
		t.Fatalf("watcher lines = %q, want %q", got, want)
	}
	if got := aliceOut.lines(); !slices.Equal(got, want) {
		t.Fatalf("alice lines = %q, want %q", got, want)
	}
	if name, ok := alice.Name(); !ok || name != "alicia" {
		t.Fatalf("alice name = %q (%v), want alicia", name, ok)
	}
}

func TestRouter_PrivateDelivery(t *testing.T) {
	h := newHarness(t)
	alice, aliceOut := h.join(t, "alice")
	bob, bobOut := h.join(t, "bob")
	aliceOut.reset()
	bobOut.reset()

	if err := h.router.Handle(alice, Frame{Type: MessagePrivate, Payload: "bob:hello"}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if h.queue.Len() != 1 {
		t.Fatalf("queue len = %d, want 1", h.queue.Len())
	}
	msg := h.queue.items[0]
	if msg.Type() != MessagePrivate || msg.Recipient() != bob || msg.Content() != "<alice> hello" {
		t.Fatalf("unexpected record: %v %q -> %v", msg.Type(), msg.Content(), msg.Recipient())
	}

	h.router.Drain()
	if got := bobOut.lines(); !slices.Equal(got, []string{"<alice> hello"}) {
		t.Fatalf("bob lines = %q", got)
	}
	if got := aliceOut.lines(); len(got) != 0 {
		t.Fatalf("alice should receive nothing, got %q", got)
	}
}

func TestRouter_PrivateUnknownRecipient(t *testing.T) {
	h := newHarness(t)
	alice, aliceOut := h.join(t, "alice")
	_, bobOut := h.join(t, "bob")
	aliceOut.reset()
	bobOut.reset()

	h.send(t, alice, MessagePrivate, "nobody:hi")

	want := []string{"[SERVER] No one connected has that nickname, so your private message was not sent."}
	if got := aliceOut.lines(); !slices.Equal(got, want) {
		t.Fatalf("alice lines = %q, want %q", got, want)
	}
	if got := bobOut.lines(); len(got) != 0 {
		t.Fatalf("bob should receive nothing, got %q", got)
	}
}

func TestRouter_PrivateEscapedColonInName(t *testing.T) {
	h := newHarness(t)
	alice, _ := h.join(t, "alice")
	_, weirdOut := h.join(t, "a:b")
	weirdOut.reset()

	h.send(t, alice, MessagePrivate, FormatPrivate("a:b", "body: with colon"))

	if got := weirdOut.lines(); !slices.Equal(got, []string{"<alice> body: with colon"}) {
		t.Fatalf("lines = %q", got)
	}
}

func TestRouter_PrivateWithoutColonIsViolation(t *testing.T) {
	h := newHarness(t)
	alice, _ := h.join(t, "alice")

	err := h.router.Handle(alice, Frame{Type: MessagePrivate, Payload: "no delimiter"})
	if !errors.Is(err, ErrMalformedPrivate) {
		t.Fatalf("err = %v, want ErrMalformedPrivate", err)
	}
	if h.queue.Len() != 0 {
		t.Fatalf("queue len = %d, want 0", h.queue.Len())
	}
}

func TestRouter_UnjoinedNeverReceivesBroadcasts(t *testing.T) {
	h := newHarness(t)
	alice, aliceOut := h.join(t, "alice")
	lurker, lurkerOut := h.connect(t)

	h.send(t, alice, MessageGlobal, "hi all")
	// Unjoined senders may still post; the broadcast is attributed anonymously.
	h.send(t, lurker, MessageGlobal, "who am i")

	if got := lurkerOut.lines(); len(got) != 0 {
		t.Fatalf("unjoined connection received %q", got)
	}
	want := []string{"[SERVER] alice joined the room!", "[alice] hi all", "[anonymous] who am i"}
	if got := aliceOut.lines(); !slices.Equal(got, want) {
		t.Fatalf("alice lines = %q, want %q", got, want)
	}
}

func TestRouter_DuplicateNamesResolveToFirstHolder(t *testing.T) {
	h := newHarness(t)
	alice, _ := h.join(t, "alice")
	first, firstOut := h.join(t, "bob")
	_, secondOut := h.join(t, "bob")
	firstOut.reset()
	secondOut.reset()

	h.send(t, alice, MessagePrivate, "bob:one")
	if got := firstOut.lines(); !slices.Equal(got, []string{"<alice> one"}) {
		t.Fatalf("first bob lines = %q", got)
	}
	if got := secondOut.lines(); len(got) != 0 {
		t.Fatalf("second bob lines = %q", got)
	}

	h.send(t, first, MessageSetName, "robert")
	firstOut.reset()
	secondOut.reset()

	h.send(t, alice, MessagePrivate, "bob:two")
	if got := secondOut.lines(); !slices.Equal(got, []string{"<alice> two"}) {
		t.Fatalf("second bob lines = %q", got)
	}
	if got := firstOut.lines(); len(got) != 0 {
		t.Fatalf("renamed bob lines = %q", got)
	}
}

func TestRouter_WriteFailureRemovesOnlyThatConnection(t *testing.T) {
	h := newHarness(t)
	alice, aliceOut := h.join(t, "alice")
	bob, bobOut := h.join(t, "bob")
	_, carolOut := h.join(t, "carol")
	aliceOut.reset()
	carolOut.reset()

	bobOut.failWrites = true
	before := h.reg.Len()

	h.send(t, alice, MessageGlobal, "ping")

	if h.reg.Len() != before-1 {
		t.Fatalf("registry len = %d, want %d", h.reg.Len(), before-1)
	}
	if !bob.Removed() || !bobOut.closed {
		t.Fatal("bob should be removed and closed")
	}

	// A later read failure for the same connection must not double-remove.
	h.reg.Remove(bob, "read_error")
	h.router.Drain()

	for name, out := range map[string]*fakeConn{"alice": aliceOut, "carol": carolOut} {
		lines := out.lines()
		if !slices.Contains(lines, "[alice] ping") {
			t.Fatalf("%s missed the broadcast: %q", name, lines)
		}
		left := 0
		for _, l := range lines {
			if l == "[SERVER] bob left the room!" {
				left++
			}
		}
		if left != 1 {
			t.Fatalf("%s saw %d departure notices, want 1: %q", name, left, lines)
		}
	}
}

func TestRouter_QueuedPrivateToRemovedRecipientIsDropped(t *testing.T) {
	h := newHarness(t)
	alice, aliceOut := h.join(t, "alice")
	bob, bobOut := h.join(t, "bob")
	aliceOut.reset()
	bobOut.reset()

	if err := h.router.Handle(alice, Frame{Type: MessagePrivate, Payload: "bob:late"}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	h.reg.Remove(bob, "closed")
	writes := bobOut.writes
	h.router.Drain()

	if bobOut.writes != writes {
		t.Fatal("removed connection was written to")
	}
	if got := aliceOut.lines(); !slices.Equal(got, []string{"[SERVER] bob left the room!"}) {
		t.Fatalf("alice lines = %q", got)
	}
}

// Every joined connection sees every broadcast exactly once and in order,
// and unjoined connections see none, across a random workload.
func TestRouter_BroadcastOrderingProperty(t *testing.T) {
	h := newHarness(t)
	rng := rand.New(rand.NewSource(7))

	const n = 6
	conns := make([]*Connection, n)
	outs := make([]*fakeConn, n)
	for i := range conns {
		conns[i], outs[i] = h.connect(t)
	}

	names := make([]string, n)
	joined := make([]bool, n)
	expected := make([][]string, n)
	deliver := func(line string) {
		for i := range conns {
			if joined[i] {
				expected[i] = append(expected[i], line)
			}
		}
	}

	for step := 0; step < 300; step++ {
		i := rng.Intn(n)
		switch rng.Intn(3) {
		case 0:
			name := fmt.Sprintf("user%d", rng.Intn(4))
			var line string
			if joined[i] {
				line = ServerContent(names[i] + " changed their display name to " + name + "!")
			} else {
				line = ServerContent(name + " joined the room!")
			}
			names[i], joined[i] = name, true
			h.send(t, conns[i], MessageSetName, name)
			deliver(line)
		case 1:
			text := fmt.Sprintf("msg-%d", step)
			sender := anonymousName
			if joined[i] {
				sender = names[i]
			}
			h.send(t, conns[i], MessageGlobal, text)
			deliver(GlobalContent(sender, text))
		case 2:
			// Private traffic must not disturb broadcast order; filter it below.
			to := fmt.Sprintf("user%d", rng.Intn(4))
			h.send(t, conns[i], MessagePrivate, to+":secret")
		}
	}

	for i := range conns {
		var got []string
		for _, l := range outs[i].lines() {
			if l[0] == '[' && l != ServerContent(noRecipientText) {
				got = append(got, l)
			}
		}
		if !slices.Equal(got, expected[i]) {
			t.Fatalf("conn %d broadcasts differ:\n got %q\nwant %q", i, got, expected[i])
		}
	}
}
