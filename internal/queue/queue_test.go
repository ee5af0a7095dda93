package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// waitFor polls cond until it holds or the deadline expires.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func (c *Channel[T]) waitingReceivers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.receivers)
}

func (c *Channel[T]) issuedTickets() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nextTicket
}

func TestChannel_SendReceiveOrder(t *testing.T) {
	c := New[int]()
	defer c.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- c.Send(context.Background(), 1, 2, 3, 4)
	}()

	for want := 1; want <= 4; want++ {
		got, err := c.Receive(context.Background())
		if err != nil {
			t.Fatalf("Receive failed: %v", err)
		}
		if got != want {
			t.Errorf("Expected %d, got %d", want, got)
		}
	}

	if err := <-errCh; err != nil {
		t.Errorf("Send failed: %v", err)
	}
}

func TestChannel_SendBlocksUntilConsumed(t *testing.T) {
	c := New[string]()
	defer c.Close()

	returned := make(chan error, 1)
	go func() {
		returned <- c.Send(context.Background(), "a", "b")
	}()

	waitFor(t, "first value to be buffered", func() bool { return c.Len() == 1 })

	select {
	case err := <-returned:
		t.Fatalf("Send returned before its values were consumed: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	if v, _ := c.Receive(context.Background()); v != "a" {
		t.Errorf("Expected a, got %q", v)
	}
	if v, _ := c.Receive(context.Background()); v != "b" {
		t.Errorf("Expected b, got %q", v)
	}

	select {
	case err := <-returned:
		if err != nil {
			t.Errorf("Send failed: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Send did not return after all values were consumed")
	}
}

func TestChannel_BackpressureBound(t *testing.T) {
	c := New[int]()
	defer c.Close()

	const n = 20
	values := make([]int, n)
	for i := range values {
		values[i] = i
	}

	go func() {
		_ = c.Send(context.Background(), values...)
	}()

	for i := 0; i < n; i++ {
		waitFor(t, "a buffered value", func() bool { return c.Len() == 1 })

		// Give a misbehaving sender time to publish more than one value.
		time.Sleep(time.Millisecond)
		if l := c.Len(); l > 1 {
			t.Fatalf("Expected at most 1 buffered value, got %d", l)
		}

		got, err := c.Receive(context.Background())
		if err != nil {
			t.Fatalf("Receive failed: %v", err)
		}
		if got != i {
			t.Errorf("Expected %d, got %d", i, got)
		}
	}
}

func TestChannel_DirectHandoff(t *testing.T) {
	c := New[int]()
	defer c.Close()

	received := make(chan int, 1)
	go func() {
		v, err := c.Receive(context.Background())
		if err == nil {
			received <- v
		}
	}()

	waitFor(t, "receiver to park", func() bool { return c.waitingReceivers() == 1 })

	// The receiver is already waiting, so Send must not block.
	done := make(chan error, 1)
	go func() { done <- c.Send(context.Background(), 42) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Send failed: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Send blocked despite a waiting receiver")
	}

	if got := <-received; got != 42 {
		t.Errorf("Expected 42, got %d", got)
	}

	stats := c.Stats()
	if stats.HandedOff != 1 {
		t.Errorf("Expected 1 handoff, got %d", stats.HandedOff)
	}
	if c.Len() != 0 {
		t.Errorf("Expected nothing buffered, got %d", c.Len())
	}
}

func TestChannel_SendsDoNotInterleave(t *testing.T) {
	c := New[string]()
	defer c.Close()

	const senders = 8
	const perSend = 5

	var wg sync.WaitGroup
	for s := 0; s < senders; s++ {
		wg.Add(1)
		go func(s int) {
			defer wg.Done()
			batch := make([]string, perSend)
			for i := range batch {
				batch[i] = fmt.Sprintf("%d:%d", s, i)
			}
			if err := c.Send(context.Background(), batch...); err != nil {
				t.Errorf("Send %d failed: %v", s, err)
			}
		}(s)
	}

	got := make([]string, 0, senders*perSend)
	for len(got) < senders*perSend {
		v, err := c.Receive(context.Background())
		if err != nil {
			t.Fatalf("Receive failed: %v", err)
		}
		got = append(got, v)
	}
	wg.Wait()

	// Every batch must appear as one contiguous, ordered run.
	seen := make(map[int]bool)
	for i := 0; i < len(got); i += perSend {
		var sender int
		if _, err := fmt.Sscanf(got[i], "%d:0", &sender); err != nil {
			t.Fatalf("Unexpected value at batch start %d: %q", i, got[i])
		}
		if seen[sender] {
			t.Fatalf("Batch from sender %d appeared twice", sender)
		}
		seen[sender] = true
		for j := 0; j < perSend; j++ {
			want := fmt.Sprintf("%d:%d", sender, j)
			if got[i+j] != want {
				t.Fatalf("Interleaved output at %d: expected %q, got %q", i+j, want, got[i+j])
			}
		}
	}
}

func TestChannel_IssueOrder(t *testing.T) {
	c := New[string]()
	defer c.Close()

	first := make(chan error, 1)
	go func() { first <- c.Send(context.Background(), "a1", "a2") }()
	waitFor(t, "first send to buffer", func() bool { return c.Len() == 1 })

	second := make(chan error, 1)
	go func() { second <- c.Send(context.Background(), "b1", "b2") }()
	waitFor(t, "second send to take a ticket", func() bool { return c.issuedTickets() == 2 })

	want := []string{"a1", "a2", "b1", "b2"}
	for _, w := range want {
		v, err := c.Receive(context.Background())
		if err != nil {
			t.Fatalf("Receive failed: %v", err)
		}
		if v != w {
			t.Errorf("Expected %q, got %q", w, v)
		}
	}

	if err := <-first; err != nil {
		t.Errorf("First send failed: %v", err)
	}
	if err := <-second; err != nil {
		t.Errorf("Second send failed: %v", err)
	}
}

func TestChannel_EmptySend(t *testing.T) {
	c := New[int]()

	if err := c.Send(context.Background()); err != nil {
		t.Errorf("Expected empty send to succeed, got %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Expected nothing buffered, got %d", c.Len())
	}

	c.Close()
	if err := c.Send(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed on closed channel, got %v", err)
	}
}

func TestChannel_ClosedContract(t *testing.T) {
	c := New[int]()

	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if err := c.Send(context.Background(), 1); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed from Send, got %v", err)
	}
	if _, err := c.Receive(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed from Receive, got %v", err)
	}
	if !c.Closed() {
		t.Error("Expected channel to report closed")
	}
}

func TestChannel_CloseWakesWaiters(t *testing.T) {
	c := New[int]()

	recvErr := make(chan error, 1)
	go func() {
		_, err := c.Receive(context.Background())
		recvErr <- err
	}()
	waitFor(t, "receiver to park", func() bool { return c.waitingReceivers() == 1 })

	// Park a sender on a second channel that has no receiver.
	sendErr := make(chan error, 1)
	c2 := New[int]()
	go func() { sendErr <- c2.Send(context.Background(), 1, 2) }()
	waitFor(t, "sender to buffer", func() bool { return c2.Len() == 1 })

	c.Close()
	c2.Close()

	select {
	case err := <-recvErr:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("Expected ErrClosed for parked receiver, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Parked receiver was not woken by Close")
	}

	select {
	case err := <-sendErr:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("Expected ErrClosed for parked sender, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Parked sender was not woken by Close")
	}

	if dropped := c2.Stats().Dropped; dropped != 1 {
		t.Errorf("Expected 1 dropped value, got %d", dropped)
	}
}

func TestChannel_CloseWakesQueuedSenders(t *testing.T) {
	c := New[int]()

	first := make(chan error, 1)
	go func() { first <- c.Send(context.Background(), 1) }()
	waitFor(t, "first send to buffer", func() bool { return c.Len() == 1 })

	second := make(chan error, 1)
	go func() { second <- c.Send(context.Background(), 2) }()
	waitFor(t, "second send to queue", func() bool { return c.issuedTickets() == 2 })

	c.Close()

	for i, ch := range []chan error{first, second} {
		select {
		case err := <-ch:
			if !errors.Is(err, ErrClosed) {
				t.Errorf("Send %d: expected ErrClosed, got %v", i, err)
			}
		case <-time.After(time.Second):
			t.Fatalf("Send %d was not woken by Close", i)
		}
	}
}

func TestChannel_IdempotentClose(t *testing.T) {
	c := New[int]()

	if err := c.Close(); err != nil {
		t.Fatalf("First close failed: %v", err)
	}
	before := c.Stats()
	if err := c.Close(); err != nil {
		t.Fatalf("Second close failed: %v", err)
	}
	if after := c.Stats(); after != before {
		t.Errorf("Expected stats unchanged by second close, got %+v then %+v", before, after)
	}
	if _, err := c.Receive(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
}

func TestChannel_NoLossBeforeClose(t *testing.T) {
	c := New[int]()

	const producers = 4
	const perProducer = 25

	var mu sync.Mutex
	accepted := make(map[int]bool)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				v := p*perProducer + i
				if err := c.Send(context.Background(), v); err == nil {
					mu.Lock()
					accepted[v] = true
					mu.Unlock()
				}
			}
		}(p)
	}

	received := make(map[int]int)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for v := range c.All(context.Background()) {
			received[v]++
		}
	}()

	wg.Wait()
	c.Close()
	<-done

	for v := range accepted {
		if received[v] != 1 {
			t.Errorf("Value %d accepted by Send but received %d times", v, received[v])
		}
	}
	if len(accepted) != producers*perProducer {
		t.Errorf("Expected %d accepted values, got %d", producers*perProducer, len(accepted))
	}
}

func TestChannel_SendCanceledWhileQueued(t *testing.T) {
	c := New[int]()
	defer c.Close()

	first := make(chan error, 1)
	go func() { first <- c.Send(context.Background(), 1) }()
	waitFor(t, "first send to buffer", func() bool { return c.Len() == 1 })

	ctx, cancel := context.WithCancel(context.Background())
	canceled := make(chan error, 1)
	go func() { canceled <- c.Send(ctx, 99) }()
	waitFor(t, "second send to queue", func() bool { return c.issuedTickets() == 2 })

	third := make(chan error, 1)
	go func() { third <- c.Send(context.Background(), 3) }()
	waitFor(t, "third send to queue", func() bool { return c.issuedTickets() == 3 })

	cancel()
	if err := <-canceled; !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}

	for _, want := range []int{1, 3} {
		v, err := c.Receive(context.Background())
		if err != nil {
			t.Fatalf("Receive failed: %v", err)
		}
		if v != want {
			t.Errorf("Expected %d, got %d", want, v)
		}
	}
	if err := <-first; err != nil {
		t.Errorf("First send failed: %v", err)
	}
	if err := <-third; err != nil {
		t.Errorf("Third send failed: %v", err)
	}
}

func TestChannel_SendCanceledWhileBuffered(t *testing.T) {
	c := New[int]()
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- c.Send(ctx, 1, 2) }()
	waitFor(t, "value to buffer", func() bool { return c.Len() == 1 })

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Expected withdrawn value to leave the buffer, got %d", c.Len())
	}
	if w := c.Stats().Withdrawn; w != 1 {
		t.Errorf("Expected 1 withdrawn value, got %d", w)
	}

	// The channel must still serve later sends.
	go func() { _ = c.Send(context.Background(), 7) }()
	v, err := c.Receive(context.Background())
	if err != nil || v != 7 {
		t.Errorf("Expected 7, got %d (%v)", v, err)
	}
}

func TestChannel_ReceiveCanceled(t *testing.T) {
	c := New[int]()
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := c.Receive(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected DeadlineExceeded, got %v", err)
	}
	if n := c.waitingReceivers(); n != 0 {
		t.Errorf("Expected canceled receiver to be removed, got %d waiting", n)
	}
}

func TestChannel_AllStopsOnClose(t *testing.T) {
	c := New[int]()

	seq := c.All(context.Background())
	go func() {
		_ = c.Send(context.Background(), 1, 2, 3)
		c.Close()
	}()

	var got []int
	for v := range seq {
		got = append(got, v)
	}
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("Expected [1 2 3], got %v", got)
	}

	// A sequence is single use.
	for v := range seq {
		t.Errorf("Expected exhausted sequence, got %d", v)
	}
}

func TestChannel_AllEarlyBreak(t *testing.T) {
	c := New[int]()
	defer c.Close()

	go func() { _ = c.Send(context.Background(), 1, 2) }()

	for v := range c.All(context.Background()) {
		if v != 1 {
			t.Errorf("Expected 1, got %d", v)
		}
		break
	}

	// A fresh sequence picks up where the previous one stopped.
	for v := range c.All(context.Background()) {
		if v != 2 {
			t.Errorf("Expected 2, got %d", v)
		}
		break
	}
}
