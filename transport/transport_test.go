// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transport

import (
	"net/netip"
	"sync"
	"testing"
	"time"
)

func TestSendAndReceiveRoundTrip(t *testing.T) {
	var mu sync.Mutex
	var received []byte
	got := make(chan struct{}, 1)

	b, err := New(Config{
		IsTestNetwork: true,
		IOWorkers:     1,
		Handler: func(from netip.AddrPort, payload []byte) {
			mu.Lock()
			received = append([]byte(nil), payload...)
			mu.Unlock()
			select {
			case got <- struct{}{}:
			default:
			}
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer b.Stop()
	b.Start()

	a, err := New(Config{IsTestNetwork: true, IOWorkers: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Stop()
	a.Start()

	dst := netip.AddrPortFrom(netip.MustParseAddr("::1"), b.LocalEndpoint().Port())
	if err := a.Send(dst, []byte("hello")); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for datagram")
	}

	mu.Lock()
	defer mu.Unlock()
	if string(received) != "hello" {
		t.Fatalf("received %q, want %q", received, "hello")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	tr, err := New(Config{IsTestNetwork: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tr.Start()
	tr.Stop()
	tr.Stop()
	if tr.State() != StateStopped {
		t.Fatalf("state = %v, want stopped", tr.State())
	}
}

func TestSendDuringStopNeverPanics(t *testing.T) {
	for i := 0; i < 50; i++ {
		tr, err := New(Config{IsTestNetwork: true})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		tr.Start()

		dst := netip.AddrPortFrom(netip.MustParseAddr("::1"), tr.LocalEndpoint().Port())

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			tr.Send(dst, []byte("hello"))
		}()
		go func() {
			defer wg.Done()
			tr.Stop()
		}()
		wg.Wait()
	}
}

func TestStopResetsLocalEndpointToLoopbackZero(t *testing.T) {
	tr, err := New(Config{IsTestNetwork: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tr.Start()
	tr.Stop()

	ep := tr.LocalEndpoint()
	if ep.Port() != 0 || !ep.Addr().IsLoopback() {
		t.Fatalf("local endpoint after stop = %v, want loopback:0", ep)
	}
}

func TestAllowedSenderRejectsUnspecifiedAndReserved(t *testing.T) {
	tr, err := New(Config{IsTestNetwork: true, AllowLocal: false})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer tr.Stop()

	cases := []struct {
		addr string
		want bool
	}{
		{"::", false},
		{"127.0.0.1", false},
		{"10.0.0.5", false},
		{"192.168.1.1", false},
		{"8.8.8.8", true},
	}
	for _, c := range cases {
		ep := netip.AddrPortFrom(netip.MustParseAddr(c.addr), 1234)
		if got := tr.allowedSender(ep); got != c.want {
			t.Errorf("allowedSender(%s) = %v, want %v", c.addr, got, c.want)
		}
	}
}

func TestAllowedSenderPermitsReservedWhenLocalAllowed(t *testing.T) {
	tr, err := New(Config{IsTestNetwork: true, AllowLocal: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer tr.Stop()

	ep := netip.AddrPortFrom(netip.MustParseAddr("192.168.1.1"), 1234)
	if !tr.allowedSender(ep) {
		t.Fatal("expected reserved-range sender to be allowed when AllowLocal is set")
	}
}
