package debug

import (
	"net"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
)

func TestServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	logger, hook := test.NewNullLogger()
	s := New(logger, Config{Port: port})

	runErr := make(chan error, 1)
	go func() { runErr <- s.Run() }()

	var conn net.Conn
	for i := 0; i < 50; i++ {
		if conn, err = net.Dial("tcp", s.Addr()); err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("dialing gops agent: %v", err)
	}
	conn.Close()

	s.Stop(nil)
	s.Stop(nil)

	select {
	case err := <-runErr:
		if err != nil {
			t.Fatalf("got Run error %+v, want none", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}

	if got := hook.AllEntries()[0].Data["service"]; got != "debug" {
		t.Fatalf("got service %v, want debug", got)
	}
}
