// Command sampler is the operator CLI that crafts a single sample 0100
// and sends it to a running switch's acquirer-facing listener, printing
// whatever response comes back (or timing out).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"npsb-switch/internal/iso8583"
	"npsb-switch/internal/transport"
)

func main() {
	var (
		endpoint = flag.String("endpoint", "127.0.0.1:5000", "switch acquirer-facing host:port")
		pan      = flag.String("pan", "4111111111111111", "DE2 primary account number")
		amount   = flag.String("amount", "000000010000", "DE4 transaction amount, 12 digits")
		rrn      = flag.String("rrn", "000000000001", "DE37 retrieval reference number")
		stan     = flag.String("stan", "000001", "DE11 system trace audit number, 6 digits")
		timeout  = flag.Duration("timeout", 10*time.Second, "how long to wait for a response")
	)
	flag.Parse()

	msg := iso8583.New("0100")
	fields := map[int]string{2: *pan, 4: *amount, 11: *stan, 37: *rrn}
	for n, v := range fields {
		if err := msg.Set(n, v); err != nil {
			log.Fatalf("set field %d: %v", n, err)
		}
	}
	body, err := msg.Pack(iso8583.DefaultMode)
	if err != nil {
		log.Fatalf("pack sample message: %v", err)
	}

	conn := transport.NewConnector(transport.DialConfig{
		Endpoint:  *endpoint,
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
		ReadIdle:  *timeout + 5*time.Second,
		RetryBase: time.Second,
		Mode:      iso8583.DefaultMode,
	})

	done := make(chan struct{})
	var reply *iso8583.Message
	conn.SetCallbacks(
		func(m *iso8583.Message, _ []byte) {
			if v, ok := m.GetString(11); ok && v == *stan {
				reply = m
				close(done)
			}
		},
		func() {
			log.Printf("connected to %s, sending STAN=%s", *endpoint, *stan)
			if err := conn.Send(body); err != nil {
				log.Fatalf("send: %v", err)
			}
		},
		func(err error) {
			if err != nil {
				log.Printf("disconnected: %v", err)
			}
		},
	)
	conn.Start()
	defer conn.Close()

	select {
	case <-done:
		fmt.Printf("received %s, response code=%v\n", reply.MTI, fieldOrDash(reply, 39))
		for n, v := range reply.Fields {
			fmt.Printf("  DE%d = %v\n", n, v)
		}
	case <-time.After(*timeout):
		fmt.Fprintln(os.Stderr, "timed out waiting for a response")
		os.Exit(1)
	}
}

func fieldOrDash(m *iso8583.Message, n int) string {
	if v, ok := m.GetString(n); ok {
		return v
	}
	return "-"
}
