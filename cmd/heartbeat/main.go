// Command heartbeat is a standalone acquirer-side client that
// maintains a persistent connection to the switch and periodically
// sends 0800 network management echoes, logging every 0810 reply. It
// exists to exercise the switch's local network-management handling
// continuously, the way a real acquirer's link-monitor would.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"npsb-switch/internal/iso8583"
	"npsb-switch/internal/transport"
)

func main() {
	var (
		endpoint = flag.String("endpoint", "127.0.0.1:5000", "switch acquirer-facing host:port")
		interval = flag.Duration("interval", 15*time.Second, "period between 0800 echoes")
	)
	flag.Parse()

	var stan int64 = time.Now().Unix() % 1000000
	var up atomic.Bool

	conn := transport.NewConnector(transport.DialConfig{
		Endpoint:  *endpoint,
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
		ReadIdle:  60 * time.Second,
		RetryBase: 2 * time.Second,
		Mode:      iso8583.DefaultMode,
	})
	conn.SetCallbacks(
		func(msg *iso8583.Message, _ []byte) {
			if msg.MTI != "0810" {
				log.Printf("RX %s (not handled by heartbeat)", msg.MTI)
				return
			}
			echoSTAN, _ := msg.GetString(11)
			code, _ := msg.GetString(39)
			log.Printf("RX 0810 echo response, STAN=%s code=%s", echoSTAN, code)
		},
		func() {
			up.Store(true)
			log.Printf("connected to %s", *endpoint)
		},
		func(err error) {
			up.Store(false)
			log.Printf("disconnected from %s: %v", *endpoint, err)
		},
	)
	conn.Start()

	stop := make(chan struct{})
	go func() {
		t := time.NewTicker(*interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				if !up.Load() {
					continue
				}
				s := int(atomic.AddInt64(&stan, 1))
				msg := iso8583.New("0800")
				_ = msg.Set(11, fmt.Sprintf("%06d", s))
				_ = msg.Set(70, "301")
				body, err := msg.Pack(iso8583.DefaultMode)
				if err != nil {
					log.Printf("pack error: %v", err)
					continue
				}
				if err := conn.Send(body); err != nil {
					log.Printf("send error: %v", err)
					continue
				}
				log.Printf("TX 0800 echo request, STAN=%06d", s)
			case <-stop:
				return
			}
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	close(stop)
	conn.Close()
	log.Println("heartbeat stopped")
}
