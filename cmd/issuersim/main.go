// Command issuersim is a minimal issuer-side test double: it accepts a
// connection from the switch, answers every 08xx network management
// request locally, and approves every 0100 it receives with a 0110
// echoing STAN and RRN and a fixed response code. It exists to give
// the switch something to forward financial requests to in manual and
// scripted testing, without standing up a real issuer host.
package main

import (
	"flag"
	"log"
	"net"
	"time"

	"npsb-switch/internal/framer"
	"npsb-switch/internal/iso8583"
)

func main() {
	listen := flag.String("listen", ":5001", "listen addr, to be added to the switch's ISSUERS list")
	responseCode := flag.String("response-code", "00", "DE39 response code to approve every 0100 with")
	flag.Parse()

	ln, err := net.Listen("tcp", *listen)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	log.Printf("issuersim listening on %s", *listen)
	for {
		c, err := ln.Accept()
		if err != nil {
			log.Printf("accept: %v", err)
			continue
		}
		go handle(c, *responseCode)
	}
}

func handle(conn net.Conn, responseCode string) {
	defer conn.Close()
	log.Printf("switch %s connected", conn.RemoteAddr())

	f := framer.New()
	buf := make([]byte, 4096)
	for {
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		n, err := conn.Read(buf)
		if err != nil {
			log.Printf("read: %v", err)
			return
		}
		f.Feed(buf[:n])
		for {
			payload, ok := f.Next()
			if !ok {
				break
			}
			if err := respond(conn, payload, responseCode); err != nil {
				log.Printf("respond: %v", err)
			}
		}
	}
}

func respond(conn net.Conn, payload []byte, responseCode string) error {
	req, err := iso8583.Unpack(payload, iso8583.DefaultMode)
	if err != nil {
		return err
	}
	log.Printf("RX %s fields=%v", req.MTI, req.Fields)

	var reply *iso8583.Message
	switch {
	case iso8583.IsNetworkManagement(req.MTI):
		reply, err = iso8583.BuildNetworkManagementReply(req)
		if err != nil {
			return err
		}
	case req.MTI == "0100":
		reply = iso8583.New("0110")
		if stan, ok := req.GetString(11); ok {
			_ = reply.Set(11, stan)
		}
		if rrn, ok := req.GetString(37); ok {
			_ = reply.Set(37, rrn)
		}
		_ = reply.Set(39, responseCode)
	default:
		log.Printf("issuersim: no canned reply for MTI %s, ignoring", req.MTI)
		return nil
	}

	body, err := reply.Pack(iso8583.DefaultMode)
	if err != nil {
		return err
	}
	wire, err := framer.Frame(body)
	if err != nil {
		return err
	}
	_, err = conn.Write(wire)
	return err
}
