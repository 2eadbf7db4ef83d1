package stream

import (
	"bufio"
	"context"
	"log"
	"net"
)

// ListenLines accepts TCP connections on addr and queues each received
// line. Senders are served first-come at line granularity; there is no
// further arbitration between them. The returned listener is already
// serving; callers only need it for its address.
func ListenLines(ctx context.Context, addr string, lines *Lines) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	go func() {
		<-ctx.Done()
		log.Print("shutdown; closing line socket")
		ln.Close()
	}()
	go func() {
		for ctx.Err() == nil {
			conn, err := ln.Accept()
			if err != nil {
				log.Printf("failed to accept: %v", err)
				continue
			}
			go handleLines(conn, lines)
		}
	}()
	return ln, nil
}

func handleLines(conn net.Conn, lines *Lines) {
	defer conn.Close()
	log.Printf("accepted connection from %v", conn.RemoteAddr())
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		if !lines.Push(scanner.Text()) {
			log.Printf("line queue full; dropping line from %v", conn.RemoteAddr())
		}
	}
	if err := scanner.Err(); err != nil {
		log.Printf("reading from %v: %v", conn.RemoteAddr(), err)
	}
}
