// Package gateway exposes the matching engine over a line-oriented TCP
// protocol. Each line is `<SIDE> <PRICE> <QUANTITY>`: SIDE is
// case-insensitive BUY/SELL (anything other than BUY is treated as SELL),
// PRICE is a decimal literal and QUANTITY an integer. A parseable line is
// submitted to the engine and acknowledged with `OK: <SIDE> <QUANTITY> @
// <PRICE>`; a numeric parse failure gets an `ERR:` reply; a line with a token
// count other than 3 is ignored without a reply. The connection stays open
// across errors.
package gateway

import (
	"bufio"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/quagmt/udecimal"
	"github.com/rs/xid"

	match "github.com/fernwood/trading-engine"
)

// Submitter is the producer-side surface of the matching engine used by the
// gateway.
type Submitter interface {
	SubmitOrder(id string, side match.Side, price udecimal.Decimal, quantity int64) (*match.OrderSlot, error)
}

// Server accepts TCP connections and feeds parsed orders to the engine.
//
// The engine's ring is single-producer: submissions from all connections are
// serialized through one mutex, so the gateway counts as the one producer
// context.
type Server struct {
	addr     string
	engine   Submitter
	listener net.Listener
	closed   atomic.Bool

	submitMu sync.Mutex
	connWG   sync.WaitGroup
}

// NewServer creates a gateway server listening on addr once Serve is called.
func NewServer(addr string, engine Submitter) *Server {
	return &Server{
		addr:   addr,
		engine: engine,
	}
}

// Listen binds the listener. Split from Serve so callers can learn the bound
// address before accepting (tests listen on port 0).
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = ln
	return nil
}

// Addr returns the bound listener address. Only valid after Listen.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve accepts connections until Close is called. Each connection is handled
// on its own goroutine.
func (s *Server) Serve() error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.closed.Load() {
				return nil
			}
			return err
		}

		s.connWG.Add(1)
		go s.handleConn(conn)
	}
}

// Close stops accepting connections and waits for in-flight handlers.
func (s *Server) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	s.connWG.Wait()
	return err
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.connWG.Done()
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		reply := s.processLine(line)
		if reply == "" {
			// Malformed shape gets no response.
			continue
		}

		if _, err := conn.Write([]byte(reply)); err != nil {
			return
		}
	}
}

// processLine parses one command, submits the order, and returns the reply
// line. An empty return means no reply is sent.
func (s *Server) processLine(line string) string {
	parts := strings.Fields(line)
	if len(parts) != 3 {
		return ""
	}

	side := match.Sell
	if strings.EqualFold(parts[0], "BUY") {
		side = match.Buy
	}

	price, err := udecimal.Parse(parts[1])
	if err != nil {
		return "ERR: " + err.Error() + "\n"
	}

	quantity, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return "ERR: " + err.Error() + "\n"
	}
	if quantity <= 0 {
		return "ERR: " + match.ErrInvalidParam.Error() + "\n"
	}

	s.submitMu.Lock()
	_, err = s.engine.SubmitOrder(xid.New().String(), side, price, quantity)
	s.submitMu.Unlock()
	if err != nil {
		return "ERR: " + err.Error() + "\n"
	}

	return fmt.Sprintf("OK: %s %d @ %s\n", side, quantity, price)
}
