package serial

import (
	"io"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/interrupt"
)

const (
	SB uint16 = 0xFF01
	SC uint16 = 0xFF02
)

// Connection is the other end of the link cable. Transfer is called once per
// byte shifted out with the internal clock and returns the byte shifted in.
type Connection interface {
	Transfer(out byte) byte
}

// WriterConnection forwards every transferred byte to an io.Writer. Nothing
// is connected on the other side, so the line reads back 0xFF.
type WriterConnection struct {
	W io.Writer
}

func (c WriterConnection) Transfer(out byte) byte {
	if c.W != nil {
		_, _ = c.W.Write([]byte{out})
	}
	return 0xFF
}

// Serial holds SB/SC. Transfers complete immediately when started.
type Serial struct {
	sb, sc byte
	conn   Connection
	irq    *interrupt.Controller
}

func New(irq *interrupt.Controller) *Serial {
	return &Serial{irq: irq}
}

// SetConnection attaches the link partner; nil disconnects.
func (s *Serial) SetConnection(c Connection) { s.conn = c }

func (s *Serial) Read(addr uint16) byte {
	switch addr {
	case SB:
		return s.sb
	case SC:
		return 0x7E | s.sc
	}
	return 0xFF
}

func (s *Serial) Write(addr uint16, v byte) {
	switch addr {
	case SB:
		s.sb = v
	case SC:
		s.sc = v & 0x81
		if s.sc == 0x81 {
			s.transfer()
		}
	}
}

func (s *Serial) transfer() {
	in := byte(0xFF)
	if s.conn != nil {
		in = s.conn.Transfer(s.sb)
	}
	s.sb = in
	s.sc &^= 0x80
	if s.irq != nil {
		s.irq.Request(interrupt.Serial)
	}
}
