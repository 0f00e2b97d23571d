package telnet

// CommandHandler receives the protocol commands the Decoder recognizes.
// Calls happen inline, in stream order, from whichever goroutine runs Decode.
type CommandHandler interface {
	HandleCommand(cmd, option byte)
	HandleSubNegotiation(option byte, data []byte)
}

type decoderState int

const (
	stateNormal decoderState = iota
	// The previous byte was a 0xFF that has already been emitted as data in
	// binary mode; the next byte decides whether it stays.
	statePendingSecondOctet
	stateCommand
	stateOption
	stateSubOption
	stateSubData
	stateSubIAC
)

func (s decoderState) String() string {
	switch s {
	case stateNormal:
		return "Normal"
	case statePendingSecondOctet:
		return "PendingSecondOctet"
	case stateCommand:
		return "Command"
	case stateOption:
		return "Option"
	case stateSubOption:
		return "SubOption"
	case stateSubData:
		return "SubData"
	case stateSubIAC:
		return "SubIAC"
	default:
		return "Unknown"
	}
}

// Sub-negotiation payloads beyond this are truncated.
const maxSubNegotiation = 512

// Decoder turns raw socket bytes into application bytes. It keeps its state
// between calls, so a sequence may be split across reads at any point.
//
// In binary mode a 0xFF is emitted as soon as it is seen. A second 0xFF right
// after it is absorbed, since the pair stands for the one byte already
// emitted. A command byte after it means the 0xFF opened a command, and the
// emitted byte is withdrawn.
//
// Outside binary mode an IAC is held back until the byte after it is known.
type Decoder struct {
	state   decoderState
	telnet  bool
	binary  bool
	carried bool // the pending 0xFF was emitted by an earlier Decode call
	cmd     byte
	sbOpt   byte
	sbData  []byte
	handler CommandHandler
}

// NewDecoder returns a Decoder in the Normal state. With telnet false every
// byte is passed through untouched. handler may be nil.
func NewDecoder(telnet bool, handler CommandHandler) *Decoder {
	return &Decoder{
		telnet:  telnet,
		handler: handler,
	}
}

// SetBinary switches between binary (optimistic) and strict IAC handling.
func (d *Decoder) SetBinary(on bool) {
	if d.binary == on {
		return
	}
	d.binary = on
	if !on && d.state == statePendingSecondOctet {
		d.state = stateNormal
		d.carried = false
	}
}

// Binary reports whether the Decoder is in binary mode.
func (d *Decoder) Binary() bool {
	return d.binary
}

// Pending reports whether the last byte seen was an unresolved 0xFF.
func (d *Decoder) Pending() bool {
	return d.state == statePendingSecondOctet || d.state == stateCommand
}

// Decode appends the application bytes found in src to dst and returns the
// extended slice. retract is the number of bytes, emitted by earlier calls,
// that turned out to be the start of a command and must be taken back by the
// caller. It is 0 or 1.
func (d *Decoder) Decode(dst, src []byte) (out []byte, retract int) {
	if !d.telnet {
		return append(dst, src...), 0
	}

	for _, b := range src {
		switch d.state {
		case stateNormal:
			dst = d.normal(dst, b)

		case statePendingSecondOctet:
			d.state = stateNormal
			if b == IAC {
				d.carried = false
				continue
			}
			if isCommand(b) {
				if d.carried {
					retract++
				} else {
					dst = dst[:len(dst)-1]
				}
				d.carried = false
				d.command(b)
				continue
			}
			d.carried = false
			dst = d.normal(dst, b)

		case stateCommand:
			dst = d.afterIAC(dst, b)

		case stateOption:
			d.state = stateNormal
			d.dispatch(d.cmd, b)

		case stateSubOption:
			d.sbOpt = b
			d.sbData = d.sbData[:0]
			d.state = stateSubData

		case stateSubData:
			if b == IAC {
				d.state = stateSubIAC
			} else if len(d.sbData) < maxSubNegotiation {
				d.sbData = append(d.sbData, b)
			}

		case stateSubIAC:
			switch b {
			case SE:
				d.state = stateNormal
				if d.handler != nil {
					data := make([]byte, len(d.sbData))
					copy(data, d.sbData)
					d.handler.HandleSubNegotiation(d.sbOpt, data)
				}
			case IAC:
				if len(d.sbData) < maxSubNegotiation {
					d.sbData = append(d.sbData, IAC)
				}
				d.state = stateSubData
			default:
				// Unterminated sub-negotiation; drop it and read b as a
				// fresh command.
				dst = d.afterIAC(dst, b)
			}
		}
	}

	if d.state == statePendingSecondOctet {
		d.carried = true
	}
	return dst, retract
}

func (d *Decoder) normal(dst []byte, b byte) []byte {
	if b != IAC {
		return append(dst, b)
	}
	if d.binary {
		d.state = statePendingSecondOctet
		d.carried = false
		return append(dst, b)
	}
	d.state = stateCommand
	return dst
}

// afterIAC handles the byte following a held-back IAC.
func (d *Decoder) afterIAC(dst []byte, b byte) []byte {
	switch {
	case b == IAC:
		d.state = stateNormal
		return append(dst, IAC)
	case isCommand(b):
		d.command(b)
		return dst
	default:
		// Not a command; the IAC is dropped and b is data.
		d.state = stateNormal
		return append(dst, b)
	}
}

func (d *Decoder) command(b byte) {
	switch {
	case isNegotiation(b):
		d.cmd = b
		d.state = stateOption
	case b == SB:
		d.state = stateSubOption
	default:
		d.state = stateNormal
		d.dispatch(b, 0)
	}
}

func (d *Decoder) dispatch(cmd, option byte) {
	if d.handler != nil {
		d.handler.HandleCommand(cmd, option)
	}
}
