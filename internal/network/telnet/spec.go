package telnet

import "fmt"

// Wire constants for the Telnet protocol.
//
// RFCs of particular interest:
// - RFC 854  : Telnet Protocol Specification
// - RFC 856  : Telnet Binary Transmission
// - RFC 857  : Telnet Echo Option
// - RFC 858  : Telnet Suppress Go Ahead Option
// - RFC 1073 : Telnet Window Size Option
// - RFC 1079 : Telnet Terminal Speed Option
// - RFC 1091 : Telnet Terminal-Type Option
// - RFC 1143 : The Q Method of Implementing Option Negotiation
// - RFC 1184 : Telnet Linemode Option

const (
	SE   byte = 240 // Sub negotiation End
	NOP  byte = 241 // No Operation
	DM   byte = 242 // Data Mark
	BRK  byte = 243 // Break
	IP   byte = 244 // Interrupt Process
	AO   byte = 245 // Abort Output
	AYT  byte = 246 // Are You There?
	EC   byte = 247 // Erase Character
	EL   byte = 248 // Erase Line
	GA   byte = 249 // Go Ahead
	SB   byte = 250 // Sub negotiation Begin
	WILL byte = 251
	WONT byte = 252
	DO   byte = 253
	DONT byte = 254
	IAC  byte = 255 // Interpret As Command

	// Sub-negotiation verbs
	IS   byte = 0
	SEND byte = 1

	// Options
	TransmitBinary byte = 0  // RFC 856
	Echo           byte = 1  // RFC 857
	Reconnection   byte = 2  // NIC 15391
	SGA            byte = 3  // RFC 858 - Suppress Go Ahead
	TType          byte = 24 // RFC 1091 - Terminal Type
	NAWS           byte = 31 // RFC 1073 - Negotiate About Window Size
	TerminalSpeed  byte = 32 // RFC 1079
	Linemode       byte = 34 // RFC 1184
)

// CommandNames maps Telnet command bytes to their string representation.
var CommandNames = map[byte]string{
	SE:   "SE",
	NOP:  "NOP",
	DM:   "DM",
	BRK:  "BRK",
	IP:   "IP",
	AO:   "AO",
	AYT:  "AYT",
	EC:   "EC",
	EL:   "EL",
	GA:   "GA",
	SB:   "SB",
	WILL: "WILL",
	WONT: "WONT",
	DO:   "DO",
	DONT: "DONT",
	IAC:  "IAC",
}

// OptionNames maps Telnet option bytes to their string representation.
var OptionNames = map[byte]string{
	TransmitBinary: "TransmitBinary",
	Echo:           "Echo",
	Reconnection:   "Reconnection",
	SGA:            "SGA",
	TType:          "TType",
	NAWS:           "NAWS",
	TerminalSpeed:  "TerminalSpeed",
	Linemode:       "Linemode",
}

func commandName(cmd byte) string {
	if name, ok := CommandNames[cmd]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", cmd)
}

func optionName(opt byte) string {
	if name, ok := OptionNames[opt]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", opt)
}

// isNegotiation reports whether cmd takes an option byte.
func isNegotiation(cmd byte) bool {
	return cmd == WILL || cmd == WONT || cmd == DO || cmd == DONT
}

// isCommand reports whether b, following an IAC, starts a command rather than
// completing an escaped data byte.
func isCommand(b byte) bool {
	return b >= SE && b <= DONT
}
