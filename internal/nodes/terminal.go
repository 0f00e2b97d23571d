package nodes

import "strings"

// BBS terminals that expect CP437 even when they report an xterm-ish name.
var codePageTerminals = []string{"syncterm", "netrunner", "ansi-bbs", "pcansi", "qodem"}

// IsUTF8Terminal guesses the character set from a terminal type. Unknown
// types default to CP437 over telnet, where classic BBS clients live, and to
// UTF-8 elsewhere.
func IsUTF8Terminal(ttype string, telnet bool) bool {
	t := strings.ToLower(ttype)
	for _, legacy := range codePageTerminals {
		if strings.Contains(t, legacy) {
			return false
		}
	}
	if strings.Contains(t, "utf") || strings.Contains(t, "xterm") {
		return true
	}
	return !telnet
}
