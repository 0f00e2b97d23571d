package modules_test

import (
	"net"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gbytes"

	"nodebbs/internal/app"
	"nodebbs/internal/modules"
	"nodebbs/internal/nodes"
)

type fakeConn struct {
	sent   []string
	closed bool
}

func (c *fakeConn) Send(msg string) error {
	c.sent = append(c.sent, msg)
	return nil
}

func (c *fakeConn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 4000}
}

func (c *fakeConn) GetTerminalInfo() nodes.TerminalInfo { return nodes.TerminalInfo{} }
func (c *fakeConn) IsUTF8() bool                        { return false }

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

var _ = Describe("DebugModule", func() {
	var (
		debug         *modules.DebugModule
		out           *gbytes.Buffer
		sysop, caller *nodes.Node
		sysopConn     *fakeConn
		callerConn    *fakeConn
		previousNodes *nodes.Manager
	)

	BeforeEach(func() {
		previousNodes = app.Nodes
		app.Nodes = nodes.NewManager(3)
		DeferCleanup(func() { app.Nodes = previousNodes })

		debug = &modules.DebugModule{}
		out = gbytes.NewBuffer()
		sysopConn = &fakeConn{}
		callerConn = &fakeConn{}

		var err error
		sysop, err = app.Nodes.Attach(sysopConn)
		Expect(err).NotTo(HaveOccurred())
		caller, err = app.Nodes.Attach(callerConn)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("kick", func() {
		It("disconnects another node", func() {
			handled, err := debug.HandleCommand(out, sysop, "kick", "2")
			Expect(err).NotTo(HaveOccurred())
			Expect(handled).To(BeTrue())
			Expect(callerConn.closed).To(BeTrue())
			Expect(sysopConn.closed).To(BeFalse())
			Expect(out).To(gbytes.Say("Node 2 disconnected."))
		})

		It("refuses to kick the caller's own node", func() {
			_, _ = debug.HandleCommand(out, sysop, "kick", "1")
			Expect(sysopConn.closed).To(BeFalse())
			Expect(out).To(gbytes.Say("Use exit"))
		})

		It("reports an empty slot", func() {
			_, _ = debug.HandleCommand(out, sysop, "kick", "3")
			Expect(out).To(gbytes.Say("Node 3: node not connected"))
		})

		It("shows usage for a bad node number", func() {
			_, _ = debug.HandleCommand(out, sysop, "kick", "two")
			Expect(callerConn.closed).To(BeFalse())
			Expect(out).To(gbytes.Say("Usage: kick <node>"))
		})
	})

	It("yells to everyone but the sender", func() {
		_, _ = debug.HandleCommand(out, caller, "yell", "hello")
		Expect(sysopConn.sent).To(ConsistOf(ContainSubstring("[Node 2 yells]: hello")))
		Expect(callerConn.sent).To(BeEmpty())
	})

	It("lists the active nodes", func() {
		_, _ = debug.HandleCommand(out, sysop, "nodes", "")
		Expect(out).To(gbytes.Say(`1  guest\s+127.0.0.1:4000`))
		Expect(out).To(gbytes.Say(`2  guest`))
	})

	It("leaves unknown commands to other modules", func() {
		handled, err := debug.HandleCommand(out, sysop, "frobnicate", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(handled).To(BeFalse())
	})
})
