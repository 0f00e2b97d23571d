package telnet_test

import (
	"log/slog"
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gbytes"

	"nodebbs/internal/network/telnet"
)

// These connections have a peer that does not read what the server sends.
var _ = Describe("Connection with a silent peer", func() {
	var (
		serverConn net.Conn
		clientConn net.Conn
		connection *telnet.Connection
		logs       *gbytes.Buffer
	)

	BeforeEach(func() {
		serverConn, clientConn = net.Pipe()
		logs = gbytes.NewBuffer()
		debug := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

		connection = telnet.NewConnection(serverConn, debug, telnet.Options{Telnet: true})
		Expect(connection.Open()).To(Succeed())
	})

	AfterEach(func() {
		clientConn.Close()
		connection.Close()
	})

	closeAsync := func(stop func() error) chan error {
		done := make(chan error, 1)
		go func() { done <- stop() }()
		return done
	}

	It("closes while the reader is stuck writing a negotiation reply", func() {
		_, err := clientConn.Write([]byte{telnet.IAC, telnet.DO, telnet.Echo})
		Expect(err).NotTo(HaveOccurred())

		done := closeAsync(connection.Close)
		Eventually(done, 2*time.Second).Should(Receive(Succeed()))
		Expect(connection.Connected()).To(BeFalse())
	})

	It("suspends while the reader is stuck and works again after Open", func() {
		_, err := clientConn.Write([]byte{telnet.IAC, telnet.AYT})
		Expect(err).NotTo(HaveOccurred())

		done := closeAsync(connection.Suspend)
		Eventually(done, 2*time.Second).Should(Receive(Succeed()))
		Expect(connection.Connected()).To(BeTrue())

		Expect(connection.Open()).To(Succeed())
		go clientConn.Write([]byte("ok"))
		Eventually(connection.Buffered).Should(Equal(2))

		// The write deadline used to stop the reader must not linger.
		go func() {
			defer GinkgoRecover()
			buf := make([]byte, 8)
			clientConn.Read(buf)
		}()
		Expect(connection.Put('x')).To(Succeed())
	})

	It("logs an AYT reply that cannot be delivered", func() {
		_, err := clientConn.Write([]byte{telnet.IAC, telnet.AYT})
		Expect(err).NotTo(HaveOccurred())

		clientConn.Close()
		Eventually(logs).Should(gbytes.Say("Telnet AYT reply failed"))
	})

	It("keeps reading after someone else leaves a deadline in the past", func() {
		Expect(serverConn.SetReadDeadline(time.Now())).To(Succeed())

		go clientConn.Write([]byte("abc"))
		Eventually(connection.Buffered).Should(Equal(3))
		Expect(connection.Connected()).To(BeTrue())
	})
})
