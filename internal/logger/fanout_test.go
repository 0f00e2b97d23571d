package logger_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"nodebbs/internal/config"
	"nodebbs/internal/logger"
)

var _ = Describe("Fanout", func() {
	It("sends each record to every sink that wants its level", func() {
		var debug, warn bytes.Buffer
		log := slog.New(logger.NewFanout(
			slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
			slog.NewTextHandler(&warn, &slog.HandlerOptions{Level: slog.LevelWarn}),
		)).With("node", 3)

		log.Debug("Telnet command [IN]", "cmd", "DO")
		log.Warn("caller turned away")

		Expect(debug.String()).To(ContainSubstring("Telnet command [IN]"))
		Expect(debug.String()).To(ContainSubstring("node=3"))
		Expect(warn.String()).NotTo(ContainSubstring("Telnet command"))
		Expect(warn.String()).To(ContainSubstring("caller turned away"))
	})
})

var _ = Describe("Setup", func() {
	It("writes file sinks at their configured level", func() {
		path := filepath.Join(GinkgoT().TempDir(), "logs", "nodebbs.log")
		log := logger.Setup([]config.LoggerConfig{{File: path, Level: "warn", HideTime: true}}, false)

		log.Info("hidden")
		log.Warn("shown")

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring("shown"))
		Expect(string(data)).NotTo(ContainSubstring("hidden"))
	})
})
