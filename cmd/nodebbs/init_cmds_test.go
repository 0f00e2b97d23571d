package main

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gopkg.in/yaml.v3"

	"nodebbs/internal/config"
)

var _ = Describe("init", func() {
	It("sanitizes board names into file names", func() {
		Expect(sanitizeFilename("My Cool BBS!")).To(Equal("my_cool_bbs"))
	})

	It("renders a config the loader can read", func() {
		out, err := renderConfig("retro", ConfigTemplateData{
			BoardName:  "Retro",
			TelnetPort: 23,
			BinaryMode: false,
		})
		Expect(err).NotTo(HaveOccurred())

		var cfg config.Config
		Expect(yaml.Unmarshal(out, &cfg)).To(Succeed())
		Expect(cfg.General.BoardName).To(Equal("Retro"))
		Expect(cfg.Paths.Data).To(Equal("retro/data"))
		Expect(cfg.Listeners.Telnet.Port).To(Equal(23))
		Expect(cfg.Listeners.Telnet.BinaryMode).To(BeFalse())
		Expect(cfg.Listeners.Telnet.ScreenPositionTimeout.Std().String()).To(Equal("2s"))
	})
})
