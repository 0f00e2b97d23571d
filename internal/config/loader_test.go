package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gopkg.in/yaml.v3"

	"nodebbs/internal/config"
)

var _ = Describe("Load", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		Expect(os.WriteFile(path, []byte(body), 0o644)).To(Succeed())
		return path
	}

	It("fills in telnet engine defaults", func() {
		cfg, err := config.Load(write("config.yml", "general:\n  boardName: test\n"))
		Expect(err).NotTo(HaveOccurred())

		telnet := cfg.Listeners.Telnet
		Expect(cfg.MaxNodes).To(Equal(10))
		Expect(telnet.Port).To(Equal(2323))
		Expect(telnet.BinaryMode).To(BeTrue())
		Expect(telnet.ReadBufferSize).To(Equal(4096))
		Expect(telnet.ScreenPositionTimeout.Std()).To(Equal(2 * time.Second))
		Expect(telnet.NegotiationTimeout.Std()).To(Equal(2 * time.Second))
	})

	It("lets the file override the defaults", func() {
		cfg, err := config.Load(write("config.yml", `
listeners:
  telnet:
    port: 23
    binaryMode: false
    screenPositionTimeout: 750ms
    negotiationTimeout: 1500
`))
		Expect(err).NotTo(HaveOccurred())

		telnet := cfg.Listeners.Telnet
		Expect(telnet.Port).To(Equal(23))
		Expect(telnet.BinaryMode).To(BeFalse())
		Expect(telnet.ScreenPositionTimeout.Std()).To(Equal(750 * time.Millisecond))
		Expect(telnet.NegotiationTimeout.Std()).To(Equal(1500 * time.Millisecond))
	})

	It("applies includes before the including file", func() {
		write("views.yml", `
maxNodes: 4
views:
  main:
    art: main
    next: menu
  menu:
    next:
      view: main
      delay: 250
`)
		cfg, err := config.Load(write("config.yml", "include:\n  - views.yml\nmaxNodes: 8\n"))
		Expect(err).NotTo(HaveOccurred())

		Expect(cfg.LoadedFiles).To(HaveLen(2))
		Expect(cfg.MaxNodes).To(Equal(8))
		Expect(cfg.Views).To(HaveKey("main"))
		Expect(cfg.Views["main"].Next.View).To(Equal("menu"))
		Expect(cfg.Views["menu"].Next.Delay.Std()).To(Equal(250 * time.Millisecond))
	})

	It("loads a file only once when includes loop", func() {
		write("a.yml", "include:\n  - b.yml\n")
		write("b.yml", "include:\n  - a.yml\ndebug: true\n")

		cfg, err := config.Load(filepath.Join(dir, "a.yml"))
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.LoadedFiles).To(HaveLen(2))
		Expect(cfg.Debug).To(BeTrue())
	})

	It("expands environment variables", func() {
		GinkgoT().Setenv("NODEBBS_TEST_BOARD", "Envy")
		cfg, err := config.Load(write("config.yml", "general:\n  boardName: ${NODEBBS_TEST_BOARD}\n"))
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.General.BoardName).To(Equal("Envy"))
	})

	It("reports a missing include", func() {
		_, err := config.Load(write("config.yml", "include:\n  - nope.yml\n"))
		Expect(err).To(MatchError(ContainSubstring("nope.yml")))
	})
})

var _ = Describe("Duration", func() {
	decode := func(src string) (config.Duration, error) {
		var out struct {
			D config.Duration `yaml:"d"`
		}
		err := yaml.Unmarshal([]byte(src), &out)
		return out.D, err
	}

	It("reads bare numbers as milliseconds", func() {
		d, err := decode("d: 250")
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Std()).To(Equal(250 * time.Millisecond))
	})

	It("reads Go duration strings", func() {
		d, err := decode("d: 3s")
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Std()).To(Equal(3 * time.Second))
	})

	It("rejects garbage", func() {
		_, err := decode("d: soon")
		Expect(err).To(HaveOccurred())
	})

	It("rejects non-scalars", func() {
		_, err := decode("d: [1, 2]")
		Expect(err).To(MatchError(ContainSubstring("scalar")))
	})
})
