package views_test

import (
	"bytes"
	"io"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"nodebbs/internal/config"
	"nodebbs/internal/modules"
	"nodebbs/internal/nodes"
	"nodebbs/internal/views"
)

type echoModule struct{}

func (echoModule) Name() string { return "echo" }

func (echoModule) HandleCommand(w io.Writer, node *nodes.Node, cmd string, args string) (bool, error) {
	if cmd != "echo" {
		return false, nil
	}
	io.WriteString(w, args)
	return true, nil
}

var _ = Describe("Manager", func() {
	var (
		vm   *views.Manager
		node *nodes.Node
		out  *bytes.Buffer
	)

	BeforeEach(func() {
		registry := modules.NewRegistry()
		registry.Register(echoModule{})

		vm = views.NewManager(map[string]config.View{
			"welcome": {Next: &config.NextView{View: "main"}},
			"splash":  {Next: &config.NextView{View: "main", Delay: config.Duration(time.Millisecond)}},
			"main": {
				Module:  "echo",
				Actions: map[string]string{"g": "goodbye"},
			},
			"goodbye": {Actions: map[string]string{"b": "back"}},
		}, registry, "welcome")

		node = &nodes.Node{ID: 1}
		out = &bytes.Buffer{}
	})

	It("moves on from a press-any-key view", func() {
		handled, err := vm.HandleInput(out, "x", node)
		Expect(err).NotTo(HaveOccurred())
		Expect(handled).To(BeTrue())
		Expect(vm.Current()).To(Equal("main"))
		Expect(vm.Depth()).To(Equal(1))
	})

	It("follows actions and goes back", func() {
		vm.Push("main")
		Expect(vm.HandleInput(out, "g", node)).To(BeTrue())
		Expect(vm.Current()).To(Equal("goodbye"))

		Expect(vm.HandleInput(out, "b", node)).To(BeTrue())
		Expect(vm.Current()).To(Equal("main"))
	})

	It("lets the view's module handle commands first", func() {
		vm.Push("main")
		Expect(vm.HandleInput(out, "echo  hi there ", node)).To(BeTrue())
		Expect(out.String()).To(Equal("hi there"))
		Expect(vm.Current()).To(Equal("main"))
	})

	It("reports unhandled input", func() {
		vm.Push("main")
		Expect(vm.HandleInput(out, "zzz", node)).To(BeFalse())
	})

	It("advances timed views on its own", func() {
		vm.Push("splash")
		Expect(vm.RenderCurrent(out, node)).To(Succeed())
		Expect(vm.Current()).To(Equal("main"))
	})

	It("fails on an unknown view", func() {
		vm.Push("missing")
		Expect(vm.RenderCurrent(out, node)).To(MatchError(ContainSubstring("missing")))
		_, err := vm.HandleInput(out, "x", node)
		Expect(err).To(HaveOccurred())
	})

	It("stays put when popping an empty stack", func() {
		Expect(vm.Pop()).To(BeEmpty())
		Expect(vm.Current()).To(Equal("welcome"))
	})
})
