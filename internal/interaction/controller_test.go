package interaction_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/orbits/internal/dynamo"
	"github.com/san-kum/orbits/internal/interaction"
	"github.com/san-kum/orbits/internal/store"
)

func vec(x, y float64) dynamo.Vec2 { return dynamo.Vec2{X: x, Y: y} }

var _ = Describe("Controller", func() {
	var (
		st   *store.Store
		ctl  *interaction.Controller
		t0   time.Time
		node = func(id dynamo.NodeID) dynamo.Node {
			n, ok := st.Node(id)
			Expect(ok).To(BeTrue())
			return n
		}
	)

	BeforeEach(func() {
		var err error
		st, err = store.New([]dynamo.Node{
			{ID: 1, Pos: vec(300, 300), Vel: vec(2, -1), Mass: 1, Label: "A"},
			{ID: 2, Pos: vec(500, 300), Vel: vec(0.5, 0.5), Mass: 2, Label: "B"},
			{ID: 3, Pos: vec(505, 300), Mass: 1, Label: "C"},
		}, dynamo.Bounds{Width: 900, Height: 600})
		Expect(err).NotTo(HaveOccurred())

		ctl = interaction.New(st, interaction.DefaultOptions(), nil)
		t0 = time.Unix(1700000000, 0)
	})

	It("starts free", func() {
		Expect(ctl.State()).To(Equal(interaction.Free{}))
		_, held := ctl.CapturedID()
		Expect(held).To(BeFalse())
	})

	Describe("PointerDown", func() {
		It("captures the node and zeroes its velocity", func() {
			Expect(ctl.PointerDown(1, vec(310, 290), t0)).To(BeTrue())

			state, ok := ctl.State().(interaction.Captured)
			Expect(ok).To(BeTrue())
			Expect(state.ID).To(Equal(dynamo.NodeID(1)))
			Expect(state.Offset).To(Equal(vec(-10, 10)))
			Expect(state.HasSample).To(BeFalse())
			Expect(node(1).Vel).To(Equal(dynamo.Vec2{}))
		})

		It("ignores unknown nodes", func() {
			Expect(ctl.PointerDown(42, vec(0, 0), t0)).To(BeFalse())
			Expect(ctl.State()).To(Equal(interaction.Free{}))
		})

		It("keeps capture exclusive", func() {
			Expect(ctl.PointerDown(1, vec(300, 300), t0)).To(BeTrue())
			Expect(ctl.PointerDown(2, vec(500, 300), t0)).To(BeFalse())

			id, _ := ctl.CapturedID()
			Expect(id).To(Equal(dynamo.NodeID(1)))
			Expect(node(2).Vel).To(Equal(vec(0.5, 0.5)))
		})
	})

	Describe("PointerMove", func() {
		It("is a no-op while free", func() {
			ctl.PointerMove(vec(100, 100), t0)
			Expect(node(1).Pos).To(Equal(vec(300, 300)))
		})

		It("moves the node with the grab offset preserved", func() {
			ctl.PointerDown(1, vec(310, 290), t0)
			ctl.PointerMove(vec(410, 390), t0.Add(16*time.Millisecond))

			Expect(node(1).Pos).To(Equal(vec(400, 400)))
			Expect(node(1).Vel).To(Equal(dynamo.Vec2{}))

			state := ctl.State().(interaction.Captured)
			Expect(state.HasSample).To(BeTrue())
			Expect(state.LastPos).To(Equal(vec(400, 400)))
		})

		It("clamps the pointer to the padded viewport", func() {
			ctl.PointerDown(1, vec(300, 300), t0)
			ctl.PointerMove(vec(-500, 5000), t0.Add(time.Millisecond))

			Expect(node(1).Pos).To(Equal(vec(60, 540)))
		})
	})

	Describe("PointerUp", func() {
		drag := func(id dynamo.NodeID, from, to dynamo.Vec2, dt time.Duration) dynamo.Vec2 {
			ctl.PointerDown(id, from, t0)
			ctl.PointerMove(from, t0)
			return ctl.PointerUp(to, t0.Add(dt))
		}

		It("flings by displacement over time scaled by mass", func() {
			v := drag(1, vec(300, 300), vec(400, 300), 500*time.Millisecond)

			Expect(v.X).To(BeNumerically("~", 4, 1e-9))
			Expect(v.Y).To(BeNumerically("~", 0, 1e-12))
			Expect(node(1).Vel).To(Equal(v))
			Expect(ctl.State()).To(Equal(interaction.Free{}))
		})

		It("halves the fling when mass doubles", func() {
			light := drag(1, vec(300, 300), vec(400, 300), 500*time.Millisecond)
			heavy := drag(2, vec(500, 300), vec(600, 300), 500*time.Millisecond)

			Expect(heavy.X).To(BeNumerically("~", light.X/2, 1e-9))
		})

		It("does not reposition the node on release", func() {
			drag(1, vec(300, 300), vec(400, 300), 500*time.Millisecond)
			Expect(node(1).Pos).To(Equal(vec(300, 300)))
		})

		It("releases at rest without a drag sample", func() {
			ctl.PointerDown(1, vec(300, 300), t0)
			v := ctl.PointerUp(vec(400, 300), t0.Add(time.Second))

			Expect(v).To(Equal(dynamo.Vec2{}))
			Expect(node(1).Vel).To(Equal(dynamo.Vec2{}))
		})

		It("releases at rest when no time has passed", func() {
			v := drag(1, vec(300, 300), vec(400, 300), 0)
			Expect(v).To(Equal(dynamo.Vec2{}))
		})

		It("releases at rest when the clock runs backwards", func() {
			v := drag(1, vec(300, 300), vec(400, 300), -time.Second)
			Expect(v).To(Equal(dynamo.Vec2{}))
		})

		It("is a no-op while free", func() {
			Expect(ctl.PointerUp(vec(1, 1), t0)).To(Equal(dynamo.Vec2{}))
			Expect(node(1).Vel).To(Equal(vec(2, -1)))
		})
	})

	Describe("Cancel", func() {
		It("frees the node without imparting velocity", func() {
			ctl.PointerDown(1, vec(300, 300), t0)
			ctl.PointerMove(vec(350, 300), t0.Add(10*time.Millisecond))
			ctl.Cancel()

			Expect(ctl.State()).To(Equal(interaction.Free{}))
			Expect(node(1).Vel).To(Equal(dynamo.Vec2{}))
			Expect(ctl.PointerUp(vec(400, 300), t0.Add(time.Second))).To(Equal(dynamo.Vec2{}))
		})
	})

	Describe("HitTest", func() {
		radius := func(m float64) float64 { return 10 + 12*m }

		It("prefers the topmost overlapping node", func() {
			id, ok := ctl.HitTest(vec(503, 300), radius)
			Expect(ok).To(BeTrue())
			Expect(id).To(Equal(dynamo.NodeID(3)))
		})

		It("misses empty space", func() {
			_, ok := ctl.HitTest(vec(100, 100), radius)
			Expect(ok).To(BeFalse())
		})
	})
})
