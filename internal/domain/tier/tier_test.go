package tier_test

import (
	"math"
	"testing"

	"github.com/okian/comptrack/internal/domain/tier"
	. "github.com/smartystreets/goconvey/convey"
)

func TestForPlacement(t *testing.T) {
	Convey("Given the placement tier policy", t, func() {
		Convey("When the placement is below every threshold", func() {
			So(tier.ForPlacement(3.50), ShouldEqual, tier.PlacementG)
			So(tier.ForPlacement(4.09), ShouldEqual, tier.PlacementG)
		})

		Convey("When the placement sits inside each band", func() {
			So(tier.ForPlacement(4.15), ShouldEqual, tier.PlacementA)
			So(tier.ForPlacement(4.30), ShouldEqual, tier.PlacementB)
			So(tier.ForPlacement(4.50), ShouldEqual, tier.PlacementC)
			So(tier.ForPlacement(4.80), ShouldEqual, tier.PlacementF)
		})

		Convey("When the placement is exactly on a boundary it falls into the worse tier", func() {
			So(tier.ForPlacement(4.10), ShouldEqual, tier.PlacementA)
			So(tier.ForPlacement(4.25), ShouldEqual, tier.PlacementB)
			So(tier.ForPlacement(4.40), ShouldEqual, tier.PlacementC)
			So(tier.ForPlacement(4.60), ShouldEqual, tier.PlacementF)
		})

		Convey("When the placement is extreme the function stays total", func() {
			So(tier.ForPlacement(math.Inf(-1)), ShouldEqual, tier.PlacementG)
			So(tier.ForPlacement(math.Inf(1)), ShouldEqual, tier.PlacementF)
			So(tier.ForPlacement(0), ShouldEqual, tier.PlacementG)
			So(tier.ForPlacement(9999), ShouldEqual, tier.PlacementF)
		})

		Convey("Then every sampled input maps to exactly one known tier", func() {
			known := map[tier.PlacementTier]bool{}
			for _, pt := range tier.PlacementTiers() {
				known[pt] = true
			}
			for p := 3.0; p <= 6.0; p += 0.01 {
				So(known[tier.ForPlacement(p)], ShouldBeTrue)
			}
		})
	})
}

func TestForDelta(t *testing.T) {
	Convey("Given the delta tier policy", t, func() {
		Convey("When the delta is a clear improvement", func() {
			So(tier.ForDelta(-0.19), ShouldEqual, tier.DeltaS)
			So(tier.ForDelta(-0.50), ShouldEqual, tier.DeltaS)
		})

		Convey("When the delta is a mild improvement", func() {
			So(tier.ForDelta(-0.05), ShouldEqual, tier.DeltaA)
		})

		Convey("When the delta is roughly neutral", func() {
			So(tier.ForDelta(0.05), ShouldEqual, tier.DeltaB)
		})

		Convey("When the delta is a regression", func() {
			So(tier.ForDelta(0.10), ShouldEqual, tier.DeltaC)
			So(tier.ForDelta(1.2), ShouldEqual, tier.DeltaC)
		})

		Convey("When the delta is exactly on a boundary it falls into the worse tier", func() {
			So(tier.ForDelta(-0.15), ShouldEqual, tier.DeltaA)
			So(tier.ForDelta(0), ShouldEqual, tier.DeltaB)
		})

		Convey("Then labels carry the -Tier suffix", func() {
			So(tier.DeltaS.Label(), ShouldEqual, "S-Tier")
			So(tier.ForDelta(-0.19).Label(), ShouldEqual, "S-Tier")
			So(tier.ForDelta(0.3).Label(), ShouldEqual, "C-Tier")
		})
	})
}
