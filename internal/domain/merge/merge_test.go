package merge_test

import (
	"testing"

	merge "github.com/engagehq/pulse/internal/domain/merge"
	"github.com/engagehq/pulse/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEngine_Merge(t *testing.T) {
	Convey("Given a merge engine with default fallback hours", t, func() {
		engine := merge.NewEngine()

		profiles := map[string]model.Profile{
			"alice@example.com": {Name: "Alice", Role: model.RoleEmployee, CapacityHours: 40},
			"bob@example.com":   {Name: "Bob", Role: model.RoleContractor, CapacityHours: 20},
		}

		Convey("When merging counts from both sources", func() {
			slack := []model.SourceCount{
				{Email: "alice@example.com", Count: 10},
				{Email: "carol@example.com", Count: 3},
			}
			linear := []model.SourceCount{
				{Email: "alice@example.com", Count: 2},
			}
			merged := engine.Merge(profiles, slack, linear)

			Convey("Then every identity from any source appears exactly once", func() {
				So(merged, ShouldHaveLength, 3)
				emails := make(map[string]int)
				for _, m := range merged {
					emails[m.Email]++
				}
				So(emails["alice@example.com"], ShouldEqual, 1)
				So(emails["bob@example.com"], ShouldEqual, 1)
				So(emails["carol@example.com"], ShouldEqual, 1)
			})

			Convey("Then the output is ordered by email", func() {
				So(merged[0].Email, ShouldEqual, "alice@example.com")
				So(merged[1].Email, ShouldEqual, "bob@example.com")
				So(merged[2].Email, ShouldEqual, "carol@example.com")
			})

			Convey("Then directory identities keep their profile attributes", func() {
				So(merged[0].Name, ShouldEqual, "Alice")
				So(merged[0].Role, ShouldEqual, model.RoleEmployee)
				So(merged[0].WorkingHours, ShouldEqual, 40.0)
				So(merged[0].SlackCount, ShouldEqual, 10)
				So(merged[0].LinearCount, ShouldEqual, 2)
			})

			Convey("Then directory identities without counts carry zeros", func() {
				So(merged[1].SlackCount, ShouldEqual, 0)
				So(merged[1].LinearCount, ShouldEqual, 0)
			})

			Convey("Then identities outside the directory get fallback attributes", func() {
				carol := merged[2]
				So(carol.Name, ShouldEqual, "carol@example.com")
				So(carol.Role, ShouldEqual, model.RoleUnknown)
				So(carol.WorkingHours, ShouldEqual, 20.0)
				So(carol.SlackCount, ShouldEqual, 3)
			})
		})

		Convey("When a source reports negative counts", func() {
			slack := []model.SourceCount{
				{Email: "alice@example.com", Count: -5},
				{Email: "alice@example.com", Count: 4},
			}
			merged := engine.Merge(profiles, slack, nil)

			Convey("Then each negative row clamps to zero before summing", func() {
				for _, m := range merged {
					if m.Email == "alice@example.com" {
						So(m.SlackCount, ShouldEqual, 4)
					}
				}
			})
		})

		Convey("When a source reports the same email twice", func() {
			linear := []model.SourceCount{
				{Email: "bob@example.com", Count: 2},
				{Email: "bob@example.com", Count: 3},
			}
			merged := engine.Merge(profiles, nil, linear)

			Convey("Then counts sum", func() {
				for _, m := range merged {
					if m.Email == "bob@example.com" {
						So(m.LinearCount, ShouldEqual, 5)
					}
				}
			})
		})

		Convey("When every input is empty", func() {
			So(engine.Merge(nil, nil, nil), ShouldBeEmpty)
		})
	})

	Convey("Given a merge engine with custom fallback hours", t, func() {
		engine := merge.NewEngine(merge.WithFallbackHours(10))

		Convey("When an identity only appears in a source", func() {
			merged := engine.Merge(nil, []model.SourceCount{{Email: "x@example.com", Count: 1}}, nil)

			Convey("Then the fallback capacity applies", func() {
				So(merged, ShouldHaveLength, 1)
				So(merged[0].WorkingHours, ShouldEqual, 10.0)
			})
		})
	})
}
