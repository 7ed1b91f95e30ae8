package merge_test

import (
	"testing"

	merge "github.com/engagehq/pulse/internal/domain/merge"
	"github.com/engagehq/pulse/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFingerprint(t *testing.T) {
	Convey("Given merge inputs", t, func() {
		profiles := map[string]model.Profile{
			"alice@example.com": {Name: "Alice", Role: model.RoleEmployee, CapacityHours: 40},
			"bob@example.com":   {Name: "Bob", Role: model.RoleContractor, CapacityHours: 20},
		}
		slack := []model.SourceCount{{Email: "alice@example.com", Count: 10}}
		linear := []model.SourceCount{{Email: "bob@example.com", Count: 2}}

		Convey("When fingerprinting the same inputs twice", func() {
			So(merge.Fingerprint(profiles, slack, linear), ShouldEqual,
				merge.Fingerprint(profiles, slack, linear))
		})

		Convey("When count order differs but content matches", func() {
			a := []model.SourceCount{
				{Email: "alice@example.com", Count: 10},
				{Email: "bob@example.com", Count: 5},
			}
			b := []model.SourceCount{
				{Email: "bob@example.com", Count: 5},
				{Email: "alice@example.com", Count: 10},
			}

			Convey("Then the fingerprints match", func() {
				So(merge.Fingerprint(profiles, a, nil), ShouldEqual,
					merge.Fingerprint(profiles, b, nil))
			})
		})

		Convey("When any input changes", func() {
			base := merge.Fingerprint(profiles, slack, linear)

			Convey("Then a changed count changes the fingerprint", func() {
				changed := []model.SourceCount{{Email: "alice@example.com", Count: 11}}
				So(merge.Fingerprint(profiles, changed, linear), ShouldNotEqual, base)
			})

			Convey("Then a changed profile changes the fingerprint", func() {
				other := map[string]model.Profile{
					"alice@example.com": {Name: "Alice", Role: model.RoleEmployee, CapacityHours: 35},
					"bob@example.com":   {Name: "Bob", Role: model.RoleContractor, CapacityHours: 20},
				}
				So(merge.Fingerprint(other, slack, linear), ShouldNotEqual, base)
			})

			Convey("Then swapping the sources changes the fingerprint", func() {
				So(merge.Fingerprint(profiles, linear, slack), ShouldNotEqual, base)
			})
		})
	})
}

func TestCache(t *testing.T) {
	Convey("Given a bounded cache", t, func() {
		cache := merge.NewCache(merge.WithMaxEntries(2))
		table := []model.MergedRecord{{Email: "a@example.com", SlackCount: 1}}

		Convey("When looking up a missing key", func() {
			_, ok := cache.Get("missing")

			Convey("Then it misses and the miss is counted", func() {
				So(ok, ShouldBeFalse)
				_, misses := cache.Stats()
				So(misses, ShouldEqual, 1)
			})
		})

		Convey("When a stored table is fetched", func() {
			cache.Put("k1", table)
			got, ok := cache.Get("k1")

			Convey("Then it hits with equal content", func() {
				So(ok, ShouldBeTrue)
				So(got, ShouldResemble, table)
				hits, _ := cache.Stats()
				So(hits, ShouldEqual, 1)
			})

			Convey("Then mutating the returned slice leaves the cache intact", func() {
				got[0].SlackCount = 99
				again, _ := cache.Get("k1")
				So(again[0].SlackCount, ShouldEqual, 1)
			})
		})

		Convey("When capacity is exceeded", func() {
			cache.Put("k1", table)
			cache.Put("k2", table)
			cache.Put("k3", table)

			Convey("Then the oldest entry is evicted", func() {
				So(cache.Len(), ShouldEqual, 2)
				_, ok := cache.Get("k1")
				So(ok, ShouldBeFalse)
				_, ok = cache.Get("k3")
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When a key is stored twice", func() {
			cache.Put("k1", table)
			cache.Put("k1", []model.MergedRecord{{Email: "b@example.com"}})

			Convey("Then the first value wins and no duplicate slot is used", func() {
				So(cache.Len(), ShouldEqual, 1)
				got, _ := cache.Get("k1")
				So(got[0].Email, ShouldEqual, "a@example.com")
			})
		})
	})

	Convey("Given a cache disabled by a non-positive bound", t, func() {
		cache := merge.NewCache(merge.WithMaxEntries(0))

		Convey("When storing a table", func() {
			cache.Put("k1", []model.MergedRecord{{Email: "a@example.com"}})

			Convey("Then nothing is retained", func() {
				So(cache.Len(), ShouldEqual, 0)
				_, ok := cache.Get("k1")
				So(ok, ShouldBeFalse)
			})
		})
	})
}
