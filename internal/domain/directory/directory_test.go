package directory_test

import (
	"testing"

	directory "github.com/engagehq/pulse/internal/domain/directory"
	"github.com/engagehq/pulse/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResolver_Resolve(t *testing.T) {
	Convey("Given a resolver with default capacities", t, func() {
		resolver := directory.NewResolver()

		Convey("When resolving a mixed member list", func() {
			members := []model.MemberRecord{
				{ID: "U1", Email: "alice@example.com", RealName: "Alice Adams", Name: "alice", Avatar: "https://a/alice.png", HasProfile: true},
				{ID: "U2", Email: "bob@example.com", Name: "bob", IsRestricted: true, HasProfile: true},
				{ID: "U3", Email: "bot@example.com", IsBot: true, HasProfile: true},
				{ID: "U4", Email: "gone@example.com", IsDeleted: true, HasProfile: true},
				{ID: "U5", Email: "noprofile@example.com", HasProfile: false},
				{ID: "U6", HasProfile: true}, // account without an email
			}
			dir := resolver.Resolve(members)

			Convey("Then only active profiled members with an email become profiles", func() {
				So(dir.Profiles, ShouldHaveLength, 2)
				So(dir.Profiles, ShouldContainKey, "alice@example.com")
				So(dir.Profiles, ShouldContainKey, "bob@example.com")
			})

			Convey("Then the email-less account counts as a coverage gap", func() {
				So(dir.Gaps, ShouldEqual, 1)
			})

			Convey("Then full members classify as employees with employee hours", func() {
				p := dir.Profiles["alice@example.com"]
				So(p.Role, ShouldEqual, model.RoleEmployee)
				So(p.CapacityHours, ShouldEqual, 40.0)
				So(p.Avatar, ShouldEqual, "https://a/alice.png")
			})

			Convey("Then restricted members classify as contractors with contractor hours", func() {
				p := dir.Profiles["bob@example.com"]
				So(p.Role, ShouldEqual, model.RoleContractor)
				So(p.CapacityHours, ShouldEqual, 20.0)
			})

			Convey("Then display names fall back real_name -> name -> email", func() {
				So(dir.Profiles["alice@example.com"].Name, ShouldEqual, "Alice Adams")
				So(dir.Profiles["bob@example.com"].Name, ShouldEqual, "bob")
			})
		})

		Convey("When a member has neither real_name nor name", func() {
			dir := resolver.Resolve([]model.MemberRecord{
				{ID: "U9", Email: "anon@example.com", HasProfile: true},
			})

			Convey("Then the email serves as the display name", func() {
				So(dir.Profiles["anon@example.com"].Name, ShouldEqual, "anon@example.com")
			})
		})

		Convey("When resolving an empty member list", func() {
			dir := resolver.Resolve(nil)

			Convey("Then the directory is empty with zero gaps", func() {
				So(dir.Profiles, ShouldBeEmpty)
				So(dir.Gaps, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a resolver with custom capacities", t, func() {
		resolver := directory.NewResolver(
			directory.WithEmployeeHours(37.5),
			directory.WithContractorHours(15),
		)

		Convey("When resolving an employee and a contractor", func() {
			dir := resolver.Resolve([]model.MemberRecord{
				{ID: "U1", Email: "e@example.com", HasProfile: true},
				{ID: "U2", Email: "c@example.com", IsUltraRestricted: true, HasProfile: true},
			})

			Convey("Then the configured hours apply", func() {
				So(dir.Profiles["e@example.com"].CapacityHours, ShouldEqual, 37.5)
				So(dir.Profiles["c@example.com"].CapacityHours, ShouldEqual, 15.0)
			})
		})
	})
}

func TestDirectory_EmailFor(t *testing.T) {
	Convey("Given a resolved directory", t, func() {
		resolver := directory.NewResolver()
		dir := resolver.Resolve([]model.MemberRecord{
			{ID: "U1", Email: "alice@example.com", HasProfile: true},
			{ID: "U2", Email: "gone@example.com", IsDeleted: true, HasProfile: true},
			{ID: "U3", HasProfile: true},
		})

		Convey("When translating an active member id", func() {
			email, ok := dir.EmailFor("U1")
			So(ok, ShouldBeTrue)
			So(email, ShouldEqual, "alice@example.com")
		})

		Convey("When translating a deleted member id", func() {
			// Deleted accounts keep no profile, but messages they wrote
			// inside the window must still attribute to their email.
			email, ok := dir.EmailFor("U2")
			So(ok, ShouldBeTrue)
			So(email, ShouldEqual, "gone@example.com")
		})

		Convey("When translating an unknown or email-less id", func() {
			_, ok := dir.EmailFor("U3")
			So(ok, ShouldBeFalse)
			_, ok = dir.EmailFor("UX")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestDirectory_CountByEmail(t *testing.T) {
	Convey("Given a resolved directory and raw messages", t, func() {
		resolver := directory.NewResolver()
		dir := resolver.Resolve([]model.MemberRecord{
			{ID: "U1", Email: "alice@example.com", HasProfile: true},
			{ID: "U2", Email: "bob@example.com", HasProfile: true},
		})

		Convey("When counting messages", func() {
			counts := dir.CountByEmail([]model.Message{
				{UserID: "U1"}, {UserID: "U2"}, {UserID: "U1"},
				{UserID: "UX"}, // untranslatable author
				{UserID: "U1"},
			})

			Convey("Then counts aggregate per email, ordered by email", func() {
				So(counts, ShouldResemble, []model.SourceCount{
					{Email: "alice@example.com", Count: 3},
					{Email: "bob@example.com", Count: 1},
				})
			})
		})

		Convey("When counting no messages", func() {
			So(dir.CountByEmail(nil), ShouldBeEmpty)
		})
	})
}
