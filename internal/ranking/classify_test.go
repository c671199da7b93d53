package ranking

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"results_sync/internal/domain"
)

func TestClassify(t *testing.T) {
	convey.Convey("Given bracket definitions", t, func() {
		classify := func(name, tag string) domain.BracketKind {
			return Classify(domain.Bracket{Name: name, TypeTag: tag})
		}

		convey.Convey("When the bracket carries an explicit type marker", func() {
			convey.Convey("Then the marker wins over the name", func() {
				convey.So(classify("Female", "AGE"), convey.ShouldEqual, domain.BracketAge)
				convey.So(classify("30-34", "gender"), convey.ShouldEqual, domain.BracketGender)
			})
		})

		convey.Convey("When the name contains an age range", func() {
			convey.Convey("Then it is an AGE bracket", func() {
				convey.So(classify("Female 30-34", ""), convey.ShouldEqual, domain.BracketAge)
				convey.So(classify("M 40 to 44", ""), convey.ShouldEqual, domain.BracketAge)
				convey.So(classify("Under 20", ""), convey.ShouldEqual, domain.BracketAge)
				convey.So(classify("Men 60+", ""), convey.ShouldEqual, domain.BracketAge)
				convey.So(classify("U20 Boys", ""), convey.ShouldEqual, domain.BracketAge)
				convey.So(classify("70 & Over", ""), convey.ShouldEqual, domain.BracketAge)
			})
		})

		convey.Convey("When the name is a whole-word gender", func() {
			convey.Convey("Then it is a GENDER bracket regardless of case", func() {
				convey.So(classify("Female", ""), convey.ShouldEqual, domain.BracketGender)
				convey.So(classify("MALE", ""), convey.ShouldEqual, domain.BracketGender)
				convey.So(classify("Overall Women", ""), convey.ShouldEqual, domain.BracketGender)
				convey.So(classify("Men's Open", ""), convey.ShouldEqual, domain.BracketGender)
			})
		})

		convey.Convey("When gender words only appear inside other words", func() {
			convey.Convey("Then the bracket is not GENDER", func() {
				convey.So(classify("Females Relay Team", ""), convey.ShouldEqual, domain.BracketUnclassified)
				convey.So(classify("Mentors", ""), convey.ShouldEqual, domain.BracketUnclassified)
			})
		})

		convey.Convey("When nothing matches", func() {
			convey.Convey("Then the bracket is unclassified", func() {
				convey.So(classify("Overall", ""), convey.ShouldEqual, domain.BracketUnclassified)
				convey.So(classify("Clydesdale", "CUSTOM"), convey.ShouldEqual, domain.BracketUnclassified)
				convey.So(classify("", ""), convey.ShouldEqual, domain.BracketUnclassified)
			})
		})
	})
}
