package model_test

import (
	"encoding/json"
	"testing"

	model "github.com/okian/perception/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestCategory(t *testing.T) {
	convey.Convey("Given evidence categories", t, func() {
		convey.Convey("Then general and news are valid", func() {
			convey.So(model.CategoryGeneral.Valid(), convey.ShouldBeTrue)
			convey.So(model.CategoryNews.Valid(), convey.ShouldBeTrue)
		})

		convey.Convey("Then anything else is not", func() {
			convey.So(model.Category("").Valid(), convey.ShouldBeFalse)
			convey.So(model.Category("images").Valid(), convey.ShouldBeFalse)
		})
	})
}

func TestEvidenceItemJSON(t *testing.T) {
	convey.Convey("Given an evidence item without a link", t, func() {
		item := model.EvidenceItem{Title: "T", Snippet: "S", Category: model.CategoryNews}

		convey.Convey("When it is encoded", func() {
			b, err := json.Marshal(item)

			convey.Convey("Then the empty link is omitted", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(b), convey.ShouldEqual, `{"title":"T","snippet":"S","category":"news"}`)
			})
		})
	})
}
