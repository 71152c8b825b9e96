package aggregate_test

import (
	"math"
	"testing"

	"github.com/okian/handicap/internal/domain/aggregate"
	"github.com/okian/handicap/internal/domain/model"
	"github.com/okian/handicap/internal/domain/normalize"
	. "github.com/smartystreets/goconvey/convey"
)

func entry(date string, value float64) model.HandicapEntry {
	return model.HandicapEntry{Date: model.MustParseDate(date), Value: value}
}

func fixture() []model.PlayerSeries {
	return []model.PlayerSeries{
		{Name: "Fábio", Entries: []model.HandicapEntry{
			entry("2024-03-01", 11.0), entry("2024-01-05", 12.3), entry("2023-06-01", 13.1),
		}},
		{Name: "Pedro", Entries: []model.HandicapEntry{
			entry("2024-01-05", 20.4), entry("2022-11-20", 22.0),
		}},
		{Name: "Kleber"},
	}
}

func TestChartTable(t *testing.T) {
	Convey("Given three players with overlapping dates", t, func() {
		rows := aggregate.ChartTable(fixture())

		Convey("Then there is one row per distinct date", func() {
			So(rows, ShouldHaveLength, 4)
		})

		Convey("And rows are in ascending date order", func() {
			for i := 0; i+1 < len(rows); i++ {
				So(rows[i].Date.Before(rows[i+1].Date), ShouldBeTrue)
			}
			So(rows[0].Date.String(), ShouldEqual, "2022-11-20")
		})

		Convey("And a shared date carries both players", func() {
			shared := rows[2]
			So(shared.Date.String(), ShouldEqual, "2024-01-05")
			So(shared.Values, ShouldResemble, map[string]float64{"Fábio": 12.3, "Pedro": 20.4})
		})

		Convey("And missing players are absent rather than zero", func() {
			_, ok := rows[0].Values["Fábio"]
			So(ok, ShouldBeFalse)
			for _, r := range rows {
				_, ok := r.Values["Kleber"]
				So(ok, ShouldBeFalse)
			}
		})
	})

	Convey("Given a series that repeats a date", t, func() {
		rows := aggregate.ChartTable([]model.PlayerSeries{{Name: "P", Entries: []model.HandicapEntry{
			entry("2024-01-05", 1.0), entry("2024-01-05", 2.0),
		}}})

		Convey("Then the later entry overwrites the earlier", func() {
			So(rows, ShouldHaveLength, 1)
			So(rows[0].Values["P"], ShouldEqual, 2.0)
		})
	})

	Convey("Given no series", t, func() {
		So(aggregate.ChartTable(nil), ShouldBeEmpty)
	})
}

func TestYearly(t *testing.T) {
	Convey("Given three players", t, func() {
		series := fixture()
		m := aggregate.Yearly(series)

		Convey("Then years are distinct and newest first", func() {
			So(m.Years, ShouldResemble, []int{2024, 2023, 2022})
		})

		Convey("And every player has a row aligned to the years", func() {
			So(m.Rows, ShouldHaveLength, 3)
			So(m.Rows[0], ShouldResemble, model.YearlyRow{Player: "Fábio", Counts: []int{2, 1, 0}})
			So(m.Rows[1], ShouldResemble, model.YearlyRow{Player: "Pedro", Counts: []int{1, 0, 1}})
			So(m.Rows[2], ShouldResemble, model.YearlyRow{Player: "Kleber", Counts: []int{0, 0, 0}})
		})

		Convey("And each row sums to the player's entry count", func() {
			for i, row := range m.Rows {
				sum := 0
				for _, c := range row.Counts {
					sum += c
				}
				So(sum, ShouldEqual, len(series[i].Entries))
			}
		})
	})

	Convey("Given a single player", t, func() {
		counts := aggregate.YearCounts(fixture()[1])

		Convey("Then the per-year view skips years the player never saw", func() {
			So(counts, ShouldResemble, []model.YearCount{{Year: 2024, Count: 1}, {Year: 2022, Count: 1}})
		})
	})
}

func TestSandbaggerLevel(t *testing.T) {
	Convey("Given the reference example", t, func() {
		s := model.PlayerSeries{CurrentHandicap: 12.3, LowestHandicap: 9.8}

		Convey("Then the level is about 25.5 percent", func() {
			So(aggregate.SandbaggerLevel(s), ShouldAlmostEqual, 25.51, 0.01)
		})
	})

	Convey("Given a zero lowest handicap", t, func() {
		So(aggregate.SandbaggerLevel(model.PlayerSeries{CurrentHandicap: 30}), ShouldEqual, 0)
	})

	Convey("Given a current handicap below the lowest", t, func() {
		level := aggregate.SandbaggerLevel(model.PlayerSeries{CurrentHandicap: 8, LowestHandicap: 10})

		Convey("Then the level is negative", func() {
			So(level, ShouldAlmostEqual, -20, 1e-9)
		})
	})

	Convey("Given a normalized reference document", t, func() {
		series, err := normalize.New().NormalizeDocument("Test", []byte(`{"handicap_revisions": [
			{"RevDate": "2024-01-05T00:00:00", "Value": "12.3", "LowHI": "10.1"},
			{"RevDate": "2023-06-01T00:00:00", "Value": "999.0", "LowHI": "9.8"}
		]}`))
		So(err, ShouldBeNil)

		Convey("Then the pipeline matches the worked example", func() {
			level := aggregate.SandbaggerLevel(series)
			So(math.Round(level*10)/10, ShouldEqual, 25.5)

			rows := aggregate.ChartTable([]model.PlayerSeries{series})
			start := model.MustParseDate("2024-01-01")
			So(aggregate.FilterRange(rows, &start, nil), ShouldHaveLength, len(rows))
		})
	})
}

func TestFilterRange(t *testing.T) {
	Convey("Given chart rows", t, func() {
		rows := aggregate.ChartTable(fixture())

		Convey("When no bounds are set", func() {
			So(aggregate.FilterRange(rows, nil, nil), ShouldHaveLength, 4)
		})

		Convey("When both bounds match row dates", func() {
			start := model.MustParseDate("2023-06-01")
			end := model.MustParseDate("2024-01-05")
			out := aggregate.FilterRange(rows, &start, &end)

			Convey("Then both ends are inclusive", func() {
				So(out, ShouldHaveLength, 2)
				So(out[0].Date.Equal(start), ShouldBeTrue)
				So(out[1].Date.Equal(end), ShouldBeTrue)
			})
		})

		Convey("When only an end bound is set", func() {
			end := model.MustParseDate("2022-12-31")
			out := aggregate.FilterRange(rows, nil, &end)
			So(out, ShouldHaveLength, 1)
		})

		Convey("When the range excludes everything", func() {
			start := model.MustParseDate("2030-01-01")
			So(aggregate.FilterRange(rows, &start, nil), ShouldBeEmpty)
			So(rows, ShouldHaveLength, 4)
		})
	})
}
