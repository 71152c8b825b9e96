package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"

	"github.com/okian/handicap/internal/adapters/source"
	service "github.com/okian/handicap/internal/app"
	"github.com/okian/handicap/internal/domain/model"
	"github.com/okian/handicap/internal/domain/normalize"
	"github.com/okian/handicap/pkg/logger"
)

func init() {
	if err := logger.InitWith(&discard{}, logger.FormatText); err != nil {
		panic(err)
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

const (
	fabioDoc = `{"handicap_revisions": [
		{"RevDate": "2024-03-10T00:00:00", "Value": "12.3", "LowHI": "9.8"},
		{"RevDate": "2023-11-02T00:00:00", "Value": 999.0, "LowHI": "8.1"},
		{"RevDate": "2023-05-01T00:00:00", "Value": "13.0", "LowHI": "999.0"}
	]}`
	pedroDoc = `{"handicap_revisions": [
		{"RevDate": "2024-03-10T00:00:00", "Value": "20.1", "LowHI": "18.0"},
		{"RevDate": "2022-01-15T00:00:00", "Value": "22.4", "LowHI": "-"}
	]}`
)

// failingSource fails the fetch of one player.
type failingSource struct {
	inner source.Source
	fail  string
}

func (b failingSource) Kind() string { return "stub" }

func (b failingSource) Fetch(ctx context.Context, player string) ([]byte, error) {
	if player == b.fail {
		return nil, errors.New("connection reset")
	}
	return b.inner.Fetch(ctx, player)
}

func newFs() afero.Fs {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "data/fabioHCP.json", []byte(fabioDoc), 0o644)
	_ = afero.WriteFile(fs, "data/pedroHCP.json", []byte(pedroDoc), 0o644)
	return fs
}

func newService(players ...string) *service.Service {
	return service.New(
		service.WithLogger(logger.Nop()),
		service.WithSource(source.NewFileSource("data", source.WithFs(newFs()))),
		service.WithPlayers(players...),
	)
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it is not loaded yet", func() {
			So(svc, ShouldNotBeNil)
			_, err := svc.Snapshot()
			So(errors.Is(err, service.ErrNotLoaded), ShouldBeTrue)
			So(svc.GetStats()["started"], ShouldEqual, false)
			So(svc.GetStats()["collisionPolicy"], ShouldEqual, "first")
		})

		Convey("Then starting without a source fails", func() {
			err := svc.Start(context.Background())
			So(errors.Is(err, service.ErrNoSource), ShouldBeTrue)
		})
	})

	Convey("Given a service without players", t, func() {
		svc := service.New(service.WithSource(source.NewFileSource("data", source.WithFs(newFs()))))
		err := svc.Start(context.Background())
		So(errors.Is(err, service.ErrNoPlayers), ShouldBeTrue)
	})
}

func TestService_Start(t *testing.T) {
	Convey("Given a service over two player documents", t, func() {
		svc := newService("Pedro", "Fábio")
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("Then the snapshot keeps the configured player order", func() {
			snap, err := svc.Snapshot()
			So(err, ShouldBeNil)
			So(snap.LoadID, ShouldNotBeEmpty)
			So(snap.Series, ShouldHaveLength, 2)
			So(snap.Series[0].Name, ShouldEqual, "Pedro")
			So(snap.Series[1].Name, ShouldEqual, "Fábio")
		})

		Convey("Then the overview carries the derived metrics", func() {
			overview, err := svc.Overview(ctx)
			So(err, ShouldBeNil)
			So(overview, ShouldHaveLength, 2)
			fabio := overview[1]
			So(fabio.Slug, ShouldEqual, "fabio")
			So(fabio.CurrentHandicap, ShouldEqual, 12.3)
			So(fabio.LowestHandicap, ShouldEqual, 8.1)
			So(fabio.EntryCount, ShouldEqual, 2)
			So(fabio.SandbaggerLevel, ShouldAlmostEqual, (12.3-8.1)/8.1*100, 1e-9)
		})

		Convey("Then the chart merges shared dates", func() {
			rows, err := svc.Chart(ctx, nil, nil)
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 3)
			So(rows[0].Date.String(), ShouldEqual, "2022-01-15")
			So(rows[2].Date.String(), ShouldEqual, "2024-03-10")
			So(rows[2].Values, ShouldResemble, map[string]float64{"Pedro": 20.1, "Fábio": 12.3})
		})

		Convey("Then the chart honours an inclusive range", func() {
			start := model.MustParseDate("2023-05-01")
			end := model.MustParseDate("2024-03-10")
			rows, err := svc.Chart(ctx, &start, &end)
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 2)
		})

		Convey("Then an inverted range is rejected", func() {
			start := model.MustParseDate("2024-01-01")
			end := model.MustParseDate("2023-01-01")
			_, err := svc.Chart(ctx, &start, &end)
			So(errors.Is(err, service.ErrInvalidRange), ShouldBeTrue)
		})

		Convey("Then the yearly matrix lists years descending", func() {
			m, err := svc.Yearly(ctx)
			So(err, ShouldBeNil)
			So(m.Years, ShouldResemble, []int{2024, 2023, 2022})
			So(m.Rows[0].Counts, ShouldResemble, []int{1, 0, 1})
			So(m.Rows[1].Counts, ShouldResemble, []int{1, 1, 0})
		})

		Convey("Then a player resolves by name, folded name or slug", func() {
			for _, ref := range []string{"Fábio", "fabio", "FABIO"} {
				d, err := svc.Player(ctx, ref)
				So(err, ShouldBeNil)
				So(d.Name, ShouldEqual, "Fábio")
				So(d.Entries, ShouldHaveLength, 2)
			}
			_, err := svc.Player(ctx, "nobody")
			So(errors.Is(err, service.ErrPlayerNotFound), ShouldBeTrue)
		})

		Convey("Then stats describe the load", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, true)
			So(stats["source"], ShouldEqual, "file")
			So(stats["entries"], ShouldEqual, 4)
			So(stats["chartRows"], ShouldEqual, 3)
		})

		Convey("When starting twice", func() {
			before, _ := svc.Snapshot()
			So(svc.Start(ctx), ShouldBeNil)
			after, _ := svc.Snapshot()

			Convey("Then the snapshot is not replaced", func() {
				So(after.LoadID, ShouldEqual, before.LoadID)
			})
		})
	})
}

func TestService_LoadFailures(t *testing.T) {
	Convey("Given a service where one document is missing", t, func() {
		svc := newService("Fábio", "Kleber")

		Convey("When starting", func() {
			err := svc.Start(context.Background())

			Convey("Then the whole load fails and names the player", func() {
				So(errors.Is(err, source.ErrNotFound), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "Kleber")
				_, serr := svc.Snapshot()
				So(errors.Is(serr, service.ErrNotLoaded), ShouldBeTrue)
			})
		})
	})

	Convey("Given a source that fails for one player", t, func() {
		inner := source.NewFileSource("data", source.WithFs(newFs()))
		svc := service.New(
			service.WithSource(failingSource{inner: inner, fail: "Pedro"}),
			service.WithPlayers("Fábio", "Pedro"),
		)
		_, err := svc.Load(context.Background())
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "connection reset")
	})

	Convey("Given a malformed document", t, func() {
		fs := newFs()
		So(afero.WriteFile(fs, "data/eduardoHCP.json", []byte(`{"revisions": []}`), 0o644), ShouldBeNil)
		svc := service.New(
			service.WithSource(source.NewFileSource("data", source.WithFs(fs))),
			service.WithPlayers("Fábio", "Eduardo"),
		)
		_, err := svc.Load(context.Background())

		Convey("Then the parse error surfaces", func() {
			var perr *normalize.ParseError
			So(errors.As(err, &perr), ShouldBeTrue)
			So(perr.Player, ShouldEqual, "Eduardo")
			So(errors.Is(err, normalize.ErrMalformedDocument), ShouldBeTrue)
		})
	})
}

func TestService_CollisionPolicy(t *testing.T) {
	Convey("Given a document with two revisions on the same date", t, func() {
		fs := afero.NewMemMapFs()
		So(afero.WriteFile(fs, "data/kleberHCP.json", []byte(`{"handicap_revisions": [
			{"RevDate": "2024-01-01T10:00:00", "Value": "10.0"},
			{"RevDate": "2024-01-01T08:00:00", "Value": "11.0"}
		]}`), 0o644), ShouldBeNil)
		src := source.NewFileSource("data", source.WithFs(fs))

		Convey("Then the default keeps the first revision", func() {
			svc := service.New(service.WithSource(src), service.WithPlayers("Kleber"))
			snap, err := svc.Load(context.Background())
			So(err, ShouldBeNil)
			So(snap.Series[0].Entries[0].Value, ShouldEqual, 10.0)
			So(snap.Series[0].Collisions, ShouldEqual, 1)
		})

		Convey("Then the last policy keeps the later revision", func() {
			svc := service.New(service.WithSource(src), service.WithPlayers("Kleber"), service.WithCollisionPolicy("last"))
			snap, err := svc.Load(context.Background())
			So(err, ShouldBeNil)
			So(snap.Series[0].Entries[0].Value, ShouldEqual, 11.0)
		})
	})
}
