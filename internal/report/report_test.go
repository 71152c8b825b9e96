package report_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"

	"github.com/okian/handicap/internal/adapters/http/api"
	"github.com/okian/handicap/internal/adapters/source"
	service "github.com/okian/handicap/internal/app"
	"github.com/okian/handicap/internal/report"
	"github.com/okian/handicap/pkg/logger"
)

const (
	testDoc = `{"handicap_revisions": [
		{"RevDate": "2024-03-10T00:00:00", "Value": "12.3", "LowHI": "9.8"},
		{"RevDate": "2023-11-02T00:00:00", "Value": "999.0", "LowHI": "999.0"},
		{"RevDate": "2023-05-01T00:00:00", "Value": "13.0", "LowHI": "-"}
	]}`
	otherDoc = `{"handicap_revisions": [
		{"RevDate": "2024-03-10T00:00:00", "Value": "20.1", "LowHI": "18.0"},
		{"RevDate": "2022-02-01T00:00:00", "Value": "22.0"}
	]}`
)

func loadedService() *service.Service {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "data/testHCP.json", []byte(testDoc), 0o644)
	_ = afero.WriteFile(fs, "data/joaoHCP.json", []byte(otherDoc), 0o644)
	svc := service.New(
		service.WithLogger(logger.Nop()),
		service.WithSource(source.NewFileSource("data", source.WithFs(fs))),
		service.WithPlayers("Test", "João"),
	)
	So(svc.Start(context.Background()), ShouldBeNil)
	return svc
}

func apiServer(svc *service.Service) *httptest.Server {
	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

func TestCheck(t *testing.T) {
	Convey("Given a running service", t, func() {
		svc := loadedService()
		srv := apiServer(svc)
		defer srv.Close()

		Convey("When checking it", func() {
			res, err := report.Check(context.Background(), report.NewClient(srv.URL, time.Second))

			Convey("Then every property holds", func() {
				So(err, ShouldBeNil)
				So(res.Findings, ShouldNotBeEmpty)
				for _, f := range res.Findings {
					So(f.OK, ShouldBeTrue)
				}
				So(res.Failed(), ShouldEqual, 0)
			})
		})

		Convey("When running the check command", func() {
			var out bytes.Buffer
			cmd := report.NewRootCommand(&out)
			cmd.SetArgs([]string{"check", "--url", srv.URL, "--timeout", "2s"})

			Convey("Then it succeeds and prints the findings", func() {
				So(cmd.ExecuteContext(context.Background()), ShouldBeNil)
				So(out.String(), ShouldContainSubstring, "0 failed")
				So(out.String(), ShouldContainSubstring, "sandbagger level")
			})
		})
	})

	Convey("Given a service whose views disagree", t, func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/players", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`[{"name":"Test","slug":"test","currentHandicap":10,"lowestHandicap":5,"sandbaggerLevel":50,"entryCount":1}]`))
		})
		mux.HandleFunc("/api/players/test", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"name":"Test","slug":"test","currentHandicap":10,"lowestHandicap":5,"sandbaggerLevel":50,"entryCount":1,
				"entries":[{"date":"2024-01-01","value":10,"handicap":"10.0","lowHI":"-"}],
				"yearCounts":[{"year":2024,"count":1}]}`))
		})
		mux.HandleFunc("/api/chart", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"players":["Test"],"rows":[{"date":"2024-01-01","Test":11}]}`))
		})
		mux.HandleFunc("/api/yearly", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"years":[2024],"rows":[{"player":"Test","counts":[1]}]}`))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		Convey("Then the mismatches are reported", func() {
			res, err := report.Check(context.Background(), report.NewClient(srv.URL, time.Second))
			So(err, ShouldBeNil)
			So(res.Failed(), ShouldEqual, 2)

			failed := map[string]bool{}
			for _, f := range res.Findings {
				if !f.OK {
					failed[f.Check] = true
				}
			}
			So(failed["sandbagger level"], ShouldBeTrue)
			So(failed["chart cells match entries"], ShouldBeTrue)
		})

		Convey("Then the check command fails", func() {
			var out bytes.Buffer
			cmd := report.NewRootCommand(&out)
			cmd.SetArgs([]string{"check", "--url", srv.URL})
			err := cmd.ExecuteContext(context.Background())
			So(errors.Is(err, report.ErrChecksFailed), ShouldBeTrue)
			So(out.String(), ShouldContainSubstring, "FAIL")
		})
	})

	Convey("Given an unreachable player route", t, func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/players", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`[{"name":"Ghost","slug":"ghost"}]`))
		})
		mux.HandleFunc("/api/players/ghost", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code":"not_found","message":"player not found: ghost"}`))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		_, err := report.Check(context.Background(), report.NewClient(srv.URL, time.Second))
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "not_found")
	})
}

func TestRender(t *testing.T) {
	Convey("Given a loaded service", t, func() {
		svc := loadedService()
		var out bytes.Buffer

		Convey("When rendering with a player", func() {
			err := report.Render(context.Background(), &out, svc, "test")

			Convey("Then the overview, yearly and detail tables are printed", func() {
				So(err, ShouldBeNil)
				s := out.String()
				So(s, ShouldContainSubstring, "Players")
				So(s, ShouldContainSubstring, "João")
				So(s, ShouldContainSubstring, "Updates per year")
				So(s, ShouldContainSubstring, "2022")
				So(s, ShouldContainSubstring, "2024-03-10")
				So(s, ShouldContainSubstring, "13.0")
			})
		})

		Convey("When rendering an unknown player", func() {
			err := report.Render(context.Background(), &out, svc, "nobody")
			So(errors.Is(err, service.ErrPlayerNotFound), ShouldBeTrue)
		})
	})
}

func TestRenderCommand(t *testing.T) {
	Convey("Given documents on disk and players in the environment", t, func() {
		dir := t.TempDir()
		So(os.WriteFile(filepath.Join(dir, "testHCP.json"), []byte(testDoc), 0o644), ShouldBeNil)
		_ = os.Setenv("HCP_PLAYERS", "Test")
		defer func() { _ = os.Unsetenv("HCP_PLAYERS") }()

		var out bytes.Buffer
		cmd := report.NewRootCommand(&out)
		cmd.SetArgs([]string{"render", "--data-dir", dir, "--player", "Test"})

		Convey("Then the tables are rendered from the files", func() {
			So(cmd.ExecuteContext(context.Background()), ShouldBeNil)
			So(out.String(), ShouldContainSubstring, "12.3")
			So(out.String(), ShouldContainSubstring, "9.8")
		})
	})
}
