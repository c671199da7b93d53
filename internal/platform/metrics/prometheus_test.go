package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/smartystreets/goconvey/convey"

	"results_sync/internal/domain"
)

func TestManager(t *testing.T) {
	convey.Convey("Given a manager on its own registry", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(WithPrometheusRegistry(registry), WithNamespace("test"))

		convey.Convey("When sync passes are observed", func() {
			m.ObserveSync(domain.SourceCache, "ok", 5*time.Millisecond)
			m.ObserveSync(domain.SourceFresh, "ok", time.Second)
			m.ObserveSync(domain.SourceFresh, "ok", 2*time.Second)
			m.ObserveSync(domain.SourceStale, "error", time.Second)

			convey.Convey("Then they are counted per source and outcome", func() {
				convey.So(testutil.ToFloat64(m.syncPasses.WithLabelValues("fresh", "ok")), convey.ShouldEqual, 2)
				convey.So(testutil.ToFloat64(m.syncPasses.WithLabelValues("cache", "ok")), convey.ShouldEqual, 1)
				convey.So(testutil.ToFloat64(m.syncPasses.WithLabelValues("stale", "error")), convey.ShouldEqual, 1)
				convey.So(testutil.CollectAndCount(m.syncDuration), convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When cached result counts change", func() {
			m.SetCachedResults(7, 120)
			m.SetCachedResults(7, 162)

			convey.Convey("Then the gauge holds the latest value", func() {
				convey.So(testutil.ToFloat64(m.cachedResults.WithLabelValues("7")), convey.ShouldEqual, 162)
			})
		})

		convey.Convey("When bracket failures are added", func() {
			m.AddBracketFailures(2)
			m.AddBracketFailures(0)
			m.AddBracketFailures(1)

			convey.So(testutil.ToFloat64(m.bracketFailures), convey.ShouldEqual, 3)
		})

		convey.Convey("When timing API requests are observed", func() {
			m.ObserveAPIRequest("results", "ok", 50*time.Millisecond)
			m.ObserveAPIRequest("results", "503", 10*time.Millisecond)

			convey.So(testutil.ToFloat64(m.apiRequests.WithLabelValues("results", "ok")), convey.ShouldEqual, 1)
			convey.So(testutil.ToFloat64(m.apiRequests.WithLabelValues("results", "503")), convey.ShouldEqual, 1)
		})

		convey.Convey("Then every collector is registered under the namespace", func() {
			m.ObserveSync(domain.SourceCache, "ok", time.Millisecond)
			m.AddBracketFailures(1)
			m.ObserveAPIRequest("event", "ok", time.Millisecond)
			m.SetCachedResults(1, 1)

			families, err := registry.Gather()
			convey.So(err, convey.ShouldBeNil)

			names := make([]string, 0, len(families))
			for _, f := range families {
				names = append(names, f.GetName())
			}
			convey.So(names, convey.ShouldContain, "test_sync_passes_total")
			convey.So(names, convey.ShouldContain, "test_sync_bracket_failures_total")
			convey.So(names, convey.ShouldContain, "test_timing_api_requests_total")
			convey.So(names, convey.ShouldContain, "test_sync_cached_results")
		})
	})
}
