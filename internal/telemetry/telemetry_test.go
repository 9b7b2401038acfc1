package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/okian/arcade/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleDecision(s sdktrace.Sampler) sdktrace.SamplingDecision {
	return s.ShouldSample(sdktrace.SamplingParameters{
		ParentContext: context.Background(),
		TraceID:       oteltrace.TraceID{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
		Name:          "telemetry-test",
	}).Decision
}

func TestParseSampler(t *testing.T) {
	Convey("Given sampler settings", t, func() {
		So(sampleDecision(parseSampler("always_off", "")), ShouldEqual, sdktrace.Drop)
		So(sampleDecision(parseSampler("always_on", "")), ShouldEqual, sdktrace.RecordAndSample)
		So(sampleDecision(parseSampler("traceidratio", "2")), ShouldEqual, sdktrace.RecordAndSample)
		So(sampleDecision(parseSampler("traceidratio", "-1")), ShouldEqual, sdktrace.Drop)
		So(sampleDecision(parseSampler("parentbased", "0")), ShouldEqual, sdktrace.Drop)
		So(sampleDecision(parseSampler("unknown", "")), ShouldEqual, sdktrace.RecordAndSample)
	})
}

func TestParseHeaders(t *testing.T) {
	Convey("Given an OTLP header string", t, func() {
		headers := parseHeaders("k1=v1, k2 = v2,broken, =bad")
		So(headers, ShouldResemble, map[string]string{"k1": "v1", "k2": "v2"})
		So(parseHeaders("   "), ShouldBeNil)
	})
}

func TestEnvInt(t *testing.T) {
	Convey("Given integer env values", t, func() {
		t.Setenv("TELEMETRY_TEST_INT", "42")
		So(envInt("TELEMETRY_TEST_INT", 1), ShouldEqual, 42)
		t.Setenv("TELEMETRY_TEST_INT", "bad")
		So(envInt("TELEMETRY_TEST_INT", 7), ShouldEqual, 7)
	})
}

func TestInitAndInstrumentation(t *testing.T) {
	Convey("Given no exporter endpoint", t, func() {
		So(logger.Init(), ShouldBeNil)
		t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

		shutdown, err := Init(context.Background(), "")
		So(err, ShouldBeNil)
		So(shutdown, ShouldNotBeNil)
		defer func() { So(shutdown(context.Background()), ShouldBeNil) }()

		Convey("When an instrumented client calls an instrumented server", func() {
			var traceparent string
			srv := httptest.NewServer(Middleware("arcade-test")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				traceparent = r.Header.Get("traceparent")
				w.WriteHeader(http.StatusNoContent)
			})))
			defer srv.Close()

			client := InstrumentClient(nil)
			resp, err := client.Get(srv.URL)
			So(err, ShouldBeNil)
			_ = resp.Body.Close()

			Convey("Then the request succeeds and carries trace context", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNoContent)
				So(traceparent, ShouldNotBeEmpty)
			})
		})
	})
}
