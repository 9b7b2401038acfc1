package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the logger package", t, func() {
		Convey("When initialized with defaults", func() {
			So(Init(), ShouldBeNil)

			Convey("Then Get returns a usable logger", func() {
				So(Get(), ShouldNotBeNil)
				So(Sync(), ShouldBeNil)
			})
		})

		Convey("When initialized with an unknown format", func() {
			err := Init(Options{Format: "xml"})

			Convey("Then it fails", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "unknown log format")
			})
		})
	})
}

func TestLoggerJSONOutput(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(Options{Format: "json", Output: &buf}), ShouldBeNil)
		So(SetLevelString("info"), ShouldBeNil)

		Convey("When logging with a request id in context", func() {
			ctx := WithRequestID(context.Background(), "req-42")
			Named("proxy").Info(ctx, "forwarded", String("endpoint", "vote"), Error(errors.New("boom")))

			var line map[string]any
			So(json.Unmarshal(buf.Bytes(), &line), ShouldBeNil)

			Convey("Then fields, component and request id are present", func() {
				So(line["msg"], ShouldEqual, "forwarded")
				So(line["endpoint"], ShouldEqual, "vote")
				So(line["error"], ShouldEqual, "boom")
				So(line["component"], ShouldEqual, "proxy")
				So(line["request_id"], ShouldEqual, "req-42")
				So(line["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When logging below the configured level", func() {
			So(SetLevelString("error"), ShouldBeNil)
			Get().Debug(context.Background(), "hidden")

			Convey("Then nothing is written", func() {
				So(buf.Len(), ShouldEqual, 0)
			})
			So(SetLevelString("info"), ShouldBeNil)
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		for _, lvl := range []string{"debug", "info", "", "warn", "warning", "ERROR"} {
			So(SetLevelString(lvl), ShouldBeNil)
		}
		So(SetLevelString("loud"), ShouldNotBeNil)
		So(SetLevelString("info"), ShouldBeNil)
	})
}

func TestRequestIDHelpers(t *testing.T) {
	Convey("Given an empty request id", t, func() {
		ctx := WithRequestID(context.Background(), "")
		So(RequestID(ctx), ShouldEqual, "")
	})
}
