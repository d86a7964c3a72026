package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		So(Init(), ShouldBeNil)
		defer func() { _ = Sync() }()

		Convey("Then Get should return it", func() {
			So(Get(), ShouldNotBeNil)
		})

		Convey("And Named should derive a child", func() {
			So(Named("test"), ShouldNotBeNil)
		})
	})

	Convey("Given a nil writer", t, func() {
		So(InitWithWriter(nil), ShouldNotBeNil)
	})
}

func TestLoggerWritesStructuredFields(t *testing.T) {
	Convey("Given a logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWithWriter(&buf), ShouldBeNil)
		defer func() { _ = Init() }()

		Convey("When logging at info with fields", func() {
			Named("submitter").Info(context.Background(), "form submitted",
				String("endpoint", "http://example"),
				Int("status", 200),
				Error(errors.New("boom")),
			)

			Convey("Then the record should contain the fields and the source", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "form submitted")
				So(out, ShouldContainSubstring, "logger=submitter")
				So(out, ShouldContainSubstring, "status=200")
				So(out, ShouldContainSubstring, "error=boom")
				So(out, ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When logging below the configured level", func() {
			So(SetLevelString("warn"), ShouldBeNil)
			defer func() { _ = SetLevelString("info") }()
			Get().Info(context.Background(), "hidden")

			Convey("Then nothing should be written", func() {
				So(buf.String(), ShouldNotContainSubstring, "hidden")
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		for _, lvl := range []string{"debug", "info", "", "warn", "warning", "error", " INFO "} {
			So(SetLevelString(lvl), ShouldBeNil)
		}
		So(SetLevelString("verbose"), ShouldNotBeNil)
		_ = SetLevelString("info")
	})
}

func TestNop(t *testing.T) {
	Convey("Given a nop logger", t, func() {
		l := Nop()
		So(func() {
			l.Error(context.Background(), "dropped", String("k", "v"))
			l.Named("x").Warn(context.TODO(), "dropped")
		}, ShouldNotPanic)
	})
}
