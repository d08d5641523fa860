package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/nook/pkg/utils/logging"
)

func TestNew(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.New("info", "console", buf)
	gt.V(t, logger).NotNil()

	logger.Info("test message")
	gt.S(t, buf.String()).Contains("test message")
}

func TestNewWithDifferentLevels(t *testing.T) {
	testCases := []struct {
		level       string
		expectDebug bool
		expectInfo  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"warn", false, false},
		{"warning", false, false},
		{"DEBUG", true, true},
		{"invalid", false, true},
	}

	for _, tc := range testCases {
		t.Run(tc.level, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := logging.New(tc.level, "console", buf)
			gt.V(t, logger).NotNil()

			logger.Debug("debug message")
			logger.Info("info message")

			output := buf.String()
			if tc.expectDebug {
				gt.S(t, output).Contains("debug message")
			} else {
				gt.S(t, output).NotContains("debug message")
			}
			if tc.expectInfo {
				gt.S(t, output).Contains("info message")
			} else {
				gt.S(t, output).NotContains("info message")
			}
		})
	}
}

func TestNewJSONFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.New("info", "json", buf)

	logger.Info("structured entry", "space", "s1")

	var record map[string]any
	gt.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	gt.Value(t, record["msg"]).Equal("structured entry")
	gt.Value(t, record["space"]).Equal("s1")
}

func TestWithAndFrom(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.New("debug", "console", buf)

	ctx := logging.With(context.Background(), logger)
	got := logging.From(ctx)

	got.Debug("from context")
	gt.S(t, buf.String()).Contains("from context")
}

func TestFromWithoutLogger(t *testing.T) {
	logger := logging.From(context.Background())
	gt.V(t, logger).NotNil()
}

func TestSetDefault(t *testing.T) {
	original := logging.Default()
	defer logging.SetDefault(original)

	buf := &bytes.Buffer{}
	logger := logging.New("info", "console", buf)
	logging.SetDefault(logger)

	logging.Default().Info("default replaced")
	gt.S(t, buf.String()).Contains("default replaced")
}
