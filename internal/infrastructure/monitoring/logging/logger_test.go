package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// newTestLogger returns a logger writing JSON into a buffer for verification.
func newTestLogger(t *testing.T) (Logger, *zaptest.Buffer) {
	t.Helper()
	buf := &zaptest.Buffer{}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), buf, zapcore.DebugLevel)
	return NewLoggerFromCore(core), buf
}

func TestNewLogger_JSONFormat(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: LevelInfo, Format: FormatJSON, OutputPaths: []string{"stdout"}})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_ConsoleFormat(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: LevelDebug, Format: FormatConsole})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_EmptyOutputPathsRejected(t *testing.T) {
	l, err := NewLogger(LogConfig{OutputPaths: []string{}})
	assert.Error(t, err)
	assert.Nil(t, l)
}

func TestNopLogger_AllMethodsNoOp(t *testing.T) {
	l := NewNopLogger()
	assert.NotPanics(t, func() {
		l.Debug("msg")
		l.Info("msg")
		l.Warn("msg")
		l.Error("msg")
		l.Fatal("msg")
	})
	assert.Equal(t, l, l.With(String("k", "v")))
	assert.Equal(t, l, l.Named("x"))
	assert.NoError(t, l.Sync())
}

func TestZapLogger_LevelsWriteEntries(t *testing.T) {
	cases := []struct {
		level string
		emit  func(Logger, string)
	}{
		{LevelDebug, func(l Logger, m string) { l.Debug(m) }},
		{LevelInfo, func(l Logger, m string) { l.Info(m) }},
		{LevelWarn, func(l Logger, m string) { l.Warn(m) }},
		{LevelError, func(l Logger, m string) { l.Error(m) }},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.level, func(t *testing.T) {
			l, buf := newTestLogger(t)
			tc.emit(l, tc.level+" msg")
			assert.Contains(t, buf.String(), tc.level+" msg")
			assert.Contains(t, buf.String(), `"level":"`+tc.level+`"`)
		})
	}
}

func TestZapLogger_FieldsAreEncoded(t *testing.T) {
	l, buf := newTestLogger(t)
	l.With(String("origin", "Treated")).Info("hull built",
		Int("vertices", 7),
		Float64("volume", 0.5),
		Floats("seed", []float64{0.25, 0.75}),
		Bool("chebyshev", false),
		Duration("elapsed", 2*time.Millisecond),
		Err(errors.New("boom")),
	)
	out := buf.String()
	assert.Contains(t, out, `"origin":"Treated"`)
	assert.Contains(t, out, `"vertices":7`)
	assert.Contains(t, out, `"volume":0.5`)
	assert.Contains(t, out, `"seed":[0.25,0.75]`)
	assert.Contains(t, out, `"chebyshev":false`)
	assert.Contains(t, out, `"error":"boom"`)
}

func TestZapLogger_NamedAppendsLoggerName(t *testing.T) {
	l, buf := newTestLogger(t)
	l.Named("positivity").Named("hull").Info("msg")
	assert.Contains(t, buf.String(), `"logger":"positivity.hull"`)
}

func TestErr_Nil(t *testing.T) {
	assert.Equal(t, "<nil>", Err(nil).Value)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel(LevelError))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("nonsense"))
}

func TestSetDefault_UpdatesGlobal(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	l, _ := newTestLogger(t)
	SetDefault(l)
	assert.Equal(t, l, Default())

	SetDefault(nil)
	assert.Equal(t, l, Default(), "nil must be ignored")
}

//Personal.AI order the ending
