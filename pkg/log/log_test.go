package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestSetDefaults(t *testing.T) {
	conf := SetDefaults()
	assert.Equal(t, "stdout", conf.Output)
	assert.Equal(t, "INFO", conf.Level)
	assert.Equal(t, 7, conf.KeepDays)
}

func TestValidateFileOutput(t *testing.T) {
	conf := &Conf{Output: "file"}
	err := conf.Validate()
	require.Error(t, err)

	conf.Path = t.TempDir()
	conf.RotateSize = -1
	require.NoError(t, conf.Validate())
	assert.Equal(t, 100, conf.RotateSize)
	assert.Equal(t, 10, conf.RotateNum)
}

func TestNewLogStdout(t *testing.T) {
	conf := SetDefaults()
	logger, err := NewLog(conf)
	require.NoError(t, err)
	require.NotNil(t, logger)

	// 全域方法在初始化後可直接使用
	Infof("log test: %s", "ok")
	Debugw("debug entry", "key", "value")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLogLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLogLevel("WARNING"))
	assert.Equal(t, zapcore.InfoLevel, parseLogLevel("bogus"))
	assert.Equal(t, zapcore.ErrorLevel, parseLogLevel(" error "))
}
