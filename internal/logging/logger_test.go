//
//  Copyright © Manetu Inc. All rights reserved.
//

package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestLogging(t *testing.T) {
	logger := newLogger("testmodule")
	var buffer bytes.Buffer
	logger.SetOut(&buffer)
	logger.SetLevel(zapcore.InfoLevel)

	// As default, the logging level must be at info
	assert.Equal(t, logger.IsLevelEnabled(zapcore.InfoLevel), true)
	// Debug should be off
	assert.Equal(t, logger.IsLevelEnabled(zapcore.DebugLevel), false)

	// Debug log should not be printed
	logger.Debugf("debug message %s", "hello")
	logger.Tracef("trace message %s", "hello")
	assert.Empty(t, buffer.Bytes())

	// The other levels should be printed
	buffer.Reset()
	logger.Infof("info message %s", "hello")
	assert.NotEmpty(t, buffer.Bytes())
	buffer.Reset()
	logger.Warnf("warning message %s", "hello")
	assert.NotEmpty(t, buffer.Bytes())
	buffer.Reset()
	logger.Errorf("error message %s", "hello")
	assert.NotEmpty(t, buffer.Bytes())
	// Note: Fatalf calls os.Exit() which would terminate the test, so we skip it
}

func TestSetLevelFiltersBelow(t *testing.T) {
	logger := newLogger("testlevelmodule")
	var buffer bytes.Buffer
	logger.SetOut(&buffer)

	logger.SetLevel(zapcore.ErrorLevel)
	assert.Equal(t, logger.IsLevelEnabled(zapcore.ErrorLevel), true)
	assert.Equal(t, logger.IsLevelEnabled(zapcore.WarnLevel), false)

	logger.Infof("info message")
	logger.Warnf("warning message")
	assert.Empty(t, buffer.Bytes())

	logger.Errorf("error message")
	assert.NotEmpty(t, buffer.Bytes())
}

func TestModuleFieldInOutput(t *testing.T) {
	logger := newLogger("fieldmodule")
	var buffer bytes.Buffer
	logger.SetOut(&buffer)
	logger.SetLevel(zapcore.InfoLevel)

	logger.Infof("hello")
	assert.Contains(t, buffer.String(), `"module":"fieldmodule"`)
}
