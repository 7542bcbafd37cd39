/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerIsShared(t *testing.T) {
	a := NewLogger("SHARED")
	b := NewLogger("SHARED")
	assert.Same(t, a, b)
	assert.NotSame(t, a, NewLogger("OTHER"))
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		" WARN ":  logrus.WarnLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"trace":   logrus.TraceLevel,
		"":        logrus.InfoLevel,
		"verbose": logrus.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLogLevel(in), "input %q", in)
	}
}

func TestSetLoggerLevel(t *testing.T) {
	lg := NewLogger("LEVELS")
	assert.True(t, SetLoggerLevel("LEVELS", "error"))
	assert.Equal(t, logrus.ErrorLevel, lg.GetLevel())
	assert.False(t, SetLoggerLevel("NEVER-CREATED", "debug"))
}

func TestLog4jColorFormatter(t *testing.T) {
	f := &Log4jColorFormatter{LoggerName: "POKEMON", NameWidth: 10}
	entry := &logrus.Entry{
		Time:    time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "duplicate dex number",
		Data:    logrus.Fields{"no": 25, "name": "pikachu"},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)
	line := string(out)
	assert.True(t, strings.HasPrefix(line, "2025-01-02 03:04:05.000 WARNING "))
	assert.Contains(t, line, "[   POKEMON] : duplicate dex number name=pikachu no=25\n")
	assert.NotContains(t, line, "\x1b[")
}

func TestJSONLogFormatter(t *testing.T) {
	f := &JSONLogFormatter{LoggerName: "HTTP"}
	entry := &logrus.Entry{
		Time:    time.Now(),
		Level:   logrus.ErrorLevel,
		Message: "request failed",
		Data:    logrus.Fields{"status": 500, logrus.ErrorKey: errors.New("disk full")},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &rec))
	assert.Equal(t, "HTTP", rec["logger"])
	assert.Equal(t, "error", rec["level"])
	assert.Equal(t, "request failed", rec["message"])
	fields := rec["fields"].(map[string]interface{})
	assert.Equal(t, "disk full", fields["error"])
	assert.Equal(t, float64(500), fields["status"])
}

func TestConfigureConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	ConfigureConsoleOutput(&buf)
	t.Cleanup(func() { ConfigureConsoleOutput(nil) })

	lg := NewLogger("OUTPUT")
	lg.SetLevel(logrus.InfoLevel)
	lg.WithField("id", "abc").Info("hello")
	lg.Debug("hidden")

	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "id=abc")
	assert.NotContains(t, buf.String(), "hidden")
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("POKEDEX_TEST_STR", "value")
	t.Setenv("POKEDEX_TEST_BOOL", "true")
	t.Setenv("POKEDEX_TEST_BAD_BOOL", "maybe")
	t.Setenv("POKEDEX_TEST_INT", " 42 ")
	t.Setenv("POKEDEX_TEST_DUR", "90")

	assert.Equal(t, "value", EnvDefaultString("POKEDEX_TEST_STR", "def"))
	assert.Equal(t, "def", EnvDefaultString("POKEDEX_TEST_UNSET", "def"))
	assert.True(t, EnvDefaultBool("POKEDEX_TEST_BOOL", false))
	assert.True(t, EnvDefaultBool("POKEDEX_TEST_BAD_BOOL", true))
	assert.Equal(t, 42, EnvDefaultInt("POKEDEX_TEST_INT", 0))
	assert.Equal(t, 7, EnvDefaultInt("POKEDEX_TEST_STR", 7))
	assert.Equal(t, 90*time.Second, EnvDefaultDuration("POKEDEX_TEST_DUR", time.Second))
}
