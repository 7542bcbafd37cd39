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

package database

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logLine struct {
	level  string
	msg    string
	fields []interface{}
}

type recordingLogger struct {
	mu    sync.Mutex
	lines []logLine
}

func (l *recordingLogger) record(level, msg string, fields []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, logLine{level: level, msg: msg, fields: fields})
}

func (l *recordingLogger) SetLevel(LogLevel)                       {}
func (l *recordingLogger) Debug(msg string, fields ...interface{}) { l.record("debug", msg, fields) }
func (l *recordingLogger) Info(msg string, fields ...interface{})  { l.record("info", msg, fields) }
func (l *recordingLogger) Warn(msg string, fields ...interface{})  { l.record("warn", msg, fields) }
func (l *recordingLogger) Error(msg string, fields ...interface{}) { l.record("error", msg, fields) }

func (l *recordingLogger) matching(level, substr string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, line := range l.lines {
		if line.level == level && strings.Contains(line.msg, substr) {
			n++
		}
	}
	return n
}

func TestQueryHooks(t *testing.T) {
	cfg := memoryConfig().ConnectionConfig
	cfg.EnableQueryLog = true
	cfg.SlowQueryTime = time.Nanosecond

	rec := &recordingLogger{}
	registry := NewModelRegistry()
	registry.Register(NewModelAdapter((*testBadge)(nil), 1))

	manager := NewDatabaseManager(&cfg, registry)
	manager.SetLogger(rec)
	require.NoError(t, manager.Connect(context.Background()))
	t.Cleanup(func() { _ = manager.Disconnect() })

	require.NoError(t, manager.RunMigrations(context.Background()))
	assert.Zero(t, rec.matching("debug", "CREATE TABLE"), "migrations run silently")

	ctx := context.Background()
	_, err := manager.GetDB().NewInsert().Model(&testBadge{Name: "cascade"}).Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.matching("debug", "INSERT INTO"))
	assert.Equal(t, 1, rec.matching("warn", "slow query"))

	_, err = manager.GetDB().NewInsert().Model(&testBadge{Name: "cascade"}).Exec(ctx)
	require.Error(t, err)
	assert.Equal(t, 1, rec.matching("warn", "INSERT INTO"))
}
