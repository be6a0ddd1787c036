// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalHandler(t *testing.T) {
	out := new(bytes.Buffer)
	var lvl slog.LevelVar
	lvl.Set(slog.LevelInfo)
	l := NewLogger(NewTerminalHandlerWithLevel(out, &lvl, false))

	l.Debug("hidden")
	assert.Empty(t, out.String())

	l.With("pkg", "draw").Info("ticket purchased", "amount", uint256.NewInt(42), "note", "two words")
	line := out.String()
	assert.True(t, strings.HasPrefix(line, "INFO ["))
	assert.Contains(t, line, "ticket purchased")
	assert.Contains(t, line, "pkg=draw")
	assert.Contains(t, line, "amount=42")
	assert.Contains(t, line, `note="two words"`)
}

func TestJSONHandler(t *testing.T) {
	out := new(bytes.Buffer)
	l := NewLogger(JSONHandler(out))
	l.Warn("admin override", "deadline", uint256.NewInt(7))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &rec))
	assert.Equal(t, "warn", rec["lvl"])
	assert.Equal(t, "admin override", rec["msg"])
	assert.Equal(t, "7", rec["deadline"])
}

func TestWithContextFollowsRoot(t *testing.T) {
	prev := Root()
	defer SetDefault(prev)

	l := WithContext("pkg", "test")

	out := new(bytes.Buffer)
	SetDefault(NewLogger(NewTerminalHandler(out, false)))
	l.Info("hello")
	assert.Contains(t, out.String(), "pkg=test")
}

func TestFromLegacyLevel(t *testing.T) {
	assert.Equal(t, LevelCrit, FromLegacyLevel(0))
	assert.Equal(t, LevelWarn, FromLegacyLevel(2))
	assert.Equal(t, LevelInfo, FromLegacyLevel(3))
	assert.Equal(t, LevelTrace, FromLegacyLevel(9))
	assert.Equal(t, "info", LevelString(LevelInfo))
}
