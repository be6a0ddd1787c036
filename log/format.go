// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"fmt"
	"log/slog"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/holiman/uint256"
)

const termMsgJust = 40

func (h *TerminalHandler) format(buf []byte, r slog.Record) []byte {
	b := bytes.NewBuffer(buf)

	lvl := LevelAlignedString(r.Level)
	if h.useColor {
		color := 0
		switch r.Level {
		case LevelCrit:
			color = 35
		case slog.LevelError:
			color = 31
		case slog.LevelWarn:
			color = 33
		case slog.LevelInfo:
			color = 32
		case slog.LevelDebug:
			color = 36
		case LevelTrace:
			color = 34
		}
		fmt.Fprintf(b, "\x1b[%dm%s\x1b[0m", color, lvl)
	} else {
		b.WriteString(lvl)
	}
	b.WriteString("[")
	b.WriteString(r.Time.Format(termTimeFormat))
	b.WriteString("] ")
	b.WriteString(r.Message)

	// align the context block when there is one
	if r.NumAttrs()+len(h.attrs) > 0 && len(r.Message) < termMsgJust {
		b.Write(bytes.Repeat([]byte{' '}, termMsgJust-len(r.Message)))
	}

	writeAttr := func(attr slog.Attr) {
		b.WriteByte(' ')
		if h.useColor {
			fmt.Fprintf(b, "\x1b[%dm%s\x1b[0m=", 36, attr.Key)
		} else {
			b.WriteString(attr.Key)
			b.WriteByte('=')
		}
		b.WriteString(formatValue(attr.Value))
	}
	for _, attr := range h.attrs {
		writeAttr(attr)
	}
	r.Attrs(func(attr slog.Attr) bool {
		writeAttr(attr)
		return true
	})
	b.WriteByte('\n')
	return b.Bytes()
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return escape(v.String())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(timeFormat)
	}

	switch value := v.Any().(type) {
	case nil:
		return "<nil>"
	case *uint256.Int:
		if value == nil {
			return "<nil>"
		}
		return value.Dec()
	case error:
		return escape(value.Error())
	case time.Time:
		return value.Format(timeFormat)
	case fmt.Stringer:
		return escape(value.String())
	default:
		return escape(fmt.Sprintf("%+v", value))
	}
}

// escape quotes s if it contains characters that would break key=value parsing.
func escape(s string) string {
	if s == "" {
		return `""`
	}
	for _, r := range s {
		if r == utf8.RuneError || r <= ' ' || r == '=' || r == '"' {
			return strconv.Quote(s)
		}
	}
	return s
}
