// Copyright 2025 The Kube Resource Orchestrator Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License"). You may
// not use this file except in compliance with the License. A copy of the
// License is located at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// or in the "license" file accompanying this file. This file is distributed
// on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either
// express or implied. See the License for the specific language governing
// permissions and limitations under the License.

package view

import (
	"io"
	"log/slog"
	"time"

	"github.com/fatih/color"
	"github.com/go-logr/logr"
	"github.com/lmittmann/tint"
)

type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	LogLevelSilent
)

// silent is above every level slog defines.
const silent = slog.Level(100)

func (l LogLevel) toSlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return silent
	}
}

func rewriteLogLevel(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey && len(groups) == 0 {
		level, ok := a.Value.Any().(slog.Level)
		if !ok {
			return a
		}

		var levelText string
		switch {
		case level < slog.LevelInfo:
			levelText = "DEBUG"
		case level < slog.LevelWarn:
			levelText = color.GreenString("INFO")
		case level < slog.LevelError:
			levelText = color.YellowString("WARN")
		default:
			levelText = color.RedString("ERROR")
		}
		a.Value = slog.StringValue(levelText)
	}

	return a
}

// NewHumanLogger returns a logr.Logger writing colored text to w.
//
// logr verbosity maps onto slog levels as V(n) → Info-n, so V(1) lines show
// at LogLevelDebug only.
func NewHumanLogger(w io.Writer, level LogLevel) logr.Logger {
	handler := tint.NewHandler(w, &tint.Options{
		Level:       level.toSlogLevel(),
		TimeFormat:  time.DateTime,
		ReplaceAttr: rewriteLogLevel,
		NoColor:     color.NoColor,
	})
	return logr.FromSlogHandler(handler)
}

// NewJSONLogger returns a logr.Logger writing one JSON object per line to w.
func NewJSONLogger(w io.Writer, level LogLevel) logr.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level.toSlogLevel(),
	})
	return logr.FromSlogHandler(handler)
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() logr.Logger {
	return logr.Discard()
}
