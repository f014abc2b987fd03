// Package logging はアプリケーション共通のロガーを構築する
package logging

import (
	"io"
	"log/slog"

	"github.com/mattn/go-isatty"
)

type fdWriter interface {
	Fd() uintptr
}

// New は w に出力するロガーを作成する。
// 端末への出力ならテキスト形式、それ以外はJSON形式。debug が true ならDebugレベルまで出力する
func New(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	if IsTerminal(w) {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// IsTerminal は w が端末かどうかを返す
func IsTerminal(w io.Writer) bool {
	f, ok := w.(fdWriter)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Discard は何も出力しないロガーを返す
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
