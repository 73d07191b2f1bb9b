// Copyright (c) 2019 Perlin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

package log

import (
	"io"

	"github.com/rs/zerolog"
)

var (
	output = &multiWriter{
		writers: make(map[string]io.Writer),
	}
	logger = zerolog.New(output).With().Timestamp().Logger()

	node     zerolog.Logger
	accounts zerolog.Logger
	supply   zerolog.Logger
	token    zerolog.Logger
)

const (
	KeyModule = "mod"
	KeyEvent  = "event"

	LoggerConsole = "console"

	ModuleNode     = "node"
	ModuleAccounts = "accounts"
	ModuleSupply   = "supply"
	ModuleToken    = "token"
)

func init() {
	setupChildLoggers()
}

func setupChildLoggers() {
	node = logger.With().Str(KeyModule, ModuleNode).Logger()
	accounts = logger.With().Str(KeyModule, ModuleAccounts).Logger()
	supply = logger.With().Str(KeyModule, ModuleSupply).Logger()
	token = logger.With().Str(KeyModule, ModuleToken).Logger()
}

func SetLevel(level string) {
	if l, err := zerolog.ParseLevel(level); err == nil {
		node = node.Level(l)
		accounts = accounts.Level(l)
		supply = supply.Level(l)
		token = token.Level(l)
	}
}

func SetWriter(key string, writer io.Writer) {
	output.Set(key, writer)
}

func ClearWriter(key string) {
	output.Remove(key)
}

func Node() zerolog.Logger {
	return node
}

func Accounts(event string) zerolog.Logger {
	return accounts.With().Str(KeyEvent, event).Logger()
}

func Supply(event string) zerolog.Logger {
	return supply.With().Str(KeyEvent, event).Logger()
}

func Token(event string) zerolog.Logger {
	return token.With().Str(KeyEvent, event).Logger()
}
