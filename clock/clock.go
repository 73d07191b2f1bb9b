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

// Package clock implements comparison and subtraction over the wrapping
// 32-bit clock that timestamps balance observations, and over the wrapping
// 64-bit cumulative balance accumulator.
//
// The clock advances modulo 2^32, so raw ordering of two readings is
// meaningless once the clock has wrapped. Every chronological decision is
// instead made relative to the present reading: the larger the distance back
// from the present, the earlier the moment. Callers must route every
// timestamp comparison and subtraction through this package.
package clock

// Elapsed returns the time elapsed from reading a to a later reading b,
// modulo 2^32.
func Elapsed(a, b uint32) uint32 {
	return b - a
}

// Before reports whether reading a is chronologically earlier than reading
// b. Both readings must be no more than one full wrap older than now.
func Before(a, b, now uint32) bool {
	return now-a > now-b
}

// AtOrAfter reports whether reading a is chronologically at, or later than,
// reading b. Both readings must be no more than one full wrap older than now.
func AtOrAfter(a, b, now uint32) bool {
	return now-a <= now-b
}

// Sub returns a minus b modulo 2^64. A single wrap of the cumulative
// accumulator between two observations cancels out here, which is why
// accumulator overflow is tolerated rather than treated as corruption.
func Sub(a, b uint64) uint64 {
	return a - b
}
