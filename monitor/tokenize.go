// SPDX-License-Identifier: Unlicense OR MIT

package monitor

import "errors"

const whitespace = "\t\r\n "

var ErrTooManyArgs = errors.New("monitor: too many arguments")

// Tokenize splits buf into whitespace separated arguments. The
// whitespace in buf is overwritten with NUL bytes, and a NUL byte ends
// the line. If buf holds more than maxArgs arguments, Tokenize returns
// ErrTooManyArgs and no arguments.
func Tokenize(buf []byte, maxArgs int) ([]string, error) {
	var argv []string
	i := 0
	for {
		// Gobble whitespace.
		for i < len(buf) && isSpace(buf[i]) {
			buf[i] = 0
			i++
		}
		if i == len(buf) || buf[i] == 0 {
			break
		}
		if len(argv) == maxArgs {
			return nil, ErrTooManyArgs
		}
		start := i
		for i < len(buf) && buf[i] != 0 && !isSpace(buf[i]) {
			i++
		}
		argv = append(argv, string(buf[start:i]))
	}
	return argv, nil
}

func isSpace(c byte) bool {
	for i := 0; i < len(whitespace); i++ {
		if whitespace[i] == c {
			return true
		}
	}
	return false
}
