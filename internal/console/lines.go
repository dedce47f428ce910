// Package console turns an input stream into a channel of lines shared by
// the record control and the confirmation dialog.
package console

import (
	"bufio"
	"io"
)

// Lines reads r until EOF, sending each line without its terminator. The
// channel is closed when r is exhausted. Only one consumer should receive at
// a time.
func Lines(r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			ch <- scanner.Text()
		}
	}()
	return ch
}
