package client

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const MaxInputChars = 2000

// Composer is the input box: a rune-limited buffer with a counter.
type Composer struct {
	buf []rune
}

func NewComposer() *Composer {
	return &Composer{}
}

// Type appends text, dropping whatever does not fit.
func (c *Composer) Type(text string) {
	room := MaxInputChars - len(c.buf)
	if room <= 0 {
		return
	}
	runes := []rune(text)
	if len(runes) > room {
		runes = runes[:room]
	}
	c.buf = append(c.buf, runes...)
}

// Set replaces the buffer, truncating to the limit.
func (c *Composer) Set(text string) {
	c.buf = c.buf[:0]
	c.Type(text)
}

func (c *Composer) Text() string {
	return string(c.buf)
}

func (c *Composer) Len() int {
	return len(c.buf)
}

func (c *Composer) Counter() string {
	return fmt.Sprintf("%d/%d", len(c.buf), MaxInputChars)
}

// CanSend is false for blank input or while a request is pending.
func (c *Composer) CanSend(busy bool) bool {
	return !busy && strings.TrimSpace(string(c.buf)) != ""
}

// Take returns the buffered text and clears it when sending is allowed.
func (c *Composer) Take(busy bool) (string, bool) {
	if !c.CanSend(busy) {
		return "", false
	}
	text := string(c.buf)
	c.buf = c.buf[:0]
	return text, true
}

// fits reports whether text is within the input limit.
func fits(text string) bool {
	return utf8.RuneCountInString(text) <= MaxInputChars
}
