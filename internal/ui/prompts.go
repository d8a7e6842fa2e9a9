package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// In is where prompts read answers from
var In io.Reader = os.Stdin

// reader buffers In across prompts so piped answers are not lost
var (
	reader    *bufio.Reader
	readerSrc io.Reader
)

func inputReader() *bufio.Reader {
	if reader == nil || readerSrc != In {
		reader = bufio.NewReader(In)
		readerSrc = In
	}
	return reader
}

// AskString prompts for a line of input. An empty answer yields def.
// ok is false when input ended before a line was read.
func AskString(prompt, def string) (answer string, ok bool) {
	if def != "" {
		_, _ = fmt.Fprintf(Out, "  %s [%s]: ", prompt, Dim(def))
	} else {
		_, _ = fmt.Fprintf(Out, "  %s: ", prompt)
	}

	response, err := inputReader().ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || response == "") {
		_, _ = fmt.Fprintln(Out)
		return "", false
	}

	response = strings.TrimSpace(response)
	if response == "" {
		return def, true
	}
	return response, true
}
