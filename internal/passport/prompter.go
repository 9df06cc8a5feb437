package passport

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"
)

const (
	selectionPromptConstant  = "» Select an [ID] or enter «(q)uit» to exit: "
	quitShortLiteralConstant = "q"
	quitLongLiteralConstant  = "quit"
)

// IOSelectionPrompter collects passport selections from the provided input
// and output streams.
type IOSelectionPrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewIOSelectionPrompter constructs a prompter reading from the provided
// reader and writing the prompt to the provided writer.
func NewIOSelectionPrompter(inputReader io.Reader, outputWriter io.Writer) *IOSelectionPrompter {
	return &IOSelectionPrompter{reader: bufio.NewReader(inputReader), writer: outputWriter}
}

// PromptSelection asks until the user enters one of the valid indices.
// Entering q or quit yields ErrSelectionAborted; exhausted input yields
// ErrSelectionInputClosed.
func (prompter *IOSelectionPrompter) PromptSelection(validSelections []int) (int, error) {
	for {
		if prompter.writer != nil {
			if _, writeError := io.WriteString(prompter.writer, selectionPromptConstant); writeError != nil {
				return 0, writeError
			}
		}

		inputLine, readError := prompter.reader.ReadString('\n')
		trimmedInput := strings.TrimSpace(inputLine)

		if selectedIndex, parseError := strconv.Atoi(trimmedInput); parseError == nil {
			if containsSelection(validSelections, selectedIndex) {
				return selectedIndex, nil
			}
		} else if trimmedInput == quitShortLiteralConstant || trimmedInput == quitLongLiteralConstant {
			return 0, ErrSelectionAborted
		}

		if readError != nil {
			if errors.Is(readError, io.EOF) {
				return 0, ErrSelectionInputClosed
			}
			return 0, readError
		}
	}
}

func containsSelection(validSelections []int, candidateSelection int) bool {
	for _, validSelection := range validSelections {
		if validSelection == candidateSelection {
			return true
		}
	}
	return false
}
