package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yourusername/freedl-go/internal/domain"
)

const maxPickAttempts = 3

// pickFormat lists formats numbered from 1 and reads a choice. An empty
// answer selects the first format; a format id is accepted as well.
func pickFormat(in *bufio.Reader, out io.Writer, formats []domain.Format) (domain.Format, error) {
	if len(formats) == 0 {
		return domain.Format{}, errors.New("no formats to choose from")
	}

	for i, f := range formats {
		fmt.Fprintf(out, "%3d) %s\n", i+1, f.Label)
	}

	for attempt := 0; attempt < maxPickAttempts; attempt++ {
		fmt.Fprint(out, "Select a format [1]: ")

		line, err := in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return domain.Format{}, fmt.Errorf("failed to read selection: %w", err)
		}

		if f, ok := parseChoice(strings.TrimSpace(line), formats); ok {
			return f, nil
		}
		if errors.Is(err, io.EOF) {
			return domain.Format{}, fmt.Errorf("invalid selection %q", strings.TrimSpace(line))
		}
		fmt.Fprintf(out, "Enter a number between 1 and %d\n", len(formats))
	}

	return domain.Format{}, errors.New("no valid format selected")
}

func parseChoice(answer string, formats []domain.Format) (domain.Format, bool) {
	if answer == "" {
		return formats[0], true
	}
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(formats) {
		return formats[n-1], true
	}
	for _, f := range formats {
		if f.ID == answer {
			return f, true
		}
	}
	return domain.Format{}, false
}
