package lines

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/Vodeneev/linesheet/internal/pkg/models"
)

var tagPattern = regexp.MustCompile(`^\s*(\d+):(\d+):`)

// StripTag removes a leading "page:lineIndex:" tag.
func StripTag(text string) (page, index int, rest string, ok bool) {
	m := tagPattern.FindStringSubmatchIndex(text)
	if m == nil {
		return 0, 0, text, false
	}
	page, err := strconv.Atoi(text[m[2]:m[3]])
	if err != nil {
		return 0, 0, text, false
	}
	index, err = strconv.Atoi(text[m[4]:m[5]])
	if err != nil {
		return 0, 0, text, false
	}
	return page, index, text[m[1]:], true
}

// maxLineSize bounds a single line of the text dump.
const maxLineSize = 1 << 20

// ReadAll converts the text stream produced by the document-to-text service
// into RawLines. Tagged lines keep their page and index; untagged lines take
// the page of the last page marker and a running per-page index.
func ReadAll(r io.Reader) ([]models.RawLine, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var out []models.RawLine
	page, index := 1, 0
	for scanner.Scan() {
		text := strings.TrimRight(scanner.Text(), "\r")

		if p, i, rest, ok := StripTag(text); ok {
			page = p
			out = append(out, models.RawLine{Page: p, LineIndex: i, Text: rest})
			index = i + 1
			continue
		}

		if n, ok := matchPageMarker(strings.TrimSpace(text)); ok {
			page, index = n, 0
		}
		out = append(out, models.RawLine{Page: page, LineIndex: index, Text: text})
		index++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lines: %w", err)
	}
	return out, nil
}
