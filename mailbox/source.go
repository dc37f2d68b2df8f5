package mailbox

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/poiesic/mailvec/core"
)

// Source yields parsed messages one at a time. Next returns io.EOF when the
// archive is exhausted, and errors wrapping ErrMessageParse for individual
// undecodable messages; iteration can continue past those.
type Source interface {
	Next() (*core.ParsedEmail, error)
	Close() error
}

// Open opens an archive for reading. A directory is treated as a folder of
// .eml files; a regular file is treated as an mbox.
func Open(path string, parser *Parser) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrSourceNotFound)
		}
		return nil, fmt.Errorf("opening source: %w", err)
	}

	if info.IsDir() {
		return openDir(path, parser)
	}
	return openMbox(path, parser)
}

type dirSource struct {
	parser *Parser
	files  []string
	next   int
}

func openDir(path string, parser *Parser) (*dirSource, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("reading source directory: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".eml") {
			files = append(files, filepath.Join(path, entry.Name()))
		}
	}
	sort.Strings(files)

	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptySource)
	}
	return &dirSource{parser: parser, files: files}, nil
}

func (s *dirSource) Next() (*core.ParsedEmail, error) {
	if s.next >= len(s.files) {
		return nil, io.EOF
	}

	path := s.files[s.next]
	s.next++

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", ErrMessageParse, filepath.Base(path), err)
	}
	defer file.Close()

	parsed, err := s.parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return parsed, nil
}

func (s *dirSource) Close() error { return nil }

// mboxSource reads the classic "From " delimited mbox format, unescaping
// mboxrd-style ">From " lines inside message bodies.
type mboxSource struct {
	parser  *Parser
	file    *os.File
	scanner *bufio.Scanner
	buf     bytes.Buffer
	started bool
	done    bool
}

func openMbox(path string, parser *Parser) (*mboxSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening mbox: %w", err)
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 8*1024*1024)

	return &mboxSource{parser: parser, file: file, scanner: scanner}, nil
}

func (s *mboxSource) Next() (*core.ParsedEmail, error) {
	if s.done {
		return nil, io.EOF
	}

	s.buf.Reset()
	for s.scanner.Scan() {
		line := s.scanner.Text()

		if strings.HasPrefix(line, "From ") {
			if !s.started {
				s.started = true
				continue
			}
			return s.parseCurrent()
		}

		if !s.started {
			// Content before the first delimiter is not a message.
			continue
		}

		// mboxrd: any ">...>From " line lost exactly one ">" on write.
		if rest := strings.TrimLeft(line, ">"); len(rest) < len(line) && strings.HasPrefix(rest, "From ") {
			line = line[1:]
		}
		s.buf.WriteString(line)
		s.buf.WriteByte('\n')
	}

	if err := s.scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading mbox: %w", err)
	}

	s.done = true
	if !s.started {
		return nil, fmt.Errorf("%s: %w", s.file.Name(), ErrEmptySource)
	}
	return s.parseCurrent()
}

func (s *mboxSource) parseCurrent() (*core.ParsedEmail, error) {
	if strings.TrimSpace(s.buf.String()) == "" {
		if s.done {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: empty message body", ErrMessageParse)
	}
	return s.parser.Parse(bytes.NewReader(s.buf.Bytes()))
}

func (s *mboxSource) Close() error {
	return s.file.Close()
}
