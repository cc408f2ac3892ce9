package dialect

import (
	"strconv"
	"strings"
)

type Postgres struct{}

func NewPostgresDialect() Dialect {
	return &Postgres{}
}

func (Postgres) Name() string { return "postgres" }

func (Postgres) Placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

func (Postgres) Placeholders(sql string) []int {
	s := scanner{src: sql}
	var found []int
	for s.i < len(s.src) {
		c := s.src[s.i]
		switch {
		case c == '\'':
			s.skipQuoted('\'')
		case c == '"':
			s.skipQuoted('"')
		case c == '-' && s.peek(1) == '-':
			s.skipLine()
		case c == '/' && s.peek(1) == '*':
			s.skipBlock()
		case c == '$' && isDigit(s.peek(1)):
			s.i++
			start := s.i
			for s.i < len(s.src) && isDigit(s.src[s.i]) {
				s.i++
			}
			n, _ := strconv.Atoi(s.src[start:s.i])
			found = append(found, n)
		case c == '$':
			s.skipDollarQuoted()
		default:
			s.i++
		}
	}
	return found
}

type scanner struct {
	src string
	i   int
}

func (s *scanner) peek(k int) byte {
	if s.i+k < len(s.src) {
		return s.src[s.i+k]
	}
	return 0
}

// skipQuoted consumes a literal or quoted identifier; a doubled quote is an escape.
func (s *scanner) skipQuoted(q byte) {
	s.i++
	for s.i < len(s.src) {
		c := s.src[s.i]
		s.i++
		if c == q {
			if s.i < len(s.src) && s.src[s.i] == q {
				s.i++
				continue
			}
			return
		}
	}
}

func (s *scanner) skipLine() {
	for s.i < len(s.src) && s.src[s.i] != '\n' {
		s.i++
	}
}

func (s *scanner) skipBlock() {
	s.i += 2
	for s.i < len(s.src) {
		if s.src[s.i] == '*' && s.peek(1) == '/' {
			s.i += 2
			return
		}
		s.i++
	}
}

// skipDollarQuoted consumes $tag$...$tag$. A lone '$' is skipped.
func (s *scanner) skipDollarQuoted() {
	end := strings.IndexByte(s.src[s.i+1:], '$')
	if end < 0 {
		s.i++
		return
	}
	tag := s.src[s.i : s.i+end+2]
	if tag != "$$" && !IsIdentifier(tag[1:len(tag)-1]) {
		s.i++
		return
	}
	body := s.i + len(tag)
	closing := strings.Index(s.src[body:], tag)
	if closing < 0 {
		s.i = len(s.src)
		return
	}
	s.i = body + closing + len(tag)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
