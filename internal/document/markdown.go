package document

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ankek/terraform-provider-diagrams/internal/parser"
)

const maxLine = 1 << 20

// ReadMarkdown splits a markdown document into text and fenced code blocks.
// A fence is a line starting with at least three backticks or tildes; it is
// closed by a line holding only the same character repeated at least as
// often. A fence left open runs to the end of the document.
func ReadMarkdown(r io.Reader) ([]Block, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	var (
		blocks []Block
		text   strings.Builder
		code   *CodeBlock
		src    strings.Builder
		lineNo int
	)

	flushText := func() {
		if text.Len() > 0 {
			blocks = append(blocks, Block{Text: text.String()})
			text.Reset()
		}
	}

	for sc.Scan() {
		lineNo++
		line := sc.Text()

		if code != nil {
			if closesFence(line, code.Fence) {
				code.Source = src.String()
				blocks = append(blocks, Block{Code: code})
				code = nil
				src.Reset()
				continue
			}
			src.WriteString(line)
			src.WriteByte('\n')
			continue
		}

		fence, info, ok := openFence(line)
		if !ok {
			text.WriteString(line)
			text.WriteByte('\n')
			continue
		}

		flushText()
		cb, err := parseInfo(info)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		cb.Fence = fence
		code = cb
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	if code != nil {
		code.Source = src.String()
		blocks = append(blocks, Block{Code: code})
	}
	flushText()
	return blocks, nil
}

func openFence(line string) (fence, info string, ok bool) {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 || len(trimmed) < 3 {
		return "", "", false
	}
	ch := trimmed[0]
	if ch != '`' && ch != '~' {
		return "", "", false
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == ch {
		n++
	}
	if n < 3 {
		return "", "", false
	}
	info = strings.TrimSpace(trimmed[n:])
	if ch == '`' && strings.ContainsRune(info, '`') {
		return "", "", false
	}
	return trimmed[:n], info, true
}

func closesFence(line, fence string) bool {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return false
	}
	trimmed = strings.TrimRight(trimmed, " \t")
	if len(trimmed) < len(fence) {
		return false
	}
	return strings.Trim(trimmed, fence[:1]) == ""
}

// parseInfo reads the info string of a fence: either a bare language word or
// pandoc attribute braces such as {#id .diagram width=300 echo="above"}.
func parseInfo(info string) (*CodeBlock, error) {
	cb := &CodeBlock{}
	if info == "" {
		return cb, nil
	}
	if !strings.HasPrefix(info, "{") {
		lang := strings.Fields(info)[0]
		cb.Language = lang
		cb.Classes = []string{lang}
		return cb, nil
	}
	if !strings.HasSuffix(info, "}") {
		return nil, fmt.Errorf("unterminated attribute braces %q", info)
	}

	tokens, err := tokenize(info[1 : len(info)-1])
	if err != nil {
		return nil, err
	}
	for _, tok := range tokens {
		switch {
		case strings.HasPrefix(tok, "#"):
			cb.ID = tok[1:]
		case strings.HasPrefix(tok, "."):
			cb.Classes = append(cb.Classes, tok[1:])
		case strings.Contains(tok, "="):
			k, v, _ := strings.Cut(tok, "=")
			cb.Attributes = append(cb.Attributes, parser.Attribute{Key: k, Value: v})
		default:
			cb.Classes = append(cb.Classes, tok)
		}
	}
	return cb, nil
}

// tokenize splits s on whitespace, keeping double quoted values together and
// dropping their quotes.
func tokenize(s string) ([]string, error) {
	var (
		tokens  []string
		cur     strings.Builder
		inQuote bool
		escaped bool
		started bool
	)
	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case inQuote && r == '\\':
			escaped = true
		case r == '"':
			inQuote = !inQuote
			started = true
		case !inQuote && (r == ' ' || r == '\t'):
			if started {
				tokens = append(tokens, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if inQuote {
		return nil, fmt.Errorf("unterminated quote in attributes %q", s)
	}
	if started {
		tokens = append(tokens, cur.String())
	}
	return tokens, nil
}

// WriteMarkdown writes blocks back out as markdown.
func WriteMarkdown(w io.Writer, blocks []Block) error {
	bw := bufio.NewWriter(w)
	for _, b := range blocks {
		switch {
		case b.Code != nil:
			writeCode(bw, b.Code)
		case b.Image != nil:
			fmt.Fprintf(bw, "![](%s)%s\n", b.Image.Path, formatAttributes(b.Image.ID, nil, b.Image.Attributes))
		default:
			bw.WriteString(b.Text)
		}
	}
	return bw.Flush()
}

func writeCode(w *bufio.Writer, cb *CodeBlock) {
	fence := cb.Fence
	if fence == "" {
		fence = "```"
	}
	info := ""
	if cb.Language != "" {
		info = " " + cb.Language
	}
	if cb.ID != "" || len(cb.Attributes) > 0 || len(cb.Classes) > 1 || (len(cb.Classes) == 1 && cb.Classes[0] != cb.Language) {
		info = formatAttributes(cb.ID, cb.Classes, cb.Attributes)
	}
	w.WriteString(fence + info + "\n")
	w.WriteString(cb.Source)
	if cb.Source != "" && !strings.HasSuffix(cb.Source, "\n") {
		w.WriteByte('\n')
	}
	w.WriteString(fence + "\n")
}
