// Package disposable maintains the corpus of known disposable-mailbox
// domains. The bundled list is compiled in; a deployment can layer a
// larger list on top from a text file. The corpus is immutable after
// load.
package disposable

import (
	"bufio"
	_ "embed"
	"fmt"
	"os"
	"strings"
)

//go:embed list.txt
var embeddedList string

// Corpus is a set of disposable domains.
type Corpus struct {
	domains map[string]struct{}
}

// Default returns a corpus containing only the bundled fallback list.
func Default() *Corpus {
	c := &Corpus{domains: make(map[string]struct{})}
	c.addLines(strings.Split(embeddedList, "\n"))
	return c
}

// Load returns the bundled corpus extended with the domains from path
// (one per line, '#' starts a comment). A missing file is non-fatal:
// the bundled fallback is returned alone, together with the error so
// the caller can log it.
func Load(path string) (*Corpus, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return c, fmt.Errorf("disposable list %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		c.addLine(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return c, fmt.Errorf("disposable list %s: %w", path, err)
	}
	return c, nil
}

// Contains reports whether domain is a corpus member.
func (c *Corpus) Contains(domain string) bool {
	_, ok := c.domains[strings.ToLower(domain)]
	return ok
}

// Len returns the number of domains in the corpus.
func (c *Corpus) Len() int { return len(c.domains) }

func (c *Corpus) addLines(lines []string) {
	for _, line := range lines {
		c.addLine(line)
	}
}

func (c *Corpus) addLine(line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}
	c.domains[strings.ToLower(line)] = struct{}{}
}
