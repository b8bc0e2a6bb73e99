package consensus

import (
	"bufio"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/juju/errors"
)

const maxLineLength = 1024 * 1024

const (
	keywordRouter    = "r"
	keywordAddress   = "a"
	keywordStatus    = "s"
	keywordVersion   = "v"
	keywordProtocols = "pr"
	keywordWeight    = "w"
	keywordPorts     = "p"
)

type blockState int

const (
	stateRouter blockState = iota
	stateAddress
	stateStatus
	stateVersion
	stateProtocols
	stateWeight
	statePorts
)

// next lists keywords which may follow a line of the given state.
var next = map[blockState][]string{
	stateRouter:    {keywordAddress, keywordStatus},
	stateAddress:   {keywordStatus},
	stateStatus:    {keywordVersion},
	stateVersion:   {keywordProtocols, keywordWeight},
	stateProtocols: {keywordWeight},
	stateWeight:    {keywordPorts},
}

var keywordStates = map[string]blockState{
	keywordAddress:   stateAddress,
	keywordStatus:    stateStatus,
	keywordVersion:   stateVersion,
	keywordProtocols: stateProtocols,
	keywordWeight:    stateWeight,
	keywordPorts:     statePorts,
}

// Reader scans a consensus document line by line and returns relay
// records. Blocks which miss a mandatory line are skipped.
type Reader struct {
	scanner *bufio.Scanner
	pending *string
	lineNo  int
	skipped int
}

// Read returns the next valid record. It returns io.EOF when document
// is over.
func (cr *Reader) Read() (*Record, error) {
	for {
		line, err := cr.nextLine()
		if err != nil {
			return nil, err
		}

		keyword, rest := splitLine(line)
		if keyword != keywordRouter {
			continue
		}

		startLine := cr.lineNo

		record, err := cr.readBlock(rest)
		if err == nil {
			return record, nil
		}

		if cause := errors.Cause(err); cause != errBlockBroken {
			return nil, err
		}

		cr.skipped++

		log.WithFields(log.Fields{
			"line": startLine,
			"err":  err,
		}).Debug("Skip malformed relay block")
	}
}

// Skipped returns a number of relay blocks which were dropped because
// of malformed or missing lines.
func (cr *Reader) Skipped() int {
	return cr.skipped
}

func (cr *Reader) readBlock(mainLine string) (*Record, error) {
	record, err := newRecord(strings.Fields(mainLine))
	if err != nil {
		return nil, errors.Wrap(err, errBlockBroken)
	}

	state := stateRouter

	for state != statePorts {
		line, err := cr.nextLine()
		switch {
		case err == io.EOF:
			return nil, errors.Annotate(errBlockBroken, "Document ended inside relay block")
		case err != nil:
			return nil, err
		}

		keyword, rest := splitLine(line)

		if !expected(state, keyword) {
			cr.unread(line)

			return nil, errors.Annotatef(errBlockBroken, "Unexpected line %q", keyword)
		}

		state = keywordStates[keyword]

		if err := fillRecord(record, state, rest); err != nil {
			return nil, errors.Wrap(err, errBlockBroken)
		}
	}

	return record, nil
}

func fillRecord(record *Record, state blockState, rest string) error {
	switch state {
	case stateAddress:
		record.IPv6 = rest
	case stateStatus:
		record.Flags = strings.Fields(rest)
	case stateVersion:
		record.Version = rest
	case stateWeight:
		bandwidth, err := parseBandwidth(rest)
		if err != nil {
			return err
		}
		record.Bandwidth = bandwidth
	case statePorts:
		record.Ports = rest
	}

	return nil
}

func (cr *Reader) nextLine() (string, error) {
	if cr.pending != nil {
		line := *cr.pending
		cr.pending = nil

		return line, nil
	}

	if !cr.scanner.Scan() {
		if err := cr.scanner.Err(); err != nil {
			return "", errors.Annotatef(err, "Cannot read line %d", cr.lineNo+1)
		}

		return "", io.EOF
	}

	cr.lineNo++

	return strings.TrimRight(cr.scanner.Text(), "\r"), nil
}

func (cr *Reader) unread(line string) {
	cr.pending = &line
}

func expected(state blockState, keyword string) bool {
	for _, v := range next[state] {
		if v == keyword {
			return true
		}
	}

	return false
}

func splitLine(line string) (string, string) {
	chunks := strings.SplitN(line, " ", 2)
	if len(chunks) == 1 {
		return chunks[0], ""
	}

	return chunks[0], strings.TrimSpace(chunks[1])
}

// ReadAll reads all valid records from the document. It also returns a
// number of skipped blocks.
func ReadAll(reader io.Reader) ([]*Record, int, error) {
	cr := NewReader(reader)
	records := []*Record{}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, cr.Skipped(), errors.Annotate(err, "Cannot read consensus")
		}

		records = append(records, record)
	}

	return records, cr.Skipped(), nil
}

// NewReader wraps io.Reader into consensus Reader.
func NewReader(reader io.Reader) *Reader {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64*1024), maxLineLength)

	return &Reader{scanner: scanner}
}
