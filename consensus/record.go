package consensus

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/juju/errors"
)

// PublishedLayout is a layout of the publication date and time of the
// main relay line.
const PublishedLayout = "2006-01-02 15:04:05"

const bandwidthPrefix = "Bandwidth="

// Record presents a relay extracted from a consensus document.
type Record struct {
	Nickname  string
	Identity  string
	Digest    string
	Published time.Time
	IP        string
	ORPort    int
	DirPort   int
	IPv6      string
	Flags     []string
	Version   string
	Bandwidth uint64
	Ports     string
}

// HasFlag tells if relay was published with the given status flag.
func (r *Record) HasFlag(flag string) bool {
	for _, v := range r.Flags {
		if v == flag {
			return true
		}
	}

	return false
}

// HasFlags tells if relay has all given flags.
func (r *Record) HasFlags(flags []string) bool {
	for _, v := range flags {
		if !r.HasFlag(v) {
			return false
		}
	}

	return true
}

func newRecord(fields []string) (*Record, error) {
	if len(fields) != 8 {
		return nil, errors.Errorf("Main line has %d fields instead of 8", len(fields))
	}

	published, err := time.Parse(PublishedLayout, fields[3]+" "+fields[4])
	if err != nil {
		return nil, errors.Annotate(err, "Incorrect publication time")
	}

	if parsed := net.ParseIP(fields[5]); parsed == nil || parsed.To4() == nil {
		return nil, errors.Errorf("Incorrect IPv4 address %s", fields[5])
	}

	orPort, err := parsePort(fields[6])
	if err != nil {
		return nil, errors.Annotate(err, "Incorrect ORPort")
	}

	dirPort, err := parsePort(fields[7])
	if err != nil {
		return nil, errors.Annotate(err, "Incorrect DirPort")
	}

	return &Record{
		Nickname:  fields[0],
		Identity:  fields[1],
		Digest:    fields[2],
		Published: published.UTC(),
		IP:        fields[5],
		ORPort:    orPort,
		DirPort:   dirPort,
	}, nil
}

func parsePort(value string) (int, error) {
	port, err := strconv.ParseUint(value, 10, 16)
	if err != nil {
		return 0, err
	}

	return int(port), nil
}

// parseBandwidth extracts an integer from Bandwidth=<n> token. Other
// tokens of the weight line are ignored.
func parseBandwidth(rest string) (uint64, error) {
	for _, token := range strings.Fields(rest) {
		if !strings.HasPrefix(token, bandwidthPrefix) {
			continue
		}

		value, err := strconv.ParseUint(strings.TrimPrefix(token, bandwidthPrefix), 10, 64)
		if err != nil {
			return 0, errors.Annotatef(err, "Incorrect bandwidth token %s", token)
		}

		return value, nil
	}

	return 0, errors.New("Bandwidth token is absent")
}
