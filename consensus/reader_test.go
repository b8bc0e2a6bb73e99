package consensus

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullBlock = `r seele AAoQ1DAR6kkoo19hBAX5K0QztNw 3pnqhv8WzgPu8SD9vzJRoQlwMz8 2024-03-01 11:24:51 104.53.221.159 9001 0
a [2600:1700:5b20:7830::1]:9001
s Fast Guard Running Stable V2Dir Valid
v Tor 0.4.8.10
pr Conflux=1 Cons=1-2 Desc=1-2 DirCache=2 FlowCtrl=1-2 HSDir=2
w Bandwidth=960
p reject 1-65535
`

const shortBlock = `r lisdex AAwffNL+oHO5EdyUoWAOwvEX3ws ZcSfbSjf2TV1bSb3nl2zK9ohTgk 2024-03-01 09:53:36 51.15.40.38 9001 9030
s Fast Running Stable Valid
v Tor 0.4.7.16
w Bandwidth=8400 Unmeasured=1
p accept 80,443
`

func TestReaderFullBlock(t *testing.T) {
	reader := NewReader(bytes.NewBufferString(fullBlock))

	record, err := reader.Read()
	require.Nil(t, err)

	assert.Equal(t, "seele", record.Nickname)
	assert.Equal(t, "AAoQ1DAR6kkoo19hBAX5K0QztNw", record.Identity)
	assert.Equal(t, "3pnqhv8WzgPu8SD9vzJRoQlwMz8", record.Digest)
	assert.Equal(t, time.Date(2024, 3, 1, 11, 24, 51, 0, time.UTC), record.Published)
	assert.Equal(t, "104.53.221.159", record.IP)
	assert.Equal(t, 9001, record.ORPort)
	assert.Equal(t, 0, record.DirPort)
	assert.Equal(t, "[2600:1700:5b20:7830::1]:9001", record.IPv6)
	assert.Equal(t, []string{"Fast", "Guard", "Running", "Stable", "V2Dir", "Valid"}, record.Flags)
	assert.Equal(t, "Tor 0.4.8.10", record.Version)
	assert.EqualValues(t, 960, record.Bandwidth)
	assert.Equal(t, "reject 1-65535", record.Ports)

	_, err = reader.Read()
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 0, reader.Skipped())
}

func TestReaderOptionalLines(t *testing.T) {
	mainLine := "r nick AAAA BBBB 2024-03-01 00:00:00 1.2.3.4 443 80\n"
	tail := "w Bandwidth=42\np accept 443\n"

	variants := map[string]string{
		"none":      mainLine + "s Valid\nv Tor 0.4.8.1\n" + tail,
		"address":   mainLine + "a [::1]:443\ns Valid\nv Tor 0.4.8.1\n" + tail,
		"protocols": mainLine + "s Valid\nv Tor 0.4.8.1\npr Link=1-5\n" + tail,
		"both":      mainLine + "a [::1]:443\ns Valid\nv Tor 0.4.8.1\npr Link=1-5\n" + tail,
	}

	for name, text := range variants {
		records, skipped, err := ReadAll(strings.NewReader(text))

		assert.Nil(t, err, name)
		assert.Equal(t, 0, skipped, name)
		if assert.Len(t, records, 1, name) {
			assert.Equal(t, "1.2.3.4", records[0].IP, name)
			assert.EqualValues(t, 42, records[0].Bandwidth, name)
			assert.Equal(t, "accept 443", records[0].Ports, name)
			assert.Equal(t, "Tor 0.4.8.1", records[0].Version, name)
		}
	}
}

func TestReaderSkipsHeaderAndFooter(t *testing.T) {
	text := `network-status-version 3
vote-status consensus
valid-after 2024-03-01 12:00:00
known-flags Authority BadExit Exit Fast Guard HSDir Running Stable V2Dir Valid
dir-source moria1 F533C81CEF0BC0267857C99B2F471ADF249FA232 128.31.0.34 128.31.0.34 9131 9101
` + fullBlock + shortBlock + `directory-footer
bandwidth-weights Wbd=0 Wbe=0
directory-signature 0232AF901C31A04EE9848595AF9BB7620D4C5B2E
-----BEGIN SIGNATURE-----
r2lfRqqT
-----END SIGNATURE-----
`

	records, skipped, err := ReadAll(strings.NewReader(text))

	assert.Nil(t, err)
	assert.Equal(t, 0, skipped)
	if assert.Len(t, records, 2) {
		assert.Equal(t, "seele", records[0].Nickname)
		assert.Equal(t, "lisdex", records[1].Nickname)
		assert.EqualValues(t, 8400, records[1].Bandwidth)
	}
}

func TestReaderMissingVersion(t *testing.T) {
	broken := `r broken AAAA BBBB 2024-03-01 00:00:00 5.6.7.8 443 0
s Fast Valid
w Bandwidth=10
p reject 1-65535
`

	records, skipped, err := ReadAll(strings.NewReader(broken + shortBlock))

	assert.Nil(t, err)
	assert.Equal(t, 1, skipped)
	if assert.Len(t, records, 1) {
		assert.Equal(t, "lisdex", records[0].Nickname)
	}
}

func TestReaderBlockDoesNotConsumeNextRelay(t *testing.T) {
	broken := `r broken AAAA BBBB 2024-03-01 00:00:00 5.6.7.8 443 0
s Fast Valid
v Tor 0.4.8.1
`

	records, skipped, err := ReadAll(strings.NewReader(broken + fullBlock + broken + shortBlock))

	assert.Nil(t, err)
	assert.Equal(t, 2, skipped)
	if assert.Len(t, records, 2) {
		assert.Equal(t, "seele", records[0].Nickname)
		assert.Equal(t, "lisdex", records[1].Nickname)
	}
}

func TestReaderMissingMandatoryLines(t *testing.T) {
	lines := []string{
		"r nick AAAA BBBB 2024-03-01 00:00:00 1.2.3.4 443 80",
		"s Valid",
		"v Tor 0.4.8.1",
		"w Bandwidth=42",
		"p accept 443",
	}

	for idx := range lines {
		block := []string{}
		block = append(block, lines[:idx]...)
		block = append(block, lines[idx+1:]...)
		text := strings.Join(block, "\n") + "\n" + shortBlock

		records, _, err := ReadAll(strings.NewReader(text))

		assert.Nil(t, err)
		if assert.Len(t, records, 1, "missing line %d", idx) {
			assert.Equal(t, "lisdex", records[0].Nickname)
		}
	}
}

func TestReaderOutOfOrderLines(t *testing.T) {
	text := `r nick AAAA BBBB 2024-03-01 00:00:00 1.2.3.4 443 80
s Valid
a [::1]:443
v Tor 0.4.8.1
w Bandwidth=42
p accept 443
`

	records, skipped, err := ReadAll(strings.NewReader(text))

	assert.Nil(t, err)
	assert.Len(t, records, 0)
	assert.Equal(t, 1, skipped)
}

func TestReaderIncorrectMainLine(t *testing.T) {
	tail := "s Valid\nv Tor 0.4.8.1\nw Bandwidth=42\np accept 443\n"

	for _, mainLine := range []string{
		"r nick AAAA BBBB 2024-03-01 00:00:00 1.2.3.4 443",
		"r nick AAAA BBBB 2024-03-01 00:00:00 1.2.3.4 443 80 extra",
		"r nick AAAA BBBB 2024-13-01 00:00:00 1.2.3.4 443 80",
		"r nick AAAA BBBB 2024-03-01 00:00:00 1.2.3 443 80",
		"r nick AAAA BBBB 2024-03-01 00:00:00 2001:db8::1 443 80",
		"r nick AAAA BBBB 2024-03-01 00:00:00 1.2.3.4 http 80",
		"r nick AAAA BBBB 2024-03-01 00:00:00 1.2.3.4 443 70000",
	} {
		records, skipped, err := ReadAll(strings.NewReader(mainLine + "\n" + tail))

		assert.Nil(t, err, mainLine)
		assert.Len(t, records, 0, mainLine)
		assert.Equal(t, 1, skipped, mainLine)
	}
}

func TestReaderIncorrectBandwidth(t *testing.T) {
	head := "r nick AAAA BBBB 2024-03-01 00:00:00 1.2.3.4 443 80\ns Valid\nv Tor 0.4.8.1\n"

	for _, weightLine := range []string{
		"w Unmeasured=1",
		"w Bandwidth=",
		"w Bandwidth=-1",
		"w Bandwidth=lots",
		"w",
	} {
		records, skipped, err := ReadAll(strings.NewReader(head + weightLine + "\np accept 443\n"))

		assert.Nil(t, err, weightLine)
		assert.Len(t, records, 0, weightLine)
		assert.Equal(t, 1, skipped, weightLine)
	}
}

func TestReaderTruncatedDocument(t *testing.T) {
	text := fullBlock + "r nick AAAA BBBB 2024-03-01 00:00:00 1.2.3.4 443 80\ns Valid\n"

	records, skipped, err := ReadAll(strings.NewReader(text))

	assert.Nil(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 1, skipped)
}

func TestReaderCRLF(t *testing.T) {
	text := strings.Replace(shortBlock, "\n", "\r\n", -1)

	records, _, err := ReadAll(strings.NewReader(text))

	assert.Nil(t, err)
	if assert.Len(t, records, 1) {
		assert.Equal(t, "accept 80,443", records[0].Ports)
		assert.Equal(t, "Tor 0.4.7.16", records[0].Version)
	}
}

func TestReaderTooLongLine(t *testing.T) {
	text := "r " + strings.Repeat("x", maxLineLength+1) + "\n"

	_, _, err := ReadAll(strings.NewReader(text))

	assert.NotNil(t, err)
}

func TestRecordFlags(t *testing.T) {
	record := &Record{Flags: []string{"Exit", "Fast", "Running"}}

	assert.True(t, record.HasFlag("Exit"))
	assert.False(t, record.HasFlag("Guard"))
	assert.True(t, record.HasFlags([]string{"Exit", "Fast"}))
	assert.False(t, record.HasFlags([]string{"Exit", "Guard"}))
	assert.True(t, record.HasFlags(nil))
}
