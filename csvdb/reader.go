package csvdb

import (
	"encoding/csv"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/juju/errors"
)

// RecordMaker is a type which converts parsed CSV row to the Record instance.
type RecordMaker func([]string) (*Record, error)

// CSVReader is a wrapper over csv.Reader to convert each row into Record
// instance. Rows which cannot be converted are returned as nil records.
type CSVReader struct {
	reader     *csv.Reader
	makeRecord RecordMaker
	line       int
}

func (cr *CSVReader) Read() (*Record, error) {
	data, err := cr.next()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, errors.Annotatef(err, "Cannot read row %d", cr.line)
	}

	record, err := cr.makeRecord(data)
	if err != nil {
		log.WithFields(log.Fields{
			"row":  cr.line,
			"data": data,
			"err":  err,
		}).Debug("Cannot parse record")
		record = nil
	}

	return record, nil
}

func (cr *CSVReader) next() (data []string, err error) {
	for err == nil && len(data) == 0 {
		data, err = cr.reader.Read()
		cr.line++
	}

	return
}

// NewCSVReader converts given io.Reader instance into CSVReader.
func NewCSVReader(filefp io.Reader, makeRecord RecordMaker) *CSVReader {
	reader := csv.NewReader(filefp)
	reader.ReuseRecord = true
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	return &CSVReader{reader: reader, makeRecord: makeRecord}
}
