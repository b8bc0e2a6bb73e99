package providers

import (
	"bufio"
	"compress/gzip"
	"context"
	"io"
	"net"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/9seconds/relaymap/csvdb"
	"github.com/9seconds/relaymap/relaylib"
	"github.com/asergeyev/nradix"
	"github.com/juju/errors"
	"github.com/spf13/afero"
)

// CSVDB geocodes ip addresses with CSV file of
// start_ip,finish_ip,longitude,latitude rows. Files with .gz suffix are
// gunzipped.
type CSVDB struct {
	db *nradix.Tree
}

func (cdp *CSVDB) Name() string {
	return NameCSVDB
}

func (cdp *CSVDB) Lookup(ctx context.Context, ip net.IP) (relaylib.GeoPoint, error) {
	if cdp.db == nil {
		return relaylib.GeoPoint{}, ErrDatabaseIsClosed
	}

	if ip.To4() == nil {
		return relaylib.GeoPoint{}, relaylib.ErrLocationUnknown
	}

	data, err := cdp.db.FindCIDR(ip.String() + "/32")
	if err != nil {
		return relaylib.GeoPoint{}, errors.Annotate(err, "Cannot lookup this ip address")
	}

	if converted, ok := data.(*relaylib.GeoPoint); ok && converted != nil {
		return *converted, nil
	}

	return relaylib.GeoPoint{}, relaylib.ErrLocationUnknown
}

func (cdp *CSVDB) Close() error {
	cdp.db = nil

	return nil
}

func createCSVDatabase(reader io.Reader) (*nradix.Tree, error) {
	csvReader := csvdb.NewCSVReader(reader, csvdb.MakeRecord)
	tree := nradix.NewTree(0)

	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Annotate(err, "Error during parsing CSV")
		}
		if record == nil {
			continue
		}

		point := &relaylib.GeoPoint{
			Longitude: record.Longitude,
			Latitude:  record.Latitude,
		}

		subnets, err := record.GetSubnets()
		if err != nil {
			log.WithFields(log.Fields{
				"startIP":  record.StartIP,
				"finishIP": record.FinishIP,
				"err":      err,
			}).Warn("Cannot parse ip range")

			continue
		}

		for _, cidr := range subnets {
			if err := addOrSetCIDR(tree, cidr, point); err != nil {
				return nil, err
			}
		}
	}

	return tree, nil
}

func addOrSetCIDR(tree *nradix.Tree, cidr string, point *relaylib.GeoPoint) error {
	errAdd := tree.AddCIDR(cidr, point)
	if errAdd == nil {
		return nil
	}

	if errAdd != nradix.ErrNodeBusy {
		return errors.Annotate(errAdd, "Incorrect IP range")
	}

	log.WithFields(log.Fields{
		"cidr": cidr,
	}).Debug("CIDR already exists, set the new value")

	if errSet := tree.SetCIDR(cidr, point); errSet != nil {
		return errors.Annotate(errSet, "Incorrect IP range")
	}

	return nil
}

// NewCSVDB reads a database from the given filesystem.
func NewCSVDB(fs afero.Fs, path string) (*CSVDB, error) {
	rawFile, err := fs.Open(path)
	if err != nil {
		return nil, errors.Annotatef(err, "Cannot open csvdb database %s", path)
	}
	defer rawFile.Close() // nolint

	var reader io.Reader = bufio.NewReader(rawFile)

	if strings.HasSuffix(path, ".gz") {
		gzipFile, err := gzip.NewReader(reader)
		if err != nil {
			return nil, errors.Annotatef(err, "Incorrect gzip archive %s", path)
		}
		defer gzipFile.Close() // nolint

		reader = gzipFile
	}

	tree, err := createCSVDatabase(reader)
	if err != nil {
		return nil, errors.Annotatef(err, "Cannot read csvdb database %s", path)
	}

	return &CSVDB{db: tree}, nil
}
