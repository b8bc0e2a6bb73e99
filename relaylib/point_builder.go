package relaylib

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/juju/errors"
	"github.com/panjf2000/ants/v2"

	"github.com/9seconds/relaymap/consensus"
)

const (
	DefaultWorkerPoolSize = 64

	workerPoolExpireTime = time.Minute
)

type buildPointRequest struct {
	ctx    context.Context
	idx    int
	record *consensus.Record
	points []WeightedPoint
	found  []bool
	wg     *sync.WaitGroup
}

// PointBuilder geocodes relay records into weighted points. Lookups are
// independent, so they run in parallel on a worker pool.
type PointBuilder struct {
	geocoder       Geocoder
	logger         Logger
	mode           Mode
	workerPoolSize int
}

// Build returns points in the order of records. Records which cannot be
// geocoded are reported to the logger and dropped.
func (p *PointBuilder) Build(ctx context.Context, records []*consensus.Record) ([]WeightedPoint, error) {
	pool, err := ants.NewPoolWithFunc(p.workerPoolSize, p.buildPoint,
		ants.WithExpiryDuration(workerPoolExpireTime))
	if err != nil {
		return nil, errors.Annotate(err, "Cannot create worker pool")
	}
	defer pool.Release()

	points := make([]WeightedPoint, len(records))
	found := make([]bool, len(records))
	wg := &sync.WaitGroup{}

	for i, v := range records {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)

		req := &buildPointRequest{
			ctx:    ctx,
			idx:    i,
			record: v,
			points: points,
			found:  found,
			wg:     wg,
		}

		if err := pool.Invoke(req); err != nil {
			wg.Done()
			wg.Wait()

			return nil, errors.Annotate(err, "Cannot schedule a task")
		}
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, errors.Annotate(err, "Geocoding was interrupted")
	}

	rv := make([]WeightedPoint, 0, len(records))

	for i := range points {
		if found[i] {
			rv = append(rv, points[i])
		}
	}

	return rv, nil
}

func (p *PointBuilder) buildPoint(args interface{}) {
	req := args.(*buildPointRequest)
	defer req.wg.Done()

	ip := net.ParseIP(req.record.IP)
	if ip == nil {
		p.logger.LookupError(req.record.IP, p.geocoder.Name(), ErrIncorrectIP)

		return
	}

	point, err := p.geocoder.Lookup(req.ctx, ip)
	if err != nil {
		p.logger.LookupError(req.record.IP, p.geocoder.Name(), err)

		return
	}

	req.points[req.idx] = WeightedPoint{
		Longitude: point.Longitude,
		Latitude:  point.Latitude,
		Weight:    p.mode.Weight(req.record.Bandwidth),
	}
	req.found[req.idx] = true
}

func NewPointBuilder(geocoder Geocoder, logger Logger, mode Mode, workerPoolSize int) *PointBuilder {
	if workerPoolSize <= 0 {
		workerPoolSize = DefaultWorkerPoolSize
	}

	return &PointBuilder{
		geocoder:       geocoder,
		logger:         logger,
		mode:           mode,
		workerPoolSize: workerPoolSize,
	}
}
