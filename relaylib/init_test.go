package relaylib_test

import (
	"context"
	"net"

	"github.com/stretchr/testify/mock"

	"github.com/9seconds/relaymap/relaylib"
)

type GeocoderMock struct {
	mock.Mock
}

func (m *GeocoderMock) Lookup(ctx context.Context, ip net.IP) (relaylib.GeoPoint, error) {
	args := m.Called(ctx, ip)

	return args.Get(0).(relaylib.GeoPoint), args.Error(1)
}

func (m *GeocoderMock) Name() string {
	return m.Called().String(0)
}

func (m *GeocoderMock) Close() error {
	return m.Called().Error(0)
}

type LoggerMock struct {
	mock.Mock
}

func (m *LoggerMock) LookupError(ip, name string, err error) {
	m.Called(ip, name, err)
}

func (m *LoggerMock) StageInfo(stage string, count int) {
	m.Called(stage, count)
}

func (m *LoggerMock) SkippedBlocks(count int) {
	m.Called(count)
}

// staticGeocoder knows locations of a fixed set of addresses.
type staticGeocoder map[string]relaylib.GeoPoint

func (s staticGeocoder) Name() string {
	return "static"
}

func (s staticGeocoder) Lookup(_ context.Context, ip net.IP) (relaylib.GeoPoint, error) {
	if point, ok := s[ip.String()]; ok {
		return point, nil
	}

	return relaylib.GeoPoint{}, relaylib.ErrLocationUnknown
}

func (s staticGeocoder) Close() error {
	return nil
}
