package main

import (
	log "github.com/sirupsen/logrus"

	"github.com/9seconds/relaymap/relaylib"
)

type logger struct {
	lookupLog *log.Entry
	stageLog  *log.Entry
}

func (l *logger) LookupError(ip, name string, err error) {
	l.lookupLog.WithFields(log.Fields{
		"ip":       ip,
		"geocoder": name,
		"err":      err,
	}).Warn("Cannot geocode relay, skip")
}

func (l *logger) StageInfo(stage string, count int) {
	l.stageLog.WithFields(log.Fields{
		"stage": stage,
		"count": count,
	}).Info("Stage is finished")
}

func (l *logger) SkippedBlocks(count int) {
	l.stageLog.WithFields(log.Fields{
		"count": count,
	}).Warn("Malformed relay blocks were skipped")
}

func newLogger() relaylib.Logger {
	return &logger{
		lookupLog: log.WithField("event_name", "lookup"),
		stageLog:  log.WithField("event_name", "stage"),
	}
}
