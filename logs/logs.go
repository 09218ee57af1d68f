package logs

import (
	"flag"
	"log"
	"time"

	"github.com/golang/glog"
)

var logFlushFreq time.Duration

func init() {
	flag.DurationVar(&logFlushFreq, "log-flush-frequency", 5*time.Second, "Maximum number of seconds between log flushes")
}

// GlogWriter routes the standard library logger into glog.
type GlogWriter struct{}

func (writer GlogWriter) Write(data []byte) (n int, err error) {
	glog.Info(string(data))
	return len(data), nil
}

func InitLogs() {
	log.SetOutput(GlogWriter{})
	log.SetFlags(0)
	go flushForever(logFlushFreq)
}

func FlushLogs() {
	glog.Flush()
}

func flushForever(period time.Duration) {
	t := time.NewTicker(period)
	defer t.Stop()
	for range t.C {
		glog.Flush()
	}
}
