package command

import (
	"os"
	"runtime"

	"github.com/golang/glog"
	"github.com/nilebit/regionstore/server/regionserver"
)

var RNModule = &Command{
	UsageLine: "region -port=8001 -dir=/data/world",
	Short:     "start a region node server",
	Long:      `start a region node server to serve chunks from a directory of region files`,
}

var rn = regionserver.NewRegionServer()

func init() {
	RNModule.Run = RunRN
	rn.Port = RNModule.Flag.Int("port", 8080, "http listen port")
	rn.Ip = RNModule.Flag.String("ip", "0.0.0.0", "ip or server name")
	rn.MaxCpu = RNModule.Flag.Int("maxCpu", 0, "maximum number of CPUs. 0 means all available CPUs")
	rn.Dir = RNModule.Flag.String("dir", os.TempDir(), "directory holding the region files")
	rn.Extension = RNModule.Flag.String("ext", "", "region file extension, defaults to \"data\"")
	rn.CacheSize = RNModule.Flag.Int("cache", 0, "maximum number of open region files. 0 means the default")
	rn.ReadOnly = RNModule.Flag.Bool("readOnly", false, "refuse chunk writes and deletes")
}

func RunRN(md *Command, args []string) (ret bool) {
	if *rn.MaxCpu < 1 {
		*rn.MaxCpu = runtime.NumCPU()
	}
	runtime.GOMAXPROCS(*rn.MaxCpu)

	rn.RegistRouter()
	if err := rn.CreateStore(); err != nil {
		glog.Fatalf("cannot open region directory %s: %v", *rn.Dir, err)
	}

	ret = rn.StartServer()

	return ret
}
