package regionserver

import (
	"net/http"
	"strconv"

	"github.com/golang/glog"
	"github.com/gorilla/mux"
	"github.com/nilebit/regionstore/regionopt"
)

// RegionServer exposes chunk reads and writes over a directory of region
// files. It is a thin HTTP front; all format logic lives in regionopt.
type RegionServer struct {
	Port      *int
	Ip        *string
	Dir       *string
	Extension *string
	CacheSize *int
	ReadOnly  *bool
	MaxCpu    *int

	Router *mux.Router
	Store  *regionopt.Dir
}

func NewRegionServer() *RegionServer {
	return &RegionServer{}
}

func (s *RegionServer) RegistRouter() {
	paramMux := mux.NewRouter().SkipClean(false)
	apiRouter := paramMux.NewRoute().PathPrefix("/").Subrouter()
	apiRouter.Methods("GET").Path("/status").HandlerFunc(s.StatusHandler)
	apiRouter.Methods("PUT", "POST").Path("/chunk/{cx:-?[0-9]+},{cz:-?[0-9]+}").HandlerFunc(s.PutHandler)
	apiRouter.Methods("GET", "HEAD").Path("/chunk/{cx:-?[0-9]+},{cz:-?[0-9]+}").HandlerFunc(s.GetHandler)
	apiRouter.Methods("DELETE").Path("/chunk/{cx:-?[0-9]+},{cz:-?[0-9]+}").HandlerFunc(s.DeleteHandler)

	s.Router = apiRouter
}

func (s *RegionServer) CreateStore() (err error) {
	s.Store, err = regionopt.NewDir(*s.Dir, *s.Extension, *s.CacheSize, *s.ReadOnly)
	return err
}

func (s *RegionServer) StartServer() bool {
	listeningAddress := *s.Ip + ":" + strconv.Itoa(*s.Port)
	glog.V(0).Infoln("Start a region server ", "at", listeningAddress)

	if err := http.ListenAndServe(listeningAddress, s.Router); err != nil {
		glog.Fatalf("service fail to serve: %v", err)
		return false
	}

	return true
}
