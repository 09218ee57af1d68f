package regionserver

import (
	"errors"
	"io"
	"net/http"
	"runtime"
	"runtime/debug"
	"strconv"

	"github.com/golang/glog"
	"github.com/gorilla/mux"
	"github.com/nilebit/regionstore/regionopt/crc"
	"github.com/nilebit/regionstore/regionopt/region"
)

type UploadResult struct {
	Size  int    `json:"size,omitempty"`
	Error string `json:"error,omitempty"`
	ETag  string `json:"eTag,omitempty"`
}

func (s *RegionServer) StatusHandler(w http.ResponseWriter, r *http.Request) {
	stat := make(map[string]interface{})
	stat["cpu"] = runtime.NumCPU()
	stat["goroutine"] = runtime.NumGoroutine()
	gcStat := &debug.GCStats{}
	debug.ReadGCStats(gcStat)
	stat["gc"] = gcStat.NumGC
	stat["pausetotal"] = gcStat.PauseTotal.Nanoseconds()

	stat["dir"] = s.Store.Directory
	stat["openRegions"] = s.Store.OpenRegions()
	if coords, err := s.Store.List(); err == nil {
		stat["regionFiles"] = len(coords)
	}

	writeJson(w, r, http.StatusOK, stat)
}

func parseChunkCoords(r *http.Request) (cx, cz int, err error) {
	vars := mux.Vars(r)
	if cx, err = strconv.Atoi(vars["cx"]); err != nil {
		return
	}
	cz, err = strconv.Atoi(vars["cz"])
	return
}

func (s *RegionServer) GetHandler(w http.ResponseWriter, r *http.Request) {
	cx, cz, err := parseChunkCoords(r)
	if err != nil {
		writeJsonError(w, r, http.StatusBadRequest, err)
		return
	}

	rc, err := s.Store.ReadChunk(cx, cz)
	if err != nil {
		glog.V(0).Infof("read chunk %d,%d: %v", cx, cz, err)
		writeJsonError(w, r, http.StatusInternalServerError, err)
		return
	}
	if rc == nil {
		writeJsonError(w, r, http.StatusNotFound, errors.New("chunk not found"))
		return
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		glog.V(0).Infof("decoding chunk %d,%d: %v", cx, cz, err)
		writeJsonError(w, r, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Etag", etag(data))
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if r.Method == "HEAD" {
		return
	}
	if _, err = w.Write(data); err != nil {
		glog.V(0).Infof("writing chunk %d,%d response: %v", cx, cz, err)
	}
}

func (s *RegionServer) PutHandler(w http.ResponseWriter, r *http.Request) {
	cx, cz, err := parseChunkCoords(r)
	if err != nil {
		writeJsonError(w, r, http.StatusBadRequest, err)
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeJsonError(w, r, http.StatusBadRequest, err)
		return
	}

	cb, err := s.Store.ChunkWriter(cx, cz)
	if err != nil {
		writeJsonError(w, r, errorStatus(err), err)
		return
	}
	if _, err = cb.Write(data); err == nil {
		err = cb.Close()
	}
	if err != nil {
		glog.V(0).Infof("write chunk %d,%d: %v", cx, cz, err)
		writeJsonError(w, r, errorStatus(err), err)
		return
	}

	ret := UploadResult{Size: len(data), ETag: etag(data)}
	w.Header().Set("Etag", ret.ETag)
	writeJson(w, r, http.StatusCreated, ret)
}

func (s *RegionServer) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	cx, cz, err := parseChunkCoords(r)
	if err != nil {
		writeJsonError(w, r, http.StatusBadRequest, err)
		return
	}

	if err = s.Store.DeleteChunk(cx, cz); err != nil {
		glog.V(0).Infof("delete chunk %d,%d: %v", cx, cz, err)
		writeJsonError(w, r, errorStatus(err), err)
		return
	}
	writeJson(w, r, http.StatusAccepted, map[string]string{"result": "deleted"})
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, region.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, region.ErrReadOnly):
		return http.StatusForbidden
	case errors.Is(err, region.ErrChunkTooLarge), errors.Is(err, region.ErrOutOfBounds):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func etag(data []byte) string {
	return "\"" + strconv.FormatUint(uint64(crc.New(data).Value()), 16) + "\""
}
