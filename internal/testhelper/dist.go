package testhelper

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gorilla/mux"
)

// DistServer is a fake static.rust-lang.org/dist serving registered
// archives and channel manifests. Unregistered paths return 404.
type DistServer struct {
	*httptest.Server

	mu        sync.Mutex
	archives  map[string][]byte
	manifests map[string]string
	requests  []string
}

// NewDistServer starts a server that is closed when the test ends
func NewDistServer(t *testing.T) *DistServer {
	t.Helper()

	d := &DistServer{
		archives:  make(map[string][]byte),
		manifests: make(map[string]string),
	}

	router := mux.NewRouter()
	router.HandleFunc("/channel-rust-{channel}.toml", d.serveManifest).Methods("GET")
	router.HandleFunc("/{name}.tar.gz", d.serveArchive).Methods("GET")
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d.record(r)
		http.NotFound(w, r)
	})

	d.Server = httptest.NewServer(router)
	t.Cleanup(d.Close)
	return d
}

// AddArchive serves body as <name>.tar.gz
func (d *DistServer) AddArchive(name string, body []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.archives[name] = body
}

// AddManifest serves body as channel-rust-<channel>.toml
func (d *DistServer) AddManifest(channel, body string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.manifests[channel] = body
}

// Requests returns the paths requested so far
func (d *DistServer) Requests() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.requests...)
}

func (d *DistServer) record(r *http.Request) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests = append(d.requests, r.URL.Path)
}

func (d *DistServer) serveArchive(w http.ResponseWriter, r *http.Request) {
	d.record(r)

	d.mu.Lock()
	body, ok := d.archives[mux.Vars(r)["name"]]
	d.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/x-gzip")
	_, _ = w.Write(body)
}

func (d *DistServer) serveManifest(w http.ResponseWriter, r *http.Request) {
	d.record(r)

	d.mu.Lock()
	body, ok := d.manifests[mux.Vars(r)["channel"]]
	d.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/toml")
	_, _ = w.Write([]byte(body))
}
