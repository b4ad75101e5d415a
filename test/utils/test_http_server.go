package testutils

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/phayes/freeport"
)

type TestHttpServer struct {
	*http.ServeMux
	port int
}

func NewTestHttpServer() *TestHttpServer {
	mux := http.NewServeMux()
	return &TestHttpServer{ServeMux: mux}
}

// Start serves the registered handlers until the test ends and returns the port.
func (s *TestHttpServer) Start(t *testing.T) int {
	port, err := freeport.GetFreePort()
	if err != nil {
		t.Fatalf("cannot start test server: %v", err)
	}

	srvAddr := fmt.Sprintf("127.0.0.1:%d", port)
	srv := http.Server{
		Addr:    srvAddr,
		Handler: s,
	}

	t.Cleanup(func() {
		srv.Close()
	})

	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			t.Errorf("cannot start test server: %v", err)
		}
	}()

	waitForServer(t, srvAddr)
	s.port = port
	return port
}

// URL returns the absolute URL of path on a started server.
func (s *TestHttpServer) URL(path string) string {
	return fmt.Sprintf("http://127.0.0.1:%d%s", s.port, path)
}

// ServeBytes registers path answering with data and the given content type.
func (s *TestHttpServer) ServeBytes(path, contentType string, data []byte) {
	s.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", fmt.Sprint(len(data)))
		w.Write(data)
	})
}

// WriteTempFile stores data under a fresh temporary directory and returns its absolute path.
func WriteTempFile(t *testing.T, name string, data []byte) string {
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("cannot write test file: %v", err)
	}

	return path
}

func waitForServer(t *testing.T, addr string) {
	backoff := 50 * time.Millisecond

	for i := 0; i < 10; i++ {
		conn, err := net.DialTimeout("tcp", addr, 1*time.Second)
		if err != nil {
			time.Sleep(backoff)
			continue
		}
		err = conn.Close()
		if err != nil {
			t.Fatal(err)
		}
		return
	}

	t.Fatalf("server on address %s not up after 10 attempts", addr)
}
