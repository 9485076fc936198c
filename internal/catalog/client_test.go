package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCatalogLatest(t *testing.T) {
	scan := time.Date(2025, 6, 1, 12, 5, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/catalog/latest" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("satellite") != "GOES19" || q.Get("sector") != "FD" || q.Get("band") != "C13" {
			t.Errorf("query = %v", q)
		}
		json.NewEncoder(w).Encode(CatalogFrame{
			ScanTime:  scan,
			SizeBytes: 4096,
			Key:       "goes19/fd/c13/20250601T120500.nc",
			Satellite: "GOES19",
			Sector:    "FD",
			Band:      "C13",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	frame, err := c.CatalogLatest(context.Background(), "GOES19", "FD", "C13")
	if err != nil {
		t.Fatalf("CatalogLatest: %v", err)
	}
	if frame == nil {
		t.Fatal("frame is nil")
	}
	if !frame.ScanTime.Equal(scan) {
		t.Errorf("scan time = %s, want %s", frame.ScanTime, scan)
	}
	if frame.SizeBytes != 4096 {
		t.Errorf("size = %d, want 4096", frame.SizeBytes)
	}
}

func TestLatestAbsentMeansNoUpdate(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "404",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			},
		},
		{
			name: "204",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			},
		},
		{
			name: "empty body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient(srv.URL)
			frame, err := c.CatalogLatest(context.Background(), "GOES19", "FD", "C13")
			if err != nil {
				t.Fatalf("absent content treated as error: %v", err)
			}
			if frame != nil {
				t.Errorf("frame = %+v, want nil", frame)
			}

			local, err := c.LocalLatest(context.Background(), "GOES19", "FD", "C13")
			if err != nil {
				t.Fatalf("absent content treated as error: %v", err)
			}
			if local != nil {
				t.Errorf("local = %+v, want nil", local)
			}
		})
	}
}

func TestStartFetch(t *testing.T) {
	scan := time.Date(2025, 6, 1, 12, 5, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/fetch" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var req FetchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if req.Satellite != "GOES19" {
			t.Errorf("satellite = %q", req.Satellite)
		}
		if !req.StartTime.Equal(scan) || !req.EndTime.Equal(scan) {
			t.Errorf("start/end = %s/%s", req.StartTime, req.EndTime)
		}
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{"job_id": "job-42"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	id, err := c.StartFetch(context.Background(), FetchRequest{
		Satellite: "GOES19",
		Sector:    "FD",
		Band:      "C13",
		StartTime: scan,
		EndTime:   scan,
	})
	if err != nil {
		t.Fatalf("StartFetch: %v", err)
	}
	if id != "job-42" {
		t.Errorf("job id = %q, want job-42", id)
	}
}

func TestStartFetchMissingJobID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.StartFetch(context.Background(), FetchRequest{}); err == nil {
		t.Fatal("missing job id accepted, want error")
	}
}

func TestJob(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/jobs/job-42" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(FetchJob{
			ID:            "job-42",
			Status:        JobStatusRunning,
			Progress:      61,
			StatusMessage: "downloading frame",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	job, err := c.Job(context.Background(), "job-42")
	if err != nil {
		t.Fatalf("Job: %v", err)
	}
	if job.Status != JobStatusRunning || job.Progress != 61 {
		t.Errorf("job = %+v", job)
	}
}

func TestJobStatusTerminal(t *testing.T) {
	for status, want := range map[JobStatus]bool{
		JobStatusPending:   false,
		JobStatusRunning:   false,
		JobStatusCompleted: true,
		JobStatusFailed:    true,
	} {
		if got := status.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", status, got, want)
		}
	}
}
