package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"time"

	"cv-apply/internal/domain"
	"cv-apply/internal/usecase"
	"cv-apply/pkg/salesforce"
)

// startMockOrg serves a minimal stand-in for the Salesforce org so the sweep
// can be exercised end to end without credentials. The Apply handler rejects
// the "legacy" domain variant so the continue-on-failure path is visible.
func startMockOrg(addr string) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/services/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("grant_type") != "client_credentials" {
			w.WriteHeader(400)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token": "mock-token",
			"token_type":   "Bearer",
		})
	})

	mux.HandleFunc("/services/apexrest/msf/api/job/Apply", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var payload map[string]interface{}
		_ = json.Unmarshal(body, &payload)

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("domain") == "legacy" {
			w.WriteHeader(401)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "domain not enabled"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success":       true,
			"applicationId": fmt.Sprintf("app-%d", time.Now().UnixNano()),
			"jobId":         r.URL.Query().Get("id"),
		})
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("mock org listen failed: %v", err)
	}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("mock org stopped: %v", err)
		}
	}()
	return srv
}

func main() {
	ctx := context.Background()

	cfg := salesforce.ConfigFromEnv()

	// With no real org configured, run against the local mock
	var mock *http.Server
	if os.Getenv("SF_BASE_URL") == "" {
		addr := "127.0.0.1:8766"
		mock = startMockOrg(addr)
		cfg.BaseURL = "http://" + addr
		fmt.Printf("sweep: no SF_BASE_URL set, using mock org at %s\n", cfg.BaseURL)
	}
	defer func() {
		if mock != nil {
			_ = mock.Shutdown(ctx)
		}
	}()

	client := salesforce.NewClient(cfg.BaseURL)
	submitter := usecase.NewSubmitter(client, nil, cfg)

	cvPath := os.Getenv("CV_PATH")
	if cvPath == "" {
		cvPath = "cv.pdf"
	}

	app := usecase.Application{
		Applicant: domain.Applicant{
			FirstName: "Test",
			LastName:  "Candidate",
			Email:     "test.candidate@example.com",
			Phone:     "+31600000000",
		},
		CVPath: cvPath,
	}

	domains := os.Args[1:]
	if len(domains) == 0 {
		domains = []string{"", "mysolution", "legacy"}
	}

	results, err := submitter.Run(ctx, app, domains)
	if err != nil {
		log.Fatalf("sweep aborted: %v", err)
	}

	for _, res := range results {
		b, _ := json.Marshal(res)
		fmt.Printf("sweep result domain=%q: %s\n", res.Domain, string(b))
	}
}
