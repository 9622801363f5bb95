package usecase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"cv-apply/internal/domain"
	"cv-apply/pkg/attachment"
	"cv-apply/pkg/salesforce"
)

func testApplicant() domain.Applicant {
	return domain.Applicant{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     "+440000000000",
	}
}

func newTestSubmitter(baseURL string) *Submitter {
	cfg := salesforce.Config{
		BaseURL:      baseURL,
		ClientID:     "id",
		ClientSecret: "secret",
		JobID:        "job-42",
	}
	return NewSubmitter(salesforce.NewClient(baseURL), nil, cfg)
}

func writeCV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cv.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 test cv"), 0o644); err != nil {
		t.Fatalf("write cv: %v", err)
	}
	return path
}

func TestSubmit_OnePostWithJobAndDomain(t *testing.T) {
	var calls int
	var gotURL string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		gotURL = r.URL.String()
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"success":true,"applicationId":"a-1"}`))
	}))
	defer srv.Close()

	s := newTestSubmitter(srv.URL)
	res := s.Submit(context.Background(), "tok", Application{
		Domain:    "mysolution",
		Applicant: testApplicant(),
		CVPath:    writeCV(t),
	})

	if calls != 1 {
		t.Fatalf("expected exactly one POST, got %d", calls)
	}
	if !res.OK() {
		t.Fatalf("expected success, got %+v", res.Err)
	}
	u, err := url.Parse(gotURL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if u.Query().Get("id") != "job-42" {
		t.Fatalf("expected id=job-42 from config, got %q", u.Query().Get("id"))
	}
	if u.Query().Get("domain") != "mysolution" {
		t.Fatalf("expected domain=mysolution, got %q", u.Query().Get("domain"))
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("payload not json: %v", err)
	}
	if payload["setApiName"] != "msf__Job_Application__c" {
		t.Fatalf("unexpected setApiName: %v", payload["setApiName"])
	}
	fields, _ := payload["fields"].(map[string]interface{})
	if fields == nil {
		t.Fatal("payload has no fields")
	}
	first, _ := fields["msf__First_Name__c"].(map[string]interface{})
	if first["value"] != "Ada" {
		t.Fatalf("first name not forwarded: %v", first)
	}
	cv, _ := fields["msf__CV__c"].(map[string]interface{})
	if cv["fileName"] != "cv.pdf" {
		t.Fatalf("cv fileName missing: %v", cv)
	}
	if cv["value"] == "" {
		t.Fatal("cv value empty")
	}

	body, _ := res.Body.(map[string]interface{})
	if body["applicationId"] != "a-1" {
		t.Fatalf("remote body not passed through verbatim: %v", res.Body)
	}
}

func TestSubmit_EmptyDomainOmitsParameter(t *testing.T) {
	var gotURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	s := newTestSubmitter(srv.URL)
	res := s.Submit(context.Background(), "tok", Application{
		Applicant: testApplicant(),
		CVPath:    writeCV(t),
	})
	if !res.OK() {
		t.Fatalf("expected success, got %+v", res.Err)
	}

	u, err := url.Parse(gotURL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if u.Query().Has("domain") {
		t.Fatalf("empty domain must not appear in query: %s", gotURL)
	}
}

func TestSubmit_MissingCVUsesFallback(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	s := newTestSubmitter(srv.URL)
	res := s.Submit(context.Background(), "tok", Application{
		Applicant: testApplicant(),
		CVPath:    filepath.Join(t.TempDir(), "missing.pdf"),
	})
	if !res.OK() {
		t.Fatalf("missing CV must not fail the submission: %+v", res.Err)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("payload not json: %v", err)
	}
	fields, _ := payload["fields"].(map[string]interface{})
	cv, _ := fields["msf__CV__c"].(map[string]interface{})
	if cv["value"] != attachment.FallbackCV {
		t.Fatalf("expected fallback attachment, got %v", cv["value"])
	}
}

func TestSubmit_Non2xxBecomesErrorRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Session expired or invalid"}`))
	}))
	defer srv.Close()

	s := newTestSubmitter(srv.URL)
	res := s.Submit(context.Background(), "stale", Application{
		Applicant: testApplicant(),
		CVPath:    writeCV(t),
	})

	if res.OK() {
		t.Fatal("expected error record on 401")
	}
	if !res.Err.Error {
		t.Fatal("error flag not set")
	}
	if res.Err.Status != 401 {
		t.Fatalf("expected status 401, got %d", res.Err.Status)
	}
	msg, _ := res.Err.Message.(map[string]interface{})
	if msg["message"] != "Session expired or invalid" {
		t.Fatalf("remote error body not captured: %v", res.Err.Message)
	}
}

func TestSubmit_TransportErrorBecomesErrorRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	srv.Close() // refuse all connections

	s := newTestSubmitter(srv.URL)
	res := s.Submit(context.Background(), "tok", Application{
		Applicant: testApplicant(),
		CVPath:    writeCV(t),
	})
	if res.OK() {
		t.Fatal("expected error record on transport failure")
	}
	if res.Err.Status != 0 {
		t.Fatalf("transport failure has no HTTP status, got %d", res.Err.Status)
	}
	if res.Err.Message == nil || res.Err.Message == "" {
		t.Fatal("expected a message on transport failure")
	}
}

func TestRunDomainSweep_SequentialAndFaultTolerant(t *testing.T) {
	var order []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := r.URL.Query().Get("domain")
		order = append(order, d)
		if d == "broken" {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message":"boom"}`))
			return
		}
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	s := newTestSubmitter(srv.URL)
	domains := []string{"", "broken", "mysolution"}
	results := s.RunDomainSweep(context.Background(), "tok", Application{
		Applicant: testApplicant(),
		CVPath:    writeCV(t),
	}, domains)

	if len(results) != len(domains) {
		t.Fatalf("expected %d attempts, got %d", len(domains), len(results))
	}
	if len(order) != len(domains) {
		t.Fatalf("expected %d POSTs, got %d", len(domains), len(order))
	}
	for i, d := range domains {
		if order[i] != d {
			t.Fatalf("attempt %d out of order: expected %q, got %q", i, d, order[i])
		}
		if results[i].Domain != d {
			t.Fatalf("result %d carries wrong domain: %q", i, results[i].Domain)
		}
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Fatalf("healthy domains must succeed: %+v", results)
	}
	if results[1].Err == nil || results[1].Err.Status != 500 {
		t.Fatalf("broken domain must yield a 500 error record: %+v", results[1])
	}
}

func TestRun_TokenFailureAbortsBeforeAnySubmission(t *testing.T) {
	var applyCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/services/oauth2/token" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_client"}`))
			return
		}
		applyCalls++
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	s := newTestSubmitter(srv.URL)
	_, err := s.Run(context.Background(), Application{
		Applicant: testApplicant(),
		CVPath:    writeCV(t),
	}, []string{"", "mysolution"})
	if err == nil {
		t.Fatal("expected fatal error when the token exchange fails")
	}
	if applyCalls != 0 {
		t.Fatalf("no submission may happen without a token, got %d", applyCalls)
	}
}

func TestRun_AcquiresSingleTokenForWholeSweep(t *testing.T) {
	var tokenCalls int
	var seenTokens = map[string]int{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/services/oauth2/token" {
			tokenCalls++
			w.Write([]byte(`{"access_token":"tok-once"}`))
			return
		}
		seenTokens[r.Header.Get("Authorization")]++
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	s := newTestSubmitter(srv.URL)
	results, err := s.Run(context.Background(), Application{
		Applicant: testApplicant(),
		CVPath:    writeCV(t),
	}, []string{"", "a", "b"})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if tokenCalls != 1 {
		t.Fatalf("expected exactly one token exchange per run, got %d", tokenCalls)
	}
	if seenTokens["Bearer tok-once"] != 3 {
		t.Fatalf("all submissions must reuse the run token: %v", seenTokens)
	}
}
