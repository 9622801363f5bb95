package salesforce

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAuthenticate_SendsClientCredentials(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/services/oauth2/token" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-123","token_type":"Bearer"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	token, err := c.Authenticate(context.Background(), "my-id", "my-secret")
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if token != "tok-123" {
		t.Fatalf("expected tok-123, got %q", token)
	}
	if gotQuery["grant_type"] != "client_credentials" {
		t.Fatalf("expected grant_type=client_credentials, got %q", gotQuery["grant_type"])
	}
	if gotQuery["client_id"] != "my-id" || gotQuery["client_secret"] != "my-secret" {
		t.Fatalf("credentials not forwarded: %v", gotQuery)
	}
}

func TestAuthenticate_Non2xxIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_client"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.Authenticate(context.Background(), "id", "bad"); err == nil {
		t.Fatal("expected error on 401 token response")
	}
}

func TestAuthenticate_EmptyTokenIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"token_type":"Bearer"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.Authenticate(context.Background(), "id", "secret"); err == nil {
		t.Fatal("expected error when access_token is missing")
	}
}

func TestApplyURL_DomainParameter(t *testing.T) {
	c := NewClient("https://org.example.com")

	withDomain := c.ApplyURL("job-1", "mysolution")
	if !strings.Contains(withDomain, "id=job-1") {
		t.Fatalf("missing id parameter: %s", withDomain)
	}
	if !strings.Contains(withDomain, "domain=mysolution") {
		t.Fatalf("missing domain parameter: %s", withDomain)
	}
	if !strings.Contains(withDomain, "/services/apexrest/msf/api/job/Apply?") {
		t.Fatalf("unexpected path: %s", withDomain)
	}

	noDomain := c.ApplyURL("job-1", "")
	if strings.Contains(noDomain, "domain=") {
		t.Fatalf("empty domain must omit the parameter entirely: %s", noDomain)
	}
}

func TestSubmitApplication_SetsAuthHeaders(t *testing.T) {
	var gotAuth, gotType string
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	status, body, err := c.SubmitApplication(context.Background(), "tok-9", "job-1", "", []byte(`{}`))
	if err != nil {
		t.Fatalf("SubmitApplication error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one POST, got %d", calls)
	}
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	if gotAuth != "Bearer tok-9" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
	if gotType != "application/json" {
		t.Fatalf("expected json content type, got %q", gotType)
	}
	if !strings.Contains(string(body), "success") {
		t.Fatalf("body not passed through: %s", body)
	}
}
