package testutil

import (
	"errors"
	"net/http"
	"os"
	"testing"
)

func TestAssertStatusCode_Match(t *testing.T) {
	AssertStatusCode(t, http.StatusOK, http.StatusOK)
	AssertStatusCode(t, http.StatusNotFound, http.StatusNotFound)
}

func TestAssertNoError_Nil(t *testing.T) {
	AssertNoError(t, nil)
}

func TestAssertError_NonNil(t *testing.T) {
	AssertError(t, errors.New("boom"))
}

func TestNewTestRequest(t *testing.T) {
	req := NewTestRequest(http.MethodGet, "/api/xs?target=H1")
	if req.Method != http.MethodGet {
		t.Errorf("method = %s, want GET", req.Method)
	}
	if req.URL.Path != "/api/xs" {
		t.Errorf("path = %s, want /api/xs", req.URL.Path)
	}
	if got := req.URL.Query().Get("target"); got != "H1" {
		t.Errorf("target query = %s, want H1", got)
	}
}

func TestNewTestRecorder(t *testing.T) {
	rr := NewTestRecorder()
	if rr == nil {
		t.Fatal("NewTestRecorder returned nil")
	}
	if rr.Code != http.StatusOK {
		t.Errorf("initial code = %d, want 200", rr.Code)
	}
}

func TestDecodeJSON(t *testing.T) {
	var v map[string]string
	DecodeJSON(t, []byte(`{"status": "ok"}`), &v)
	if v["status"] != "ok" {
		t.Errorf("decoded status = %q, want ok", v["status"])
	}
}

func TestWriteFile(t *testing.T) {
	path := WriteFile(t, t.TempDir(), "deck.yaml", "materials: []\n")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture back: %v", err)
	}
	if string(data) != "materials: []\n" {
		t.Errorf("fixture contents = %q", string(data))
	}
}
