//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "fetch-dogs-api"
	ConsumerName = "pawmatch"

	StateCredentialsAccepted = "login accepts any name and email"
	StateDogsIndexed         = "dogs d1 to d3 are indexed"
	StateSessionExpired      = "the access token has expired"
)

const (
	AccessToken = "pact-access-token"
	LoginName   = "Pact Visitor"
	LoginEmail  = "pact.visitor@example.com"

	ExistingDogID = "d1"
	MatchedDogID  = "d2"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the pact file path written by the consumer tests.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleDogPayload is the record used for /dogs interactions.
func ExampleDogPayload() map[string]any {
	return map[string]any{
		"id":       ExistingDogID,
		"img":      "https://example.pact/dogs/d1.jpg",
		"name":     "Biscuit",
		"age":      3,
		"zip_code": "10001",
		"breed":    "Beagle",
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
