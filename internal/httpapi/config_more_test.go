package httpapi

import "testing"

func TestSetMaxBodyBytes_DefaultWhenNonPositive(t *testing.T) {
	SetMaxBodyBytes(-1)
	if maxBodyBytes != 1<<20 {
		t.Fatalf("expected default 1MiB, got %d", maxBodyBytes)
	}
	SetMaxBodyBytes(0)
	if maxBodyBytes != 1<<20 {
		t.Fatalf("expected default 1MiB on zero, got %d", maxBodyBytes)
	}
}

func TestSetMaxBodyBytes_PositiveSetsValue(t *testing.T) {
	defer SetMaxBodyBytes(0)
	SetMaxBodyBytes(1234)
	if maxBodyBytes != 1234 {
		t.Fatalf("expected 1234, got %d", maxBodyBytes)
	}
}

func TestSetRequestTimeoutSeconds_NormalizesNegativeToZero(t *testing.T) {
	defer SetRequestTimeoutSeconds(0)
	SetRequestTimeoutSeconds(-5)
	if requestTimeout != 0 {
		t.Fatalf("expected 0, got %d", requestTimeout)
	}
	SetRequestTimeoutSeconds(3)
	if requestTimeout != 3 {
		t.Fatalf("expected 3, got %d", requestTimeout)
	}
}

func TestSetCORSOptions_CopiesSlices(t *testing.T) {
	defer SetCORSOptions(false, nil, nil, nil)
	origins := []string{"http://a"}
	SetCORSOptions(true, origins, nil, nil)
	origins[0] = "mutated"
	if !corsEnabled || corsAllowedOrigins[0] != "http://a" {
		t.Fatalf("unexpected cors state: %v %v", corsEnabled, corsAllowedOrigins)
	}
}
