package gcs

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/angelmondragon/mycrew-backend/pkg/storage"
)

type roundTripFunc func(*http.Request) *http.Response

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

func staticToken() *tokenSource {
	return &tokenSource{fetch: func(context.Context) (string, time.Time, error) {
		return "token", time.Now().Add(time.Hour), nil
	}}
}

func testClient(rt roundTripFunc) *Client {
	return &Client{
		httpClient:  &http.Client{Transport: rt},
		baseURL:     defaultBaseURL,
		bucket:      "crew-exports",
		prefix:      "exports",
		tokenSource: staticToken(),
	}
}

func reply(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{},
	}
}

func TestPutUploadsMedia(t *testing.T) {
	t.Parallel()

	var gotBody string
	client := testClient(func(req *http.Request) *http.Response {
		if req.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", req.Method)
		}
		if req.URL.Path != "/upload/storage/v1/b/crew-exports/o" {
			t.Fatalf("unexpected path %s", req.URL.Path)
		}
		if got := req.URL.Query().Get("ifGenerationMatch"); got != "0" {
			t.Fatalf("upload must not replace existing objects, ifGenerationMatch=%q", got)
		}
		if got := req.URL.Query().Get("uploadType"); got != "media" {
			t.Fatalf("unexpected uploadType %q", got)
		}
		if got := req.URL.Query().Get("name"); got != "exports/MyCrew_Tous_2_contacts_2025-01-15.csv" {
			t.Fatalf("unexpected object name %q", got)
		}
		if req.Header.Get("Authorization") != "Bearer token" {
			t.Fatalf("unexpected auth %s", req.Header.Get("Authorization"))
		}
		if req.Header.Get("Content-Type") != "text/csv" {
			t.Fatalf("unexpected content type %s", req.Header.Get("Content-Type"))
		}
		b, _ := io.ReadAll(req.Body)
		gotBody = string(b)
		return reply(http.StatusOK, `{}`)
	})

	ref, err := client.Put(context.Background(), "MyCrew_Tous_2_contacts_2025-01-15.csv", "text/csv", []byte("a,b"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if ref != "gs://crew-exports/exports/MyCrew_Tous_2_contacts_2025-01-15.csv" {
		t.Fatalf("unexpected ref %s", ref)
	}
	if gotBody != "a,b" {
		t.Fatalf("unexpected body %q", gotBody)
	}
}

func TestPutSurfacesUploadFailure(t *testing.T) {
	t.Parallel()

	client := testClient(func(*http.Request) *http.Response {
		return reply(http.StatusForbidden, "denied")
	})
	if _, err := client.Put(context.Background(), "file.json", "application/json", []byte("{}")); err == nil {
		t.Fatal("expected error on 403")
	} else if !strings.Contains(err.Error(), "denied") {
		t.Fatalf("error should carry body: %v", err)
	}
}

func TestPutReportsExistingObject(t *testing.T) {
	t.Parallel()

	client := testClient(func(*http.Request) *http.Response {
		return reply(http.StatusPreconditionFailed, "conditionNotMet")
	})
	_, err := client.Put(context.Background(), "file.csv", "text/csv", []byte("x"))
	if !errors.Is(err, storage.ErrExists) {
		t.Fatalf("expected storage.ErrExists, got %v", err)
	}
}

func TestPutRequiresInitializedClient(t *testing.T) {
	t.Parallel()

	var client *Client
	if _, err := client.Put(context.Background(), "x", "", nil); err == nil {
		t.Fatal("expected error for nil client")
	}
}

func TestDeleteTreatsNotFoundAsSuccess(t *testing.T) {
	t.Parallel()

	client := testClient(func(req *http.Request) *http.Response {
		if req.Method != http.MethodDelete {
			t.Fatalf("expected DELETE, got %s", req.Method)
		}
		return reply(http.StatusNotFound, "")
	})
	if err := client.Delete(context.Background(), "file.csv"); err != nil {
		t.Fatalf("Delete not found should succeed: %v", err)
	}
}

func TestPingChecksBucket(t *testing.T) {
	t.Parallel()

	client := testClient(func(req *http.Request) *http.Response {
		if req.URL.Path != "/storage/v1/b/crew-exports/o" {
			t.Fatalf("unexpected path %s", req.URL.Path)
		}
		return reply(http.StatusOK, `{"items":[]}`)
	})
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestTokenSourceCachesUntilExpiry(t *testing.T) {
	t.Parallel()

	calls := 0
	ts := &tokenSource{fetch: func(context.Context) (string, time.Time, error) {
		calls++
		return "t", time.Now().Add(time.Hour), nil
	}}
	for i := 0; i < 3; i++ {
		if _, err := ts.Token(context.Background()); err != nil {
			t.Fatalf("Token: %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected a single fetch, got %d", calls)
	}
}

func TestSignedAssertionClaims(t *testing.T) {
	t.Parallel()

	key := mustGenerateKey(t)
	now := time.Now().Truncate(time.Second)
	signed, err := signedAssertion("signer@example.com", tokenEndpoint, key, now)
	if err != nil {
		t.Fatalf("signedAssertion: %v", err)
	}

	claims := &assertionClaims{}
	_, err = jwt.ParseWithClaims(signed, claims,
		func(*jwt.Token) (interface{}, error) { return &key.PublicKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(tokenEndpoint),
		jwt.WithIssuer("signer@example.com"),
	)
	if err != nil {
		t.Fatalf("verify assertion: %v", err)
	}
	if claims.Scope != scope {
		t.Fatalf("unexpected scope %q", claims.Scope)
	}
	if !claims.ExpiresAt.Time.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected expiry %v", claims.ExpiresAt)
	}
}

func TestParsePrivateKeyFormats(t *testing.T) {
	t.Parallel()

	key := mustGenerateKey(t)
	pkcs1 := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	if _, err := parsePrivateKey(string(pkcs1)); err != nil {
		t.Fatalf("pkcs1: %v", err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("marshal pkcs8: %v", err)
	}
	pkcs8 := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
	if _, err := parsePrivateKey(string(pkcs8)); err != nil {
		t.Fatalf("pkcs8: %v", err)
	}
	if _, err := parsePrivateKey("nope"); err == nil {
		t.Fatal("expected error for garbage key")
	}
}

func mustGenerateKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	return key
}
