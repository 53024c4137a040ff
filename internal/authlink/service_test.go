package authlink

import (
	"context"
	"errors"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/streamhub-dev/accountd/internal/config"
	"github.com/streamhub-dev/accountd/internal/db"
	"github.com/streamhub-dev/accountd/internal/models"
	"github.com/streamhub-dev/accountd/internal/session"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB, *session.Manager) {
	t.Helper()
	conn, err := db.Open("file:" + filepath.Join(t.TempDir(), "authlink-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	registry := NewRegistry(map[string]config.ProviderConfig{
		ProviderGoogle: {ClientID: "google-client", RedirectURI: "https://example.com/auth/google", Scopes: []string{"openid", "email"}},
		ProviderTwitch: {ClientID: "twitch-client", RedirectURI: "https://example.com/auth/twitch"},
	})
	sessions := session.NewManager()
	return NewService(conn, registry, sessions), conn, sessions
}

func TestBeginLink_UnsupportedProvider(t *testing.T) {
	svc, _, sessions := newTestService(t)
	creds := session.Credentials{SessionID: "sess-1", UserID: 1, AuthProvider: "TWITCH"}

	_, err := svc.BeginLink(context.Background(), creds, "FACEBOOK")
	if !errors.Is(err, ErrUnsupportedProvider) {
		t.Fatalf("expected ErrUnsupportedProvider, got %v", err)
	}
	if sessions.ConsumeMergeIntent(creds.SessionID) {
		t.Fatalf("refused link must not mark the session")
	}
}

func TestBeginLink_SameProviderAsSession(t *testing.T) {
	svc, _, sessions := newTestService(t)
	creds := session.Credentials{SessionID: "sess-1", UserID: 1, AuthProvider: "TWITCH"}

	_, err := svc.BeginLink(context.Background(), creds, "twitch")
	if !errors.Is(err, ErrAlreadyLinked) {
		t.Fatalf("expected ErrAlreadyLinked, got %v", err)
	}
	if sessions.ConsumeMergeIntent(creds.SessionID) {
		t.Fatalf("refused link must not mark the session")
	}
}

func TestBeginLink_MarksSessionAndBuildsURL(t *testing.T) {
	svc, _, sessions := newTestService(t)
	creds := session.Credentials{SessionID: "sess-1", UserID: 1, AuthProvider: "TWITCH"}

	redirect, err := svc.BeginLink(context.Background(), creds, "GOOGLE")
	if err != nil {
		t.Fatalf("BeginLink: %v", err)
	}
	if !sessions.ConsumeMergeIntent(creds.SessionID) {
		t.Fatalf("accepted link must mark the session")
	}

	parsed, errParse := url.Parse(redirect)
	if errParse != nil {
		t.Fatalf("parse redirect: %v", errParse)
	}
	if parsed.Host != "accounts.google.com" {
		t.Fatalf("unexpected redirect host %q", parsed.Host)
	}
	query := parsed.Query()
	if query.Get("client_id") != "google-client" {
		t.Fatalf("unexpected client_id %q", query.Get("client_id"))
	}
	if query.Get("response_type") != "code" {
		t.Fatalf("unexpected response_type %q", query.Get("response_type"))
	}
	if query.Get("scope") != "openid email" {
		t.Fatalf("unexpected scope %q", query.Get("scope"))
	}
	if query.Get("state") == "" {
		t.Fatalf("expected a state nonce")
	}
}

func TestBeginLink_StateNonceVaries(t *testing.T) {
	svc, _, _ := newTestService(t)
	creds := session.Credentials{SessionID: "sess-1", UserID: 1}

	first, err := svc.BeginLink(context.Background(), creds, "GOOGLE")
	if err != nil {
		t.Fatalf("BeginLink: %v", err)
	}
	second, errSecond := svc.BeginLink(context.Background(), creds, "GOOGLE")
	if errSecond != nil {
		t.Fatalf("BeginLink: %v", errSecond)
	}
	if first == second {
		t.Fatalf("state nonce must differ per request")
	}
}

func TestBeginLink_RedditRequestsPermanentDuration(t *testing.T) {
	svc, _, _ := newTestService(t)
	creds := session.Credentials{SessionID: "sess-1", UserID: 1}

	redirect, err := svc.BeginLink(context.Background(), creds, "REDDIT")
	if err != nil {
		t.Fatalf("BeginLink: %v", err)
	}
	if !strings.Contains(redirect, "duration=permanent") {
		t.Fatalf("expected duration=permanent in %q", redirect)
	}
}

func TestListProfiles(t *testing.T) {
	svc, conn, _ := newTestService(t)

	for _, provider := range []string{"TWITCH", "GOOGLE"} {
		profile := models.AuthProfile{UserID: 1, AuthProvider: provider, AuthID: "remote-" + provider}
		if err := conn.Create(&profile).Error; err != nil {
			t.Fatalf("seed profile %s: %v", provider, err)
		}
	}

	profiles, err := svc.ListProfiles(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListProfiles: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(profiles))
	}
	if profiles[0].AuthProvider != "GOOGLE" || profiles[1].AuthProvider != "TWITCH" {
		t.Fatalf("expected provider-ordered profiles, got %+v", profiles)
	}
}

func TestRegistry_Names(t *testing.T) {
	registry := NewRegistry(nil)
	names := registry.Names()
	want := []string{"GOOGLE", "REDDIT", "TWITCH", "TWITTER"}
	if len(names) != len(want) {
		t.Fatalf("expected %d providers, got %v", len(want), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
}
