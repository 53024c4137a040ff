package account

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/streamhub-dev/accountd/internal/config"
	"github.com/streamhub-dev/accountd/internal/db"
	"github.com/streamhub-dev/accountd/internal/models"
	"github.com/streamhub-dev/accountd/internal/security"
	"github.com/streamhub-dev/accountd/internal/session"
	"gorm.io/gorm"
)

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB, config.JWTConfig) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := db.Open("file:" + filepath.Join(t.TempDir(), "account-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	jwtCfg := config.JWTConfig{Secret: "test-secret", Expiry: time.Hour}
	opts := Options{
		JWT:     jwtCfg,
		Profile: config.ProfileConfig{NameChangeLimit: 3, AuthTokenLimit: 5},
		Providers: map[string]config.ProviderConfig{
			"GOOGLE": {ClientID: "google-client", RedirectURI: "https://example.com/auth/google"},
		},
	}

	r := gin.New()
	RegisterAccountRoutes(r, conn, session.NewManager(), opts)
	return r, conn, jwtCfg
}

func seedActiveUser(t *testing.T, conn *gorm.DB, username, password string) models.User {
	t.Helper()
	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		t.Fatalf("hash password: %v", errHash)
	}
	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: hash,
		Active:   true,
	}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func issueTestToken(t *testing.T, jwtCfg config.JWTConfig, user models.User, provider string) string {
	t.Helper()
	token, err := session.IssueToken(jwtCfg, session.NewCredentials(user.ID, user.Username, provider))
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func doJSON(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLogin_IssuesToken(t *testing.T) {
	r, conn, _ := newTestRouter(t)
	seedActiveUser(t, conn, "alice", "hunter22")

	w := doJSON(r, http.MethodPost, "/v0/login", "", gin.H{"username": "alice", "password": "hunter22"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("expected a session token")
	}
}

func TestLogin_RejectsBadPassword(t *testing.T) {
	r, conn, _ := newTestRouter(t)
	seedActiveUser(t, conn, "alice", "hunter22")

	w := doJSON(r, http.MethodPost, "/v0/login", "", gin.H{"username": "alice", "password": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestProfile_RequiresAuth(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(r, http.MethodGet, "/v0/profile", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestProfile_GetAndUpdate(t *testing.T) {
	r, conn, jwtCfg := newTestRouter(t)
	user := seedActiveUser(t, conn, "alice", "hunter22")
	token := issueTestToken(t, jwtCfg, user, "")

	w := doJSON(r, http.MethodGet, "/v0/profile", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(r, http.MethodPost, "/v0/profile", token, gin.H{"country": "nl"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Country     string `json:"country"`
		CountryName string `json:"country_name"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Country != "NL" || resp.CountryName != "Netherlands" {
		t.Fatalf("unexpected country payload %+v", resp)
	}
}

func TestProfile_UpdateReportsFirstInvalidField(t *testing.T) {
	r, conn, jwtCfg := newTestRouter(t)
	user := seedActiveUser(t, conn, "alice", "hunter22")
	token := issueTestToken(t, jwtCfg, user, "")

	w := doJSON(r, http.MethodPost, "/v0/profile", token, gin.H{"username": "x", "email": "bad"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var resp struct {
		Field string `json:"field"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Field != "username" {
		t.Fatalf("expected username field, got %q", resp.Field)
	}
}

func TestProfile_NameChangeLimitMessage(t *testing.T) {
	r, conn, jwtCfg := newTestRouter(t)
	user := seedActiveUser(t, conn, "alice", "hunter22")
	if err := conn.Model(&user).Update("name_changed_count", 3).Error; err != nil {
		t.Fatalf("set count: %v", err)
	}
	token := issueTestToken(t, jwtCfg, user, "")

	w := doJSON(r, http.MethodPost, "/v0/profile", token, gin.H{"username": "alice_two"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "name change limit") {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestTokens_FullLifecycle(t *testing.T) {
	r, conn, jwtCfg := newTestRouter(t)
	user := seedActiveUser(t, conn, "alice", "hunter22")
	token := issueTestToken(t, jwtCfg, user, "")

	var lastToken string
	for i := 0; i < 5; i++ {
		w := doJSON(r, http.MethodPost, "/v0/profile/authtokens", token, nil)
		if w.Code != http.StatusCreated {
			t.Fatalf("create %d: expected 201, got %d: %s", i, w.Code, w.Body.String())
		}
		var resp struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		lastToken = resp.Token
	}

	w := doJSON(r, http.MethodPost, "/v0/profile/authtokens", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 at cap, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "maximum of 5 login keys") {
		t.Fatalf("unexpected body %s", w.Body.String())
	}

	w = doJSON(r, http.MethodDelete, "/v0/profile/authtokens/"+lastToken, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(r, http.MethodDelete, "/v0/profile/authtokens/"+lastToken, token, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after revoke, got %d", w.Code)
	}
}

func TestTokens_RevokeForeignTokenForbidden(t *testing.T) {
	r, conn, jwtCfg := newTestRouter(t)
	owner := seedActiveUser(t, conn, "alice", "hunter22")
	other := seedActiveUser(t, conn, "bob", "hunter22")
	ownerToken := issueTestToken(t, jwtCfg, owner, "")
	otherToken := issueTestToken(t, jwtCfg, other, "")

	w := doJSON(r, http.MethodPost, "/v0/profile/authtokens", ownerToken, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", w.Code)
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	w = doJSON(r, http.MethodDelete, "/v0/profile/authtokens/"+resp.Token, otherToken, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestConnect_RedirectsToProvider(t *testing.T) {
	r, conn, jwtCfg := newTestRouter(t)
	user := seedActiveUser(t, conn, "alice", "hunter22")
	token := issueTestToken(t, jwtCfg, user, "TWITCH")

	w := doJSON(r, http.MethodGet, "/v0/profile/connect/google", token, nil)
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d: %s", w.Code, w.Body.String())
	}
	location := w.Header().Get("Location")
	if !strings.Contains(location, "accounts.google.com") {
		t.Fatalf("unexpected redirect %q", location)
	}
}

func TestConnect_SameProviderRefused(t *testing.T) {
	r, conn, jwtCfg := newTestRouter(t)
	user := seedActiveUser(t, conn, "alice", "hunter22")
	token := issueTestToken(t, jwtCfg, user, "GOOGLE")

	w := doJSON(r, http.MethodGet, "/v0/profile/connect/google", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "already authenticated") {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestConnect_UnknownProviderRefused(t *testing.T) {
	r, conn, jwtCfg := newTestRouter(t)
	user := seedActiveUser(t, conn, "alice", "hunter22")
	token := issueTestToken(t, jwtCfg, user, "")

	w := doJSON(r, http.MethodGet, "/v0/profile/connect/facebook", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "not supported") {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestProfileAuthentication(t *testing.T) {
	r, conn, jwtCfg := newTestRouter(t)
	user := seedActiveUser(t, conn, "alice", "hunter22")
	profile := models.AuthProfile{UserID: user.ID, AuthProvider: "TWITCH", AuthID: "remote-1"}
	if err := conn.Create(&profile).Error; err != nil {
		t.Fatalf("seed auth profile: %v", err)
	}
	token := issueTestToken(t, jwtCfg, user, "")

	if w := doJSON(r, http.MethodPost, "/v0/profile/authtokens", token, nil); w.Code != http.StatusCreated {
		t.Fatalf("create token: expected 201, got %d", w.Code)
	}

	w := doJSON(r, http.MethodGet, "/v0/profile/authentication", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Username string `json:"username"`
		Profiles []struct {
			Provider string `json:"provider"`
		} `json:"profiles"`
		Providers []string `json:"providers"`
		Tokens    []struct {
			Token string `json:"token"`
		} `json:"tokens"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Username != "alice" {
		t.Fatalf("unexpected username %q", resp.Username)
	}
	if len(resp.Profiles) != 1 || resp.Profiles[0].Provider != "TWITCH" {
		t.Fatalf("unexpected profiles %+v", resp.Profiles)
	}
	if len(resp.Providers) != 4 {
		t.Fatalf("expected 4 supported providers, got %v", resp.Providers)
	}
	if len(resp.Tokens) != 1 || resp.Tokens[0].Token == "" {
		t.Fatalf("unexpected tokens %+v", resp.Tokens)
	}
}

func TestProfileInfo(t *testing.T) {
	r, conn, jwtCfg := newTestRouter(t)
	user := seedActiveUser(t, conn, "alice", "hunter22")
	token := issueTestToken(t, jwtCfg, user, "TWITCH")

	w := doJSON(r, http.MethodGet, "/v0/profile/info", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Username string `json:"username"`
		Provider string `json:"provider"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Username != "alice" || resp.Provider != "TWITCH" {
		t.Fatalf("unexpected info payload %+v", resp)
	}
}
