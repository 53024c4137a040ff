package authlink

import (
	"net/url"
	"sort"
	"strings"

	"github.com/streamhub-dev/accountd/internal/config"
)

// Provider names accepted by the link flow. The set is closed; anything else
// is refused before any state changes.
const (
	ProviderTwitch  = "TWITCH"
	ProviderGoogle  = "GOOGLE"
	ProviderTwitter = "TWITTER"
	ProviderReddit  = "REDDIT"
)

// Handler builds the authorize redirect for one external OAuth provider.
type Handler interface {
	// Name returns the canonical upper-case provider name.
	Name() string
	// AuthenticationURL returns the provider's authorize URL carrying the
	// given state nonce.
	AuthenticationURL(state string) string
}

type twitchHandler struct{ cfg config.ProviderConfig }

func (h *twitchHandler) Name() string { return ProviderTwitch }

func (h *twitchHandler) AuthenticationURL(state string) string {
	return authorizeURL("https://id.twitch.tv/oauth2/authorize", h.cfg, state)
}

type googleHandler struct{ cfg config.ProviderConfig }

func (h *googleHandler) Name() string { return ProviderGoogle }

func (h *googleHandler) AuthenticationURL(state string) string {
	return authorizeURL("https://accounts.google.com/o/oauth2/v2/auth", h.cfg, state)
}

type twitterHandler struct{ cfg config.ProviderConfig }

func (h *twitterHandler) Name() string { return ProviderTwitter }

func (h *twitterHandler) AuthenticationURL(state string) string {
	return authorizeURL("https://twitter.com/i/oauth2/authorize", h.cfg, state)
}

type redditHandler struct{ cfg config.ProviderConfig }

func (h *redditHandler) Name() string { return ProviderReddit }

func (h *redditHandler) AuthenticationURL(state string) string {
	// Reddit refresh tokens require duration=permanent on the authorize
	// request.
	base := authorizeURL("https://www.reddit.com/api/v1/authorize", h.cfg, state)
	return base + "&duration=permanent"
}

// authorizeURL assembles a standard OAuth authorization-code entry URL.
func authorizeURL(endpoint string, cfg config.ProviderConfig, state string) string {
	values := url.Values{}
	values.Set("client_id", cfg.ClientID)
	values.Set("redirect_uri", cfg.RedirectURI)
	values.Set("response_type", "code")
	if len(cfg.Scopes) > 0 {
		values.Set("scope", strings.Join(cfg.Scopes, " "))
	}
	values.Set("state", state)
	return endpoint + "?" + values.Encode()
}

// Registry holds the closed set of provider handlers.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry builds the provider registry from per-provider config. Every
// provider in the closed set gets a handler; providers absent from the
// config still resolve, they just produce a redirect without a client ID.
func NewRegistry(configs map[string]config.ProviderConfig) *Registry {
	handlers := map[string]Handler{
		ProviderTwitch:  &twitchHandler{cfg: configs[ProviderTwitch]},
		ProviderGoogle:  &googleHandler{cfg: configs[ProviderGoogle]},
		ProviderTwitter: &twitterHandler{cfg: configs[ProviderTwitter]},
		ProviderReddit:  &redditHandler{cfg: configs[ProviderReddit]},
	}
	return &Registry{handlers: handlers}
}

// Lookup resolves a provider handler by name, case-insensitively.
func (r *Registry) Lookup(name string) (Handler, bool) {
	handler, ok := r.handlers[strings.ToUpper(strings.TrimSpace(name))]
	return handler, ok
}

// Names returns the supported provider names in stable order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
