package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// GitHubConfig holds configuration for the GitHub identity provider.
type GitHubConfig struct {
	ClientID     string   `env:"GITHUB_CLIENT_ID,required"`
	ClientSecret string   `env:"GITHUB_CLIENT_SECRET,required"`
	RedirectURL  string   `env:"GITHUB_REDIRECT_URL,required"`
	Scopes       []string `env:"GITHUB_SCOPES" envSeparator:"," envDefault:"user:email"`
}

type githubAdapter struct {
	conf       *oauth2.Config
	httpClient *http.Client
}

// NewGitHubAdapter creates the GitHub provider adapter.
func NewGitHubAdapter(cfg GitHubConfig) ProviderAdapter {
	return &githubAdapter{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     github.Endpoint,
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (a *githubAdapter) ProviderID() string {
	return "github"
}

func (a *githubAdapter) AuthURL(state string) string {
	return a.conf.AuthCodeURL(state)
}

// Exchange trades the authorization code for the user's identity. GitHub's
// user endpoint may omit the email, so the emails endpoint is always queried
// for a verified address.
func (a *githubAdapter) Exchange(ctx context.Context, code string) (ExternalIdentity, error) {
	tok, err := a.conf.Exchange(ctx, code)
	if err != nil {
		return ExternalIdentity{}, fmt.Errorf("%w: %v", ErrProviderExchange, err)
	}

	u, err := a.fetchUser(ctx, tok.AccessToken)
	if err != nil {
		return ExternalIdentity{}, fmt.Errorf("fetch github user: %w", err)
	}

	emails, err := a.fetchEmails(ctx, tok.AccessToken)
	if err != nil {
		return ExternalIdentity{}, fmt.Errorf("fetch github emails: %w", err)
	}

	var email string
	var verified bool
	for _, e := range emails {
		if e.Primary && e.Verified {
			email, verified = e.Email, true
			break
		}
	}
	if email == "" {
		for _, e := range emails {
			if e.Verified {
				email, verified = e.Email, true
				break
			}
		}
	}
	if email == "" {
		return ExternalIdentity{}, ErrNoProviderEmail
	}

	return ExternalIdentity{
		Subject:       strconv.FormatInt(u.ID, 10),
		Email:         email,
		Name:          u.Name,
		EmailVerified: verified,
		AccessToken:   tok.AccessToken,
		RefreshToken:  tok.RefreshToken,
		Expiry:        tok.Expiry,
	}, nil
}

type ghUser struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ghEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func (a *githubAdapter) fetchUser(ctx context.Context, accessToken string) (*ghUser, error) {
	var u ghUser
	if err := a.getJSON(ctx, "https://api.github.com/user", accessToken, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (a *githubAdapter) fetchEmails(ctx context.Context, accessToken string) ([]ghEmail, error) {
	var emails []ghEmail
	if err := a.getJSON(ctx, "https://api.github.com/user/emails", accessToken, &emails); err != nil {
		return nil, err
	}
	return emails, nil
}

func (a *githubAdapter) getJSON(ctx context.Context, url, accessToken string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github api returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

var _ ProviderAdapter = (*githubAdapter)(nil)
