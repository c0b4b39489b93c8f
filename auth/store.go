package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ErrAuthRequired indicates that no valid token exists and the interactive
// consent flow is disabled, so a credential cannot be obtained automatically.
var ErrAuthRequired = errors.New("auth: interactive consent required but not available")

// Store persists and refreshes the OAuth credential for a single provider
// scope. Gmail and Sheets each get their own Store instance with their own
// token file; the flow is identical but the credentials are never shared.
type Store struct {
	name        string // used in log and error messages, e.g. "gmail"
	secretsFile string
	tokenFile   string
	scopes      []string
	interactive bool

	mu    sync.Mutex
	conf  *oauth2.Config
	token *oauth2.Token
}

// NewStore creates a credential store for one provider scope.
func NewStore(name, secretsFile, tokenFile string, interactive bool, scopes ...string) *Store {
	return &Store{
		name:        name,
		secretsFile: secretsFile,
		tokenFile:   tokenFile,
		scopes:      scopes,
		interactive: interactive,
	}
}

// Token returns a valid (non-expired) token, loading the persisted one,
// refreshing it, or running the interactive consent flow as needed. Any newly
// created or refreshed token is persisted before it is returned.
func (s *Store) Token(ctx context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != nil && s.token.Valid() {
		return s.token, nil
	}

	tok, err := tokenFromFile(s.tokenFile)
	if err == nil && tok.Valid() {
		s.token = tok
		return tok, nil
	}

	if err == nil && tok.RefreshToken != "" {
		conf, confErr := s.oauthConfig()
		if confErr != nil {
			return nil, confErr
		}
		refreshed, refreshErr := conf.TokenSource(ctx, tok).Token()
		if refreshErr == nil {
			if saveErr := saveToken(s.tokenFile, refreshed); saveErr != nil {
				return nil, fmt.Errorf("auth(%s): save refreshed token: %w", s.name, saveErr)
			}
			s.token = refreshed
			return refreshed, nil
		}
		// Refresh failed, fall through to the consent flow.
	}

	if !s.interactive {
		return nil, fmt.Errorf("auth(%s): %w", s.name, ErrAuthRequired)
	}

	conf, err := s.oauthConfig()
	if err != nil {
		return nil, err
	}
	tok, err = tokenFromWeb(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("auth(%s): %w", s.name, err)
	}
	if err := saveToken(s.tokenFile, tok); err != nil {
		return nil, fmt.Errorf("auth(%s): save token: %w", s.name, err)
	}
	s.token = tok
	return tok, nil
}

// TokenSource returns an oauth2.TokenSource backed by this store, suitable
// for option.WithTokenSource when building Google API services.
func (s *Store) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &storeTokenSource{ctx: ctx, store: s}
}

func (s *Store) oauthConfig() (*oauth2.Config, error) {
	if s.conf != nil {
		return s.conf, nil
	}
	b, err := os.ReadFile(s.secretsFile)
	if err != nil {
		return nil, fmt.Errorf("auth(%s): read client secret file: %w", s.name, err)
	}
	conf, err := google.ConfigFromJSON(b, s.scopes...)
	if err != nil {
		return nil, fmt.Errorf("auth(%s): parse client secret file: %w", s.name, err)
	}
	s.conf = conf
	return conf, nil
}

// tokenFromWeb runs the console consent flow: print the auth URL, read the
// authorization code from stdin, exchange it for a token.
func tokenFromWeb(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	authURL := conf.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Go to the following link in your browser then type the "+
		"authorization code: \n%v\n", authURL)
	var authCode string
	if _, err := fmt.Scan(&authCode); err != nil {
		return nil, fmt.Errorf("read authorization code: %w", err)
	}
	tok, err := conf.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return tok, nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

func saveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// storeTokenSource adapts a Store to the oauth2.TokenSource interface so
// Google API clients pick up refreshed tokens transparently.
type storeTokenSource struct {
	ctx   context.Context
	store *Store
}

func (t *storeTokenSource) Token() (*oauth2.Token, error) {
	return t.store.Token(t.ctx)
}
