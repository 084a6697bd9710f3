package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/youtube/v3"

	"github.com/nguyentantai21042004/meeting-flow/internal/errors"
)

// TokenSource loads the persisted token. Without one it runs the consent flow
// when the store is interactive and a display is available, and fails fast
// with ErrMissingCredential otherwise.
func (s *credentialStore) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	conf, err := s.oauthConfig()
	if err != nil {
		return nil, err
	}
	ctx = s.withClient(ctx)

	tok, err := s.loadToken()
	if err != nil {
		s.logger.Warn(ctx, "Ignoring unreadable token file %s: %v", s.cfg.TokenFile, err)
		tok = nil
	}
	if tok != nil && (tok.Valid() || tok.RefreshToken != "") {
		return oauth2.ReuseTokenSource(tok, &savingTokenSource{
			base:  conf.TokenSource(ctx, tok),
			store: s,
		}), nil
	}

	if !s.cfg.Interactive || !s.hasDisplay() {
		return nil, errors.WithHint(
			errors.Mark(errors.Newf("no usable token in %s and interactive consent is unavailable", s.cfg.TokenFile), errors.ErrMissingCredential),
			"run `meeting token` on a machine with a browser and copy the token file here",
		)
	}

	tok, err = s.consent(ctx, conf)
	if err != nil {
		return nil, err
	}
	return conf.TokenSource(ctx, tok), nil
}

// Authorize forces the consent flow.
func (s *credentialStore) Authorize(ctx context.Context) error {
	conf, err := s.oauthConfig()
	if err != nil {
		return err
	}
	_, err = s.consent(s.withClient(ctx), conf)
	return err
}

func (s *credentialStore) withClient(ctx context.Context) context.Context {
	if s.httpClient != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	}
	return ctx
}

func (s *credentialStore) oauthConfig() (*oauth2.Config, error) {
	data, err := os.ReadFile(s.cfg.ClientSecrets)
	if err != nil {
		return nil, errors.WithHintf(
			errors.Mark(errors.Wrapf(err, "read client secrets %s", s.cfg.ClientSecrets), errors.ErrMissingCredential),
			"create an OAuth client (Desktop app) in Google Cloud Console and save its JSON as %s", s.cfg.ClientSecrets,
		)
	}

	conf, err := google.ConfigFromJSON(data, youtube.YoutubeUploadScope)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "parse client secrets"), errors.ErrMissingCredential)
	}
	conf.RedirectURL = fmt.Sprintf("http://localhost:%d/", s.cfg.RedirectPort)
	return conf, nil
}

// consent runs the loopback authorization-code flow and persists the token.
func (s *credentialStore) consent(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", s.cfg.RedirectPort))
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "listen on port %d for the OAuth redirect", s.cfg.RedirectPort), errors.ErrMissingCredential)
	}

	state := uuid.NewString()
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	r := mux.NewRouter()
	r.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		if e := q.Get("error"); e != "" {
			http.Error(w, "authorization denied: "+e, http.StatusForbidden)
			select {
			case errCh <- errors.Newf("authorization denied: %s", e):
			default:
			}
			return
		}
		fmt.Fprintln(w, "Authorization complete. You can close this window.")
		select {
		case codeCh <- q.Get("code"):
		default:
		}
	}).Methods(http.MethodGet)

	srv := &http.Server{Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go srv.Serve(ln)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	authURL := conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	s.logger.Info(ctx, "Open this URL to authorize YouTube uploads: %s", authURL)
	if err := s.openURL(authURL); err != nil {
		s.logger.Warn(ctx, "Cannot open browser, open the URL manually: %v", err)
	}

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return nil, errors.Mark(err, errors.ErrMissingCredential)
	case <-ctx.Done():
		return nil, errors.Mark(errors.Wrap(ctx.Err(), "waiting for authorization"), errors.ErrMissingCredential)
	}

	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "exchange authorization code"), errors.ErrMissingCredential)
	}
	if err := s.saveToken(tok); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "Token saved to %s", s.cfg.TokenFile)
	return tok, nil
}

func (s *credentialStore) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.cfg.TokenFile)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

func (s *credentialStore) saveToken(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(s.cfg.TokenFile), 0700); err != nil {
		return errors.Wrap(err, "create credentials dir")
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal token")
	}
	if err := os.WriteFile(s.cfg.TokenFile, data, 0600); err != nil {
		return errors.Wrap(err, "write token")
	}
	return nil
}

// savingTokenSource persists every token its base source mints. It sits
// behind oauth2.ReuseTokenSource, so it only runs on refresh.
type savingTokenSource struct {
	base  oauth2.TokenSource
	store *credentialStore
}

func (t *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := t.base.Token()
	if err != nil {
		return nil, errors.WithHint(
			errors.Mark(errors.Wrap(err, "refresh token"), errors.ErrMissingCredential),
			"the stored token may be revoked, run `meeting token` again",
		)
	}
	if err := t.store.saveToken(tok); err != nil {
		t.store.logger.Warn(context.Background(), "Cannot persist refreshed token: %v", err)
	}
	return tok, nil
}
