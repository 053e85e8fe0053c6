package authclient

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-afazer-client/authmodel"
)

// TokenSource adapts the session to the oauth2.TokenSource interface so that
// libraries built on golang.org/x/oauth2 can consume it. The returned source
// serves the stored access token and falls back to the refresh coordinator
// when none is stored; reactive 401 recovery remains the executor's job.
func (c *Client) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &sessionTokenSource{client: c, ctx: ctx}
}

type sessionTokenSource struct {
	client *Client
	ctx    context.Context
}

func (ts *sessionTokenSource) Token() (*oauth2.Token, error) {
	if accessToken := ts.client.creds.AccessToken(); accessToken != "" {
		return &oauth2.Token{AccessToken: accessToken, TokenType: "bearer"}, nil
	}

	accessToken, err := ts.client.Refresh(ts.ctx)
	if err != nil {
		return nil, err
	}
	if accessToken == "" {
		return nil, authmodel.NotAuthenticatedErr
	}
	return &oauth2.Token{AccessToken: accessToken, TokenType: "bearer"}, nil
}
