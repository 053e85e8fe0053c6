package authmodel

import "errors"

var (
	InvalidCredentialErr = errors.New("invalid credentials: access token is required")
	StorageErr           = errors.New("credential storage failed")
	NoRefreshTokenErr    = errors.New("no refresh token available")
	RefreshFailedErr     = errors.New("token refresh failed")
	NotAuthenticatedErr  = errors.New("not authenticated")
	LoginFailedErr       = errors.New("login failed")
)
