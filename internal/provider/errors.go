package provider

import "errors"

var (
	ErrMissingSigner     = errors.New("request params carry no signer address")
	ErrUnknownSigner     = errors.New("signer address does not resolve to a provider account")
	ErrUnsupportedMethod = errors.New("unsupported request method")
)
