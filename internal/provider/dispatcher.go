package provider

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"alph-link/go-provider/internal/chainid"
	"alph-link/go-provider/internal/channel"
	"alph-link/go-provider/pkg/models"
)

// Method enumerates the closed set of request methods the provider
// dispatches. Anything else is rejected, never silently dropped.
type Method string

const (
	MethodGetAccounts            Method = "alph_getAccounts"
	MethodSignTransferTx         Method = "alph_signTransferTx"
	MethodSignContractCreationTx Method = "alph_signContractCreationTx"
	MethodSignScriptTx           Method = "alph_signScriptTx"
	MethodSignUnsignedTx         Method = "alph_signUnsignedTx"
	MethodSignHexString          Method = "alph_signHexString"
	MethodSignMessage            Method = "alph_signMessage"
)

func (m Method) Valid() bool {
	switch m {
	case MethodGetAccounts, MethodSignTransferTx, MethodSignContractCreationTx,
		MethodSignScriptTx, MethodSignUnsignedTx, MethodSignHexString, MethodSignMessage:
		return true
	default:
		return false
	}
}

func (p *Provider) SignTransferTx(ctx context.Context, params models.SignTransferTxParams) (models.SignTxResult, error) {
	return forwardTx(ctx, p, MethodSignTransferTx, params.SignerAddress, params)
}

func (p *Provider) SignContractCreationTx(ctx context.Context, params models.SignContractCreationTxParams) (models.SignTxResult, error) {
	return forwardTx(ctx, p, MethodSignContractCreationTx, params.SignerAddress, params)
}

func (p *Provider) SignScriptTx(ctx context.Context, params models.SignScriptTxParams) (models.SignTxResult, error) {
	return forwardTx(ctx, p, MethodSignScriptTx, params.SignerAddress, params)
}

func (p *Provider) SignUnsignedTx(ctx context.Context, params models.SignUnsignedTxParams) (models.SignTxResult, error) {
	return forwardTx(ctx, p, MethodSignUnsignedTx, params.SignerAddress, params)
}

func (p *Provider) SignHexString(ctx context.Context, params models.SignHexStringParams) (models.SignTxResult, error) {
	return forwardTx(ctx, p, MethodSignHexString, params.SignerAddress, params)
}

func (p *Provider) SignMessage(ctx context.Context, params models.SignMessageParams) (models.SignMessageResult, error) {
	raw, err := p.forward(ctx, MethodSignMessage, params.SignerAddress, params)
	if err != nil {
		return models.SignMessageResult{}, err
	}
	var result models.SignMessageResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return models.SignMessageResult{}, fmt.Errorf("decode %s result: %w", MethodSignMessage, err)
	}
	return result, nil
}

// Request is the generic facade keyed by method name. getAccounts is
// answered locally; every signing method resolves its signer and forwards.
func (p *Provider) Request(ctx context.Context, method Method, params json.RawMessage) (json.RawMessage, error) {
	if !method.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, method)
	}
	if method == MethodGetAccounts {
		return json.Marshal(p.GetAccounts())
	}

	var signed struct {
		SignerAddress string `json:"signerAddress"`
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &signed); err != nil {
			return nil, fmt.Errorf("decode %s params: %w", method, err)
		}
	}
	return p.forward(ctx, method, signed.SignerAddress, json.RawMessage(params))
}

// forward resolves the signer against published accounts and hands the
// request to the channel, scoped to the resolved account's own group: a
// wildcard provider can hold accounts across groups, and the remote side
// routes by the account's group, not the configured one.
func (p *Provider) forward(ctx context.Context, method Method, signer string, params any) (json.RawMessage, error) {
	p.metrics.Requests.WithLabelValues(string(method)).Inc()

	signer = strings.TrimSpace(signer)
	if signer == "" {
		p.metrics.RequestFailures.WithLabelValues(string(method)).Inc()
		return nil, fmt.Errorf("%s: %w", method, ErrMissingSigner)
	}
	acct, ok := p.accountByAddress(signer)
	if !ok {
		p.metrics.RequestFailures.WithLabelValues(string(method)).Inc()
		return nil, fmt.Errorf("%s signer %q: %w", method, signer, ErrUnknownSigner)
	}

	rawParams, err := json.Marshal(params)
	if err != nil {
		p.metrics.RequestFailures.WithLabelValues(string(method)).Inc()
		return nil, fmt.Errorf("encode %s params: %w", method, err)
	}

	env := channel.RequestEnvelope{
		ID:     newRequestID(),
		Method: string(method),
		Params: rawParams,
	}
	chainScope := chainid.EncodeChain(p.publishedChainRef(), acct.Group)
	result, err := p.ch.Request(ctx, env, chainScope)
	if err != nil {
		p.metrics.RequestFailures.WithLabelValues(string(method)).Inc()
		return nil, fmt.Errorf("channel request %s: %w", method, err)
	}
	return result, nil
}

func forwardTx(ctx context.Context, p *Provider, method Method, signer string, params any) (models.SignTxResult, error) {
	raw, err := p.forward(ctx, method, signer, params)
	if err != nil {
		return models.SignTxResult{}, err
	}
	var result models.SignTxResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return models.SignTxResult{}, fmt.Errorf("decode %s result: %w", method, err)
	}
	return result, nil
}

func newRequestID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "req-unavailable"
	}
	return hex.EncodeToString(buf)
}
