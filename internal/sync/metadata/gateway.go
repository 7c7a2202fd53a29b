package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultGatewayTimeout = 15 * time.Second
	// maxDocumentBytes bounds gateway reads; documents are small JSON blobs
	// and anything larger is junk pinned under a reused hash.
	maxDocumentBytes = 1 << 20
)

// GatewayClient resolves documents through an IPFS HTTP gateway.
type GatewayClient struct {
	baseURL string
	client  *http.Client
}

// NewGatewayClient creates a resolver against the given gateway base URL,
// e.g. "https://ipfs.io".
func NewGatewayClient(baseURL string, timeout time.Duration) (*GatewayClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("gateway base url is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse gateway base url: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultGatewayTimeout
	}
	return &GatewayClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// party is the issuer or fulfiller block a document embeds.
type party struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (p party) orElse(fallback party) party {
	if p.Name == "" && p.Email == "" {
		return fallback
	}
	return p
}

// document mirrors the standard bounty schema: display fields live under
// payload; older documents carry them at the top level.
type document struct {
	Payload struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Issuer      party  `json:"issuer"`
		Fulfiller   party  `json:"fulfiller"`
	} `json:"payload"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Issuer      party  `json:"issuer"`
	Fulfiller   party  `json:"fulfiller"`
}

func (d document) title() string {
	if d.Payload.Title != "" {
		return d.Payload.Title
	}
	return d.Title
}

func (d document) description() string {
	if d.Payload.Description != "" {
		return d.Payload.Description
	}
	return d.Description
}

func (d document) issuer() party {
	return d.Payload.Issuer.orElse(d.Issuer)
}

func (d document) fulfiller() party {
	return d.Payload.Fulfiller.orElse(d.Fulfiller)
}

// ResolveBounty implements Resolver.
func (g *GatewayClient) ResolveBounty(ctx context.Context, dataHash string) (BountyData, error) {
	doc, err := g.fetch(ctx, dataHash)
	if err != nil {
		return BountyData{}, err
	}
	issuer := doc.issuer()
	return BountyData{
		Title:       doc.title(),
		Description: doc.description(),
		IssuerName:  issuer.Name,
		IssuerEmail: issuer.Email,
	}, nil
}

// ResolveFulfillment implements Resolver.
func (g *GatewayClient) ResolveFulfillment(ctx context.Context, dataHash string) (FulfillmentData, error) {
	doc, err := g.fetch(ctx, dataHash)
	if err != nil {
		return FulfillmentData{}, err
	}
	fulfiller := doc.fulfiller()
	return FulfillmentData{
		Description:    doc.description(),
		FulfillerName:  fulfiller.Name,
		FulfillerEmail: fulfiller.Email,
	}, nil
}

func (g *GatewayClient) fetch(ctx context.Context, dataHash string) (document, error) {
	dataHash = strings.TrimSpace(dataHash)
	if dataHash == "" {
		return document{}, fmt.Errorf("data hash is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		g.baseURL+"/ipfs/"+url.PathEscape(dataHash), nil)
	if err != nil {
		return document{}, fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return document{}, fmt.Errorf("fetch document %s: %w", dataHash, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return document{}, fmt.Errorf("fetch document %s: gateway returned %s", dataHash, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return document{}, fmt.Errorf("read document %s: %w", dataHash, err)
	}
	var doc document
	if err := json.Unmarshal(body, &doc); err != nil {
		return document{}, fmt.Errorf("decode document %s: %w", dataHash, err)
	}
	return doc, nil
}
