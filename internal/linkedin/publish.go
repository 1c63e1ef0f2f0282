package linkedin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Author modes, tried in this order
const (
	ModeOrganization = "organization"
	ModePerson       = "person"
)

const organizationURNPrefix = "urn:li:organization:"

// PublishResult describes a created post
type PublishResult struct {
	URN    string
	Mode   string
	Author string
}

// PublishError reports a failed publish attempt for one author mode
type PublishError struct {
	Mode       string
	StatusCode int
	Body       string
	Err        error
}

func (e *PublishError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s post failed: %v", e.Mode, e.Err)
	}
	return fmt.Sprintf("%s post failed: status %d - %s", e.Mode, e.StatusCode, e.Body)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// Publisher posts text as the organization, falling back to the member
type Publisher struct {
	client         *Client
	organizationID string
	personID       string
}

// NewPublisher creates a publisher. organizationID may be a bare id or a
// full organization URN; empty posts as the member only. An empty personID
// is looked up from the profile on first use.
func NewPublisher(client *Client, organizationID, personID string) *Publisher {
	return &Publisher{
		client:         client,
		organizationID: CleanOrganizationID(organizationID),
		personID:       personID,
	}
}

// CleanOrganizationID strips the URN prefix from an organization id
func CleanOrganizationID(id string) string {
	return strings.TrimPrefix(strings.TrimSpace(id), organizationURNPrefix)
}

// Publish creates a post. The organization author is tried first and the
// member author once as the fallback; when both fail the errors are joined.
func (p *Publisher) Publish(ctx context.Context, text string) (*PublishResult, error) {
	log := p.client.log
	commentary := PrepareCommentary(text)

	var orgErr error
	if p.organizationID != "" {
		log.Info().Str("organization_id", p.organizationID).Msg("Posting as organization")
		result, err := p.post(ctx, ModeOrganization, organizationURNPrefix+p.organizationID, commentary)
		if err == nil {
			return result, nil
		}
		orgErr = err
		log.Warn().Err(err).Msg("Organization post failed, falling back to personal post")
	}

	personID := p.personID
	if personID == "" {
		profile, err := p.client.GetProfile(ctx)
		if err != nil {
			personErr := &PublishError{Mode: ModePerson, Err: err}
			return nil, errors.Join(orgErr, personErr)
		}
		personID = profile.Sub
		p.personID = personID
	}

	result, err := p.post(ctx, ModePerson, "urn:li:person:"+personID, commentary)
	if err != nil {
		return nil, errors.Join(orgErr, err)
	}
	return result, nil
}

func (p *Publisher) post(ctx context.Context, mode, author, commentary string) (*PublishResult, error) {
	resp, err := p.client.do(ctx, http.MethodPost, "/ugcPosts", newShare(author, commentary))
	if err != nil {
		return nil, &PublishError{Mode: mode, Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		p.client.log.Error().
			Str("mode", mode).
			Int("status", resp.StatusCode).
			Str("body", string(body)).
			Msg("Failed to create post")
		return nil, &PublishError{Mode: mode, StatusCode: resp.StatusCode, Body: string(body)}
	}

	urn := resp.Header.Get("X-RestLi-Id")
	if urn == "" {
		urn = resp.Header.Get("Location")
	}

	p.client.log.Info().
		Str("mode", mode).
		Str("post_urn", urn).
		Msg("Post created successfully")

	return &PublishResult{URN: urn, Mode: mode, Author: author}, nil
}

// ShareRequest is the ugcPosts request body for a text-only share
type ShareRequest struct {
	Author          string          `json:"author"`
	LifecycleState  string          `json:"lifecycleState"`
	SpecificContent SpecificContent `json:"specificContent"`
	Visibility      Visibility      `json:"visibility"`
}

// SpecificContent wraps the share content
type SpecificContent struct {
	ShareContent ShareContent `json:"com.linkedin.ugc.ShareContent"`
}

// ShareContent holds the commentary and media category
type ShareContent struct {
	ShareCommentary    ShareText `json:"shareCommentary"`
	ShareMediaCategory string    `json:"shareMediaCategory"`
}

// ShareText is a text attribute
type ShareText struct {
	Text string `json:"text"`
}

// Visibility controls who can see the share
type Visibility struct {
	MemberNetwork string `json:"com.linkedin.ugc.MemberNetworkVisibility"`
}

func newShare(author, text string) ShareRequest {
	return ShareRequest{
		Author:         author,
		LifecycleState: "PUBLISHED",
		SpecificContent: SpecificContent{
			ShareContent: ShareContent{
				ShareCommentary:    ShareText{Text: text},
				ShareMediaCategory: "NONE",
			},
		},
		Visibility: Visibility{MemberNetwork: "PUBLIC"},
	}
}
