// Package federation exposes local users to other fediverse servers.
package federation

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"human-connection/internal/repository"
)

var (
	ErrMissingResource = errors.New(`Query parameter "?resource=acct:<USER>@<DOMAIN>" is missing.`)
	ErrNoRecord        = errors.New("no record found")
)

// NotFoundError carries the account that could not be resolved.
type NotFoundError struct {
	Account string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("No record found for %q.", e.Account)
}

func (e *NotFoundError) Unwrap() error { return ErrNoRecord }

type Link struct {
	Rel  string `json:"rel"`
	Type string `json:"type"`
	Href string `json:"href"`
}

// Resource is a JSON Resource Descriptor (RFC 7033).
type Resource struct {
	Subject string `json:"subject"`
	Links   []Link `json:"links"`
}

type Service interface {
	WebFinger(ctx context.Context, resource string) (*Resource, error)
}

type service struct {
	userRepo repository.UserRepository
	client   *url.URL
}

func NewService(userRepo repository.UserRepository, clientURI string) (Service, error) {
	client, err := url.Parse(strings.TrimRight(clientURI, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid client uri: %w", err)
	}
	return &service{userRepo: userRepo, client: client}, nil
}

// ParseAccount splits "acct:<user>@<domain>" into its parts.
func ParseAccount(resource string) (user, domain string, err error) {
	account, ok := strings.CutPrefix(resource, "acct:")
	if !ok {
		return "", "", ErrMissingResource
	}
	user, domain, ok = strings.Cut(account, "@")
	if !ok || user == "" || domain == "" {
		return "", "", ErrMissingResource
	}
	return user, domain, nil
}

func (s *service) WebFinger(ctx context.Context, resource string) (*Resource, error) {
	name, domain, err := ParseAccount(resource)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetBySlug(ctx, name)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &NotFoundError{Account: name + "@" + domain}
	}

	return &Resource{
		Subject: fmt.Sprintf("acct:%s@%s", user.Slug, s.client.Host),
		Links: []Link{
			{
				Rel:  "self",
				Type: "application/activity+json",
				Href: fmt.Sprintf("%s/activitypub/users/%s", s.client.String(), user.Slug),
			},
		},
	}, nil
}
