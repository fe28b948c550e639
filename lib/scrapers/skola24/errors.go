package skola24

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork is a transport failure talking to the portal.
	ErrNetwork = errors.New("skola24: network error")

	// ErrScraping means a page did not have the expected shape, usually
	// because the portal changed its markup.
	ErrScraping = errors.New("skola24: unexpected page structure")

	// ErrProtocol means an api response did not have the expected envelope.
	ErrProtocol = errors.New("skola24: unexpected api response")

	// ErrInvalidUsernamePassword is the identity provider rejecting the login.
	ErrInvalidUsernamePassword = errors.New("skola24: invalid username or password")

	// ErrParse is malformed lesson data.
	ErrParse = errors.New("skola24: malformed lesson data")

	ErrInternal = errors.New("skola24: internal error")

	// ErrUnauthorized is the api refusing the credentials, the upstream
	// session has most likely expired.
	ErrUnauthorized = errors.New("skola24: credentials rejected")

	ErrInvalidRange = errors.New("skola24: invalid week range")
)

func networkError(step string, err error) error {
	return fmt.Errorf("%s: %w: %w", step, ErrNetwork, err)
}

func scrapingError(step, reason string) error {
	return fmt.Errorf("%s: %w: %s", step, ErrScraping, reason)
}

func protocolError(step, reason string) error {
	return fmt.Errorf("%s: %w: %s", step, ErrProtocol, reason)
}
