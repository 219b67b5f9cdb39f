// Package registry provides image reference validation and an optional
// registry preflight, so a bad image reference fails before the container
// runtime is ever invoked.
package registry

import (
	"context"
	"fmt"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	v1 "github.com/google/go-containerregistry/pkg/v1"
	"github.com/google/go-containerregistry/pkg/v1/remote"

	"github.com/bibin-skaria/olb/internal/types"
)

type Client struct {
	keychain authn.Keychain
}

func NewClient() *Client {
	return &Client{
		keychain: authn.DefaultKeychain,
	}
}

// ParseReference validates and normalizes an image reference.
func (c *Client) ParseReference(image string) (name.Reference, error) {
	ref, err := name.ParseReference(image)
	if err != nil {
		return nil, fmt.Errorf("invalid image reference %s: %v", image, err)
	}
	return ref, nil
}

// VerifyImage checks that the image exists in its registry for the target
// platform, using the default keychain for credentials. Network access is
// required; callers gate this behind an explicit opt-in.
func (c *Client) VerifyImage(ctx context.Context, image string, platform types.Platform) error {
	ref, err := c.ParseReference(image)
	if err != nil {
		return err
	}

	_, err = remote.Get(ref,
		remote.WithContext(ctx),
		remote.WithAuthFromKeychain(c.keychain),
		remote.WithPlatform(v1.Platform{
			OS:           platform.OS,
			Architecture: platform.Architecture,
			Variant:      platform.Variant,
		}),
	)
	if err != nil {
		return fmt.Errorf("image %s not available for %s: %v", image, platform.String(), err)
	}

	return nil
}
