package feed

import (
	"context"
	"os"
	"strings"
)

// HostRewriteResolver is the default AssetResolver: store-internal
// cloud:// references are rewritten onto the public CDN host. References
// that are already fetchable pass through unchanged.
type HostRewriteResolver struct {
	CloudHost  string
	PublicHost string
}

// NewHostRewriteResolverFromEnv builds the resolver from ASSET_CLOUD_HOST
// and ASSET_PUBLIC_HOST.
func NewHostRewriteResolverFromEnv() *HostRewriteResolver {
	return &HostRewriteResolver{
		CloudHost:  os.Getenv("ASSET_CLOUD_HOST"),
		PublicHost: os.Getenv("ASSET_PUBLIC_HOST"),
	}
}

func (r *HostRewriteResolver) Resolve(ctx context.Context, refs []string) (map[string]string, error) {
	out := make(map[string]string, len(refs))
	for _, ref := range refs {
		out[ref] = r.resolveOne(ref)
	}
	return out, nil
}

func (r *HostRewriteResolver) resolveOne(ref string) string {
	if strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "http://") {
		return ref
	}
	if r.CloudHost != "" && strings.HasPrefix(ref, r.CloudHost) {
		return r.PublicHost + strings.TrimPrefix(ref, r.CloudHost)
	}
	return ref
}
