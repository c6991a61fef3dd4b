package feed

import (
	"context"
	"encoding/json"

	"github.com/jinzhu/copier"
	Logger "github.com/juqihq/feedcore/utils/log"
)

// AssetResolver converts opaque asset references into fetchable URLs, in
// one batch per page. Implemented externally; see HostRewriteResolver for
// the default.
type AssetResolver interface {
	Resolve(ctx context.Context, refs []string) (map[string]string, error)
}

// thumbVariant is the CDN image-processing suffix for list-view
// thumbnails.
const thumbVariant = "?imageMogr2/auto-orient/thumbnail/400x2000%3E/quality/70/interlace/1"

// Assembler merges enriched posts into client-facing items. Asset
// resolution failing degrades to the raw references; it never fails a
// page.
type Assembler struct {
	Assets AssetResolver
}

func (a *Assembler) Assemble(ctx context.Context, enriched []*EnrichedPost) ([]*Item, error) {
	refs := make([]string, 0, len(enriched)*2)
	for _, ep := range enriched {
		refs = append(refs, imageRefs(ep)...)
		if ep.Post.Video != "" {
			refs = append(refs, ep.Post.Video)
		}
		if ep.Post.Voice != "" {
			refs = append(refs, ep.Post.Voice)
		}
		if ep.Author != nil && ep.Author.AvatarRef != "" {
			refs = append(refs, ep.Author.AvatarRef)
		}
	}

	resolved := map[string]string{}
	if a.Assets != nil && len(refs) > 0 {
		urls, err := a.Assets.Resolve(ctx, refs)
		if err != nil {
			Logger.Log.WithError(err).Warn("asset resolution failed, serving raw references")
		} else {
			resolved = urls
		}
	}
	resolve := func(ref string) string {
		if url, ok := resolved[ref]; ok {
			return url
		}
		return ref
	}

	items := make([]*Item, 0, len(enriched))
	for _, ep := range enriched {
		item := &Item{}
		if err := copier.Copy(item, ep.Post); err != nil {
			return nil, err
		}
		item.PublishedAt = NormalizeMillis(ep.Post.PublishedAt)

		// the raw row stores image refs as a JSON blob; rebuild the list
		// from scratch instead of trusting the field copy
		item.Images = nil
		item.ImageThumbs = nil
		for _, ref := range imageRefs(ep) {
			url := resolve(ref)
			item.Images = append(item.Images, url)
			item.ImageThumbs = append(item.ImageThumbs, url+thumbVariant)
		}
		item.Video = resolve(ep.Post.Video)
		item.Voice = resolve(ep.Post.Voice)
		item.ForwardSnapshot = json.RawMessage(ep.Post.ForwardSnapshot)
		item.Mentions = json.RawMessage(ep.Post.Mentions)

		if ep.Author != nil {
			item.Author = &Author{
				Id:        ep.Author.Id,
				Name:      ep.Author.Name,
				AvatarURL: resolve(ep.Author.AvatarRef),
				Labels:    json.RawMessage(ep.Author.Labels),
				Admin:     ep.Author.Admin,
			}
		}
		item.Viewer = ep.Viewer
		items = append(items, item)
	}
	return items, nil
}

func imageRefs(ep *EnrichedPost) []string {
	if len(ep.Post.Images) == 0 {
		return nil
	}
	var refs []string
	if err := json.Unmarshal(ep.Post.Images, &refs); err != nil {
		return nil
	}
	return refs
}
