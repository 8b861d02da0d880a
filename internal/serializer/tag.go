package serializer

import (
	assetdomain "github.com/smallbiznis/kpi/internal/asset/domain"
	collectiondomain "github.com/smallbiznis/kpi/internal/collection/domain"
	tagdomain "github.com/smallbiznis/kpi/internal/tag/domain"
)

type Tag struct {
	Name         string   `json:"name"`
	URL          string   `json:"url"`
	SurveyAssets []string `json:"survey_assets"`
	Collections  []string `json:"collections"`
	Parent       string   `json:"parent"`
}

type TagListItem struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// NewTag renders a tag with the associations visible to the caller; callers
// pass assets and collections already filtered by owner.
func NewTag(l Linker, t *tagdomain.Tag, assets []*assetdomain.SurveyAsset, collections []*collectiondomain.Collection) Tag {
	assetLinks := make([]string, 0, len(assets))
	for _, a := range assets {
		assetLinks = append(assetLinks, l.Asset(a.UID))
	}
	collectionLinks := make([]string, 0, len(collections))
	for _, c := range collections {
		collectionLinks = append(collectionLinks, l.Collection(c.UID))
	}
	return Tag{
		Name:         t.Name,
		URL:          l.Tag(t.Name),
		SurveyAssets: assetLinks,
		Collections:  collectionLinks,
		Parent:       l.TagList(),
	}
}

func NewTagListItem(l Linker, t *tagdomain.Tag) TagListItem {
	return TagListItem{Name: t.Name, URL: l.Tag(t.Name)}
}
