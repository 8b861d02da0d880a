package serializer

import (
	"encoding/json"

	assetdomain "github.com/smallbiznis/kpi/internal/asset/domain"
	collectiondomain "github.com/smallbiznis/kpi/internal/collection/domain"
	tagdomain "github.com/smallbiznis/kpi/internal/tag/domain"
)

type Collection struct {
	Name         string   `json:"name"`
	URL          string   `json:"url"`
	SurveyAssets []string `json:"survey_assets"`
	Owner        *string  `json:"owner"`
	Tags         []string `json:"tags"`
}

type CollectionListItem struct {
	Name  string   `json:"name"`
	URL   string   `json:"url"`
	Owner *string  `json:"owner"`
	Tags  []string `json:"tags"`
}

func NewCollection(l Linker, c *collectiondomain.Collection, assets []*assetdomain.SurveyAsset) Collection {
	return Collection{
		Name:         c.Name,
		URL:          l.Collection(c.UID),
		SurveyAssets: TaggedAssetLinks(l, assets),
		Owner:        collectionOwner(l, c),
		Tags:         tagdomain.Names(c.Tags),
	}
}

func NewCollectionListItem(l Linker, c *collectiondomain.Collection) CollectionListItem {
	return CollectionListItem{
		Name:  c.Name,
		URL:   l.Collection(c.UID),
		Owner: collectionOwner(l, c),
		Tags:  tagdomain.Names(c.Tags),
	}
}

// TaggedCollectionLinks renders detail links carrying the collection names.
func TaggedCollectionLinks(l Linker, collections []*collectiondomain.Collection) []string {
	links := make([]string, 0, len(collections))
	for _, c := range collections {
		links = append(links, Tagged(l.Collection(c.UID), c.Name))
	}
	return links
}

func collectionOwner(l Linker, c *collectiondomain.Collection) *string {
	if c.Owner == nil {
		return nil
	}
	link := l.User(c.Owner.Username)
	return &link
}

// CollectionWrite is the request body of collection create and update.
type CollectionWrite struct {
	Name json.RawMessage `json:"name"`
	Tags json.RawMessage `json:"tags"`
}

func (w CollectionWrite) ToCreate() (collectiondomain.CreateRequest, error) {
	update, err := w.ToUpdate()
	if err != nil {
		return collectiondomain.CreateRequest{}, err
	}
	var req collectiondomain.CreateRequest
	if update.Name != nil {
		req.Name = *update.Name
	}
	if update.Tags != nil {
		req.Tags = *update.Tags
	}
	return req, nil
}

func (w CollectionWrite) ToUpdate() (collectiondomain.UpdateRequest, error) {
	var req collectiondomain.UpdateRequest
	name, fErr := decodeString("name", w.Name, false)
	if fErr != nil {
		return req, fErr
	}
	tags, fErr := decodeStringList("tags", w.Tags)
	if fErr != nil {
		return req, fErr
	}
	req.Name = name
	req.Tags = tags
	return req, nil
}
