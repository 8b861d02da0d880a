package serializer

import (
	"bytes"
	"encoding/json"
	"time"

	assetdomain "github.com/smallbiznis/kpi/internal/asset/domain"
	tagdomain "github.com/smallbiznis/kpi/internal/tag/domain"
)

type SurveyAsset struct {
	URL          string      `json:"url"`
	Parent       string      `json:"parent"`
	Owner        *string     `json:"owner"`
	Collection   *string     `json:"collection"`
	Settings     RawJSON     `json:"settings"`
	AssetType    string      `json:"assetType"`
	SSJSON       Spreadsheet `json:"ss_json"`
	VersionCount int64       `json:"version_count"`
	DateCreated  time.Time   `json:"date_created"`
	DateModified time.Time   `json:"date_modified"`
	Name         string      `json:"name"`
	Tags         []string    `json:"tags"`
}

type SurveyAssetListItem struct {
	URL        string   `json:"url"`
	Owner      *string  `json:"owner"`
	Collection *string  `json:"collection"`
	AssetType  string   `json:"assetType"`
	Name       string   `json:"name"`
	Tags       []string `json:"tags"`
}

func NewSurveyAsset(l Linker, a *assetdomain.SurveyAsset) SurveyAsset {
	return SurveyAsset{
		URL:          l.Asset(a.UID),
		Parent:       l.AssetList(),
		Owner:        ownerLink(l, a),
		Collection:   collectionLink(l, a),
		Settings:     RawJSON(a.Settings),
		AssetType:    a.AssetType,
		SSJSON:       Spreadsheet(assetdomain.SpreadsheetStructure(a.Content)),
		VersionCount: a.VersionCount,
		DateCreated:  a.DateCreated,
		DateModified: a.DateModified,
		Name:         a.Name,
		Tags:         tagdomain.Names(a.Tags),
	}
}

func NewSurveyAssetListItem(l Linker, a *assetdomain.SurveyAsset) SurveyAssetListItem {
	return SurveyAssetListItem{
		URL:        l.Asset(a.UID),
		Owner:      ownerLink(l, a),
		Collection: collectionLink(l, a),
		AssetType:  a.AssetType,
		Name:       a.Name,
		Tags:       tagdomain.Names(a.Tags),
	}
}

// TaggedAssetLinks renders detail links carrying the asset names.
func TaggedAssetLinks(l Linker, assets []*assetdomain.SurveyAsset) []string {
	links := make([]string, 0, len(assets))
	for _, a := range assets {
		links = append(links, Tagged(l.Asset(a.UID), a.Name))
	}
	return links
}

func ownerLink(l Linker, a *assetdomain.SurveyAsset) *string {
	if a.Owner == nil {
		return nil
	}
	link := l.User(a.Owner.Username)
	return &link
}

func collectionLink(l Linker, a *assetdomain.SurveyAsset) *string {
	if a.Collection == nil {
		return nil
	}
	link := Tagged(l.Collection(a.Collection.UID), a.Collection.Name)
	return &link
}

// SurveyAssetWrite is the request body of asset create and update.
type SurveyAssetWrite struct {
	Name       json.RawMessage `json:"name"`
	Settings   json.RawMessage `json:"settings"`
	Content    json.RawMessage `json:"content"`
	Collection json.RawMessage `json:"collection"`
	Tags       json.RawMessage `json:"tags"`
}

func (w SurveyAssetWrite) ToCreate() (assetdomain.CreateRequest, error) {
	update, err := w.ToUpdate(false)
	if err != nil {
		return assetdomain.CreateRequest{}, err
	}

	req := assetdomain.CreateRequest{CollectionUID: update.CollectionUID}
	if update.Name != nil {
		req.Name = *update.Name
	}
	if update.Settings != nil {
		req.Settings = *update.Settings
	}
	if update.Content != nil {
		req.Content = *update.Content
	}
	if update.Tags != nil {
		req.Tags = *update.Tags
	}
	return req, nil
}

// ToUpdate decodes the body. Unless partial, content is required.
func (w SurveyAssetWrite) ToUpdate(partial bool) (assetdomain.UpdateRequest, error) {
	var req assetdomain.UpdateRequest

	name, fErr := decodeString("name", w.Name, false)
	if fErr != nil {
		return req, fErr
	}
	req.Name = name

	if w.Settings != nil {
		settings, fErr := DecodeJSONValue("settings", w.Settings)
		if fErr != nil {
			return req, fErr
		}
		req.Settings = &settings
	}

	switch {
	case w.Content != nil:
		content, fErr := DecodeJSONValue("content", w.Content)
		if fErr != nil {
			return req, fErr
		}
		req.Content = &content
	case !partial:
		return req, required("content")
	}

	if w.Collection != nil {
		uid, fErr := ParseHyperlink("collection", PathCollections, w.Collection)
		if fErr != nil {
			return req, fErr
		}
		req.CollectionSet = true
		req.CollectionUID = uid
	}

	tags, fErr := decodeStringList("tags", w.Tags)
	if fErr != nil {
		return req, fErr
	}
	req.Tags = tags
	return req, nil
}

// RawJSON renders stored JSON verbatim, or null when empty.
type RawJSON []byte

func (r RawJSON) MarshalJSON() ([]byte, error) {
	if len(bytes.TrimSpace(r)) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

// Spreadsheet renders sheets as one object with keys in sheet order.
type Spreadsheet []assetdomain.Sheet

func (s Spreadsheet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, sheet := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(sheet.Name)
		if err != nil {
			return nil, err
		}
		rows := sheet.Rows
		if rows == nil {
			rows = []json.RawMessage{}
		}
		body, err := json.Marshal(rows)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
