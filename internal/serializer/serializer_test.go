package serializer

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	assetdomain "github.com/smallbiznis/kpi/internal/asset/domain"
	authdomain "github.com/smallbiznis/kpi/internal/auth/domain"
	collectiondomain "github.com/smallbiznis/kpi/internal/collection/domain"
	tagdomain "github.com/smallbiznis/kpi/internal/tag/domain"
	"github.com/smallbiznis/kpi/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func testLinker(target string) Linker {
	req := httptest.NewRequest("GET", target, nil)
	req.Host = "kpi.test"
	return NewLinker(req)
}

func TestLinkerHonorsForwardedHeaders(t *testing.T) {
	req := httptest.NewRequest("GET", "/survey_assets/", nil)
	req.Host = "internal:8080"
	req.Header.Set("X-Forwarded-Proto", "https, http")
	req.Header.Set("X-Forwarded-Host", "kf.example.org")

	l := NewLinker(req)
	assert.Equal(t, "https://kf.example.org/survey_assets/", l.AssetList())
	assert.Equal(t, "https://kf.example.org/users/alice/", l.User("alice"))
}

func TestTaggedQuotesName(t *testing.T) {
	assert.Equal(t, "http://x/collections/c1/#my+fancy+collection%21", Tagged("http://x/collections/c1/", "my fancy collection!"))
	assert.Equal(t, "http://x/collections/c1/", Tagged("http://x/collections/c1/", ""))
}

func TestLinkerNextKeepsQuery(t *testing.T) {
	l := testLinker("/survey_assets/?page_size=2&cursor=old")
	next := l.Next("abc")
	require.NotNil(t, next)
	assert.Equal(t, "http://kpi.test/survey_assets/?cursor=abc&page_size=2", *next)
	assert.Nil(t, l.Next(""))
}

func TestDecodeJSONValue(t *testing.T) {
	doc, fErr := DecodeJSONValue("content", json.RawMessage(`"{\"survey\": []}"`))
	require.Nil(t, fErr)
	assert.JSONEq(t, `{"survey":[]}`, string(doc))

	doc, fErr = DecodeJSONValue("content", json.RawMessage(`{"survey": [ {"type": "text"} ]}`))
	require.Nil(t, fErr)
	assert.Equal(t, `{"survey":[{"type":"text"}]}`, string(doc))

	_, fErr = DecodeJSONValue("content", json.RawMessage(`"not json"`))
	require.NotNil(t, fErr)
	assert.Equal(t, MsgInvalidJSON, fErr.Message)

	_, fErr = DecodeJSONValue("settings", json.RawMessage(`null`))
	require.NotNil(t, fErr)
	assert.Equal(t, "settings", fErr.Field)
	assert.Equal(t, MsgNull, fErr.Message)
}

func TestParseHyperlink(t *testing.T) {
	uid, fErr := ParseHyperlink("collection", PathCollections, json.RawMessage(`"http://kpi.test/collections/cABC/"`))
	require.Nil(t, fErr)
	require.NotNil(t, uid)
	assert.Equal(t, "cABC", *uid)

	uid, fErr = ParseHyperlink("collection", PathCollections, json.RawMessage(`null`))
	assert.Nil(t, fErr)
	assert.Nil(t, uid)

	_, fErr = ParseHyperlink("collection", PathCollections, json.RawMessage(`"http://kpi.test/survey_assets/aX/"`))
	require.NotNil(t, fErr)
	assert.Equal(t, MsgIncorrectMatch, fErr.Message)

	_, fErr = ParseHyperlink("collection", PathCollections, json.RawMessage(`"http://kpi.test/nowhere/"`))
	require.NotNil(t, fErr)
	assert.Equal(t, MsgNoURLMatch, fErr.Message)

	_, fErr = ParseHyperlink("collection", PathCollections, json.RawMessage(`12`))
	require.NotNil(t, fErr)
	assert.Equal(t, "Incorrect type. Expected URL string, received int.", fErr.Message)
}

func TestSurveyAssetRendering(t *testing.T) {
	l := testLinker("/survey_assets/aONE/")
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	asset := &assetdomain.SurveyAsset{
		UID:        "aONE",
		Name:       "Household",
		Owner:      &authdomain.User{Username: "alice"},
		Collection: &collectiondomain.Collection{UID: "cTWO", Name: "field work"},
		AssetType:  assetdomain.AssetTypeSurvey,
		Settings:   datatypes.JSON(`{"form_title":"HH"}`),
		Content: datatypes.JSON(`{"choices":[{"list_name":"yn"}],"survey":[{"type":"text","name":"q1"}],` +
			`"settings":{"form_id":"hh"}}`),
		Tags:         []tagdomain.Tag{{Name: "baseline"}},
		DateCreated:  at,
		DateModified: at,
		VersionCount: 2,
	}

	body, err := json.Marshal(NewSurveyAsset(l, asset))
	require.NoError(t, err)

	var got map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &got))
	assert.JSONEq(t, `"http://kpi.test/survey_assets/aONE/"`, string(got["url"]))
	assert.JSONEq(t, `"http://kpi.test/survey_assets/"`, string(got["parent"]))
	assert.JSONEq(t, `"http://kpi.test/users/alice/"`, string(got["owner"]))
	assert.JSONEq(t, `"http://kpi.test/collections/cTWO/#field+work"`, string(got["collection"]))
	assert.JSONEq(t, `{"form_title":"HH"}`, string(got["settings"]))
	assert.JSONEq(t, `"survey"`, string(got["assetType"]))
	assert.JSONEq(t, `2`, string(got["version_count"]))
	assert.JSONEq(t, `["baseline"]`, string(got["tags"]))
	assert.NotContains(t, got, "content")
	assert.Equal(t,
		`{"survey":[{"type":"text","name":"q1"}],"choices":[{"list_name":"yn"}],"settings":[{"form_id":"hh"}]}`,
		string(got["ss_json"]))

	asset.Collection = nil
	item, err := json.Marshal(NewSurveyAssetListItem(l, asset))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"url": "http://kpi.test/survey_assets/aONE/",
		"owner": "http://kpi.test/users/alice/",
		"collection": null,
		"assetType": "survey",
		"name": "Household",
		"tags": ["baseline"]
	}`, string(item))
}

func TestSurveyAssetWrite(t *testing.T) {
	var w SurveyAssetWrite
	require.NoError(t, json.Unmarshal([]byte(`{"name":"x","settings":"{}"}`), &w))
	_, err := w.ToCreate()
	var fErr *FieldError
	require.ErrorAs(t, err, &fErr)
	assert.Equal(t, "content", fErr.Field)
	assert.Equal(t, MsgRequired, fErr.Message)

	update, err := w.ToUpdate(true)
	require.NoError(t, err)
	assert.Nil(t, update.Content)
	require.NotNil(t, update.Settings)
	assert.False(t, update.CollectionSet)

	w = SurveyAssetWrite{}
	require.NoError(t, json.Unmarshal([]byte(`{
		"content": {"survey": []},
		"collection": "http://kpi.test/collections/cTWO/",
		"tags": ["a", "b"]
	}`), &w))
	req, err := w.ToCreate()
	require.NoError(t, err)
	require.NotNil(t, req.CollectionUID)
	assert.Equal(t, "cTWO", *req.CollectionUID)
	assert.Equal(t, []string{"a", "b"}, req.Tags)
	assert.Equal(t, `{"survey":[]}`, string(req.Content))

	w = SurveyAssetWrite{}
	require.NoError(t, json.Unmarshal([]byte(`{"collection": null}`), &w))
	update, err = w.ToUpdate(true)
	require.NoError(t, err)
	assert.True(t, update.CollectionSet)
	assert.Nil(t, update.CollectionUID)
}

func TestCollectionAndTagRendering(t *testing.T) {
	l := testLinker("/collections/")
	coll := &collectiondomain.Collection{
		UID:   "cTWO",
		Name:  "field work",
		Owner: &authdomain.User{Username: "alice"},
		Tags:  []tagdomain.Tag{{Name: "t1"}},
	}
	assets := []*assetdomain.SurveyAsset{{UID: "aONE", Name: "Household"}, {UID: "aTWO"}}

	body, err := json.Marshal(NewCollection(l, coll, assets))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "field work",
		"url": "http://kpi.test/collections/cTWO/",
		"survey_assets": ["http://kpi.test/survey_assets/aONE/#Household", "http://kpi.test/survey_assets/aTWO/"],
		"owner": "http://kpi.test/users/alice/",
		"tags": ["t1"]
	}`, string(body))

	tag := &tagdomain.Tag{Name: "t1"}
	body, err = json.Marshal(NewTag(l, tag, assets[:1], []*collectiondomain.Collection{coll}))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "t1",
		"url": "http://kpi.test/tags/t1/",
		"survey_assets": ["http://kpi.test/survey_assets/aONE/"],
		"collections": ["http://kpi.test/collections/cTWO/"],
		"parent": "http://kpi.test/tags/"
	}`, string(body))
}

func TestUserRendering(t *testing.T) {
	l := testLinker("/users/alice/")
	user := &authdomain.User{Username: "alice", FirstName: "Alice", Email: "a@example.org", IsActive: true}

	body, err := json.Marshal(NewUser(l, user, nil, []*collectiondomain.Collection{{UID: "cTWO", Name: "c"}}))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"url": "http://kpi.test/users/alice/",
		"username": "alice",
		"survey_assets": [],
		"owned_collections": ["http://kpi.test/collections/cTWO/#c"]
	}`, string(body))

	body, err = json.Marshal(NewUserAccount(user))
	require.NoError(t, err)
	assert.JSONEq(t, `{"username":"alice","first_name":"Alice","last_name":"","email":"a@example.org","is_active":true}`, string(body))
}

func TestUserAccountWrite(t *testing.T) {
	var w UserAccountWrite
	require.NoError(t, json.Unmarshal([]byte(`{"username":"bob"}`), &w))
	assert.Equal(t, "bob", w.RequestedUsername())
	_, err := w.ToCreate()
	var fErr *FieldError
	require.ErrorAs(t, err, &fErr)
	assert.Equal(t, "password", fErr.Field)

	w = UserAccountWrite{}
	require.NoError(t, json.Unmarshal([]byte(`{"username":"bob","password":"pw","is_active":false}`), &w))
	req, err := w.ToCreate()
	require.NoError(t, err)
	assert.Equal(t, "bob", req.Username)
	assert.Equal(t, "pw", req.Password)
	require.NotNil(t, req.IsActive)
	assert.False(t, *req.IsActive)

	w = UserAccountWrite{}
	require.NoError(t, json.Unmarshal([]byte(`{"password":null,"email":"b@example.org"}`), &w))
	update, err := w.ToUpdate(true)
	require.NoError(t, err)
	assert.Nil(t, update.Password)
	assert.Nil(t, update.Username)
	require.NotNil(t, update.Email)

	_, err = w.ToUpdate(false)
	require.ErrorAs(t, err, &fErr)
	assert.Equal(t, "username", fErr.Field)

	w = UserAccountWrite{IsActive: json.RawMessage(`"yes"`)}
	_, err = w.ToUpdate(true)
	require.ErrorAs(t, err, &fErr)
	assert.Equal(t, MsgInvalidBoolean, fErr.Message)
}

func TestPage(t *testing.T) {
	l := testLinker("/tags/")
	page := NewPage[TagListItem](l, nil, pagination.PageInfo{})
	body, err := json.Marshal(page)
	require.NoError(t, err)
	assert.JSONEq(t, `{"root":"http://kpi.test/","results":[],"next":null,"has_more":false}`, string(body))

	page = NewPage(l, []TagListItem{{Name: "a"}}, pagination.PageInfo{NextPageToken: "tok", HasMore: true})
	require.NotNil(t, page.Next)
	assert.Equal(t, "http://kpi.test/tags/?cursor=tok", *page.Next)
}
