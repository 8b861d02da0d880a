// Package serializer maps domain records to their hyperlinked wire
// representation and decodes write payloads.
package serializer

import (
	"net/http"
	"net/url"
	"strings"
)

const (
	PathAssets           = "/survey_assets/"
	PathCollections      = "/collections/"
	PathTags             = "/tags/"
	PathUsers            = "/users/"
	PathUserAccounts     = "/user_accounts/"
	PathAppUsers         = "/authorized_application/users/"
	PathAppOneTimeKeys   = "/authorized_application/one_time_keys/"
	PathRedeemOneTimeKey = "/one_time_keys/redeem/"

	// PageTokenParam carries the cursor of the next page.
	PageTokenParam = "cursor"
)

// Linker builds absolute URLs relative to the request being served.
type Linker struct {
	base    string
	current *url.URL
}

func NewLinker(r *http.Request) Linker {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		host = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	current := *r.URL
	return Linker{base: scheme + "://" + host, current: &current}
}

func (l Linker) URL(path string) string {
	return l.base + path
}

func (l Linker) Root() string { return l.URL("/") }

func (l Linker) AssetList() string { return l.URL(PathAssets) }

func (l Linker) Asset(uid string) string {
	return l.URL(PathAssets + url.PathEscape(uid) + "/")
}

func (l Linker) CollectionList() string { return l.URL(PathCollections) }

func (l Linker) Collection(uid string) string {
	return l.URL(PathCollections + url.PathEscape(uid) + "/")
}

func (l Linker) TagList() string { return l.URL(PathTags) }

func (l Linker) Tag(name string) string {
	return l.URL(PathTags + url.PathEscape(name) + "/")
}

func (l Linker) User(username string) string {
	return l.URL(PathUsers + url.PathEscape(username) + "/")
}

func (l Linker) UserAccount(username string) string {
	return l.URL(PathUserAccounts + url.PathEscape(username) + "/")
}

// Next is the current request URL with the page cursor replaced by token.
func (l Linker) Next(token string) *string {
	if token == "" || l.current == nil {
		return nil
	}
	next := *l.current
	q := next.Query()
	q.Set(PageTokenParam, token)
	next.RawQuery = q.Encode()
	s := l.base + next.RequestURI()
	return &s
}

// Tagged appends the related object's name as a fragment, form-encoded.
func Tagged(link, name string) string {
	if name == "" {
		return link
	}
	return link + "#" + url.QueryEscape(name)
}
