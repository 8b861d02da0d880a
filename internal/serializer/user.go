package serializer

import (
	"encoding/json"

	assetdomain "github.com/smallbiznis/kpi/internal/asset/domain"
	authdomain "github.com/smallbiznis/kpi/internal/auth/domain"
	collectiondomain "github.com/smallbiznis/kpi/internal/collection/domain"
)

type User struct {
	URL              string   `json:"url"`
	Username         string   `json:"username"`
	SurveyAssets     []string `json:"survey_assets"`
	OwnedCollections []string `json:"owned_collections"`
}

func NewUser(l Linker, u *authdomain.User, assets []*assetdomain.SurveyAsset, collections []*collectiondomain.Collection) User {
	return User{
		URL:              l.User(u.Username),
		Username:         u.Username,
		SurveyAssets:     TaggedAssetLinks(l, assets),
		OwnedCollections: TaggedCollectionLinks(l, collections),
	}
}

type UserAccount struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	IsActive  bool   `json:"is_active"`
}

func NewUserAccount(u *authdomain.User) UserAccount {
	return UserAccount{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		IsActive:  u.IsActive,
	}
}

// UserAccountWrite is the request body of account create and update.
// Password is accepted but never rendered.
type UserAccountWrite struct {
	Username  json.RawMessage `json:"username"`
	Password  json.RawMessage `json:"password"`
	FirstName json.RawMessage `json:"first_name"`
	LastName  json.RawMessage `json:"last_name"`
	Email     json.RawMessage `json:"email"`
	IsActive  json.RawMessage `json:"is_active"`
}

// RequestedUsername returns the username in the body, if any, so conflicts
// can be reported before the remaining fields are validated.
func (w UserAccountWrite) RequestedUsername() string {
	var s string
	if w.Username == nil || json.Unmarshal(w.Username, &s) != nil {
		return ""
	}
	return s
}

func (w UserAccountWrite) ToCreate() (authdomain.CreateAccountRequest, error) {
	var req authdomain.CreateAccountRequest
	if w.Username == nil {
		return req, required("username")
	}
	if w.Password == nil || isNull(w.Password) {
		return req, required("password")
	}
	update, err := w.ToUpdate(false)
	if err != nil {
		return req, err
	}
	req.Username = *update.Username
	req.Password = *update.Password
	req.IsActive = update.IsActive
	if update.FirstName != nil {
		req.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		req.LastName = *update.LastName
	}
	if update.Email != nil {
		req.Email = *update.Email
	}
	return req, nil
}

// ToUpdate decodes the present fields. Unless partial, username is required.
// A null password leaves it unchanged.
func (w UserAccountWrite) ToUpdate(partial bool) (authdomain.UpdateAccountRequest, error) {
	var req authdomain.UpdateAccountRequest
	var fErr *FieldError

	if !partial && w.Username == nil {
		return req, required("username")
	}
	if req.Username, fErr = decodeString("username", w.Username, false); fErr != nil {
		return req, fErr
	}
	if req.Password, fErr = decodeString("password", w.Password, true); fErr != nil {
		return req, fErr
	}
	if req.FirstName, fErr = decodeString("first_name", w.FirstName, false); fErr != nil {
		return req, fErr
	}
	if req.LastName, fErr = decodeString("last_name", w.LastName, false); fErr != nil {
		return req, fErr
	}
	if req.Email, fErr = decodeString("email", w.Email, false); fErr != nil {
		return req, fErr
	}
	if w.IsActive != nil {
		var active bool
		if isNull(w.IsActive) {
			return req, &FieldError{Field: "is_active", Code: "null", Message: MsgNull}
		}
		if err := json.Unmarshal(w.IsActive, &active); err != nil {
			return req, &FieldError{Field: "is_active", Code: "invalid", Message: MsgInvalidBoolean}
		}
		req.IsActive = &active
	}
	return req, nil
}
