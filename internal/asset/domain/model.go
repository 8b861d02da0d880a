// Package domain defines survey assets, their version history and the
// spreadsheet rendering of their content.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/kpi/internal/auth/domain"
	collectiondomain "github.com/smallbiznis/kpi/internal/collection/domain"
	tagdomain "github.com/smallbiznis/kpi/internal/tag/domain"
	"gorm.io/datatypes"
)

const (
	UIDPrefix        = "a"
	NameMaxLength    = 255
	AssetTypeSurvey  = "survey"
	defaultJSONValue = "{}"
)

type SurveyAsset struct {
	ID           snowflake.ID                 `gorm:"primaryKey"`
	UID          string                       `gorm:"type:varchar(32);not null;uniqueIndex"`
	Name         string                       `gorm:"type:varchar(255);not null;default:''"`
	OwnerID      snowflake.ID                 `gorm:"not null;index"`
	Owner        *authdomain.User             `gorm:"foreignKey:OwnerID"`
	CollectionID *snowflake.ID                `gorm:"index"`
	Collection   *collectiondomain.Collection `gorm:"foreignKey:CollectionID;constraint:OnDelete:SET NULL"`
	AssetType    string                       `gorm:"type:varchar(32);not null;default:'survey'"`
	Settings     datatypes.JSON               `gorm:"not null"`
	Content      datatypes.JSON               `gorm:"not null"`
	Tags         []tagdomain.Tag              `gorm:"many2many:survey_asset_tags;"`
	DateCreated  time.Time                    `gorm:"not null"`
	DateModified time.Time                    `gorm:"not null"`

	VersionCount int64 `gorm:"-"`
}

func (SurveyAsset) TableName() string { return "survey_assets" }

// AssetVersion is a snapshot written on every create and update.
type AssetVersion struct {
	ID        snowflake.ID   `gorm:"primaryKey"`
	AssetID   snowflake.ID   `gorm:"not null;index"`
	Name      string         `gorm:"type:varchar(255);not null;default:''"`
	Settings  datatypes.JSON `gorm:"not null"`
	Content   datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time      `gorm:"not null"`
}

func (AssetVersion) TableName() string { return "survey_asset_versions" }

func orDefaultJSON(v datatypes.JSON) datatypes.JSON {
	if len(v) == 0 {
		return datatypes.JSON(defaultJSONValue)
	}
	return v
}

// Snapshot captures the current state of the asset as a new version.
func (a SurveyAsset) Snapshot(id snowflake.ID, at time.Time) AssetVersion {
	return AssetVersion{
		ID:        id,
		AssetID:   a.ID,
		Name:      a.Name,
		Settings:  orDefaultJSON(a.Settings),
		Content:   orDefaultJSON(a.Content),
		CreatedAt: at,
	}
}
