package schema

import (
	"gorm.io/gorm"
)

// AllModels returns all schema models for GORM AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&WikiPageCache{},
		&EntityCache{},
		&Platform{},
		&Game{},
		&Genre{},
		&Company{},
		&GamePlatform{},
		&GameGenre{},
		&GameCompany{},
		&GameWebsite{},
		&GameImage{},
		&GameExternalID{},
		&GameAgeRating{},
		&GameRelation{},
	}
}

// DerivedTables lists the claim-derived relation tables in the order
// the batch writer clears them. Membership rows from the roster crawl
// share game_platforms but carry a different source tag and are not
// touched by the writer.
func DerivedTables() []string {
	return []string{
		"game_platforms",
		"game_genres",
		"game_companies",
		"game_websites",
		"game_images",
		"game_external_ids",
		"game_age_ratings",
		"game_relations",
	}
}

// Migrate runs GORM AutoMigrate to create or update schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
