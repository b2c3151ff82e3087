// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package game

// SteamData is the storefront record of a title. Field names follow the
// storefront's appdetails payload.
type SteamData struct {
	Name             string           `json:"name"`
	SteamAppID       uint64           `json:"steam_appid"`
	ShortDescription string           `json:"short_description,omitempty"`
	AboutTheGame     string           `json:"about_the_game,omitempty"`
	ReleaseDate      SteamReleaseDate `json:"release_date"`
	HeaderImage      string           `json:"header_image,omitempty"`

	Developers []string `json:"developers,omitempty"`
	Publishers []string `json:"publishers,omitempty"`
	Dlc        []uint64 `json:"dlc,omitempty"`

	Score           *SteamScore           `json:"score,omitempty"`
	Metacritic      *SteamMetacritic      `json:"metacritic,omitempty"`
	Recommendations *SteamRecommendations `json:"recommendations,omitempty"`

	Genres      []SteamGenre `json:"genres,omitempty"`
	UserTags    []string     `json:"user_tags,omitempty"`
	Screenshots []SteamImage `json:"screenshots,omitempty"`
	Movies      []SteamMovie `json:"movies,omitempty"`
}

// SteamReleaseDate is the storefront's textual release date.
type SteamReleaseDate struct {
	ComingSoon bool   `json:"coming_soon"`
	Date       string `json:"date"`
}

// SteamScore summarizes user reviews. ReviewScore is the share of positive
// reviews in percent.
type SteamScore struct {
	ReviewScore     uint64 `json:"review_score"`
	TotalReviews    uint64 `json:"total_reviews"`
	ReviewScoreDesc string `json:"review_score_desc,omitempty"`
}

type SteamMetacritic struct {
	Score uint64 `json:"score"`
	URL   string `json:"url,omitempty"`
}

type SteamRecommendations struct {
	Total uint64 `json:"total"`
}

type SteamGenre struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

type SteamImage struct {
	ID            uint64 `json:"id"`
	PathThumbnail string `json:"path_thumbnail"`
	PathFull      string `json:"path_full"`
}

type SteamMovie struct {
	ID uint64 `json:"id"`
}

// GogData is the GOG storefront record of a title.
type GogData struct {
	ReleaseDate string   `json:"release_date,omitempty"`
	Logo        string   `json:"logo,omitempty"`
	CriticScore uint64   `json:"critic_score,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Description string   `json:"description,omitempty"`
}

// WikipediaData is the scraped infobox of a title.
type WikipediaData struct {
	Developers []string `json:"developers,omitempty"`
	Publishers []string `json:"publishers,omitempty"`
	Genres     []string `json:"genres,omitempty"`
	Keywords   []string `json:"keywords,omitempty"`
	Score      uint64   `json:"score,omitempty"`
}

// GenreAnnotation holds the curated genres of a title.
type GenreAnnotation struct {
	ID         uint64   `json:"id"`
	Name       string   `json:"name"`
	EspyGenres []string `json:"espy_genres"`
}

// AnnotationRequest marks a title whose genres still need curating.
type AnnotationRequest struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	RequestedAt int64  `json:"requested_at"`
}
