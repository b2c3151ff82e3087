// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package steam_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/espy/internal/platform/apperr"
	"github.com/taibuivan/espy/internal/platform/throttle"
	"github.com/taibuivan/espy/internal/provider/steam"
)

const tf2Details = `{"440":{"success":true,"data":{
	"name":"Team Fortress 2","steam_appid":440,
	"release_date":{"coming_soon":false,"date":"10 Oct, 2007"},
	"developers":["Valve"],"publishers":["Valve"],
	"metacritic":{"score":92,"url":"https://www.metacritic.com/game/pc/team-fortress-2"},
	"screenshots":[{"id":0,"path_thumbnail":"t.jpg","path_full":"f.jpg"}]}}}`

const tf2Page = `<html><body><div class="glance_tags popular_tags">
	<a href="/tags/1">  Free to Play </a><a href="/tags/2">Hero Shooter</a><a class="add_button"></a>
</div></body></html>`

func newServer(t *testing.T, routes map[string]string) (*steam.Client, *int) {
	t.Helper()

	cookies := 0
	mux := http.NewServeMux()
	for path, payload := range routes {
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Cookie") != "" {
				cookies++
			}
			_, _ = w.Write([]byte(payload))
		})
	}
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := steam.NewClient(steam.Options{
		StoreURL: server.URL,
		APIURL:   server.URL,
		APIKey:   "key",
		Limiter:  throttle.PerSecond(1000, 7),
	},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	return client, &cookies
}

/*
TestClient_AppData verifies details and review score are combined.
*/
func TestClient_AppData(t *testing.T) {
	client, cookies := newServer(t, map[string]string{
		"/api/appdetails":  tf2Details,
		"/appreviews/440": `{"success":1,"query_summary":{"total_positive":887,"total_reviews":1000,"review_score_desc":"Very Positive"}}`,
	})

	data, err := client.AppData(t.Context(), "440")
	require.NoError(t, err)

	assert.Equal(t, "Team Fortress 2", data.Name)
	assert.Equal(t, "10 Oct, 2007", data.ReleaseDate.Date)
	require.NotNil(t, data.Score)
	assert.Equal(t, uint64(89), data.Score.ReviewScore)
	assert.Equal(t, uint64(1000), data.Score.TotalReviews)
	require.NotNil(t, data.Metacritic)
	assert.Equal(t, uint64(92), data.Metacritic.Score)
	assert.Equal(t, 2, *cookies)
}

/*
TestClient_AppData_ScoreFailure verifies that a missing score does not fail the lookup.
*/
func TestClient_AppData_ScoreFailure(t *testing.T) {
	client, _ := newServer(t, map[string]string{"/api/appdetails": tf2Details})

	data, err := client.AppData(t.Context(), "440")
	require.NoError(t, err)
	assert.Nil(t, data.Score)
}

/*
TestClient_AppDetails_Unsuccessful verifies that an unknown app is NOT_FOUND.
*/
func TestClient_AppDetails_Unsuccessful(t *testing.T) {
	client, _ := newServer(t, map[string]string{"/api/appdetails": `{"1":{"success":false}}`})

	_, err := client.AppDetails(t.Context(), "1")
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestClient_UserTags verifies the tag scrape.
*/
func TestClient_UserTags(t *testing.T) {
	client, _ := newServer(t, map[string]string{"/app/440/": tf2Page})

	tags, err := client.UserTags(t.Context(), "440")
	require.NoError(t, err)
	assert.Equal(t, []string{"Free to Play", "Hero Shooter"}, tags)
}

/*
TestClient_OwnedGames verifies the library listing.
*/
func TestClient_OwnedGames(t *testing.T) {
	client, _ := newServer(t, map[string]string{
		"/IPlayerService/GetOwnedGames/v0001/": `{"response":{"game_count":1,"games":[{"appid":440,"name":"Team Fortress 2","img_icon_url":"abc"}]}}`,
	})

	entries, err := client.OwnedGames(t.Context(), "7656")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "440", entries[0].ID)
	assert.Equal(t, "steam", entries[0].StorefrontName)

	keyless := steam.NewClient(steam.Options{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err = keyless.OwnedGames(t.Context(), "7656")
	assert.True(t, apperr.IsInvalidArgument(err))
}

/*
TestAppIDFromURL verifies app id extraction from store urls.
*/
func TestAppIDFromURL(t *testing.T) {
	tests := []struct {
		url  string
		id   string
		want bool
	}{
		{"https://store.steampowered.com/app/440/Team_Fortress_2/", "440", true},
		{"https://store.steampowered.com/app/620", "620", true},
		{"https://store.steampowered.com/sub/1", "", false},
		{"https://store.steampowered.com/app/abc/", "", false},
	}

	for _, tt := range tests {
		id, ok := steam.AppIDFromURL(tt.url)
		assert.Equal(t, tt.want, ok, tt.url)
		assert.Equal(t, tt.id, id, tt.url)
	}
}
