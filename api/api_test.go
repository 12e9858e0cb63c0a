package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"courtside/auth"
	"courtside/conversations"
	"courtside/membership"
	"courtside/moderation"
	"courtside/repositories"
	"courtside/runtime"
	"courtside/runtime/workers"
	"courtside/search"
	"courtside/services"
	"courtside/storage"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	req := require.New(t)
	log := slog.Default()

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	req.NoError(err)
	t.Cleanup(func() { _ = blugeWriter.Close() })

	bucket, err := storage.NewBucket(t.TempDir(), log)
	req.NoError(err)

	accounts := repositories.NewAccountRepository(db)
	profiles := repositories.NewProfileRepository(db, log)
	games := repositories.NewGameRepository(db, log)
	participations := repositories.NewParticipationRepository(db, log)
	messages := repositories.NewMessageRepository(db, log)

	supervisor := workers.NewSupervisor(log, 10*time.Millisecond)
	hub := runtime.NewHub(log, supervisor, runtime.NewRegistry(), 64, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub.Start(ctx)

	writer := runtime.NewMessageWriter(messages, hub)
	censored, err := runtime.LoadCensoredWords()
	req.NoError(err)
	moderator, err := moderation.NewModerator(censored.Words, '*', log)
	req.NoError(err)

	index := search.NewGameIndex(blugeWriter, log)
	reconciler := membership.NewReconciler(log, games, participations, writer, profiles)
	aggregator := conversations.NewAggregator(log, games, participations)
	gateway := auth.NewGateway()

	server := NewServer(
		log,
		services.NewAuthService(log, accounts, profiles, gateway, time.Hour),
		services.NewGameService(log, games, reconciler, index, hub),
		services.NewChatService(log, writer, profiles, hub, moderator),
		services.NewProfileService(log, profiles, bucket),
		aggregator,
		bucket,
	)

	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)
	return ts
}

func call(t *testing.T, ts *httptest.Server, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	req := require.New(t)

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		req.NoError(err)
	}

	httpReq, err := http.NewRequest(method, ts.URL+path, bytes.NewReader(payload))
	req.NoError(err)
	httpReq.Header.Set("Content-Type", "application/json")
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client().Do(httpReq)
	req.NoError(err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	req.NoError(err)
	return resp, buf.Bytes()
}

func registerViaAPI(t *testing.T, ts *httptest.Server, email, fullName string) string {
	t.Helper()
	req := require.New(t)

	resp, body := call(t, ts, http.MethodPost, "/auth/register", "", map[string]string{
		"email":     email,
		"password":  "Str0ng-Passw0rd!",
		"full_name": fullName,
	})
	req.Equal(http.StatusCreated, resp.StatusCode, string(body))

	var out struct {
		Token string `json:"token"`
	}
	req.NoError(json.Unmarshal(body, &out))
	req.NotEmpty(out.Token)
	return out.Token
}

func TestAPI_RequiresAuth(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t)

	resp, _ := call(t, ts, http.MethodGet, "/games", "", nil)
	req.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp, _ = call(t, ts, http.MethodGet, "/conversations", "garbage-token", nil)
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_RegisterValidation(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t)

	resp, _ := call(t, ts, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "bad", "password": "short", "full_name": "X",
	})
	req.Equal(http.StatusBadRequest, resp.StatusCode)

	registerViaAPI(t, ts, "dup@example.com", "Dup One")
	resp, _ = call(t, ts, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "dup@example.com", "password": "Str0ng-Passw0rd!", "full_name": "Dup Two",
	})
	req.Equal(http.StatusConflict, resp.StatusCode)
}

func TestAPI_GameFlow(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t)

	hostToken := registerViaAPI(t, ts, "host@example.com", "Holly Host")
	guestToken := registerViaAPI(t, ts, "guest@example.com", "Gary Guest")

	resp, body := call(t, ts, http.MethodPost, "/games", hostToken, map[string]string{
		"Title":       "Open play evening",
		"Location":    "Westside courts",
		"Date":        "Friday 19:00",
		"TennisLevel": "intermediate",
		"Mode":        "double",
	})
	req.Equal(http.StatusCreated, resp.StatusCode, string(body))

	var game struct {
		ID int64 `json:"id"`
	}
	req.NoError(json.Unmarshal(body, &game))

	// Guest joins and posts.
	resp, _ = call(t, ts, http.MethodPost, fmt.Sprintf("/games/%d/join", game.ID), guestToken, nil)
	req.Equal(http.StatusOK, resp.StatusCode)

	resp, _ = call(t, ts, http.MethodPost, fmt.Sprintf("/games/%d/messages", game.ID),
		guestToken, map[string]string{"content": "count me in"})
	req.Equal(http.StatusCreated, resp.StatusCode)

	// Empty message is rejected.
	resp, _ = call(t, ts, http.MethodPost, fmt.Sprintf("/games/%d/messages", game.ID),
		guestToken, map[string]string{"content": "   "})
	req.Equal(http.StatusBadRequest, resp.StatusCode)

	// History shows the joined sender name.
	resp, body = call(t, ts, http.MethodGet, fmt.Sprintf("/games/%d/messages", game.ID), hostToken, nil)
	req.Equal(http.StatusOK, resp.StatusCode)
	var history []struct {
		SenderName string `json:"sender_name"`
		Content    string `json:"content"`
	}
	req.NoError(json.Unmarshal(body, &history))
	req.Len(history, 1)
	req.Equal("Gary Guest", history[0].SenderName)

	// Detail lists host first.
	resp, body = call(t, ts, http.MethodGet, fmt.Sprintf("/games/%d", game.ID), guestToken, nil)
	req.Equal(http.StatusOK, resp.StatusCode)
	var detail struct {
		Members []struct {
			FullName string `json:"full_name"`
		} `json:"members"`
	}
	req.NoError(json.Unmarshal(body, &detail))
	req.Len(detail.Members, 2)
	req.Equal("Holly Host", detail.Members[0].FullName)

	// Guest cannot delete the game.
	resp, _ = call(t, ts, http.MethodDelete, fmt.Sprintf("/games/%d", game.ID), guestToken, nil)
	req.Equal(http.StatusForbidden, resp.StatusCode)

	// Host can.
	resp, _ = call(t, ts, http.MethodDelete, fmt.Sprintf("/games/%d", game.ID), hostToken, nil)
	req.Equal(http.StatusNoContent, resp.StatusCode)

	resp, _ = call(t, ts, http.MethodGet, fmt.Sprintf("/games/%d", game.ID), hostToken, nil)
	req.Equal(http.StatusNotFound, resp.StatusCode)
}

func TestAPI_SearchAndConversations(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t)

	hostToken := registerViaAPI(t, ts, "sh@example.com", "Search Host")

	resp, body := call(t, ts, http.MethodPost, "/games", hostToken, map[string]string{
		"Title":       "Grass court invitational",
		"Location":    "Hilltop park",
		"Date":        "Sunday 08:00",
		"TennisLevel": "advanced",
		"Mode":        "single",
	})
	req.Equal(http.StatusCreated, resp.StatusCode, string(body))

	resp, body = call(t, ts, http.MethodGet, "/games/search?q=grass", hostToken, nil)
	req.Equal(http.StatusOK, resp.StatusCode)
	var found []struct {
		Title string `json:"title"`
	}
	req.NoError(json.Unmarshal(body, &found))
	req.Len(found, 1)
	req.Equal("Grass court invitational", found[0].Title)

	resp, body = call(t, ts, http.MethodGet, "/conversations", hostToken, nil)
	req.Equal(http.StatusOK, resp.StatusCode)
	var inbox []struct {
		IsHost bool `json:"is_host"`
	}
	req.NoError(json.Unmarshal(body, &inbox))
	req.Len(inbox, 1)
	req.True(inbox[0].IsHost)
}

func TestAPI_ProfileRoundTrip(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t)

	token := registerViaAPI(t, ts, "pr@example.com", "Pat Round")

	resp, body := call(t, ts, http.MethodPut, "/profile", token, map[string]any{
		"FullName":    "Pat Renamed",
		"TennisLevel": "beginner",
		"PlayHand":    "right",
		"Goal":        "learn serves",
	})
	req.Equal(http.StatusOK, resp.StatusCode, string(body))

	resp, body = call(t, ts, http.MethodGet, "/profile", token, nil)
	req.Equal(http.StatusOK, resp.StatusCode)
	var profile struct {
		FullName    string `json:"full_name"`
		TennisLevel string `json:"tennis_level"`
	}
	req.NoError(json.Unmarshal(body, &profile))
	req.Equal("Pat Renamed", profile.FullName)
	req.Equal("beginner", profile.TennisLevel)
}
