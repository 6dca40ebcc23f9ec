package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"board-banker/internal/config"
	"board-banker/internal/model"
	"board-banker/internal/pkg/lock"
	"board-banker/internal/repository"
	"board-banker/internal/service"
)

type memStore struct {
	mu    sync.Mutex
	games map[string]*model.Game
}

func (m *memStore) Create(_ context.Context, game *model.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *game
	m.games[game.ID] = &cp
	return nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*model.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return nil, repository.ErrGameNotFound
	}
	cp := *g
	return &cp, nil
}

func (m *memStore) Save(_ context.Context, game *model.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[game.ID]; !ok {
		return repository.ErrGameNotFound
	}
	cp := *game
	m.games[game.ID] = &cp
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[id]; !ok {
		return repository.ErrGameNotFound
	}
	delete(m.games, id)
	return nil
}

func (m *memStore) List(_ context.Context) ([]*model.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Game, 0, len(m.games))
	for _, g := range m.games {
		cp := *g
		out = append(out, &cp)
	}
	return out, nil
}

type noopScheduler struct{}

func (noopScheduler) Schedule(string) {}
func (noopScheduler) Cancel(string)   {}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := &memStore{games: make(map[string]*model.Game)}
	games := service.NewGameService(store, lock.NewGameLock(), noopScheduler{}, config.GameConfig{
		StartingMoney: 1500,
		JailFee:       50,
		AutoPotBonus:  500,
	})
	srv := httptest.NewServer(New(games).Router())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) (*http.Response, []byte) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func createGameHTTP(t *testing.T, srv *httptest.Server) model.Game {
	t.Helper()
	resp, body := postJSON(t, srv.URL+"/games", map[string]any{
		"players": []map[string]string{
			{"name": "Alice", "color": "red"},
			{"name": "Bob", "color": "blue"},
		},
		"settings": map[string]any{"free_parking_enabled": true},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var game model.Game
	require.NoError(t, json.Unmarshal(body, &game))
	return game
}

func TestCreateAndGetGame(t *testing.T) {
	srv := newTestServer(t)
	game := createGameHTTP(t, srv)

	require.Len(t, game.Players, 2)
	assert.Equal(t, int64(1500), game.Players[0].Balance)

	resp, err := http.Get(srv.URL + "/games/" + game.ID)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var loaded model.Game
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&loaded))
	assert.Equal(t, game.ID, loaded.ID)
}

func TestGetMissingGame(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/games/missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestActionPassGo(t *testing.T) {
	srv := newTestServer(t)
	game := createGameHTTP(t, srv)
	alice := game.Players[0]

	resp, body := postJSON(t, fmt.Sprintf("%s/games/%s/actions", srv.URL, game.ID), map[string]any{
		"action":    "pass_go",
		"player_id": alice.ID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var next model.Game
	require.NoError(t, json.Unmarshal(body, &next))
	assert.Equal(t, int64(1700), next.PlayerByID(alice.ID).Balance)
	require.Len(t, next.History, 1)
	assert.Equal(t, model.EntryPassGo, next.History[0].Type)
}

func TestActionCustomTransaction(t *testing.T) {
	srv := newTestServer(t)
	game := createGameHTTP(t, srv)
	alice, bob := game.Players[0], game.Players[1]

	resp, body := postJSON(t, fmt.Sprintf("%s/games/%s/actions", srv.URL, game.ID), map[string]any{
		"action": "other",
		"from":   alice.ID,
		"to":     bob.ID,
		"amount": 250,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var next model.Game
	require.NoError(t, json.Unmarshal(body, &next))
	assert.Equal(t, int64(1250), next.PlayerByID(alice.ID).Balance)
	assert.Equal(t, int64(1750), next.PlayerByID(bob.ID).Balance)
}

func TestActionErrorMapping(t *testing.T) {
	srv := newTestServer(t)
	game := createGameHTTP(t, srv)
	url := fmt.Sprintf("%s/games/%s/actions", srv.URL, game.ID)

	// Unknown player: 404.
	resp, _ := postJSON(t, url, map[string]any{"action": "pass_go", "player_id": "nobody"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Non-positive amount: 400.
	resp, _ = postJSON(t, url, map[string]any{
		"action": "bonus", "player_id": game.Players[0].ID, "amount": 0,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unknown action: 400.
	resp, _ = postJSON(t, url, map[string]any{"action": "steal"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRemovePlayerVariants(t *testing.T) {
	srv := newTestServer(t)
	game := createGameHTTP(t, srv)
	alice, bob := game.Players[0], game.Players[1]

	// Distribute variant.
	resp, body := postJSON(t, fmt.Sprintf("%s/games/%s/players/%s/remove", srv.URL, game.ID, alice.ID),
		map[string]any{"distribute_to": []string{bob.ID}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var next model.Game
	require.NoError(t, json.Unmarshal(body, &next))
	require.Len(t, next.Players, 1)
	assert.Equal(t, int64(3000), next.PlayerByID(bob.ID).Balance)

	// Plain removal with an empty body.
	resp2, err := http.Post(fmt.Sprintf("%s/games/%s/players/%s/remove", srv.URL, game.ID, bob.ID),
		"application/json", nil)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}

func TestAddPlayerConflict(t *testing.T) {
	srv := newTestServer(t)
	game := createGameHTTP(t, srv)

	resp, _ := postJSON(t, fmt.Sprintf("%s/games/%s/players", srv.URL, game.ID),
		map[string]string{"name": "Carol", "color": "red"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestUpdateSettingsSeedsPot(t *testing.T) {
	srv := newTestServer(t)
	game := createGameHTTP(t, srv)

	req, err := http.NewRequest(http.MethodPut,
		fmt.Sprintf("%s/games/%s/settings", srv.URL, game.ID),
		bytes.NewReader([]byte(`{"free_parking_enabled":true,"auto_pot_bonus":true,"auto_pot_bonus_amount":600}`)))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var next model.Game
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&next))
	assert.Equal(t, int64(600), next.FreeParkingPot)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDeleteGame(t *testing.T) {
	srv := newTestServer(t)
	game := createGameHTTP(t, srv)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/games/"+game.ID, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	getResp, err := http.Get(srv.URL + "/games/" + game.ID)
	require.NoError(t, err)
	defer getResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
}
