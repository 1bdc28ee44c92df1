// Package engineapi is the one-shot REST client used to seed the snapshot
// before live events start arriving. The stream does not depend on it: a
// failed fetch just means starting from defaults.
package engineapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/VCnoC/ai-werewolf/internal/reducer"
)

// GameState mirrors the engine's GET /api/games/{id}/state response.
type GameState struct {
	GameID       string                 `json:"game_id"`
	Status       string                 `json:"status"`
	CurrentRound int                    `json:"current_round"`
	CurrentPhase string                 `json:"current_phase"`
	AlivePlayers []int                  `json:"alive_players"`
	Sheriff      *int                   `json:"sheriff"`
	Winner       string                 `json:"winner"`
	Players      map[string]PlayerState `json:"players"`
}

type PlayerState struct {
	Role        string `json:"role"`
	Faction     string `json:"faction"`
	IsAlive     bool   `json:"is_alive"`
	IsSheriff   bool   `json:"is_sheriff"`
	LLMConfigID string `json:"llm_config_id"`
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// NewClient talks to the engine REST surface. token is the opaque bearer
// token issued by the auth service; empty means unauthenticated.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		token:   token,
	}
}

// FetchState fetches the gods-eye state of one game.
func (c *Client) FetchState(ctx context.Context, gameID string) (*GameState, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/games/"+gameID+"/state", nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("engine state fetch: unexpected status %d", resp.StatusCode)
	}

	var gs GameState
	if err := json.NewDecoder(resp.Body).Decode(&gs); err != nil {
		return nil, fmt.Errorf("engine state fetch: decode: %w", err)
	}
	return &gs, nil
}

// Seed converts the engine response into a starting snapshot.
func Seed(gs *GameState) *reducer.Snapshot {
	s := reducer.NewSnapshot()
	if gs == nil {
		return s
	}
	s.Round = gs.CurrentRound
	s.Winner = gs.Winner
	switch gs.CurrentPhase {
	case "NIGHT_PHASE":
		s.Phase = reducer.PhaseNight
	case "DAY_PHASE":
		s.Phase = reducer.PhaseDay
	case "GAME_END":
		s.Phase = reducer.PhaseGameEnd
	default:
		s.Phase = reducer.PhaseGameStart
	}
	for key, p := range gs.Players {
		id, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		s.Actors[id] = reducer.Actor{
			Role:        p.Role,
			Faction:     p.Faction,
			Alive:       p.IsAlive,
			IsSheriff:   p.IsSheriff,
			ProviderRef: p.LLMConfigID,
		}
		if p.IsSheriff {
			s.SheriffID = id
		}
	}
	if gs.Sheriff != nil {
		s.SheriffID = *gs.Sheriff
	}
	return s
}
