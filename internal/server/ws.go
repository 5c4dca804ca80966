package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	"SpinChallenges/internal/campaign"
)

// Feed message types beyond the campaign events.
const (
	msgLogin          = "campaigns:login"
	msgTeardown       = "campaigns:teardown"
	msgGameBusy       = "game:busy"
	msgGameIdle       = "game:idle"
	msgGameSpins      = "game:spins"
	msgPartnerPowerup = "partner:powerup"

	msgProgressRequest = "progress:request"
	msgResetRequest    = "progress:reset_request"
)

const (
	sendBuffer   = 64
	writeTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type frame struct {
	kind int
	data []byte
}

type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan frame
	once sync.Once
}

func (c *wsClient) writePump() {
	for f := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(f.kind, f.data); err != nil {
			log.Printf("ws %s send error: %v", c.id, err)
			c.conn.Close()
			return
		}
	}
}

func (c *wsClient) close() {
	c.once.Do(func() {
		close(c.send)
		c.conn.Close()
	})
}

// clientSet is a registry of live connections sharing one broadcast.
type clientSet struct {
	mu      sync.Mutex
	clients map[string]*wsClient
}

func (s *clientSet) add(conn *websocket.Conn) *wsClient {
	c := &wsClient{id: uuid.NewString(), conn: conn, send: make(chan frame, sendBuffer)}
	s.mu.Lock()
	if s.clients == nil {
		s.clients = make(map[string]*wsClient)
	}
	s.clients[c.id] = c
	s.mu.Unlock()
	go c.writePump()
	return c
}

func (s *clientSet) remove(c *wsClient) {
	s.mu.Lock()
	delete(s.clients, c.id)
	s.mu.Unlock()
	c.close()
}

func (s *clientSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *clientSet) broadcastFrame(f frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.clients {
		select {
		case c.send <- f:
		default:
			log.Printf("ws %s: send buffer full, dropping frame", id)
		}
	}
}

func (s *clientSet) closeAll() {
	s.mu.Lock()
	clients := s.clients
	s.clients = nil
	s.mu.Unlock()
	for _, c := range clients {
		c.close()
	}
}

/* ------------------------------- Feed ------------------------------- */

// feedHub carries server pushes in and the director's requests out.
type feedHub struct {
	clientSet
}

func newFeedHub() *feedHub { return &feedHub{} }

func (h *feedHub) sendJSON(msgType string, payload any) {
	data, err := json.Marshal(outboundMessage{Type: msgType, Payload: payload})
	if err != nil {
		log.Printf("feed: marshal %s: %v", msgType, err)
		return
	}
	h.broadcastFrame(frame{kind: websocket.TextMessage, data: data})
}

func (h *feedHub) RequestProgress(campaignID string) {
	h.sendJSON(msgProgressRequest, map[string]any{"experiment": campaignID})
}

func (h *feedHub) RequestReset(campaignID string, eventIndex int) {
	h.sendJSON(msgResetRequest, map[string]any{"experiment": campaignID, "event_index": eventIndex})
}

func (a *App) serveFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("upgrade:", err)
		return
	}
	c := a.feed.add(conn)
	defer a.feed.remove(c)
	log.Printf("feed %s connected", c.id)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("feed %s: bad frame: %v", c.id, err)
			continue
		}
		a.loop.Post(func() { a.handleFeed(msg) })
	}
}

// handleFeed applies one inbound feed message. Runs on the loop.
func (a *App) handleFeed(msg inboundMessage) {
	payload := gjson.ParseBytes(msg.Payload)
	switch msg.Type {
	case msgLogin:
		a.director.PopulateAll(payload)
	case msgTeardown:
		a.director.Teardown()
	case campaign.EventProgressUpdate, campaign.EventProgressReset, campaign.EventTypeComplete,
		campaign.EventCampaignLost, campaign.EventRewardPack, campaign.EventFeatureUnlock,
		campaign.EventFeatureTask:
		a.director.Dispatch(msg.Type, payload)
	case msgGameBusy:
		a.status.setBusy(true)
	case msgGameIdle:
		a.status.setBusy(false)
		a.director.OnGameIdle()
	case msgGameSpins:
		a.status.setLifetimeSpins(payload.Get("lifetime").Int())
	case msgPartnerPowerup:
		a.director.SetPartnerPowerupData(payload)
	default:
		log.Printf("feed: unknown message type %q", msg.Type)
	}
}

/* -------------------------------- UI -------------------------------- */

// uiHub streams presenter calls to UI clients as protobuf frames.
type uiHub struct {
	clientSet
}

func newUIHub() *uiHub { return &uiHub{} }

func (h *uiHub) broadcast(kind, campaignID string, fields map[string]any) {
	data, err := encodeNotification(kind, campaignID, fields)
	if err != nil {
		log.Printf("ui: %v", err)
		return
	}
	h.broadcastFrame(frame{kind: websocket.BinaryMessage, data: data})
}

func (h *uiHub) RefreshUI(id string) { h.broadcast("refresh", id, nil) }

func (h *uiHub) ShowCampaignComplete(id string, batch []campaign.Completion) {
	h.broadcast("campaign_complete", id, map[string]any{"completions": completionsToList(batch)})
}

func (h *uiHub) ShowMissionComplete(id string, eventIndex int, batch []campaign.Completion) {
	h.broadcast("mission_complete", id, map[string]any{
		"event_index": eventIndex,
		"completions": completionsToList(batch),
	})
}

func (h *uiHub) ShowTypeComplete(id string, eventIndex int, batch []campaign.Completion) {
	h.broadcast("type_complete", id, map[string]any{
		"event_index": eventIndex,
		"completions": completionsToList(batch),
	})
}

func (h *uiHub) ShowIncomplete(id string) { h.broadcast("incomplete", id, nil) }

func (h *uiHub) ShowTypeReset(id string, eventIndex int) {
	h.broadcast("type_reset", id, map[string]any{"event_index": eventIndex})
}

func (h *uiHub) UnlockGames(id string, games []string) {
	h.broadcast("unlock_games", id, map[string]any{"games": stringsToList(games)})
}

func (h *uiHub) PendingCredits(id string, amount int64) {
	h.broadcast("pending_credits", id, map[string]any{"amount": amount})
}

func (h *uiHub) GrantCredits(id string, amount int64) {
	h.broadcast("grant_credits", id, map[string]any{"amount": amount})
}

func (h *uiHub) BadgeAnimation(id string, eventIndex int) {
	h.broadcast("badge_animation", id, map[string]any{"event_index": eventIndex})
}

func (h *uiHub) CampaignEnded(id string) { h.broadcast("campaign_ended", id, nil) }

// OnChallengeComplete forwards onboarding completions to the UI.
func (h *uiHub) OnChallengeComplete(id string, c campaign.Completion) {
	h.broadcast("onboarding_complete", id, map[string]any{"completion": completionToMap(c)})
}

func (a *App) serveUI(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("upgrade:", err)
		return
	}
	c := a.ui.add(conn)
	defer a.ui.remove(c)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
