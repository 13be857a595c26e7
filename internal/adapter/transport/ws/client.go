package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"tilebot/internal/app/ports"
	"tilebot/internal/app/scheduler"
	"tilebot/internal/domain/player"
	"tilebot/internal/domain/world"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
)

// Client connects the bot to the game server. Outbound it is the session's
// ActionSink; inbound it turns server updates into session updates. One
// goroutine reads, writers share the connection behind a mutex.
type Client struct {
	conn *websocket.Conn
	mu   sync.Mutex
	log  logrus.FieldLogger

	updatesLog *os.File
	logMu      sync.Mutex

	hydrateRadius int
	lastHydrate   *world.Coord
}

func Dial(ctx context.Context, url string, log logrus.FieldLogger) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Client{conn: conn, log: log}, nil
}

// SetHydrateRadius enables backfilling the session grid from the map cache:
// whenever the player moves far enough, cached tiles within radius of the new
// position are loaded. Zero disables hydration.
func (c *Client) SetHydrateRadius(radius int) {
	c.hydrateRadius = radius
}

// LogUpdatesTo appends every inbound update as one JSON line to path.
// Recorded sessions replay through the same update schema.
func (c *Client) LogUpdatesTo(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open updates log: %w", err)
	}
	c.updatesLog = f
	return nil
}

func (c *Client) Close() error {
	if c.updatesLog != nil {
		c.updatesLog.Close()
	}
	return c.conn.Close()
}

// Push implements ports.ActionSink.
func (c *Client) Push(ctx context.Context, a ports.Action) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.conn.WriteJSON(a)
}

// TileUpdate is one tile in an inbound batch. Drop=true clears the tile back
// to unexplored.
type TileUpdate struct {
	X    int            `json:"x"`
	Y    int            `json:"y"`
	Type world.TileType `json:"type"`
	Drop bool           `json:"drop,omitempty"`
}

// MeterUpdate reports a gauge change.
type MeterUpdate struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Max   int    `json:"max"`
}

// Update is the inbound wire envelope. Exactly one payload field is set per
// message, keyed by Kind.
type Update struct {
	Kind string `json:"kind"`

	Tiles    []TileUpdate  `json:"tiles,omitempty"`
	Pos      *world.Coord  `json:"pos,omitempty"`
	Meter    *MeterUpdate  `json:"meter,omitempty"`
	Item     *player.Item  `json:"item,omitempty"`
	Slot     string        `json:"slot,omitempty"`
	Belt     []player.Item `json:"belt,omitempty"`
	BeltOpen *bool         `json:"belt_open,omitempty"`
	Invent   []player.Item `json:"inventory,omitempty"`
}

const (
	UpdateTiles     = "tiles"
	UpdatePos       = "pos"
	UpdateMeter     = "meter"
	UpdateItem      = "item"
	UpdateEquip     = "equip"
	UpdateBelt      = "belt"
	UpdateBeltOpen  = "belt_open"
	UpdateInventory = "inventory"
)

// ReadUpdates pumps inbound messages until the connection drops or ctx is
// canceled. Each message becomes one session update; tile batches are also
// written through to the map cache.
func (c *Client) ReadUpdates(ctx context.Context, session *scheduler.Session, cache ports.MapStore) error {
	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return err
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go c.pingLoop(ctx)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var u Update
		if err := c.conn.ReadJSON(&u); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.WithError(err).Error("ws: read failed")
			}
			return err
		}
		c.appendUpdateLog(u)
		if u.Kind == UpdateTiles && cache != nil {
			if err := cacheTiles(ctx, cache, u.Tiles); err != nil {
				c.log.WithError(err).Warn("ws: tile cache write failed")
			}
		}
		session.Apply(toSessionUpdate(u))
		if u.Kind == UpdatePos && u.Pos != nil {
			c.hydrate(ctx, cache, session, *u.Pos)
		}
	}
}

func (c *Client) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			c.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func cacheTiles(ctx context.Context, cache ports.MapStore, tiles []TileUpdate) error {
	records := make([]ports.TileRecord, 0, len(tiles))
	now := time.Now()
	for _, t := range tiles {
		if t.Drop {
			continue
		}
		records = append(records, ports.TileRecord{
			Coord:     world.Coord{X: t.X, Y: t.Y},
			Type:      t.Type,
			FetchedAt: now,
		})
	}
	if len(records) == 0 {
		return nil
	}
	return cache.PutTiles(ctx, records)
}

// hydrate loads cached tiles around pos into the session grid. Only unknown
// tiles are filled; live server data always wins over the cache.
func (c *Client) hydrate(ctx context.Context, cache ports.MapStore, session *scheduler.Session, pos world.Coord) {
	if c.hydrateRadius <= 0 || cache == nil {
		return
	}
	if c.lastHydrate != nil {
		dx := abs(pos.X - c.lastHydrate.X)
		dy := abs(pos.Y - c.lastHydrate.Y)
		if dx < c.hydrateRadius/2 && dy < c.hydrateRadius/2 {
			return
		}
	}
	c.lastHydrate = &pos

	tiles := make(map[world.Coord]world.TileType)
	for dy := -c.hydrateRadius; dy <= c.hydrateRadius; dy++ {
		for dx := -c.hydrateRadius; dx <= c.hydrateRadius; dx++ {
			coord := pos.Add(dx, dy)
			t, ok, err := cache.GetTile(ctx, coord)
			if err != nil {
				c.log.WithError(err).Warn("ws: map cache read failed")
				return
			}
			if ok {
				tiles[coord] = t
			}
		}
	}
	if len(tiles) == 0 {
		return
	}
	session.Apply(func(grid *world.Store, _ *player.State) {
		known := grid.Current()
		for coord, t := range tiles {
			if _, ok := known.At(coord); !ok {
				grid.SetTile(coord, t)
			}
		}
	})
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (c *Client) appendUpdateLog(u Update) {
	if c.updatesLog == nil {
		return
	}
	b, err := json.Marshal(u)
	if err != nil {
		return
	}
	c.logMu.Lock()
	defer c.logMu.Unlock()
	c.updatesLog.Write(append(b, '\n'))
}

// toSessionUpdate translates one wire update into a session mutation.
func toSessionUpdate(u Update) scheduler.Update {
	return func(grid *world.Store, p *player.State) {
		switch u.Kind {
		case UpdateTiles:
			for _, t := range u.Tiles {
				c := world.Coord{X: t.X, Y: t.Y}
				if t.Drop {
					grid.DropTile(c)
				} else {
					grid.SetTile(c, t.Type)
				}
			}
		case UpdatePos:
			if u.Pos != nil {
				p.Pos = *u.Pos
			}
		case UpdateMeter:
			if u.Meter != nil {
				p.SetMeter(u.Meter.Name, u.Meter.Value, u.Meter.Max)
			}
		case UpdateItem:
			if u.Item != nil {
				p.ReplaceItem(*u.Item)
			}
		case UpdateEquip:
			if u.Item != nil && u.Slot != "" {
				p.Equipment[u.Slot] = *u.Item
			}
		case UpdateBelt:
			p.Belt = u.Belt
		case UpdateBeltOpen:
			if u.BeltOpen != nil {
				p.BeltOpen = *u.BeltOpen
			}
		case UpdateInventory:
			p.Inventory = u.Invent
		}
	}
}

var _ ports.ActionSink = (*Client)(nil)
