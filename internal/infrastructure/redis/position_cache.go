package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// PositionCache caché de posiciones derivadas en Redis. Los valores son
// estrictamente derivados del libro: un miss o un error de Redis degrada a
// recomputación, nunca a fallo de la consulta.
type PositionCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewPositionCache construye el caché. TTL acota la vida de una entrada que
// quedara huérfana si una invalidación se pierde.
func NewPositionCache(client *redis.Client, ttl time.Duration, log zerolog.Logger) *PositionCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PositionCache{client: client, ttl: ttl, log: log}
}

func positionKey(itemID string) string {
	return fmt.Sprintf("position:%s", itemID)
}

// Get devuelve la posición cacheada de un ítem, si existe.
func (c *PositionCache) Get(ctx context.Context, itemID string) (*entity.StockPosition, bool) {
	data, err := c.client.Get(ctx, positionKey(itemID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn().Err(err).Str("item_id", itemID).Msg("error leyendo caché de posición")
		}
		return nil, false
	}
	var pos entity.StockPosition
	if err := json.Unmarshal(data, &pos); err != nil {
		c.log.Warn().Err(err).Str("item_id", itemID).Msg("entrada de caché corrupta, descartando")
		c.Invalidate(ctx, itemID)
		return nil, false
	}
	return &pos, true
}

// Set almacena una posición recién computada.
func (c *PositionCache) Set(ctx context.Context, pos *entity.StockPosition) {
	data, err := json.Marshal(pos)
	if err != nil {
		c.log.Warn().Err(err).Str("item_id", pos.ItemID).Msg("error serializando posición")
		return
	}
	if err := c.client.Set(ctx, positionKey(pos.ItemID), data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("item_id", pos.ItemID).Msg("error escribiendo caché de posición")
	}
}

// Invalidate elimina la entrada del ítem. Se llama de forma síncrona tras cada
// escritura confirmada sobre el ítem para garantizar read-your-writes.
func (c *PositionCache) Invalidate(ctx context.Context, itemID string) {
	if err := c.client.Del(ctx, positionKey(itemID)).Err(); err != nil {
		c.log.Warn().Err(err).Str("item_id", itemID).Msg("error invalidando caché de posición")
	}
}
