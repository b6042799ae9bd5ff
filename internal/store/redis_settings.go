package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/sadopc/taskflow/internal/stream"
	log "github.com/sirupsen/logrus"
)

// DefaultRedisKey prefixes every key RedisSettings writes.
const DefaultRedisKey = "taskflow:settings"

// toggleScript flips membership of ARGV[1] in the set KEYS[1] atomically and
// returns 1 when the member was added.
var toggleScript = redis.NewScript(`
if redis.call('SISMEMBER', KEYS[1], ARGV[1]) == 1 then
	redis.call('SREM', KEYS[1], ARGV[1])
	return 0
end
redis.call('SADD', KEYS[1], ARGV[1])
return 1
`)

// RedisSettings keeps the list view settings in Redis: scalar fields in one
// hash and each filter in its own set.
type RedisSettings struct {
	rdb     *redis.Client
	key     string
	version *stream.Subject[uint64]
}

// NewRedisSettings uses key as the prefix for all settings keys; an empty key
// means DefaultRedisKey.
func NewRedisSettings(client *redis.Client, key string) *RedisSettings {
	if client == nil {
		panic("store.NewRedisSettings: client is nil")
	}
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisSettings{
		rdb:     client,
		key:     key,
		version: stream.NewValue(uint64(0)),
	}
}

func (r *RedisSettings) setKey(name string) string {
	return r.key + ":" + name
}

func (r *RedisSettings) changed() {
	r.version.Update(func(v uint64) uint64 { return v + 1 })
}

func (r *RedisSettings) Settings(ctx context.Context) (Settings, error) {
	var (
		fields     *redis.MapStringStringCmd
		priorities *redis.StringSliceCmd
		statuses   *redis.StringSliceCmd
	)
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		fields = pipe.HGetAll(ctx, r.key)
		priorities = pipe.SMembers(ctx, r.setKey(KeyFilterByPriority))
		statuses = pipe.SMembers(ctx, r.setKey(KeyFilterByStatus))
		return nil
	})
	if err != nil {
		return Settings{}, fmt.Errorf("read redis settings: %w", err)
	}

	values := fields.Val()
	if values == nil {
		values = make(map[string]string)
	}
	values[KeyFilterByPriority] = strings.Join(priorities.Val(), ",")
	values[KeyFilterByStatus] = strings.Join(statuses.Val(), ",")
	return DecodeSettings(values), nil
}

func (r *RedisSettings) SettingsStream() stream.Stream[Settings] {
	return stream.Watch[Settings]("redis_settings", r.version, r.Settings)
}

func (r *RedisSettings) setField(ctx context.Context, field, value string) error {
	if err := r.rdb.HSet(ctx, r.key, field, value).Err(); err != nil {
		return fmt.Errorf("set redis setting %q: %w", field, err)
	}
	r.changed()
	return nil
}

func (r *RedisSettings) UpdateSortType(ctx context.Context, st SortType) error {
	return r.setField(ctx, KeySortType, string(st))
}

func (r *RedisSettings) UpdateSortDirection(ctx context.Context, d SortDirection) error {
	return r.setField(ctx, KeySortDirection, string(d))
}

func (r *RedisSettings) SetShowCompleted(ctx context.Context, show bool) error {
	return r.setField(ctx, KeyShowCompletedTasks, strconv.FormatBool(show))
}

func (r *RedisSettings) TogglePriorityFilter(ctx context.Context, p Priority) error {
	return r.toggle(ctx, KeyFilterByPriority, p.String())
}

func (r *RedisSettings) ToggleStatusFilter(ctx context.Context, st Status) error {
	return r.toggle(ctx, KeyFilterByStatus, st.String())
}

func (r *RedisSettings) toggle(ctx context.Context, name, member string) error {
	added, err := toggleScript.Run(ctx, r.rdb, []string{r.setKey(name)}, member).Int()
	if err != nil {
		return fmt.Errorf("toggle redis filter %q: %w", name, err)
	}
	log.WithFields(log.Fields{"key": name, "member": member, "added": added == 1}).Debug("filter toggled")
	r.changed()
	return nil
}

func (r *RedisSettings) ClearPriorityFilters(ctx context.Context) error {
	return r.clear(ctx, KeyFilterByPriority)
}

func (r *RedisSettings) ClearStatusFilters(ctx context.Context) error {
	return r.clear(ctx, KeyFilterByStatus)
}

func (r *RedisSettings) ClearFilters(ctx context.Context) error {
	return r.clear(ctx, KeyFilterByPriority, KeyFilterByStatus)
}

func (r *RedisSettings) clear(ctx context.Context, names ...string) error {
	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = r.setKey(n)
	}
	if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("clear redis filters: %w", err)
	}
	r.changed()
	return nil
}
