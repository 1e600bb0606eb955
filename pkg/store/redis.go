package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/seqlab/counterseq/pkg/study"
)

var _ Store = (*Redis)(nil)

// Redis is a store backed by Redis. Records are JSON values: studies under
// counterseq:study:<id>, assignments under
// counterseq:assignment:<studyID>:<index>, with set keys tracking study IDs
// and assignment indexes for listing.
type Redis struct {
	client *redis.Client
}

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedis connects to Redis and verifies the connection with a ping.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Addr, err)
	}
	return &Redis{client: client}, nil
}

func studyKey(id string) string { return "counterseq:study:" + id }

func assignmentKey(studyID string, index int) string {
	return "counterseq:assignment:" + studyID + ":" + strconv.Itoa(index)
}

func assignmentSetKey(studyID string) string { return "counterseq:assignments:" + studyID }

const studySetKey = "counterseq:studies"

func (r *Redis) PutStudy(ctx context.Context, st *study.Study) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal study: %w", err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, studyKey(st.ID), data, 0)
		pipe.SAdd(ctx, studySetKey, st.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store study: %w", err)
	}
	return nil
}

func (r *Redis) GetStudy(ctx context.Context, id string) (*study.Study, error) {
	data, err := r.client.Get(ctx, studyKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get study: %w", err)
	}
	var st study.Study
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse study: %w", err)
	}
	return &st, nil
}

func (r *Redis) ListStudies(ctx context.Context) ([]*study.Study, error) {
	ids, err := r.client.SMembers(ctx, studySetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list studies: %w", err)
	}
	out := make([]*study.Study, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = studyKey(id)
	}
	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("list studies: %w", err)
	}
	for _, v := range vals {
		// A study deleted between SMEMBERS and MGET comes back nil.
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var st study.Study
		if err := json.Unmarshal([]byte(raw), &st); err != nil {
			return nil, fmt.Errorf("parse study: %w", err)
		}
		out = append(out, &st)
	}
	sortStudies(out)
	return out, nil
}

func (r *Redis) DeleteStudy(ctx context.Context, id string) error {
	exists, err := r.client.Exists(ctx, studyKey(id)).Result()
	if err != nil {
		return fmt.Errorf("delete study: %w", err)
	}
	if exists == 0 {
		return ErrNotFound
	}
	indexes, err := r.client.SMembers(ctx, assignmentSetKey(id)).Result()
	if err != nil {
		return fmt.Errorf("delete study: %w", err)
	}
	keys := []string{studyKey(id), assignmentSetKey(id)}
	for _, idx := range indexes {
		keys = append(keys, "counterseq:assignment:"+id+":"+idx)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		pipe.SRem(ctx, studySetKey, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete study: %w", err)
	}
	return nil
}

func (r *Redis) PutAssignment(ctx context.Context, a *study.Assignment) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal assignment: %w", err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, assignmentKey(a.StudyID, a.Index), data, 0)
		pipe.SAdd(ctx, assignmentSetKey(a.StudyID), a.Index)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store assignment: %w", err)
	}
	return nil
}

func (r *Redis) ListAssignments(ctx context.Context, studyID string) ([]*study.Assignment, error) {
	indexes, err := r.client.SMembers(ctx, assignmentSetKey(studyID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	out := make([]*study.Assignment, 0, len(indexes))
	if len(indexes) == 0 {
		return out, nil
	}
	keys := make([]string, len(indexes))
	for i, idx := range indexes {
		keys[i] = "counterseq:assignment:" + studyID + ":" + idx
	}
	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	for _, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var a study.Assignment
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			return nil, fmt.Errorf("parse assignment: %w", err)
		}
		out = append(out, &a)
	}
	sortAssignments(out)
	return out, nil
}

func (r *Redis) CountAssignments(ctx context.Context, studyID string) (int, error) {
	n, err := r.client.SCard(ctx, assignmentSetKey(studyID)).Result()
	if err != nil {
		return 0, fmt.Errorf("count assignments: %w", err)
	}
	return int(n), nil
}

func (r *Redis) Close() error { return r.client.Close() }
