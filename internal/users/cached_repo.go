package users

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const userCacheExpireSeconds = 10 * 60

type userGetter interface {
	Get(ctx context.Context, id int) (*User, error)
}

// CachedRepo keeps recently seen users in memory; the session middleware
// resolves the current user on every request.
type CachedRepo struct {
	repo  userGetter
	cache *freecache.Cache
}

func NewCachedRepo(repo userGetter, cacheSizeMB int) *CachedRepo {
	return &CachedRepo{
		repo:  repo,
		cache: freecache.NewCache(cacheSizeMB * 1024 * 1024),
	}
}

func (r *CachedRepo) Get(ctx context.Context, id int) (*User, error) {
	key := []byte(strconv.Itoa(id))

	if cached, err := r.cache.Get(key); err == nil {
		var user User
		uErr := json.Unmarshal(cached, &user)
		if uErr == nil {
			return &user, nil
		}
		log.Warnf("user cache: unmarshal user %d: %s", id, uErr)
		r.cache.Del(key)
	} else if !errors.Is(err, freecache.ErrNotFound) {
		log.Warnf("user cache: get user %d: %s", id, err)
	}

	user, err := r.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if userBytes, err := json.Marshal(user); err != nil {
		log.Warnf("user cache: marshal user %d: %s", id, err)
	} else if err := r.cache.Set(key, userBytes, userCacheExpireSeconds); err != nil {
		log.Warnf("user cache: set user %d: %s", id, err)
	}

	return user, nil
}

func (r *CachedRepo) invalidate(id int) {
	r.cache.Del([]byte(strconv.Itoa(id)))
}

func (r *CachedRepo) entryCount() int64 {
	return r.cache.EntryCount()
}
