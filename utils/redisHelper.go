package utils

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"bitbucket.org/mmdatafocus/dra_backend/config"
)

var mutex sync.Mutex

func GetCacheLifespan() time.Duration {
	lifespan, err := strconv.Atoi(os.Getenv("CACHE_LIFESPAN"))
	if err != nil {
		lifespan = 1
	}
	return time.Duration(lifespan) * time.Hour
}

/* Redis list caching for read-mostly reference data */

// store list under "<Type>List"
func StoreRedisList[T any](obj any) error {
	key := GetTypeName[T]() + "List"
	return config.SetRedisObject(key, &obj, GetCacheLifespan())
}

// retrieve a cached list; returns nil if it does not exist
func RetrieveRedisList[T any]() ([]*T, error) {
	key := GetTypeName[T]() + "List"

	var result []*T
	exists, err := config.GetRedisObject(key, &result)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return result, nil
}

// clear cached list, "<Type>List"
func RemoveRedisList[T any]() error {
	key := GetTypeName[T]() + "List"
	return config.RemoveRedisKey(key)
}

// GetCenterSequence returns the next folder sequence number for a center,
// redis counter first with db fallback for the max committed sequence.
func GetCenterSequence(ctx context.Context, centerId int, maxCommittedSeq func() (int64, error), seqExists func(int64) (bool, error)) (int64, error) {
	mutex.Lock()
	defer mutex.Unlock()
	cacheKey := "draSeq:" + fmt.Sprint(centerId)
	var seqNo int64
	var err error

	for {
		seqNo, err = config.GetRedisCounter(ctx, cacheKey)
		if err != nil {
			return 0, err
		}
		// counter restarted (fresh redis); rebuild from db
		if seqNo <= 1 {
			dbSeq, err := maxCommittedSeq()
			if err != nil {
				return 0, err
			}
			seqNo = dbSeq + 1
			if err := config.SetRedisObject(cacheKey, &seqNo, 0); err != nil {
				return 0, err
			}
		}
		// guard against counter drift vs committed rows
		exists, err := seqExists(seqNo)
		if err != nil {
			return 0, err
		}
		if !exists {
			break
		}
	}
	return seqNo, nil
}
