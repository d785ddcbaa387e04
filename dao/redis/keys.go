package redis

import "strconv"

const (
	KeyPrefix          = "teacreek:"
	KeyUserActiveToken = "active_token:" // teacreek:active_token:1001
)

func getRedisKey(key string) string {
	return KeyPrefix + key
}

func activeTokenKey(userID int64) string {
	return getRedisKey(KeyUserActiveToken + strconv.FormatInt(userID, 10))
}
